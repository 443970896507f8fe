package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-price-bulletin/bulletin"
	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/aluiziolira/go-price-bulletin/pipeline"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one day's bulletin and export its rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := a.service.Today()
			if date != "" {
				parsed, err := bulletin.ParseDate("date", date)
				if err != nil {
					return err
				}
				day = parsed
			}

			return a.export(func(ctx context.Context, p *pipeline.Pipeline) (string, error) {
				result, err := a.service.FetchDay(ctx, day)
				if err != nil {
					return "", err
				}
				if err := processRows(p, result.Date, result.Source, result.Products); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s: %d products", result.Date, result.TotalProducts), nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Bulletin date (YYYY-MM-DD), defaults to today")
	addExportFlags(cmd)
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Fetch every bulletin in [from, to] and export their rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := bulletin.ParseRange(from, to, a.cfg.MaxRangeDays)
			if err != nil {
				return err
			}

			return a.export(func(ctx context.Context, p *pipeline.Pipeline) (string, error) {
				result, err := a.service.FetchRange(ctx, start, end, func(date, source string, records []models.ProductPrice) {
					if err := processRows(p, date, source, records); err != nil {
						slog.Error("export rows", slog.String("date", date), slog.Any("error", err))
					}
				})
				if err != nil {
					return "", err
				}
				printRangeSummary(result)
				return fmt.Sprintf("%s..%s: %d/%d days, %d products",
					result.From, result.To, result.SuccessfulDays, result.TotalDays, result.TotalProducts), nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	addExportFlags(cmd)
	return cmd
}

func newParseCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a local bulletin (.pdf or extracted .txt) and export its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				if _, err := bulletin.ParseDate("date", date); err != nil {
					return err
				}
			}
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			return a.export(func(ctx context.Context, p *pipeline.Pipeline) (string, error) {
				var result *models.DayBulletin
				if strings.EqualFold(filepath.Ext(path), ".txt") {
					result = a.service.ParseText(string(data), date, path)
				} else {
					result, err = a.service.ParseDocument(data, date, path)
					if err != nil {
						return "", err
					}
				}
				if err := processRows(p, result.Date, result.Source, result.Products); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s: %d products", result.Date, result.TotalProducts), nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Bulletin date (YYYY-MM-DD), defaults to the date printed in the document")
	addExportFlags(cmd)
	return cmd
}

// export runs produce with a started pipeline over the configured writer,
// then drains it and prints the summary.
func (a *app) export(produce func(ctx context.Context, p *pipeline.Pipeline) (string, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	writer, err := pipeline.NewWriter(a.cfg.OutputFormat, a.cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	p := pipeline.NewPipeline(ctx, writer, a.cfg)
	// One worker keeps rows in bulletin order; each day is a single unit.
	p.Start(1)
	if a.cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	startTime := time.Now()
	label, runErr := produce(ctx, p)

	if err := p.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("pipeline shutdown failed: %w", err)
	}
	if err := writer.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close writer: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	requests, failures := a.fetcher.Stats()
	printSummary(label, time.Since(startTime), requests, failures, a.cfg.OutputFile, p.GetMetrics())
	return nil
}

func processRows(p *pipeline.Pipeline, date, source string, records []models.ProductPrice) error {
	scrapedAt := time.Now()
	rows := make([]*models.PriceRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, models.NewPriceRow(date, source, record, scrapedAt))
	}
	return p.Process(rows...)
}
