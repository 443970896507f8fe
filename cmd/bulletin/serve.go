package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/go-price-bulletin/api"
	"github.com/aluiziolira/go-price-bulletin/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bulletin API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.ListenAddr = listen
			}
			return runServe(a)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "HTTP listen address")
	return cmd
}

func runServe(a *app) error {
	if !a.cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var registry *prometheus.Registry
	if a.cfg.MetricsEnabled {
		registry = a.metrics.Registry
	}
	server := api.NewServer(a.cfg, a.service, registry)

	var warmup *scheduler.Scheduler
	if a.cfg.WarmupSchedule != "" {
		var err error
		warmup, err = scheduler.New(a.cfg.WarmupSchedule, a.service, a.cfg.Timeout)
		if err != nil {
			return err
		}
		warmup.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if warmup != nil {
			warmup.Stop(context.Background())
		}
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received, waiting for in-flight requests to finish")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if warmup != nil {
		warmup.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
