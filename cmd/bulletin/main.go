package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aluiziolira/go-price-bulletin/bulletin"
	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/aluiziolira/go-price-bulletin/pdftext"
	"github.com/aluiziolira/go-price-bulletin/scraper"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configFile string
	verbose    bool
	logFile    string
	baseURL    string

	cfg     *config.Config
	metrics *scraper.Metrics
	fetcher *scraper.Fetcher
	service *bulletin.Service
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "bulletin",
		Short: "Fetch and parse daily market price bulletins",
		Long: `bulletin downloads the daily price bulletin PDF, extracts the price table
and exports the rows, either for one day, a date range, or a local file.
It can also serve the same operations over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "config.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write logs to this file (rotated)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Override the bulletin base URL")

	root.AddCommand(
		newServeCmd(a),
		newFetchCmd(a),
		newRangeCmd(a),
		newParseCmd(a),
	)
	return root
}

// setup layers .env, the config file, BULLETIN_* variables and flags, then
// builds the logger and the service.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		format, _ := flags.GetString("format")
		cfg.OutputFormat = strings.ToLower(format)
	}

	logger, level := newLogger(cfg.Verbose, cfg.LogFile)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.metrics = scraper.NewMetrics()
	a.fetcher, err = scraper.NewFetcher(cfg, a.metrics)
	if err != nil {
		return fmt.Errorf("initialising fetcher: %w", err)
	}
	a.service = bulletin.NewService(cfg, a.fetcher, pdftext.New(), a.metrics)
	return nil
}

func addExportFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringP("output", "o", defaults.OutputFile, "Output file path")
	cmd.Flags().String("format", defaults.OutputFormat, "Output format: csv, json, dual or xlsx")
}
