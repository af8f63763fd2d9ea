package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killthrush/alexa-topsites/internal/config"
	"github.com/killthrush/alexa-topsites/internal/engine"
	"github.com/killthrush/alexa-topsites/internal/fetcher"
	"github.com/killthrush/alexa-topsites/internal/log"
	"github.com/killthrush/alexa-topsites/internal/model"
	"github.com/killthrush/alexa-topsites/internal/report"
	"github.com/killthrush/alexa-topsites/internal/source"
)

// Environment variables consulted for ranking source credentials when
// neither flags nor the config file provide them.
const (
	envAccessKeyID = "TOPSITES_ACCESS_KEY_ID"
	envSecretKey   = "TOPSITES_SECRET_KEY"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the top-ranked domains and report word count statistics",
		Long: `Scan fetches the landing page of each top-ranked domain, strips markup
and scripts, and counts the words a visitor would actually read.

Sites are fetched in concurrent batches; batches run one after another so
peak connection use stays bounded. Per-site failures (timeouts, refused
connections) are recorded in the report and never stop the run.

The report contains:
- Per-site word counts ranked from wordiest to tersest
- Average word count across the whole target set
- Response header frequency across all scanned sites
- Fetch latency per site and total scan duration

Examples:
  # Scan the top 1000 sites with defaults
  topsites scan

  # Smaller, faster run
  topsites scan --total 100 --batch 20

  # Output JSON to a file
  topsites scan --json -o report.json

  # Markdown report plus an Excel workbook
  topsites scan --markdown -o report.md --excel report.xlsx

  # Use a custom configuration file
  topsites scan -c myconfig.yaml

Configuration file (.topsites) example:
  accessKeyId: "AKIAEXAMPLE"
  secretKey: "..."
  totalSites: 500
  batchSize: 25
  timeoutSeconds: 15`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().IntP("total", "n", config.DefaultTotalSites,
		"Number of top-ranked domains to scan")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent fetches per batch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each site fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every fetch")
	cmd.Flags().Int64("max-body", config.DefaultMaxBodySize,
		"Maximum response body bytes to read per site")
	cmd.Flags().Float64P("rate", "r", 0,
		"Maximum fetch launches per second (0 disables throttling)")

	// Ranking source flags
	cmd.Flags().String("key-id", "",
		"Ranking source access key id (or TOPSITES_ACCESS_KEY_ID)")
	cmd.Flags().String("secret-key", "",
		"Ranking source secret key (or TOPSITES_SECRET_KEY)")
	cmd.Flags().String("cache-dir", "",
		"Directory for the daily domain list cache (default: XDG cache)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .topsites in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("excel", "x", "",
		"Additionally write the report as an Excel workbook to this path")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	// Build config from the config file plus flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals. Cancellation finalizes the report from
	// whatever has been scanned so far instead of discarding the run.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finalizing partial results...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra command flags.
// Precedence, lowest to highest: defaults, config file, flags, environment
// for credentials only.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file first so flags can override it.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently continue when no file exists.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	// Flags override the file only when the user actually set them.
	if cmd.Flags().Changed("total") {
		if cfg.TotalSites, err = cmd.Flags().GetInt("total"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-body") {
		if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("cache-dir") {
		if cfg.CacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
			return nil, err
		}
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	if keyID, err := cmd.Flags().GetString("key-id"); err != nil {
		return nil, err
	} else if keyID != "" {
		cfg.AccessKeyID = keyID
	}
	if secret, err := cmd.Flags().GetString("secret-key"); err != nil {
		return nil, err
	} else if secret != "" {
		cfg.SecretKey = secret
	}

	// Environment fallback keeps credentials out of shell history.
	if cfg.AccessKeyID == "" {
		cfg.AccessKeyID = os.Getenv(envAccessKeyID)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv(envSecretKey)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ExcelFile, err = cmd.Flags().GetString("excel")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler masks the signing credentials if they ever end up
// in a log attribute.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"totalSites", cfg.TotalSites,
		"batchSize", cfg.BatchSize,
		"timeout", cfg.Timeout,
	)

	// The ranked domain list is the one hard dependency: no list, no run.
	src := source.New(cfg.AccessKeyID, cfg.SecretKey,
		source.WithCacheDir(cfg.CacheDir),
		source.WithLogger(logger),
	)

	domains, err := src.TopDomains(ctx, cfg.TotalSites)
	if err != nil {
		return fmt.Errorf("cannot obtain domain list: %w", err)
	}

	fmt.Printf("Scanning %d sites in batches of %d...\n", len(domains), cfg.BatchSize)
	startTime := time.Now()

	f := fetcher.New(
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	)

	eng := engine.New(f,
		engine.WithBatchSize(cfg.BatchSize),
		engine.WithTotalSites(cfg.TotalSites),
		engine.WithRateLimit(cfg.RequestsPerSecond),
		engine.WithLogger(logger),
	)

	runReport := eng.Run(ctx, domains)

	fmt.Printf("Scan completed in %s (%d succeeded, %d failed)\n\n",
		time.Since(startTime).Round(time.Millisecond),
		runReport.SuccessCount(), runReport.FailureCount())

	if err := outputReport(cfg, runReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Context cancellation is not a failure: the report above already
	// holds the partial results.
	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Warn("scan was interrupted, report contains partial results")
	}

	return nil
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := w.Write(runReport); err != nil {
		return err
	}

	// The Excel workbook is a side output and can accompany any format.
	if cfg.ExcelFile != "" {
		f, err := createReportFile(cfg.ExcelFile)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := report.NewExcelWriter(f).Write(runReport); err != nil {
			return err
		}
	}

	return nil
}

// createReportFile opens path for writing, creating parent directories.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
