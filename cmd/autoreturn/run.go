package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/juancollazo-ch/autoreturn/internal/api"
	"github.com/juancollazo-ch/autoreturn/internal/config"
	"github.com/juancollazo-ch/autoreturn/internal/database"
	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/handlers"
	"github.com/juancollazo-ch/autoreturn/internal/logging"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/juancollazo-ch/autoreturn/internal/refund"
	"github.com/juancollazo-ch/autoreturn/internal/service"
	"github.com/juancollazo-ch/autoreturn/internal/spreadsheet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runFlags struct {
	file             string
	settingsURL      string
	logDir           string
	logLevel         string
	column           string
	maxRetries       int
	retryDelay       time.Duration
	requestTimeout   time.Duration
	breakerThreshold uint32
	strictTimeout    bool
	dryRun           bool
	jsonOutput       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process an Excel file and submit the refunds",
	Long: `Process an Excel file and submit the refunds.

Flags override the AUTORETURN_* environment variables. When --file is not
given the path is read from stdin.`,
	Example: `  autoreturn run --file orders.xlsx
  autoreturn run --file orders.xlsx --dry-run --json`,
	RunE: runRefunds,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.file, "file", "f", "", "Excel file with the order numbers (.xlsx)")
	f.StringVar(&runFlags.settingsURL, "settings-url", config.DefaultSettingsURL, "URL of the remote settings document")
	f.StringVar(&runFlags.logDir, "log-dir", "", "directory for the daily refund journal (default: Logs next to the executable)")
	f.StringVar(&runFlags.logLevel, "log-level", "info", "console log level")
	f.StringVar(&runFlags.column, "column", config.DefaultColumnLabel, "header label of the order number column")
	f.IntVar(&runFlags.maxRetries, "max-retries", 3, "extra attempts per order on transient failures")
	f.DurationVar(&runFlags.retryDelay, "retry-delay", 10*time.Minute, "fixed delay between attempts")
	f.DurationVar(&runFlags.requestTimeout, "request-timeout", 20*time.Minute, "timeout of each refund call")
	f.Uint32Var(&runFlags.breakerThreshold, "breaker-threshold", 8, "consecutive failed calls that abort the batch; must exceed max-retries+1 (0 disables)")
	f.BoolVar(&runFlags.strictTimeout, "strict-timeout", false, "retry calls that time out locally instead of reporting them as success")
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "resolve the orders but do not submit refunds")
	f.BoolVar(&runFlags.jsonOutput, "json", false, "print the summary as JSON and log to stderr as JSON")
}

func runRefunds(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return apperrors.InvalidInput("invalid configuration", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		JournalDir: cfg.LogDir,
		JSON:       cfg.JSONOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	// Reemplazar logger global
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filePath := runFlags.file
	if filePath == "" {
		filePath, err = promptFilePath(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return apperrors.InvalidInput("no file selected", err)
		}
	}

	// 1) Settings remotos, una sola vez
	settingsClient, err := api.NewSettingsClient(cfg.SettingsURL, cfg.SettingsTimeout, logger)
	if err != nil {
		return err
	}
	settings, err := settingsClient.FetchSettings(ctx)
	if err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		return err
	}

	// 2) Dependencias
	resolver, err := database.NewResolver(settings.ConnectionString,
		database.WithChunkSize(cfg.QueryChunkSize),
		database.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	refundClient := refund.NewClient(settings, refund.Options{
		Timeout:          cfg.RequestTimeout,
		BreakerThreshold: cfg.BreakerThreshold,
		StrictTimeout:    cfg.StrictTimeout,
		Logger:           logger,
	})

	refundService := service.NewRefundService(
		spreadsheet.NewExtractor(logger),
		resolver,
		refundClient,
		service.Options{
			MaxRetries:    cfg.MaxRetries,
			RetryDelay:    cfg.RetryDelay,
			StrictTimeout: cfg.StrictTimeout,
			Logger:        logger,
		},
	)
	processHandler := handlers.NewProcessHandler(refundService, cmd.OutOrStdout(), cfg.JSONOutput)

	logger.Info("Run started",
		zap.String("db_driver", resolver.Driver()),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("retry_delay", cfg.RetryDelay),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("journal_dir", cfg.LogDir),
	)

	_, err = processHandler.ProcessOrders(ctx, models.ProcessRequest{
		FilePath:    filePath,
		ColumnLabel: cfg.ColumnLabel,
		DryRun:      runFlags.dryRun,
		RunID:       uuid.NewString(),
	})
	return err
}

// applyFlags pisa la configuración del entorno solo con los flags usados
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("settings-url") {
		cfg.SettingsURL = runFlags.settingsURL
	}
	if f.Changed("log-dir") {
		cfg.LogDir = runFlags.logDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = runFlags.logLevel
	}
	if f.Changed("column") {
		cfg.ColumnLabel = runFlags.column
	}
	if f.Changed("max-retries") {
		cfg.MaxRetries = runFlags.maxRetries
	}
	if f.Changed("retry-delay") {
		cfg.RetryDelay = runFlags.retryDelay
	}
	if f.Changed("request-timeout") {
		cfg.RequestTimeout = runFlags.requestTimeout
	}
	if f.Changed("breaker-threshold") {
		cfg.BreakerThreshold = runFlags.breakerThreshold
	}
	if f.Changed("strict-timeout") {
		cfg.StrictTimeout = runFlags.strictTimeout
	}
	if f.Changed("json") {
		cfg.JSONOutput = runFlags.jsonOutput
	}
}

// promptFilePath reemplaza al selector de archivos: pide la ruta por stdin
func promptFilePath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Excel 檔案路徑 (.xlsx): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	path := strings.Trim(strings.TrimSpace(line), `"'`)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	return path, nil
}
