package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/ai"
	"github.com/amishk599/studypack/internal/conceptmap"
	"github.com/amishk599/studypack/internal/config"
	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/notifier"
	"github.com/amishk599/studypack/internal/orchestrator"
	"github.com/amishk599/studypack/internal/ratelimit"
	"github.com/amishk599/studypack/internal/retry"
	"github.com/amishk599/studypack/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "studypack",
	Short:        "Turn notes into study packs",
	Long:         "studypack reads lecture notes (PDF, text, Markdown, HTML) and asks a hosted model for key concepts, a 7-day roadmap and a summary, then draws a concept map.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: STUDYPACK_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > STUDYPACK_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("STUDYPACK_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// setupLogger logs to stderr so reports on stdout stay clean.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger is used while a TUI owns the terminal; any log output before
// the alt-screen starts corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupGenerator builds the provider and wraps it with rate limiting and retry
// when the config asks for them. The limiter is shared by every caller.
func setupGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.Generator, error) {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	gen, err := ai.NewGenerator(ctx, &cfg.LLM, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	if cfg.LLM.MinDelay > 0 {
		gen = ratelimit.NewRateLimitedGenerator(gen, ratelimit.NewLimiter(cfg.LLM.MinDelay), cfg.LLM.Provider)
		logger.Debug("rate limiting generator", "min_delay", cfg.LLM.MinDelay.String())
	}
	if cfg.LLM.MaxRetries > 0 {
		gen = retry.NewRetryGenerator(gen, cfg.LLM.MaxRetries, cfg.LLM.RetryDelay, logger)
		logger.Debug("retrying generator", "max_retries", cfg.LLM.MaxRetries, "retry_delay", cfg.LLM.RetryDelay.String())
	}
	return gen, nil
}

// setupOrchestrator wires generator, concept map renderer and search root.
func setupOrchestrator(ctx context.Context, cfg *config.Config, searchRoot string, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	gen, err := setupGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	renderer, err := conceptmap.New(cfg.Output.VisualizationDir, cfg.Output.FontPath, logger)
	if err != nil {
		return nil, fmt.Errorf("create concept map renderer: %w", err)
	}
	return orchestrator.New(gen, renderer, searchRoot, logger), nil
}

// openStore returns the SQLite archive, or a NopStore for dry runs. The
// returned close func is always safe to call.
func openStore(cfg *config.Config, dryRun bool, logger *slog.Logger) (model.PackStore, func(), error) {
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be saved")
		return store.NewNopStore(), func() {}, nil
	}
	sqlStore, err := store.NewSQLiteStore(cfg.Output.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return sqlStore, func() { sqlStore.Close() }, nil
}

// packRecord stamps a freshly generated pack for the archive.
func packRecord(source, contentHash string, pack model.StudyPack) model.PackRecord {
	return model.PackRecord{
		Source:      source,
		ContentHash: contentHash,
		CreatedAt:   time.Now().UTC(),
		Pack:        pack,
	}
}
