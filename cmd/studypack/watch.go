package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/extract"
	"github.com/amishk599/studypack/internal/filter"
	"github.com/amishk599/studypack/internal/scheduler"
	"github.com/amishk599/studypack/internal/watcher"
)

var (
	watchOnce   bool
	watchDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Watch inbox directories and build packs for new notes",
	Long:  "Polls inbox directories on the configured interval, builds a study pack for every new document and sends a notification. Blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "poll every inbox once, then exit")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "poll once without archiving anything, then exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dirs := args
	if len(dirs) == 0 && cfg.Inbox.Dir != "" {
		dirs = []string{cfg.Inbox.Dir}
	}
	if len(dirs) == 0 {
		logger.Error("no inbox to watch, pass a directory or set inbox.dir")
		os.Exit(1)
	}

	logger.Info("config loaded",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"interval", cfg.Inbox.Interval.String(),
		"inboxes", len(dirs),
		"extensions", cfg.Inbox.Extensions,
		"retention", cfg.Inbox.Retention.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	packStore, closeStore, err := openStore(cfg, watchDryRun, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	orch, err := setupOrchestrator(ctx, cfg, ".", logger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	docFilter := filter.NewDocumentFilter(cfg.Inbox.IncludeKeywords, cfg.Inbox.ExcludeKeywords, cfg.Inbox.Extensions)
	extractor := extract.New(logger)

	var pollers []*watcher.InboxPoller
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Warn("inbox is not a directory, skipping", "dir", dir)
			continue
		}
		p := watcher.NewInboxPoller(dir, watcher.NewDirSource(dir), docFilter, extractor, orch, packStore, n, logger)
		pollers = append(pollers, p)
		logger.Info("registered inbox", "dir", dir)
	}
	if len(pollers) == 0 {
		logger.Error("no inboxes to poll")
		os.Exit(1)
	}

	if watchOnce || watchDryRun {
		for _, p := range pollers {
			if err := p.Poll(ctx); err != nil {
				logger.Error("poll failed", "inbox", p.Name, "error", err)
			}
		}
		logger.Info("single pass complete")
		return nil
	}

	sched := scheduler.NewScheduler(pollers, cfg.Inbox.Interval, cfg.Inbox.Pause, packStore, cfg.Inbox.Retention, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
