package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/notifier"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send a sample study pack notification",
	Long:  "Sends a sample notification through the configured notifier to verify the integration works.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	if err := notifier.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "type", cfg.Notification.Type, "error", err)
		os.Exit(1)
	}

	logger.Info("test notification sent", "type", cfg.Notification.Type)
	return nil
}
