package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/store"
	"github.com/amishk599/studypack/internal/studypack"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived study packs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of packs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Output.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer sqlStore.Close()

	records, err := sqlStore.List(historyLimit)
	if err != nil {
		return fmt.Errorf("list study packs: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No study packs yet.")
		return nil
	}

	fmt.Println(historyTable(records))
	return nil
}

func historyTable(records []model.PackRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "CREATED", "SOURCE", "TOPIC", "FAILED")

	for _, r := range records {
		topic, _ := studypack.PackTopic(r.Pack)
		t.Row(r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Source, topic, failedSections(r.Pack))
	}
	return t.String()
}

// failedSections lists the section keys whose step failed, or "-".
func failedSections(pack model.StudyPack) string {
	var failed []string
	for _, key := range model.Sections {
		if o, _ := pack.Section(key); o.Failed() {
			failed = append(failed, key)
		}
	}
	if len(failed) == 0 {
		return "-"
	}
	return strings.Join(failed, ",")
}
