package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/store"
	"github.com/amishk599/studypack/internal/viewer"
)

const pickerLimit = 50

var viewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Browse archived study packs (TUI)",
	Long:  "Opens the pack with the given id, or shows a picker over the most recent packs.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		rec, err := sqlStore.Get(args[0])
		if errors.Is(err, model.ErrPackNotFound) {
			return fmt.Errorf("no study pack with id %s", args[0])
		}
		if err != nil {
			return err
		}
		_, err = viewer.RunPackView(rec)
		return err
	}

	return browse(sqlStore)
}

// browse alternates between the picker and the pack view until the user quits.
func browse(packStore model.PackStore) error {
	for {
		records, err := packStore.List(pickerLimit)
		if err != nil {
			return fmt.Errorf("list study packs: %w", err)
		}

		choice, err := viewer.RunPackPicker(records)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}

		wantQuit, err := viewer.RunPackView(records[choice])
		if err != nil {
			return fmt.Errorf("pack view: %w", err)
		}
		if wantQuit {
			return nil
		}
	}
}
