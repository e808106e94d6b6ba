package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/extract"
	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
	"github.com/amishk599/studypack/internal/viewer"
	"github.com/amishk599/studypack/internal/watcher"
)

var (
	generateJSON   bool
	generateDryRun bool
	generateView   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Build a study pack from one notes file",
	Long:  "Extracts the text of a PDF, text, Markdown or HTML file, runs the full study pack pipeline, archives the result and prints it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the four-key mapping as JSON instead of a report")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "do not archive the pack")
	generateCmd.Flags().BoolVar(&generateView, "view", false, "show a spinner while generating, then open the pack viewer")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	if generateView {
		logger = silentLogger()
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	path := args[0]
	extracted := extract.New(logger).Extract(path)
	if extracted.Failed() {
		return fmt.Errorf("%s: %s", path, extracted.Err.Message)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, err := setupOrchestrator(ctx, cfg, filepath.Dir(path), logger)
	if err != nil {
		return err
	}

	packStore, closeStore, err := openStore(cfg, generateDryRun, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var pack model.StudyPack
	if generateView {
		pack, err = viewer.RunLoader(filepath.Base(path), func(ctx context.Context) (model.StudyPack, error) {
			pack := orch.GenerateStudyPack(ctx, extracted.Text)
			return pack, ctx.Err()
		})
		if err != nil {
			return err
		}
	} else {
		pack = orch.GenerateStudyPack(ctx, extracted.Text)
	}

	rec, saved, err := archivePack(ctx, packStore, packRecord(filepath.Base(path), watcher.ContentHash(extracted.Text), pack), logger)
	if err != nil {
		return err
	}

	if generateView {
		_, err := viewer.RunPackView(rec)
		return err
	}
	if generateJSON {
		return printJSON(pack.Map())
	}

	fmt.Print(studypack.Report(pack))
	if saved && !generateDryRun {
		fmt.Printf("\nsaved as %s\n", rec.ID)
	}
	return nil
}

// archivePack saves rec unless generation was interrupted or produced no
// concepts. An interrupted run is an error; a pack without concepts is still
// shown but left out of the archive, so the same notes are not treated as
// processed by the inbox watcher.
func archivePack(ctx context.Context, packStore model.PackStore, rec model.PackRecord, logger *slog.Logger) (model.PackRecord, bool, error) {
	if err := watcher.CheckArchivable(ctx, rec.Pack); err != nil {
		if errors.Is(err, watcher.ErrIncompletePack) {
			logger.Warn("study pack not saved", "source", rec.Source, "reason", err)
			return rec, false, nil
		}
		return rec, false, fmt.Errorf("generation interrupted: %w", err)
	}
	saved, err := packStore.Save(rec)
	if err != nil {
		return rec, false, fmt.Errorf("save study pack: %w", err)
	}
	return saved, true, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
