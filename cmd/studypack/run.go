package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/extract"
	"github.com/amishk599/studypack/internal/orchestrator"
	"github.com/amishk599/studypack/internal/studypack"
)

var (
	runRoot string
	runJSON bool
)

var runCmd = &cobra.Command{
	Use:   "run <task> [file|text|query]",
	Short: "Run a single task",
	Long: "Routes one request the way the orchestrator does. Tasks: " + taskList() + ".\n" +
		"The input is a notes file when one exists at that path, otherwise the literal text " +
		"(the search query for \"Search PDFs\").",
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runRoot, "root", ".", "directory searched by the \"Search PDFs\" task")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print study packs as the four-key JSON mapping")
	rootCmd.AddCommand(runCmd)
}

func taskList() string {
	names := make([]string, len(orchestrator.Tasks))
	for i, t := range orchestrator.Tasks {
		names[i] = fmt.Sprintf("%q", string(t))
	}
	return strings.Join(names, ", ")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	task := orchestrator.ParseTask(args[0])
	var input string
	if len(args) == 2 {
		input, err = resolveInput(task, args[1], logger)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, err := setupOrchestrator(ctx, cfg, runRoot, logger)
	if err != nil {
		return err
	}

	resp := orch.HandleRequest(ctx, task, input)
	if resp.Pack != nil {
		if runJSON {
			return printJSON(resp.Pack.Map())
		}
		fmt.Print(studypack.Report(*resp.Pack))
		return nil
	}

	fmt.Println(resp.Outcome.String())
	if resp.Outcome.Failed() {
		return fmt.Errorf("task %q failed with a %s error", string(task), resp.Outcome.Err.Kind)
	}
	return nil
}

// resolveInput reads arg as a notes file when it names one. Search queries are
// always taken literally.
func resolveInput(task orchestrator.Task, arg string, logger *slog.Logger) (string, error) {
	if task == orchestrator.TaskSearchPDFs {
		return arg, nil
	}
	info, err := os.Stat(arg)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return arg, nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", arg, err)
	}

	logger.Debug("reading input file", "path", arg)
	o := extract.New(logger).Extract(arg)
	if o.Failed() {
		return "", fmt.Errorf("%s: %s", arg, o.Err.Message)
	}
	return o.Text, nil
}
