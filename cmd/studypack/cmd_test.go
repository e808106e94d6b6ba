package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/orchestrator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("Recursion is a function calling itself."), 0o644); err != nil {
		t.Fatal(err)
	}
	image := filepath.Join(dir, "diagram.png")
	if err := os.WriteFile(image, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		task    orchestrator.Task
		arg     string
		want    string
		wantErr string
	}{
		{"file is extracted", orchestrator.TaskConcepts, notes, "Recursion is a function calling itself.", ""},
		{"missing path is literal text", orchestrator.TaskSummary, "Heaps are trees.", "Heaps are trees.", ""},
		{"directory is literal text", orchestrator.TaskSummary, dir, dir, ""},
		{"search query never read", orchestrator.TaskSearchPDFs, notes, notes, ""},
		{"unsupported file", orchestrator.TaskConcepts, image, "", "Unsupported file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInput(tt.task, tt.arg, discardLogger())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailedSections(t *testing.T) {
	pack := model.StudyPack{
		Concepts:      model.Success("{}"),
		Roadmap:       model.Failure(&model.StageError{Kind: model.KindUpstream, Message: "Error: x"}),
		Summary:       model.Success("{}"),
		Visualization: model.Failure(&model.StageError{Kind: model.KindRender, Message: "Error: y"}),
	}
	if got := failedSections(pack); got != "roadmap,visualization" {
		t.Errorf("failedSections = %q", got)
	}
	if got := failedSections(model.StudyPack{}); got != "-" {
		t.Errorf("failedSections(all ok) = %q, want -", got)
	}
}

func TestLoadConfig_EnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studypack.yaml")
	yaml := "llm:\n  provider: gemini\n  api_key: k\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDYPACK_CONFIG", path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.APIKey != "k" {
		t.Errorf("APIKey = %q, want k", cfg.LLM.APIKey)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit path should win over STUDYPACK_CONFIG")
	}
}

// countingStore records saved packs and reports hashes it has seen.
type countingStore struct {
	saved []model.PackRecord
}

func (s *countingStore) Save(rec model.PackRecord) (model.PackRecord, error) {
	rec.ID = "pack-" + rec.Source
	s.saved = append(s.saved, rec)
	return rec, nil
}
func (s *countingStore) Get(string) (model.PackRecord, error) {
	return model.PackRecord{}, model.ErrPackNotFound
}
func (s *countingStore) List(int) ([]model.PackRecord, error) { return s.saved, nil }
func (s *countingStore) HasProcessed(hash string) (bool, error) {
	for _, r := range s.saved {
		if r.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}
func (s *countingStore) Cleanup(time.Duration) error { return nil }

func TestArchivePack(t *testing.T) {
	upstream := model.Failure(&model.StageError{
		Kind:    model.KindUpstream,
		Message: "Error connecting to generation service: context canceled",
	})
	good := model.StudyPack{
		Concepts:      model.Success(`{"document_metadata":{"topic":"T"},"extracted_concepts":[]}`),
		Roadmap:       model.Success(`{}`),
		Summary:       upstream,
		Visualization: model.Success("Visualization generated successfully: x.png"),
	}
	failed := model.StudyPack{Concepts: upstream, Roadmap: upstream, Summary: upstream, Visualization: upstream}

	t.Run("saved", func(t *testing.T) {
		st := &countingStore{}
		rec, saved, err := archivePack(context.Background(), st, packRecord("a.txt", "h1", good), discardLogger())
		if err != nil || !saved || rec.ID != "pack-a.txt" || len(st.saved) != 1 {
			t.Errorf("rec=%+v saved=%v err=%v stored=%d", rec.ID, saved, err, len(st.saved))
		}
	})

	t.Run("no concepts is shown but not saved", func(t *testing.T) {
		st := &countingStore{}
		_, saved, err := archivePack(context.Background(), st, packRecord("a.txt", "h1", failed), discardLogger())
		if err != nil || saved || len(st.saved) != 0 {
			t.Errorf("saved=%v err=%v stored=%d", saved, err, len(st.saved))
		}
		if done, _ := st.HasProcessed("h1"); done {
			t.Error("failed notes must not be marked processed")
		}
	})

	t.Run("interrupted run is an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st := &countingStore{}
		_, saved, err := archivePack(ctx, st, packRecord("a.txt", "h1", good), discardLogger())
		if !errors.Is(err, context.Canceled) || saved || len(st.saved) != 0 {
			t.Errorf("saved=%v err=%v stored=%d", saved, err, len(st.saved))
		}
	})
}
