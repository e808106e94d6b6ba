package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure DirSource implements model.DocumentSource.
var _ model.DocumentSource = (*DirSource)(nil)

// DirSource lists the regular files directly inside one directory.
// Subdirectories and hidden files are ignored.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Dir() string { return s.dir }

// ListDocuments returns the files in name order.
func (s *DirSource) ListDocuments(ctx context.Context) ([]model.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var docs []model.Document
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		docs = append(docs, model.Document{
			Name:    e.Name(),
			Path:    filepath.Join(s.dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return docs, nil
}
