// Package search finds PDF study material on disk.
package search

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/amishk599/studypack/internal/filter"
	"github.com/amishk599/studypack/internal/model"
)

const (
	StatusSuccess   = "success"
	StatusNoResults = "no_results"
)

// File is one PDF found under the search root.
type File struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Directory string `json:"directory"`
}

// Result is the search report.
type Result struct {
	Status  string `json:"status"`
	Count   int    `json:"count,omitempty"`
	Files   []File `json:"files,omitempty"`
	Message string `json:"message,omitempty"`
}

// PDFs walks root recursively and returns every *.pdf whose file name
// contains query (case-insensitive). An empty query lists all PDFs.
// Unreadable directories are skipped, so a missing root simply yields no results.
func PDFs(root, query string) Result {
	match := filter.NewDocumentFilter([]string{query}, nil, []string{".pdf"})

	var files []File
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !match.Match(model.Document{Name: d.Name(), Path: path}) {
			return nil
		}
		files = append(files, File{
			Filename:  d.Name(),
			Path:      path,
			Directory: filepath.Dir(path),
		})
		return nil
	})

	if len(files) == 0 {
		return Result{Status: StatusNoResults, Message: "No PDFs found."}
	}
	return Result{Status: StatusSuccess, Count: len(files), Files: files}
}

// JSON renders the result the way the search task reports it.
func (r Result) JSON() string {
	var (
		b   []byte
		err error
	)
	if r.Status == StatusSuccess {
		b, err = json.MarshalIndent(r, "", "  ")
	} else {
		b, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":%q}`, err.Error())
	}
	return string(b)
}
