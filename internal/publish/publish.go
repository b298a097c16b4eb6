// Package publish turns the task list into shareable Markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"todo-cli/internal/view"
)

type WriteOptions struct {
	RenderOptions
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
	Active  int      `json:"active"`
	// Completed is zero unless the completed section was included.
	Completed int `json:"completed"`
}

// WriteFile renders p and writes it to path, creating parent dirs.
func WriteFile(p view.Projection, path string, opt WriteOptions) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, err
	}
	md := RenderMarkdown(p, opt.RenderOptions)
	if err := writeFile(path, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Written: []string{path}, Active: p.ActiveCount}
	if opt.IncludeCompleted {
		res.Completed = p.CompletedCount
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
