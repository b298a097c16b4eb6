// Package tui is the interactive terminal front-end: two lists (active and
// completed) over a store.Store, with inline editing and a confirm modal.
package tui

import (
	"context"

	"todo-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// ThemeOverride pins the "auto" palette: light|dark|auto.
	ThemeOverride string
	// Glyphs is unicode (default) or ascii.
	Glyphs string
}

func Run(ctx context.Context, st *store.Store, opts Options) error {
	applyColorProfilePreference()
	applyGlyphPreference(opts.Glyphs)

	m := newAppModel(ctx, st, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
