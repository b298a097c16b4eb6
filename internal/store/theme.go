package store

import (
	"context"

	"todo-cli/internal/model"
)

func (s *Store) Theme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme stores the preference. Write failures are swallowed like task writes.
func (s *Store) SetTheme(ctx context.Context, theme model.Theme) model.Theme {
	if !theme.Valid() {
		theme = model.ThemeAuto
	}
	s.mu.Lock()
	s.theme = theme
	err := s.kv.Set(ctx, ThemeKey, []byte(theme))
	s.persistErr = err
	s.wrote = true
	if err != nil {
		s.log.Warn().Err(err).Str("key", ThemeKey).Msg("persist theme failed")
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.render(snap)
	return theme
}

// ToggleTheme switches light <-> auto.
func (s *Store) ToggleTheme(ctx context.Context) model.Theme {
	return s.SetTheme(ctx, s.Theme().Next())
}
