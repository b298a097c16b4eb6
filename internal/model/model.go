package model

import (
	"strings"
	"time"
)

// Task is a single to-do entry.
//
// The JSON shape is the persisted wire format: CreatedAt is stored as Unix
// milliseconds so a stored collection is a plain array of small objects.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"createdAt"`
}

func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt).UTC()
}

type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
)

// ParseTheme normalizes a stored or user-supplied theme value.
// Unknown values read as ThemeAuto.
func ParseTheme(s string) Theme {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func (t Theme) Valid() bool {
	return t == ThemeAuto || t == ThemeLight
}

// Next is the theme a toggle switches to.
func (t Theme) Next() Theme {
	if t == ThemeLight {
		return ThemeAuto
	}
	return ThemeLight
}
