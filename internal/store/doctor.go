package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"todo-cli/internal/kv"
	"todo-cli/internal/model"
)

var ErrDoctorIssuesFound = errors.New("doctor found issues")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Key     string           `json:"key,omitempty"`
	TaskID  string           `json:"taskId,omitempty"`
}

type DoctorKey struct {
	Key   string `json:"key"`
	Bytes int    `json:"bytes"`
}

type DoctorReport struct {
	Backend kv.Backend    `json:"backend"`
	Keys    []DoctorKey   `json:"keys"`
	Tasks   int           `json:"tasks"`
	Dropped int           `json:"dropped"`
	Theme   model.Theme   `json:"theme"`
	Issues  []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor inspects raw persisted state without modifying it. Anything Load
// would silently discard shows up here as an issue.
func Doctor(ctx context.Context, backend kv.Store) DoctorReport {
	r := DoctorReport{
		Backend: backend.Backend(),
		Keys:    []DoctorKey{},
		Theme:   model.ThemeAuto,
		Issues:  []DoctorIssue{},
	}

	keys, err := backend.Keys(ctx)
	if err != nil {
		r.Issues = append(r.Issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "storage_unreadable",
			Message: err.Error(),
		})
		return r
	}
	for _, k := range keys {
		b, err := backend.Get(ctx, k)
		if err != nil {
			continue
		}
		r.Keys = append(r.Keys, DoctorKey{Key: k, Bytes: len(b)})
	}

	if raw, err := backend.Get(ctx, ThemeKey); err == nil {
		r.Theme = model.ParseTheme(string(raw))
		if !model.Theme(strings.TrimSpace(string(raw))).Valid() {
			r.Issues = append(r.Issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "theme_unknown",
				Message: fmt.Sprintf("unknown theme %q reads as %q", string(raw), model.ThemeAuto),
				Key:     ThemeKey,
			})
		}
	}

	raw, err := backend.Get(ctx, TasksKey)
	if errors.Is(err, kv.ErrNotFound) {
		return r
	}
	if err != nil {
		r.Issues = append(r.Issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "tasks_unreadable",
			Message: err.Error(),
			Key:     TasksKey,
		})
		return r
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		r.Issues = append(r.Issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "tasks_invalid_json",
			Message: err.Error() + " (collection loads as empty)",
			Key:     TasksKey,
		})
		return r
	}

	seen := map[string]bool{}
	for i, rec := range records {
		var t model.Task
		if err := json.Unmarshal(rec, &t); err != nil {
			r.Dropped++
			r.Issues = append(r.Issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "task_invalid",
				Message: fmt.Sprintf("record %d: %v", i, err),
				Key:     TasksKey,
			})
			continue
		}
		id := strings.TrimSpace(t.ID)
		switch {
		case id == "":
			r.Dropped++
			r.Issues = append(r.Issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "task_missing_id",
				Message: fmt.Sprintf("record %d has no id and is ignored", i),
				Key:     TasksKey,
			})
		case strings.TrimSpace(t.Text) == "":
			r.Dropped++
			r.Issues = append(r.Issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "task_empty_text",
				Message: fmt.Sprintf("record %d has empty text and is ignored", i),
				Key:     TasksKey,
				TaskID:  id,
			})
		case seen[id]:
			r.Dropped++
			r.Issues = append(r.Issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "task_duplicate_id",
				Message: fmt.Sprintf("record %d repeats id %s and is ignored", i, id),
				Key:     TasksKey,
				TaskID:  id,
			})
		default:
			seen[id] = true
			r.Tasks++
		}
	}
	return r
}
