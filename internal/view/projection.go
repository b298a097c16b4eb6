// Package view derives what the front-ends draw from a task collection.
// Every change produces a whole new Projection; there is no diffing.
package view

import (
	"fmt"
	"sort"

	"todo-cli/internal/model"
)

const (
	ActiveEmptyMessage    = "No active tasks. Add one above."
	CompletedEmptyMessage = "No completed tasks yet."
)

type Projection struct {
	Active    []model.Task `json:"active"`
	Completed []model.Task `json:"completed"`

	ActiveCount    int    `json:"activeCount"`
	CompletedCount int    `json:"completedCount"`
	ActiveLabel    string `json:"activeLabel"`
	CompletedLabel string `json:"completedLabel"`

	ActiveEmpty    bool `json:"activeEmpty"`
	CompletedEmpty bool `json:"completedEmpty"`

	CanClearCompleted bool `json:"canClearCompleted"`
}

// Project partitions tasks into active and completed lists, each ordered by
// creation time (oldest first). Tasks created in the same millisecond keep
// their stored order.
func Project(tasks []model.Task) Projection {
	p := Projection{
		Active:    []model.Task{},
		Completed: []model.Task{},
	}
	for _, t := range tasks {
		if t.Completed {
			p.Completed = append(p.Completed, t)
		} else {
			p.Active = append(p.Active, t)
		}
	}
	byCreated(p.Active)
	byCreated(p.Completed)

	p.ActiveCount = len(p.Active)
	p.CompletedCount = len(p.Completed)
	p.ActiveLabel = fmt.Sprintf("%d active", p.ActiveCount)
	p.CompletedLabel = fmt.Sprintf("%d completed", p.CompletedCount)
	p.ActiveEmpty = p.ActiveCount == 0
	p.CompletedEmpty = p.CompletedCount == 0
	p.CanClearCompleted = p.CompletedCount > 0
	return p
}

func byCreated(xs []model.Task) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].CreatedAt < xs[j].CreatedAt })
}

// Section selects one of the two lists.
type Section int

const (
	SectionActive Section = iota
	SectionCompleted
)

func (s Section) String() string {
	if s == SectionCompleted {
		return "completed"
	}
	return "active"
}

func (s Section) Other() Section {
	if s == SectionCompleted {
		return SectionActive
	}
	return SectionCompleted
}

func (p Projection) List(s Section) []model.Task {
	if s == SectionCompleted {
		return p.Completed
	}
	return p.Active
}

func (p Projection) Label(s Section) string {
	if s == SectionCompleted {
		return p.CompletedLabel
	}
	return p.ActiveLabel
}

func (p Projection) EmptyMessage(s Section) string {
	if s == SectionCompleted {
		return CompletedEmptyMessage
	}
	return ActiveEmptyMessage
}
