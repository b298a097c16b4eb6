package tui

import (
	"context"
	"strings"

	"todo-cli/internal/model"
	"todo-cli/internal/store"
	"todo-cli/internal/view"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

const (
	addPlaceholder = "What needs to be done?"

	headerLines = 3
	footerLines = 2
)

type appModel struct {
	ctx   context.Context
	store *store.Store
	keys  keyMap
	help  help.Model

	proj     view.Projection
	theme    model.Theme
	autoDark bool

	width  int
	height int

	section view.Section
	lists   [2]list.Model

	input        textinput.Model
	inputFocused bool

	editing   bool
	editID    string
	editInput textinput.Model

	confirm      view.Confirm
	confirmFocus confirmModalFocus

	showHelp bool

	minibufferText string
}

func newAppModel(ctx context.Context, st *store.Store, opts Options) appModel {
	in := textinput.New()
	in.Placeholder = addPlaceholder
	in.Prompt = ""

	edit := textinput.New()
	edit.Prompt = ""

	m := appModel{
		ctx:       ctx,
		store:     st,
		keys:      defaultKeyMap(),
		help:      help.New(),
		autoDark:  detectDarkBackground(opts.ThemeOverride),
		section:   view.SectionActive,
		lists:     [2]list.Model{newTaskList(true), newTaskList(false)},
		input:     in,
		editInput: edit,
		confirm:   view.NewConfirm(),
		width:     80,
		height:    24,
	}
	m.layout()
	m.refresh()
	return m
}

func (m appModel) Init() tea.Cmd {
	return nil
}

// refresh re-projects the whole collection. Selection follows the task id
// when it is still in the same list, otherwise it stays at the same row.
func (m *appModel) refresh() {
	snap := m.store.Snapshot()
	m.proj = view.Project(snap.Tasks)
	m.theme = snap.Theme
	applyTheme(m.theme, m.autoDark)

	for _, sec := range []view.Section{view.SectionActive, view.SectionCompleted} {
		l := &m.lists[sec]
		prevIdx := l.Index()
		prevID := ""
		if t, ok := selectedTask(*l); ok {
			prevID = t.ID
		}

		tasks := m.proj.List(sec)
		l.SetItems(taskItems(tasks))

		idx := -1
		for i, t := range tasks {
			if t.ID == prevID {
				idx = i
				break
			}
		}
		if idx < 0 {
			idx = prevIdx
		}
		if idx >= len(tasks) {
			idx = len(tasks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		l.Select(idx)
	}

	if res := m.store.TakePersistResult(); res.Err != nil {
		m.minibufferText = "Not saved (kept for this session): " + res.Err.Error()
	}
}

func (m *appModel) layout() {
	paneW, paneH := m.paneSize()
	for i := range m.lists {
		m.lists[i].SetSize(paneW, max(1, paneH-2))
	}
	m.help.Width = m.width
	m.input.Width = max(10, m.width-4)
	m.editInput.Width = max(10, paneW-6)
}

func (m appModel) sideBySide() bool {
	return m.width >= 72
}

func (m appModel) paneSize() (int, int) {
	bodyH := m.height - headerLines - footerLines
	if bodyH < 4 {
		bodyH = 4
	}
	if m.sideBySide() {
		return (m.width - 3) / 2, bodyH
	}
	return m.width, bodyH / 2
}

func (m appModel) currentTask() (model.Task, bool) {
	return selectedTask(m.lists[m.section])
}

func (m *appModel) selectTask(id string) {
	for _, sec := range []view.Section{view.SectionActive, view.SectionCompleted} {
		for i, t := range m.proj.List(sec) {
			if t.ID == id {
				m.section = sec
				m.lists[sec].Select(i)
				return
			}
		}
	}
}

func sectionTitle(s view.Section) string {
	if s == view.SectionCompleted {
		return "Completed"
	}
	return "Active"
}

func truncateMessage(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return ansi.Truncate(s, 60, "...")
}
