package tui

import (
	"fmt"
	"io"
	"strings"

	"todo-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Text }
func (i taskItem) Title() string       { return i.task.Text }

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}

// taskDelegate renders one task per line: cursor, checkbox, text.
type taskDelegate struct {
	// focused is false for the pane that doesn't own the selection.
	focused bool
	// editID's row shows editView (the live edit input) instead of its text.
	editID   string
	editView string
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	it, ok := item.(taskItem)
	if !ok || contentW < 4 {
		return
	}

	selected := d.focused && index == m.Index()
	cursor := " "
	if selected {
		cursor = glyphCursor()
	}

	box := lipgloss.NewStyle().Foreground(colorMuted).Render(glyphCheckbox(it.task.Completed))
	if it.task.Completed {
		box = lipgloss.NewStyle().Foreground(colorDone).Render(glyphCheckbox(true))
	}

	if d.editID != "" && it.task.ID == d.editID {
		line := cursor + " " + box + " " + d.editView
		fmt.Fprint(w, renderInputLine(contentW, line))
		return
	}

	text := it.task.Text
	textStyle := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if it.task.Completed {
		textStyle = faintIfDark(lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true))
	}

	prefix := cursor + " " + box + " "
	avail := contentW - xansi.StringWidth(prefix)
	if avail < 1 {
		avail = 1
	}
	if xansi.StringWidth(text) > avail {
		text = xansi.Truncate(text, avail, glyphEllipsis())
	}
	line := prefix + textStyle.Render(text)
	if lw := xansi.StringWidth(line); lw < contentW {
		line += strings.Repeat(" ", contentW-lw)
	}

	if selected {
		line = lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true).
			Render(line)
	}
	fmt.Fprint(w, line)
}

func newTaskList(focused bool) list.Model {
	l := list.New(nil, taskDelegate{focused: focused}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	return l
}

func selectedTask(l list.Model) (model.Task, bool) {
	it, ok := l.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}
