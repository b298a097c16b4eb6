package tui

import (
	"todo-cli/internal/docs"
	"todo-cli/internal/view"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceEnd) {
			return m, tea.Quit
		}
		switch {
		case m.confirm.IsOpen():
			return m.updateConfirm(msg)
		case m.editing:
			return m.updateEdit(msg)
		case m.inputFocused:
			return m.updateInput(msg)
		case m.showHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	// Cursor blink and friends go to whichever input is live.
	var cmd tea.Cmd
	switch {
	case m.editing:
		m.editInput, cmd = m.editInput.Update(msg)
	case m.inputFocused:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.minibufferText = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		m.inputFocused = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Up):
		m.lists[m.section].CursorUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.lists[m.section].CursorDown()
		return m, nil

	case key.Matches(msg, m.keys.Pane):
		m.section = m.section.Other()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		if updated, ok := m.store.Toggle(m.ctx, t.ID); ok {
			if updated.Completed {
				m.minibufferText = "Completed: " + truncateMessage(updated.Text)
			} else {
				m.minibufferText = "Reopened: " + truncateMessage(updated.Text)
			}
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editID = t.ID
		m.editInput.SetValue(t.Text)
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		m.openConfirm(view.DeleteAction(t.ID))
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if !m.proj.CanClearCompleted {
			m.minibufferText = "No completed tasks."
			return m, nil
		}
		m.openConfirm(view.ClearCompletedAction())
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		theme := m.store.ToggleTheme(m.ctx)
		m.minibufferText = "Theme: " + string(theme)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.store.Load(m.ctx)
		m.refresh()
		m.minibufferText = "Reloaded."
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}
	return m, nil
}

func (m *appModel) openConfirm(a view.Action) {
	m.confirm.Open(a)
	m.confirmFocus = confirmFocusCancel
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Pane):
		m.confirmFocus = m.confirmFocus.next()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.resolveConfirm(m.confirmFocus == confirmFocusConfirm)
	case key.Matches(msg, m.keys.Yes):
		return m.resolveConfirm(true)
	case key.Matches(msg, m.keys.No, m.keys.Cancel):
		return m.resolveConfirm(false)
	}
	return m, nil
}

func (m appModel) resolveConfirm(confirmed bool) (tea.Model, tea.Cmd) {
	a, ok := m.confirm.Resolve(confirmed)
	m.confirmFocus = confirmFocusCancel
	if !ok {
		return m, nil
	}
	switch a.Kind {
	case view.ActionDelete:
		m.store.Remove(m.ctx, a.TaskID)
		m.minibufferText = "Deleted."
	case view.ActionClearCompleted:
		if n := m.store.ClearCompleted(m.ctx); n > 0 {
			m.minibufferText = "Cleared completed tasks."
		}
	}
	m.refresh()
	return m, nil
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		// Blank input is ignored and left as typed.
		if t, ok := m.store.Add(m.ctx, m.input.Value()); ok {
			m.input.SetValue("")
			m.refresh()
			m.selectTask(t.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.inputFocused = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit, m.keys.Blur):
		id := m.editID
		m.endEdit()
		// A blank edit keeps the previous text.
		m.store.Update(m.ctx, id, m.editInput.Value())
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.endEdit()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m *appModel) endEdit() {
	m.editing = false
	m.editID = ""
	m.editInput.Blur()
}

func helpMarkdown() string {
	body, ok := docs.Get("keys")
	if !ok {
		return ""
	}
	return body
}
