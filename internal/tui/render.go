package tui

import (
	"strings"

	"todo-cli/internal/model"
	"todo-cli/internal/view"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	_, paneH := m.paneSize()
	switch {
	case m.showHelp:
		body = normalizePane(RenderMarkdown(helpMarkdown(), m.width-2), m.width, m.height-headerLines-footerLines)
	case m.sideBySide():
		paneW, _ := m.paneSize()
		left := normalizePane(m.renderPane(view.SectionActive, paneW, paneH), paneW, paneH)
		right := normalizePane(m.renderPane(view.SectionCompleted, paneW, paneH), paneW, paneH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right)
	default:
		top := normalizePane(m.renderPane(view.SectionActive, m.width, paneH), m.width, paneH)
		bottom := normalizePane(m.renderPane(view.SectionCompleted, m.width, paneH), m.width, paneH)
		body = top + "\n" + bottom
	}

	screen := strings.Join([]string{header, body, footer}, "\n")
	if m.confirm.IsOpen() {
		modal := renderConfirmModal(m.width, m.confirm.Prompt(), m.confirmFocus)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return screen
}

func (m appModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render("Todo")
	themeLabel := "theme: auto"
	if m.theme == model.ThemeLight {
		themeLabel = "theme: light"
	}
	right := styleMuted().Render(themeLabel)
	gap := m.width - xansi.StringWidth(title) - xansi.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	top := title + strings.Repeat(" ", gap) + right

	inputView := m.input.View()
	if !m.inputFocused && m.input.Value() == "" {
		inputView = styleMuted().Render(addPlaceholder + "  (a)")
	}
	return top + "\n" + renderInputLine(m.width, inputView) + "\n"
}

func (m appModel) renderFooter() string {
	msg := ""
	if m.minibufferText != "" {
		msg = styleMuted().Render(m.minibufferText)
	}
	return normalizePane(msg, m.width, 1) + "\n" + m.help.View(m.keys)
}

func (m appModel) renderPane(sec view.Section, w, h int) string {
	heading := styleHeading(sec == m.section).Render(sectionTitle(sec)) +
		"  " + styleMuted().Render(m.proj.Label(sec))
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), max(0, w)))

	if len(m.proj.List(sec)) == 0 {
		return strings.Join([]string{heading, rule, styleMuted().Render(m.proj.EmptyMessage(sec))}, "\n")
	}

	l := m.lists[sec]
	d := taskDelegate{focused: sec == m.section && !m.inputFocused}
	if m.editing {
		d.editID = m.editID
		d.editView = m.editInput.View()
	}
	l.SetDelegate(d)
	return strings.Join([]string{heading, rule, l.View()}, "\n")
}

// renderInputLine draws a text input as exactly one bodyW-wide line.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// A newline in the view (or ANSI overflow) would wrap and look like a
	// second input row.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so it can't bleed into the next line.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines so panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			if width <= 1 {
				ln = xansi.Cut(ln, 0, width)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}
