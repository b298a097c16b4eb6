package tui

import (
	"strings"

	"todo-cli/internal/view"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	// Cancel first: a stray enter should never destroy anything.
	confirmFocusCancel confirmModalFocus = iota
	confirmFocusConfirm
)

func (f confirmModalFocus) next() confirmModalFocus {
	if f == confirmFocusCancel {
		return confirmFocusConfirm
	}
	return confirmFocusCancel
}

const (
	modalMaxWidth = 56
	modalPadX     = 2
)

func modalWidth(termW int) int {
	w := termW - 4
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func modalBodyWidth(termW int) int {
	return modalWidth(termW) - 2*modalPadX
}

func renderModalBox(termW int, title string, content string) string {
	w := modalWidth(termW)
	bodyW := w - 2*modalPadX

	header := lipgloss.NewStyle().
		Width(bodyW).
		Bold(true).
		Foreground(colorSurfaceFg).
		Render(title)
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), bodyW))

	return lipgloss.NewStyle().
		Width(w).
		Padding(1, modalPadX).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(strings.Join([]string{header, rule, "", content}, "\n"))
}

func renderConfirmModal(width int, p view.Prompt, focus confirmModalFocus) string {
	// No borders on the buttons: nested borders inside a background-colored box
	// leave artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(p.ConfirmLabel)
	cancel := btnBase.Render(p.CancelLabel)
	switch focus {
	case confirmFocusConfirm:
		confirm = btnActive.Foreground(colorAccentFg).Background(colorDanger).Render(p.ConfirmLabel)
	case confirmFocusCancel:
		cancel = btnActive.Render(p.CancelLabel)
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", confirm)

	bodyW := modalBodyWidth(width)
	body := lipgloss.NewStyle().Width(bodyW).Render(p.Body)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y: confirm   n/esc: cancel")

	return renderModalBox(width, p.Title, strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n"))
}
