package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. WithAutoStyle can trigger terminal
	// background queries that block on some terminals, so we pick the style
	// ourselves and keep the renderer around.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal of the given width using the
// palette that matches the current background.
func RenderMarkdown(md string, width int) string {
	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	return renderMarkdown(md, width, style)
}

func renderMarkdown(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	key := style + ":" + strconv.Itoa(width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(style)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}
	applyMarkdownPalette(&cfg, style)
	return cfg
}

func applyMarkdownPalette(cfg *ansi.StyleConfig, style string) {
	headingColor := mdColor(colorSurfaceFg, style)
	cfg.Heading.Color = headingColor
	cfg.H1.Color = headingColor
	cfg.H2.Color = headingColor
	cfg.H3.Color = headingColor

	linkColor := mdColor(colorAccent, style)
	cfg.Link.Color = linkColor
	cfg.LinkText.Color = linkColor

	cfg.Code.Color = mdColor(colorSurfaceFg, style)
	cfg.Text.Color = mdColor(colorSurfaceFg, style)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
}

func mdColor(c lipgloss.TerminalColor, style string) *string {
	a, ok := c.(lipgloss.AdaptiveColor)
	if !ok {
		return nil
	}
	s := a.Dark
	if style == "light" {
		s = a.Light
	}
	return &s
}
