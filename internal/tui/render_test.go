package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane(t *testing.T) {
	out := normalizePane("short\nthis line is far too long", 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines; got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d: expected width 10; got %d (%q)", i, w, ln)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncation marker; got %q", lines[1])
	}
}

func TestGlyphs_ASCII(t *testing.T) {
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	applyGlyphPreference("ascii")
	if glyphCheckbox(true) != "[x]" || glyphCheckbox(false) != "[ ]" {
		t.Fatalf("unexpected ascii checkboxes")
	}
	applyGlyphPreference("bogus")
	if glyphs() != glyphSetASCII {
		t.Fatalf("expected unknown value to be ignored")
	}
	applyGlyphPreference("unicode")
	if glyphCheckbox(true) != "☑" {
		t.Fatalf("unexpected unicode checkbox")
	}
}
