package publish

import (
	"bytes"
	"strings"
	"time"

	"todo-cli/internal/model"
	"todo-cli/internal/view"
)

type RenderOptions struct {
	Title string
	// IncludeCompleted adds the completed section. Active tasks are always listed.
	IncludeCompleted bool
	// Timestamps appends each task's creation date.
	Timestamps bool
}

// RenderMarkdown renders a projection as a GitHub task list: one section per
// list, oldest first, mirroring what the UIs show.
func RenderMarkdown(p view.Projection, opt RenderOptions) string {
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Todo"
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + title)
	writeLn("")

	writeSection := func(heading string, tasks []model.Task, empty string) {
		writeLn("## " + heading)
		writeLn("")
		if len(tasks) == 0 {
			writeLn("_" + empty + "_")
			writeLn("")
			return
		}
		for _, t := range tasks {
			writeLn(taskLine(t, opt.Timestamps))
		}
		writeLn("")
	}

	writeSection("Active ("+p.ActiveLabel+")", p.Active, view.ActiveEmptyMessage)
	if opt.IncludeCompleted {
		writeSection("Completed ("+p.CompletedLabel+")", p.Completed, view.CompletedEmptyMessage)
	}

	return strings.TrimRight(buf.String(), "\n") + "\n"
}

func taskLine(t model.Task, timestamps bool) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := "- " + box + " " + escapeInline(t.Text)
	if timestamps {
		line += " <sub>" + t.Created().Format(time.DateOnly) + "</sub>"
	}
	return line
}

// escapeInline keeps task text from being read as markdown structure.
func escapeInline(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	r := strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
		"[", `\[`,
		"]", `\]`,
		"<", `\<`,
		"#", `\#`,
	)
	return r.Replace(s)
}
