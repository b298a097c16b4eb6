package cli

import (
	"fmt"
	"strings"

	"todo-cli/internal/publish"
	"todo-cli/internal/view"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var to string
	var title string
	var completed bool
	var timestamps bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the list as a Markdown checklist",
		Example: strings.TrimSpace(`
# Print to stdout
todo export

# Write a file, including completed tasks
todo export --to ./todo.md --completed --overwrite
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p := view.Project(st.Tasks())
			ropt := publish.RenderOptions{
				Title:            title,
				IncludeCompleted: completed,
				Timestamps:       timestamps,
			}

			if strings.TrimSpace(to) == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderMarkdown(p, ropt))
				return err
			}

			res, err := publish.WriteFile(p, to, publish.WriteOptions{RenderOptions: ropt, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "Todo", "Document title")
	cmd.Flags().BoolVar(&completed, "completed", false, "Include completed tasks")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Append each task's creation date")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}
