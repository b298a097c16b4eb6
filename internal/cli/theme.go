package cli

import (
	"fmt"
	"strings"

	"todo-cli/internal/model"

	"github.com/spf13/cobra"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the theme preference (auto|light)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTheme(cmd, app)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTheme(cmd, app)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and auto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			theme := st.ToggleTheme(commandContext(cmd))
			res := st.TakePersistResult()
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"theme": theme},
				"meta":   persistMeta(res, nil),
				"_hints": persistHints(res),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <auto|light>",
		Short: "Set the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := model.Theme(strings.ToLower(strings.TrimSpace(args[0])))
			if !theme.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown theme: %q (want auto|light)", args[0]))
			}
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			st.SetTheme(commandContext(cmd), theme)
			res := st.TakePersistResult()
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"theme": theme},
				"meta":   persistMeta(res, nil),
				"_hints": persistHints(res),
			})
		},
	})

	return cmd
}

func showTheme(cmd *cobra.Command, app *App) error {
	st, done, err := openStore(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer done()
	return writeOut(cmd, app, map[string]any{
		"data":   map[string]any{"theme": st.Theme()},
		"_hints": []string{"todo theme toggle"},
	})
}
