package cli

import (
	"errors"
	"strings"

	"todo-cli/internal/store"
	"todo-cli/internal/view"

	"github.com/spf13/cobra"
)

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			t, ok := st.Add(commandContext(cmd), strings.Join(args, " "))
			res := st.TakePersistResult()
			if !ok {
				return writeOut(cmd, app, map[string]any{
					"data":   nil,
					"meta":   map[string]any{"added": false},
					"_hints": []string{"task text is empty; nothing was added"},
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data":   t,
				"meta":   persistMeta(res, map[string]any{"added": true}),
				"_hints": persistHints(res, "todo toggle "+shortID(t.ID), "todo list"),
			})
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var activeOnly bool
	var completedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active and completed tasks (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if activeOnly && completedOnly {
				return writeErr(cmd, errors.New("--active and --completed are mutually exclusive"))
			}
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			p := view.Project(st.Tasks())
			meta := map[string]any{
				"activeCount":    p.ActiveCount,
				"completedCount": p.CompletedCount,
				"activeLabel":    p.ActiveLabel,
				"completedLabel": p.CompletedLabel,
			}
			hints := []string{"todo add <text>"}
			if p.CanClearCompleted {
				hints = append(hints, "todo clear-completed")
			}

			switch {
			case activeOnly:
				if p.ActiveEmpty {
					meta["empty"] = view.ActiveEmptyMessage
				}
				return writeOut(cmd, app, map[string]any{"data": p.Active, "meta": meta, "_hints": hints})
			case completedOnly:
				if p.CompletedEmpty {
					meta["empty"] = view.CompletedEmptyMessage
				}
				return writeOut(cmd, app, map[string]any{"data": p.Completed, "meta": meta, "_hints": hints})
			}
			return writeOut(cmd, app, map[string]any{"data": p, "_hints": hints})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active tasks")
	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only completed tasks")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			id, err := resolveTaskID(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := st.Get(id)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task completed, or active again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			id, err := resolveTaskID(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, _ := st.Toggle(commandContext(cmd), id)
			res := st.TakePersistResult()
			return writeOut(cmd, app, map[string]any{
				"data":   t,
				"meta":   persistMeta(res, nil),
				"_hints": persistHints(res),
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Replace a task's text (blank text keeps the old text)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			id, err := resolveTaskID(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			text := strings.Join(args[1:], " ")
			changed := strings.TrimSpace(text) != ""
			t, _ := st.Update(commandContext(cmd), id, text)
			res := st.TakePersistResult()

			hints := persistHints(res)
			if !changed {
				hints = append(hints, "text is empty; kept the previous text")
			}
			return writeOut(cmd, app, map[string]any{
				"data":   t,
				"meta":   persistMeta(res, map[string]any{"changed": changed}),
				"_hints": hints,
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task (asks first unless --yes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			id, err := resolveTaskID(st, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			if !yes {
				ok, err := confirmOnStdin(cmd, view.DeleteAction(id))
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{
						"data": nil,
						"meta": map[string]any{"removed": false, "cancelled": true},
					})
				}
			}

			removed := st.Remove(commandContext(cmd), id)
			res := st.TakePersistResult()
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"id": id},
				"meta":   persistMeta(res, map[string]any{"removed": removed}),
				"_hints": persistHints(res),
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newClearCompletedCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task (asks first unless --yes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			if !view.Project(st.Tasks()).CanClearCompleted {
				return writeOut(cmd, app, map[string]any{
					"data":   map[string]any{"removed": 0},
					"_hints": []string{"no completed tasks"},
				})
			}

			if !yes {
				ok, err := confirmOnStdin(cmd, view.ClearCompletedAction())
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{
						"data": map[string]any{"removed": 0},
						"meta": map[string]any{"cancelled": true},
					})
				}
			}

			n := st.ClearCompleted(commandContext(cmd))
			res := st.TakePersistResult()
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"removed": n},
				"meta":   persistMeta(res, nil),
				"_hints": persistHints(res),
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// persistMeta adds "saved" to meta: true only when the command wrote to
// storage and the write succeeded.
func persistMeta(res store.PersistResult, meta map[string]any) map[string]any {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["saved"] = res.Saved()
	return meta
}

func persistHints(res store.PersistResult, hints ...string) []string {
	out := append([]string{}, hints...)
	if err := res.Err; err != nil {
		out = append(out, "not saved: "+err.Error())
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
