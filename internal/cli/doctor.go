package cli

import (
	"todo-cli/internal/kv"
	"todo-cli/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored tasks and settings without changing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := kv.ParseBackend(app.Storage)
			if err != nil {
				return writeErr(cmd, err)
			}
			var quota int64
			if app.cfg != nil {
				quota = app.cfg.StorageQuota
			}
			db, err := kv.Open(commandContext(cmd), kv.Options{Backend: backend, Dir: app.Dir, QuotaBytes: quota})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			report := store.Doctor(commandContext(cmd), db)

			meta := map[string]any{
				"dir":       app.Dir,
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
			}
			hints := []string{"todo list"}
			if report.Dropped > 0 {
				hints = append(hints, "unreadable records are skipped on load and removed by the next change")
			}

			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
