package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"todo-cli/internal/config"
	"todo-cli/internal/format"
	"todo-cli/internal/kv"
	"todo-cli/internal/logging"
	"todo-cli/internal/store"
	"todo-cli/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Storage    string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "Todo (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo add "water the plants"
  todo list --active
  todo toggle 3f2a

  # Same list in a browser
  todo web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TODO_DIR", ""), "Path to data dir (default: <config dir>/data)")
	cmd.PersistentFlags().StringVar(&app.Storage, "storage", "", "Storage backend (sqlite|file|memory; default from TODO_STORAGE or sqlite)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn; default from TODO_FORMAT or json)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (trace|debug|info|warn|error)")

	cmd.SetHelpTemplate(cmd.HelpTemplate() + "\nConfiguration:\n" + config.Description() + "\n")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newClearCompletedCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newWebTUICmd(app))

	return cmd
}

// init resolves config (file, then env, then flags) and sets up logging.
func (app *App) init(cmd *cobra.Command) error {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("config: %w", err))
	}
	app.cfg = cfg

	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = cfg.Dir
	}
	if strings.TrimSpace(app.Storage) == "" {
		app.Storage = cfg.Storage
	}
	if strings.TrimSpace(app.Format) == "" {
		app.Format = cfg.Format
	}
	if strings.TrimSpace(app.LogLevel) == "" {
		app.LogLevel = cfg.LogLevel
	}
	if !format.Valid(app.Format) {
		return writeErr(cmd, fmt.Errorf("unknown format: %q (want json|edn)", app.Format))
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:    app.LogLevel,
		File:     cfg.LogFile,
		Fallback: cmd.ErrOrStderr(),
		Console:  true,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = logger.With().Str("cmd", cmd.Name()).Logger()
	app.closeLog = closeLog
	return nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	// The terminal belongs to the UI; only log when a file was configured.
	if app.cfg == nil || strings.TrimSpace(app.cfg.LogFile) == "" {
		app.log = zerolog.Nop()
	}

	st, done, err := openStore(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer done()

	opts := tui.Options{}
	if app.cfg != nil {
		opts.ThemeOverride = app.cfg.TUI.Theme
		opts.Glyphs = app.cfg.TUI.Glyphs
	}
	return tui.Run(commandContext(cmd), st, opts)
}

// openStore opens the configured backend and loads the task collection.
// The returned func closes the backend.
func openStore(cmd *cobra.Command, app *App) (*store.Store, func(), error) {
	backend, err := kv.ParseBackend(app.Storage)
	if err != nil {
		return nil, func() {}, err
	}
	if backend != kv.BackendMemory && strings.TrimSpace(app.Dir) == "" {
		return nil, func() {}, errors.New("no data dir (set --dir or TODO_DIR)")
	}

	var quota int64
	if app.cfg != nil {
		quota = app.cfg.StorageQuota
	}

	ctx := commandContext(cmd)
	db, err := kv.Open(ctx, kv.Options{Backend: backend, Dir: app.Dir, QuotaBytes: quota})
	if err != nil {
		return nil, func() {}, err
	}
	app.log.Debug().Str("backend", string(backend)).Str("dir", app.Dir).Msg("opened storage")

	st := store.Open(ctx, db, store.WithLogger(app.log))
	return st, func() {
		if err := db.Close(); err != nil {
			app.log.Warn().Err(err).Msg("close storage")
		}
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
