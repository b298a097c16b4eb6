package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"todo-cli/internal/kv"
	"todo-cli/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string
	var maxSessions int

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal UI in your browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Run the terminal UI over the web via a server-side PTY and a browser
terminal emulator. Each browser tab starts its own TUI process on the
server, pointed at the same data dir.

There is no authentication; keep the default loopback address.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (default 127.0.0.1:3334)
todo webtui

# Allow more tabs at once
todo webtui --max-sessions 8
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" && app.cfg != nil {
				listenAddr = app.cfg.Web.TUIAddr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}

			backend, err := kv.ParseBackend(app.Storage)
			if err != nil {
				return writeErr(cmd, err)
			}
			if backend == kv.BackendMemory {
				return writeErr(cmd, errors.New("webtui: memory storage is per-process; every tab would start empty (use sqlite or file)"))
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:        actualAddr,
				Dir:         app.Dir,
				Storage:     string(backend),
				MaxSessions: maxSessions,
				Logger:      app.log,
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"dir":       app.Dir,
					"storage":   backend,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"open http://" + actualAddr,
				},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Todo webtui running at http://%s\n", actualAddr)
			return serveUntilDone(commandContext(cmd), ln, srv.Handler(), app.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default from TODO_WEBTUI_ADDR)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 4, "Maximum concurrent terminal sessions")
	return cmd
}
