package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"todo-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the todo list as a web page (live updates over SSE)",
		Long: strings.TrimSpace(`
Serve the same task list in a browser.

The page works as plain HTML forms; with JavaScript enabled it also
follows changes made elsewhere (the CLI, a TUI) as they land in storage.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (default 127.0.0.1:3335)
todo web

# Pick a port and do not open a browser
todo web --addr :8080 --open=false
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" && app.cfg != nil {
				listenAddr = app.cfg.Web.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			st, done, err := openStore(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			srv, err := web.NewServer(web.ServerConfig{
				Addr:   actualAddr,
				Store:  st,
				Logger: app.log,
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}
			defer srv.Close()

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"dir":       app.Dir,
					"storage":   app.Storage,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Todo web running at %s\n", url)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			return serveUntilDone(commandContext(cmd), ln, srv.Handler(), app.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default from TODO_WEB_ADDR)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the page in your default browser")
	return cmd
}
