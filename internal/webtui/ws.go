package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

const (
	defaultCols = 120
	defaultRows = 40
)

// controlMsg is a JSON text frame from the browser. Keystrokes arrive as
// plain text or binary frames instead.
type controlMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests whose origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	release, ok := s.acquireSession()
	if !ok {
		http.Error(w, "too many terminal sessions", http.StatusServiceUnavailable)
		return
	}
	defer release()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ptmx, cmd, cleanup, err := s.startPTYSession()
	if err != nil {
		s.log.Error().Err(err).Msg("start terminal session")
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
		return
	}
	defer cleanup()

	log := s.log.With().Int("pid", cmd.Process.Pid).Logger()
	log.Info().Str("remote", r.RemoteAddr).Msg("terminal session started")

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpPTYToWS(ctx, ptmx, conn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpWSToPTY(ctx, conn, ptmx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			log.Debug().Err(err).Msg("terminal stream ended")
		}
	}
	cancel()

	// Unblocks the PTY reader.
	_ = cmd.Process.Kill()
	_ = conn.Close()

	wg.Wait()
	log.Info().Msg("terminal session ended")
}

// sessionCommand builds the child process: the TUI (no subcommand) pointed
// at the same data as this server.
func (s *Server) sessionCommand() (*exec.Cmd, error) {
	exe := strings.TrimSpace(s.cfg.Executable)
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return nil, err
		}
	}

	args := []string{}
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		args = append(args, "--dir", dir)
	}
	if storage := strings.TrimSpace(s.cfg.Storage); storage != "" {
		args = append(args, "--storage", storage)
	}

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	return cmd, nil
}

func (s *Server) startPTYSession() (*os.File, *exec.Cmd, func(), error) {
	cmd, err := s.sessionCommand()
	if err != nil {
		return nil, nil, nil, err
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: defaultCols, Rows: defaultRows})
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}
	return ptmx, cmd, cleanup, nil
}

func pumpPTYToWS(ctx context.Context, ptmx *os.File, conn *websocket.Conn) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func pumpWSToPTY(ctx context.Context, conn *websocket.Conn, ptmx *os.File) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if ws, ok := parseResize(mt, data); ok {
			_ = pty.Setsize(ptmx, ws)
			continue
		}
		if mt == websocket.TextMessage && len(data) > 0 && data[0] == '{' {
			// Unknown control message.
			continue
		}
		if len(data) == 0 {
			continue
		}
		if _, err := ptmx.Write(data); err != nil {
			return err
		}
	}
}

// parseResize recognises {"type":"resize","cols":N,"rows":M} text frames.
func parseResize(mt int, data []byte) (*pty.Winsize, bool) {
	if mt != websocket.TextMessage || len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var m controlMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	if !strings.EqualFold(strings.TrimSpace(m.Type), "resize") || m.Cols <= 0 || m.Rows <= 0 {
		return nil, false
	}
	if m.Cols > 1000 || m.Rows > 1000 {
		return nil, false
	}
	return &pty.Winsize{Cols: uint16(m.Cols), Rows: uint16(m.Rows)}, true
}
