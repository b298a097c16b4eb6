// Package webtui serves the terminal UI to a browser: each WebSocket gets
// its own `todo` process on a server-side PTY, drawn by xterm.js.
package webtui

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

const defaultMaxSessions = 4

type ServerConfig struct {
	Addr string
	// Dir and Storage are handed to each session's process.
	Dir     string
	Storage string
	// Executable overrides os.Executable() for the session process.
	Executable string
	// MaxSessions caps concurrent terminals. Zero means 4.
	MaxSessions int
	Logger      zerolog.Logger
}

type Server struct {
	cfg      ServerConfig
	tmpl     *template.Template
	log      zerolog.Logger
	sessions atomic.Int32
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("webtui: missing addr")
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, tmpl: tmpl, log: cfg.Logger}, nil
}

func (s *Server) Addr() string {
	return s.cfg.Addr
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/terminal", http.StatusFound)
	})
	mux.HandleFunc("GET /terminal", s.handleTerminal)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "text/javascript; charset=utf-8"))

	return mux
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

type terminalVM struct {
	Dir         string
	Storage     string
	MaxSessions int
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	vm := terminalVM{
		Dir:         strings.TrimSpace(s.cfg.Dir),
		Storage:     strings.TrimSpace(s.cfg.Storage),
		MaxSessions: s.cfg.MaxSessions,
	}
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, "terminal.html", vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// acquireSession reserves a slot; release must be called when it returns true.
func (s *Server) acquireSession() (release func(), ok bool) {
	if n := s.sessions.Add(1); int(n) > s.cfg.MaxSessions {
		s.sessions.Add(-1)
		return nil, false
	}
	return func() { s.sessions.Add(-1) }, true
}
