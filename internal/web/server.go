package web

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"todo-cli/internal/model"
	"todo-cli/internal/store"

	"github.com/rs/zerolog"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const datastarScriptURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

type ServerConfig struct {
	Addr   string
	Store  *store.Store
	Logger zerolog.Logger

	// PollInterval is how often storage is checked for writes made by other
	// processes (the CLI, another TUI). Zero means one second; negative disables.
	PollInterval time.Duration
	// KeepAlive is the SSE keep-alive period. Zero means 25 seconds.
	KeepAlive time.Duration
}

type Server struct {
	cfg   ServerConfig
	tmpl  *template.Template
	store *store.Store
	log   zerolog.Logger
	hub   *resourceHub

	version atomic.Int64

	fpMu sync.Mutex
	fp   string

	unsubscribe func()
	stop        context.CancelFunc
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 25 * time.Second
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":        strings.TrimSpace,
		"datastarURL": func() string { return datastarScriptURL },
		"row": func(vm pageVM, t model.Task) rowVM {
			return rowVM{Task: t, Editing: vm.EditID != "" && vm.EditID == t.ID}
		},
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	srv := &Server{
		cfg:   cfg,
		tmpl:  tmpl,
		store: cfg.Store,
		log:   cfg.Logger,
		hub:   newResourceHub(),
		stop:  stop,
	}
	srv.setFingerprint(srv.fingerprint(ctx))
	srv.unsubscribe = cfg.Store.Subscribe(func(store.Snapshot) {
		srv.setFingerprint(srv.fingerprint(ctx))
		srv.version.Add(1)
		srv.hub.broadcast()
	})
	if cfg.PollInterval > 0 {
		go srv.watchLoop(ctx)
	}
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close stops the storage watcher and detaches from the store.
func (s *Server) Close() error {
	s.stop()
	s.unsubscribe()
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /help/{topic}", s.handleHelp)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /tasks", s.handleTaskCreate)
	mux.HandleFunc("POST /tasks/{id}/toggle", s.handleTaskToggle)
	mux.HandleFunc("POST /tasks/{id}/edit", s.handleTaskEdit)
	mux.HandleFunc("GET /tasks/{id}/delete", s.handleTaskDeleteConfirm)
	mux.HandleFunc("POST /tasks/{id}/delete", s.handleTaskDelete)
	mux.HandleFunc("GET /tasks/clear-completed", s.handleClearCompletedConfirm)
	mux.HandleFunc("POST /tasks/clear-completed", s.handleClearCompleted)
	mux.HandleFunc("POST /theme/toggle", s.handleThemeToggle)
	return s.logRequests(s.rejectCrossSite(mux))
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	ref := strings.TrimSpace(r.Header.Get("Referer"))
	if ref != "" {
		http.Redirect(w, r, ref, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// fingerprint hashes the persisted blobs so writes from other processes can
// be noticed. Our own writes update it through the store subscription.
func (s *Server) fingerprint(ctx context.Context) string {
	backend := s.store.Backend()
	h := sha256.New()
	for _, k := range []string{store.TasksKey, store.ThemeKey} {
		b, err := backend.Get(ctx, k)
		if err != nil {
			b = nil
		}
		_, _ = io.WriteString(h, k)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(b)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Server) currentFingerprint() string {
	s.fpMu.Lock()
	defer s.fpMu.Unlock()
	return s.fp
}

func (s *Server) setFingerprint(fp string) {
	s.fpMu.Lock()
	s.fp = fp
	s.fpMu.Unlock()
}

func (s *Server) watchLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fp := s.fingerprint(ctx)
			if fp == s.currentFingerprint() {
				continue
			}
			s.log.Debug().Str("fingerprint", fp[:12]).Msg("storage changed outside this server; reloading")
			s.setFingerprint(fp)
			s.store.Load(ctx)
		}
	}
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// serveDatastarElementsStream re-renders selector on every store change
// until the client goes away.
func (s *Server) serveDatastarElementsStream(w http.ResponseWriter, r *http.Request, selector string, mode datastar.ElementPatchMode, render func() (string, error)) {
	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(map[string]any{"version": s.version.Load()})

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(s.cfg.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			html, err := render()
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			if strings.TrimSpace(html) == "" {
				continue
			}
			_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(mode))
			_ = sse.MarshalAndPatchSignals(map[string]any{"version": s.version.Load()})
		}
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.serveDatastarElementsStream(w, r, "#todo-main", datastar.ElementPatchModeOuter, func() (string, error) {
		return s.renderTemplate("main", s.pageVM(""))
	})
}

// rejectCrossSite refuses state-changing requests sent by other sites, so
// a foreign page cannot post the forms and skip the confirm step.
func (s *Server) rejectCrossSite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !sameOrigin(r) {
				s.log.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("origin", r.Header.Get("Origin")).
					Msg("rejected cross-site request")
				http.Error(w, "cross-site request rejected", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sameOrigin accepts requests without browser origin headers (curl,
// scripts) and browser requests whose Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	if strings.EqualFold(strings.TrimSpace(r.Header.Get("Sec-Fetch-Site")), "cross-site") {
		return false
	}
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
