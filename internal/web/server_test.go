package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todo-cli/internal/kv"
	"todo-cli/internal/model"
	"todo-cli/internal/store"
	"todo-cli/internal/view"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	n := 0
	st := store.Open(context.Background(), kv.NewMemory(0),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
	)
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Store: st, PollInterval: -1})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv, st
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHome_EmptyState(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv.Handler(), http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`id="todo-main"`,
		"0 active",
		"0 completed",
		view.ActiveEmptyMessage,
		view.CompletedEmptyMessage,
		`data-theme="auto"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
	if !strings.Contains(body, `id="clear-completed" disabled`) {
		t.Fatalf("expected clear-completed to be disabled")
	}
}

func TestCreateToggleEdit(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/tasks", url.Values{"text": {"  buy milk  "}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect; got %d", rr.Code)
	}
	do(t, h, http.MethodPost, "/tasks", url.Values{"text": {"   "}})
	if got := st.Tasks(); len(got) != 1 || got[0].Text != "buy milk" {
		t.Fatalf("expected one trimmed task; got %+v", got)
	}

	do(t, h, http.MethodPost, "/tasks/task-1/toggle", url.Values{})
	if tk, _ := st.Get("task-1"); !tk.Completed {
		t.Fatalf("expected task completed")
	}
	body := do(t, h, http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "1 completed") || !strings.Contains(body, view.ActiveEmptyMessage) {
		t.Fatalf("expected task under completed")
	}

	rr = do(t, h, http.MethodPost, "/tasks/task-1/edit", url.Values{"text": {""}})
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect home; got %q", loc)
	}
	if tk, _ := st.Get("task-1"); tk.Text != "buy milk" {
		t.Fatalf("expected blank edit to keep text; got %q", tk.Text)
	}
	do(t, h, http.MethodPost, "/tasks/task-1/edit", url.Values{"text": {"buy oat milk"}})
	if tk, _ := st.Get("task-1"); tk.Text != "buy oat milk" {
		t.Fatalf("expected edit; got %q", tk.Text)
	}
}

func TestHome_EditForm(t *testing.T) {
	srv, st := newTestServer(t)
	st.Add(context.Background(), "draft <b>")

	body := do(t, srv.Handler(), http.MethodGet, "/?edit=task-1", nil).Body.String()
	if !strings.Contains(body, `action="/tasks/task-1/edit"`) {
		t.Fatalf("expected edit form")
	}
	if strings.Contains(body, "<b>") {
		t.Fatalf("expected task text to be escaped")
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()
	st.Add(context.Background(), "keep")
	st.Add(context.Background(), "drop")

	rr := do(t, h, http.MethodGet, "/tasks/task-2/delete", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected confirm page; got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{view.DefaultPrompt.Title, view.DefaultPrompt.Body, view.DefaultPrompt.ConfirmLabel, "drop"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected confirm page to contain %q", want)
		}
	}
	if len(st.Tasks()) != 2 {
		t.Fatalf("expected GET to change nothing")
	}

	do(t, h, http.MethodPost, "/tasks/task-2/delete", url.Values{})
	if got := st.Tasks(); len(got) != 1 || got[0].ID != "task-1" {
		t.Fatalf("expected only task-1 left; got %+v", got)
	}

	if rr := do(t, h, http.MethodGet, "/tasks/nope/delete", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task; got %d", rr.Code)
	}
}

func TestClearCompletedFlow(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()
	ctx := context.Background()

	rr := do(t, h, http.MethodGet, "/tasks/clear-completed", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect when nothing is completed; got %d", rr.Code)
	}

	st.Add(ctx, "a")
	st.Add(ctx, "b")
	st.Toggle(ctx, "task-1")

	body := do(t, h, http.MethodGet, "/tasks/clear-completed", nil).Body.String()
	if !strings.Contains(body, view.ClearCompletedPrompt.Title) || !strings.Contains(body, ">Clear<") {
		t.Fatalf("expected bulk prompt copy")
	}

	do(t, h, http.MethodPost, "/tasks/clear-completed", url.Values{})
	if got := st.Tasks(); len(got) != 1 || got[0].Text != "b" {
		t.Fatalf("expected only active task left; got %+v", got)
	}
}

func TestThemeToggle(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/theme/toggle", url.Values{})
	if st.Theme() != model.ThemeLight {
		t.Fatalf("expected light; got %q", st.Theme())
	}
	if body := do(t, h, http.MethodGet, "/", nil).Body.String(); !strings.Contains(body, `data-theme="light"`) {
		t.Fatalf("expected light theme attribute")
	}
}

func TestHelpAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodGet, "/help", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<h1") {
		t.Fatalf("expected rendered help; got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/help/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown topic; got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/health", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected health ok; got %d", rr.Code)
	}
}

func TestStoreChangesReachSubscribers(t *testing.T) {
	srv, st := newTestServer(t)
	ch, cancel := srv.hub.subscribe()
	defer cancel()

	before := srv.version.Load()
	st.Add(context.Background(), "ping")

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected broadcast after store change")
	}
	if srv.version.Load() != before+1 {
		t.Fatalf("expected version bump")
	}
}

func TestWatchLoopPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory(0)
	st := store.Open(ctx, mem)
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Store: st, PollInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()

	other := store.Open(ctx, mem)
	other.Add(ctx, "from another process")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(st.Tasks()) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected server store to reload external write")
}

func TestCrossSitePostsAreRejected(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()
	ctx := context.Background()

	st.Add(ctx, "a")
	st.Add(ctx, "b")
	st.Toggle(ctx, "task-1")

	post := func(target string, headers map[string]string) int {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(url.Values{"text": {"x"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	foreign := map[string]string{"Origin": "https://evil.example", "Sec-Fetch-Site": "cross-site"}
	for _, target := range []string{"/tasks/clear-completed", "/tasks", "/tasks/task-2/delete", "/theme/toggle"} {
		if code := post(target, foreign); code != http.StatusForbidden {
			t.Fatalf("expected 403 for cross-site POST %s; got %d", target, code)
		}
	}
	if code := post("/tasks/task-2/toggle", map[string]string{"Sec-Fetch-Site": "cross-site"}); code != http.StatusForbidden {
		t.Fatalf("expected 403 when only Sec-Fetch-Site marks the request cross-site; got %d", code)
	}
	if code := post("/tasks/task-2/toggle", map[string]string{"Origin": "http://127.0.0.1:3334"}); code != http.StatusForbidden {
		t.Fatalf("expected 403 for a different port on the same host; got %d", code)
	}
	if got := st.Tasks(); len(got) != 2 || st.Theme() != model.ThemeAuto {
		t.Fatalf("expected no changes from rejected posts; tasks=%+v theme=%s", got, st.Theme())
	}

	// httptest requests carry Host example.com.
	if code := post("/tasks/clear-completed", map[string]string{"Origin": "http://example.com", "Sec-Fetch-Site": "same-origin"}); code != http.StatusSeeOther {
		t.Fatalf("expected same-origin POST to go through; got %d", code)
	}
	if got := st.Tasks(); len(got) != 1 || got[0].Text != "b" {
		t.Fatalf("expected completed task cleared; got %+v", got)
	}
}
