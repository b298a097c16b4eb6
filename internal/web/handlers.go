package web

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"todo-cli/internal/docs"
	"todo-cli/internal/model"
	"todo-cli/internal/view"
)

type pageVM struct {
	Title string
	Now   string
	Theme model.Theme
	View  view.Projection
	// EditID is the task rendered as an edit form (?edit=<id>).
	EditID string

	ActiveEmptyMessage    string
	CompletedEmptyMessage string
}

type rowVM struct {
	Task    model.Task
	Editing bool
}

type confirmVM struct {
	Title  string
	Theme  model.Theme
	Prompt view.Prompt
	// Subject is the task text for a single delete.
	Subject string
	Action  string
}

type helpVM struct {
	Title  string
	Theme  model.Theme
	Topic  string
	Topics []string
	HTML   template.HTML
}

func (s *Server) pageVM(editID string) pageVM {
	snap := s.store.Snapshot()
	return pageVM{
		Title:                 "Todo",
		Now:                   time.Now().Format(time.RFC3339),
		Theme:                 snap.Theme,
		View:                  view.Project(snap.Tasks),
		EditID:                editID,
		ActiveEmptyMessage:    view.ActiveEmptyMessage,
		CompletedEmptyMessage: view.CompletedEmptyMessage,
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	editID := ""
	if ref := strings.TrimSpace(r.URL.Query().Get("edit")); ref != "" {
		if id, err := s.store.Resolve(ref); err == nil {
			editID = id
		}
	}
	s.writeHTMLTemplate(w, "page.html", s.pageVM(editID))
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Blank text is ignored by the store.
	s.store.Add(r.Context(), r.FormValue("text"))
	redirectBack(w, r, "/")
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	s.store.Toggle(r.Context(), r.PathValue("id"))
	redirectBack(w, r, "/")
}

func (s *Server) handleTaskEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.store.Update(r.Context(), r.PathValue("id"), r.FormValue("text"))
	// Not redirectBack: the referer is the ?edit= page.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTaskDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.writeConfirm(w, view.DeleteAction(t.ID), t.Text, "/tasks/"+t.ID+"/delete")
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	s.store.Remove(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearCompletedConfirm(w http.ResponseWriter, r *http.Request) {
	if !view.Project(s.store.Tasks()).CanClearCompleted {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeConfirm(w, view.ClearCompletedAction(), "", "/tasks/clear-completed")
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	s.store.ClearCompleted(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleTheme(r.Context())
	redirectBack(w, r, "/")
}

// writeConfirm renders the shared prompt for a. Cancelling is a plain link
// home; confirming posts to action.
func (s *Server) writeConfirm(w http.ResponseWriter, a view.Action, subject string, action string) {
	c := view.NewConfirm()
	c.Open(a)
	s.writeHTMLTemplate(w, "confirm.html", confirmVM{
		Title:   c.Prompt().Title,
		Theme:   s.store.Theme(),
		Prompt:  c.Prompt(),
		Subject: subject,
		Action:  action,
	})
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.PathValue("topic"))
	if topic == "" {
		topic = "quickstart"
	}
	body, ok := docs.Get(topic)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.writeHTMLTemplate(w, "help.html", helpVM{
		Title:  docs.Title(topic),
		Theme:  s.store.Theme(),
		Topic:  topic,
		Topics: docs.Topics(),
		HTML:   renderMarkdownHTML(body),
	})
}
