package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"todo-cli/internal/kv"
	"todo-cli/internal/model"

	"github.com/rs/zerolog"
)

const (
	TasksKey = "todo.tasks.v1"
	ThemeKey = "todo.theme.v1"
)

// Snapshot is what subscribers receive after every change: a copy of the
// collection in stored (creation) order plus the current theme.
type Snapshot struct {
	Tasks []model.Task
	Theme model.Theme
}

// Store owns the task collection and keeps it in sync with a kv.Store.
//
// The in-memory collection is authoritative for the lifetime of the Store:
// persistence failures are logged and otherwise ignored.
type Store struct {
	kv    kv.Store
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	mu          sync.Mutex
	tasks       []model.Task
	theme       model.Theme
	lastCreated int64
	persistErr  error
	wrote       bool

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    backend,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: newTaskID,
		tasks: []model.Task{},
		theme: model.ThemeAuto,
		subs:  map[int]func(Snapshot){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open creates a Store and loads persisted state into it.
func Open(ctx context.Context, backend kv.Store, opts ...Option) *Store {
	s := New(backend, opts...)
	s.Load(ctx)
	return s
}

func (s *Store) Backend() kv.Store { return s.kv }

// Load replaces the in-memory state with what is persisted. Missing or
// malformed data yields an empty collection; it never fails.
func (s *Store) Load(ctx context.Context) {
	tasks := s.readTasks(ctx)
	theme := s.readTheme(ctx)

	s.mu.Lock()
	s.tasks = tasks
	s.theme = theme
	s.lastCreated = 0
	for _, t := range tasks {
		if t.CreatedAt > s.lastCreated {
			s.lastCreated = t.CreatedAt
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.render(snap)
}

func (s *Store) readTasks(ctx context.Context) []model.Task {
	raw, err := s.kv.Get(ctx, TasksKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", TasksKey).Msg("read tasks failed; starting empty")
		}
		return []model.Task{}
	}
	tasks, err := DecodeTasks(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("key", TasksKey).Msg("stored tasks are malformed; starting empty")
		return []model.Task{}
	}
	return tasks
}

func (s *Store) readTheme(ctx context.Context) model.Theme {
	raw, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", ThemeKey).Msg("read theme failed")
		}
		return model.ThemeAuto
	}
	return model.ParseTheme(string(raw))
}

// DecodeTasks parses a stored collection. A value that is not a JSON array
// is an error; unusable records (wrong shape, blank id or text, duplicate
// id) are dropped.
func DecodeTasks(raw []byte) ([]model.Task, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(records))
	seen := map[string]bool{}
	for _, rec := range records {
		var t model.Task
		if err := json.Unmarshal(rec, &t); err != nil {
			continue
		}
		t.ID = strings.TrimSpace(t.ID)
		t.Text = strings.TrimSpace(t.Text)
		if t.ID == "" || t.Text == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// Tasks returns a copy of the collection in stored order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// PersistErr is the error from the most recent write. It is nil after a
// successful write or once TakePersistResult has reported it.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// PersistResult is the write outcome since the last TakePersistResult.
type PersistResult struct {
	Wrote bool
	Err   error
}

func (r PersistResult) Saved() bool { return r.Wrote && r.Err == nil }

// TakePersistResult returns the write outcome and resets it, so a failed
// save is reported once and operations that write nothing report Wrote=false.
func (s *Store) TakePersistResult() PersistResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := PersistResult{Wrote: s.wrote, Err: s.persistErr}
	s.wrote = false
	s.persistErr = nil
	return r
}

// Add appends a task with the trimmed text. Blank text is a no-op.
func (s *Store) Add(ctx context.Context, text string) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}

	s.mu.Lock()
	t := model.Task{
		ID:        s.newID(),
		Text:      text,
		Completed: false,
		CreatedAt: s.nextCreatedAtLocked(),
	}
	s.tasks = append(s.tasks, t)
	s.saveTasksLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().Str("task_id", t.ID).Msg("added task")
	s.render(snap)
	return t, true
}

// Toggle flips the completed flag. Unknown ids are a no-op.
func (s *Store) Toggle(ctx context.Context, id string) (model.Task, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	s.saveTasksLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().Str("task_id", t.ID).Bool("completed", t.Completed).Msg("toggled task")
	s.render(snap)
	return t, true
}

// Update replaces a task's text. Blank text keeps the prior text; the views
// are still re-rendered so an editor showing the blank value is discarded.
// The returned bool reports whether the task exists.
func (s *Store) Update(ctx context.Context, id string, text string) (model.Task, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, false
	}
	text = strings.TrimSpace(text)
	if text != "" {
		s.tasks[i].Text = text
		s.saveTasksLocked(ctx)
	}
	t := s.tasks[i]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.render(snap)
	return t, true
}

// Remove deletes the task with the given id. The collection is persisted
// either way; the result reports whether a record was removed.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := false
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !removed && t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.saveTasksLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if removed {
		s.log.Debug().Str("task_id", id).Msg("removed task")
	}
	s.render(snap)
	return removed
}

// ClearCompleted removes every completed task and returns how many were
// removed. When nothing is completed it does nothing at all.
func (s *Store) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	n := 0
	for _, t := range s.tasks {
		if t.Completed {
			n++
		}
	}
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	kept := make([]model.Task, 0, len(s.tasks)-n)
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.saveTasksLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().Int("removed", n).Msg("cleared completed tasks")
	s.render(snap)
	return n
}

// Subscribe registers fn to be called with a fresh snapshot after every
// change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()
	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) render(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks: append([]model.Task(nil), s.tasks...),
		Theme: s.theme,
	}
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextCreatedAtLocked() int64 {
	ms := s.now().UnixMilli()
	if ms <= s.lastCreated {
		ms = s.lastCreated + 1
	}
	s.lastCreated = ms
	return ms
}

func (s *Store) saveTasksLocked(ctx context.Context) {
	b, err := json.Marshal(s.tasks)
	if err == nil {
		err = s.kv.Set(ctx, TasksKey, b)
	}
	s.persistErr = err
	s.wrote = true
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("key", TasksKey).
			Str("backend", string(s.kv.Backend())).
			Msg("persist tasks failed; keeping in-memory state")
	}
}
