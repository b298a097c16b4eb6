package kv

import (
	"context"
	"errors"
	"testing"
)

func openBackends(t *testing.T) map[Backend]Store {
	t.Helper()
	ctx := context.Background()
	out := map[Backend]Store{}
	for _, b := range []Backend{BackendSQLite, BackendFile, BackendMemory} {
		s, err := Open(ctx, Options{Backend: b, Dir: t.TempDir(), QuotaBytes: 64})
		if err != nil {
			t.Fatalf("open %s: %v", b, err)
		}
		t.Cleanup(func() { _ = s.Close() })
		out[b] = s
	}
	return out
}

func TestBackends_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		if s.Backend() != name {
			t.Fatalf("expected backend %s, got %s", name, s.Backend())
		}
		if _, err := s.Get(ctx, "todo.tasks.v1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound before first write; got %v", name, err)
		}
		if err := s.Set(ctx, "todo.tasks.v1", []byte(`[]`)); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		if err := s.Set(ctx, "todo.tasks.v1", []byte(`[{"id":"a"}]`)); err != nil {
			t.Fatalf("%s: overwrite: %v", name, err)
		}
		got, err := s.Get(ctx, "todo.tasks.v1")
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if string(got) != `[{"id":"a"}]` {
			t.Fatalf("%s: unexpected value %q", name, string(got))
		}
	}
}

func TestBackends_KeysAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		_ = s.Set(ctx, "todo.theme.v1", []byte("light"))
		_ = s.Set(ctx, "todo.tasks.v1", []byte("[]"))
		keys, err := s.Keys(ctx)
		if err != nil {
			t.Fatalf("%s: keys: %v", name, err)
		}
		if len(keys) != 2 || keys[0] != "todo.tasks.v1" || keys[1] != "todo.theme.v1" {
			t.Fatalf("%s: unexpected keys %v", name, keys)
		}
		if err := s.Delete(ctx, "todo.theme.v1"); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if err := s.Delete(ctx, "todo.theme.v1"); err != nil {
			t.Fatalf("%s: delete of missing key should be a no-op: %v", name, err)
		}
		if _, err := s.Get(ctx, "todo.theme.v1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected deleted key to be gone; got %v", name, err)
		}
	}
}

func TestBackends_QuotaRejectsLargeValues(t *testing.T) {
	ctx := context.Background()
	big := make([]byte, 65)
	for name, s := range openBackends(t) {
		_ = s.Set(ctx, "k", []byte("small"))
		if err := s.Set(ctx, "k", big); !errors.Is(err, ErrQuotaExceeded) {
			t.Fatalf("%s: expected ErrQuotaExceeded; got %v", name, err)
		}
		got, _ := s.Get(ctx, "k")
		if string(got) != "small" {
			t.Fatalf("%s: rejected write must not clobber previous value; got %q", name, string(got))
		}
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(ctx, dir, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "todo.theme.v1", []byte("light")); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(ctx, dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Get(ctx, "todo.theme.v1")
	if err != nil || string(got) != "light" {
		t.Fatalf("expected persisted value; got %q err=%v", string(got), err)
	}
}

func TestMemory_FailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	boom := errors.New("disk full")
	m.FailWrites = boom
	if err := m.Set(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure; got %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	if b, err := ParseBackend(""); err != nil || b != BackendSQLite {
		t.Fatalf("empty should default to sqlite; got %q %v", b, err)
	}
	if b, err := ParseBackend(" FILE "); err != nil || b != BackendFile {
		t.Fatalf("expected file; got %q %v", b, err)
	}
	if _, err := ParseBackend("redis"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
