package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo-cli/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runCLIWithInput(t, nil, args)
}

func runCLIWithInput(t *testing.T, in io.Reader, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	if in != nil {
		cmd.SetIn(in)
	}
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps config lookups out of ~/.todo and returns a fresh data dir.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("TODO_CONFIG_DIR", t.TempDir())
	return t.TempDir()
}

func mustRunEnv(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("todo %v failed: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key; got %v", env)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object; got %#v", env["data"])
	}
	return m
}

func metaMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["meta"].(map[string]any)
	if !ok {
		t.Fatalf("expected meta object; got %#v", env["meta"])
	}
	return m
}

func TestCLI_AddListToggle(t *testing.T) {
	dir := isolate(t)

	a := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "  water", "the", "plants  "))
	aID, _ := a["id"].(string)
	if aID == "" || a["text"] != "water the plants" || a["completed"] != false {
		t.Fatalf("unexpected added task: %#v", a)
	}
	b := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "buy milk"))
	bID, _ := b["id"].(string)
	if b["createdAt"].(float64) <= a["createdAt"].(float64) {
		t.Fatalf("expected increasing createdAt; got %v then %v", a["createdAt"], b["createdAt"])
	}

	env := mustRunEnv(t, "--dir", dir, "toggle", bID)
	if dataMap(t, env)["completed"] != true || metaMap(t, env)["saved"] != true {
		t.Fatalf("unexpected toggle result: %#v", env)
	}

	p := dataMap(t, mustRunEnv(t, "--dir", dir, "list"))
	if p["activeLabel"] != "1 active" || p["completedLabel"] != "1 completed" || p["canClearCompleted"] != true {
		t.Fatalf("unexpected projection: %#v", p)
	}
	active := p["active"].([]any)
	if len(active) != 1 || active[0].(map[string]any)["id"] != aID {
		t.Fatalf("expected only %s active; got %#v", aID, active)
	}

	env = mustRunEnv(t, "--dir", dir, "list", "--completed")
	done := env["data"].([]any)
	if len(done) != 1 || done[0].(map[string]any)["id"] != bID {
		t.Fatalf("expected %s completed; got %#v", bID, done)
	}

	// Toggle back: the task returns to the active list.
	mustRunEnv(t, "--dir", dir, "toggle", bID)
	env = mustRunEnv(t, "--dir", dir, "list", "--completed")
	if xs := env["data"].([]any); len(xs) != 0 {
		t.Fatalf("expected no completed tasks; got %#v", xs)
	}
	if metaMap(t, env)["empty"] != "No completed tasks yet." {
		t.Fatalf("expected completed empty message; got %#v", env["meta"])
	}
}

func TestCLI_AddBlankIsNoop(t *testing.T) {
	dir := isolate(t)

	env := mustRunEnv(t, "--dir", dir, "add", "   ")
	if env["data"] != nil || metaMap(t, env)["added"] != false {
		t.Fatalf("expected blank add to be a no-op; got %#v", env)
	}
	env = mustRunEnv(t, "--dir", dir, "list", "--active")
	if xs := env["data"].([]any); len(xs) != 0 {
		t.Fatalf("expected no tasks; got %#v", xs)
	}
	if metaMap(t, env)["empty"] != "No active tasks. Add one above." {
		t.Fatalf("expected active empty message; got %#v", env["meta"])
	}
}

func TestCLI_EditAndShowByPrefix(t *testing.T) {
	dir := isolate(t)

	a := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "draft"))
	id := a["id"].(string)

	env := mustRunEnv(t, "--dir", dir, "edit", id[:8], "final", "text")
	if dataMap(t, env)["text"] != "final text" || metaMap(t, env)["changed"] != true {
		t.Fatalf("unexpected edit result: %#v", env)
	}

	env = mustRunEnv(t, "--dir", dir, "edit", id, "   ")
	if dataMap(t, env)["text"] != "final text" || metaMap(t, env)["changed"] != false {
		t.Fatalf("expected blank edit to keep text; got %#v", env)
	}
	if metaMap(t, env)["saved"] != false {
		t.Fatalf("expected saved=false when nothing was written; got %#v", env["meta"])
	}

	shown := dataMap(t, mustRunEnv(t, "--dir", dir, "show", id[:6]))
	if shown["id"] != id || shown["text"] != "final text" {
		t.Fatalf("unexpected show: %#v", shown)
	}
}

func TestCLI_UnknownID(t *testing.T) {
	dir := isolate(t)
	mustRunEnv(t, "--dir", dir, "add", "only")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "toggle", "zzzz"})
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected notFoundError; got %v", err)
	}
	if !strings.Contains(string(stderr), "task not found: zzzz") {
		t.Fatalf("expected not-found message on stderr; got %q", stderr)
	}
}

func TestCLI_RemoveAsksFirst(t *testing.T) {
	dir := isolate(t)
	id := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "doomed"))["id"].(string)

	stdout, stderr, err := runCLIWithInput(t, strings.NewReader("n\n"), []string{"--dir", dir, "rm", id})
	if err != nil {
		t.Fatalf("rm (cancel): %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stderr), "Are you sure?") || !strings.Contains(string(stderr), "This action cannot be undone.") {
		t.Fatalf("expected delete prompt on stderr; got %q", stderr)
	}
	var env map[string]any
	_ = json.Unmarshal(stdout, &env)
	if metaMap(t, env)["cancelled"] != true {
		t.Fatalf("expected cancelled; got %#v", env)
	}
	if xs := mustRunEnv(t, "--dir", dir, "list", "--active")["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected task to survive a cancelled rm; got %#v", xs)
	}

	stdout, stderr, err = runCLIWithInput(t, strings.NewReader("delete\n"), []string{"--dir", dir, "rm", id})
	if err != nil {
		t.Fatalf("rm (confirm): %v\n%s", err, stderr)
	}
	env = nil
	_ = json.Unmarshal(stdout, &env)
	if metaMap(t, env)["removed"] != true {
		t.Fatalf("expected removed; got %#v", env)
	}
	if xs := mustRunEnv(t, "--dir", dir, "list", "--active")["data"].([]any); len(xs) != 0 {
		t.Fatalf("expected task to be gone; got %#v", xs)
	}
}

func TestCLI_ClearCompleted(t *testing.T) {
	dir := isolate(t)

	env := mustRunEnv(t, "--dir", dir, "clear-completed")
	if dataMap(t, env)["removed"] != float64(0) {
		t.Fatalf("expected nothing to clear; got %#v", env)
	}

	keep := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "keep"))["id"].(string)
	for _, text := range []string{"done one", "done two"} {
		id := dataMap(t, mustRunEnv(t, "--dir", dir, "add", text))["id"].(string)
		mustRunEnv(t, "--dir", dir, "toggle", id)
	}

	_, stderr, err := runCLIWithInput(t, strings.NewReader("\n"), []string{"--dir", dir, "clear-completed"})
	if err != nil {
		t.Fatalf("clear-completed (cancel): %v", err)
	}
	if !strings.Contains(string(stderr), "Clear all completed tasks?") {
		t.Fatalf("expected clear prompt; got %q", stderr)
	}

	env = mustRunEnv(t, "--dir", dir, "clear-completed", "--yes")
	if dataMap(t, env)["removed"] != float64(2) {
		t.Fatalf("expected 2 removed; got %#v", env)
	}
	p := dataMap(t, mustRunEnv(t, "--dir", dir, "list"))
	active := p["active"].([]any)
	if len(active) != 1 || active[0].(map[string]any)["id"] != keep || p["completedEmpty"] != true {
		t.Fatalf("unexpected projection after clear: %#v", p)
	}
}

func TestCLI_Theme(t *testing.T) {
	dir := isolate(t)

	if got := dataMap(t, mustRunEnv(t, "--dir", dir, "theme"))["theme"]; got != "auto" {
		t.Fatalf("expected default auto; got %v", got)
	}
	if got := dataMap(t, mustRunEnv(t, "--dir", dir, "theme", "toggle"))["theme"]; got != "light" {
		t.Fatalf("expected light after toggle; got %v", got)
	}
	if got := dataMap(t, mustRunEnv(t, "--dir", dir, "theme", "show"))["theme"]; got != "light" {
		t.Fatalf("expected light to persist; got %v", got)
	}
	if got := dataMap(t, mustRunEnv(t, "--dir", dir, "theme", "set", "AUTO"))["theme"]; got != "auto" {
		t.Fatalf("expected auto; got %v", got)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "theme", "set", "dark"}); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestCLI_FileStorageAndEDN(t *testing.T) {
	dir := isolate(t)

	mustRunEnv(t, "--dir", dir, "--storage", "file", "add", "edn task")

	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--storage", "file", "--format", "edn", "list", "--active"})
	if err != nil {
		t.Fatalf("list edn: %v\n%s", err, stderr)
	}
	out := string(stdout)
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, ":data") || !strings.Contains(out, `"edn task"`) || !strings.Contains(out, ":created-at") {
		t.Fatalf("unexpected edn output:\n%s", out)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "--format", "xml", "list"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "--storage", "cloud", "list"}); err == nil {
		t.Fatalf("expected error for unknown storage")
	}
}

func TestCLI_Doctor(t *testing.T) {
	dir := isolate(t)
	mustRunEnv(t, "--dir", dir, "add", "healthy")

	env := mustRunEnv(t, "--dir", dir, "doctor", "--fail")
	report := dataMap(t, env)
	if report["tasks"] != float64(1) || report["backend"] != "sqlite" {
		t.Fatalf("unexpected report: %#v", report)
	}
	if metaMap(t, env)["hasErrors"] != false {
		t.Fatalf("expected a clean report; got %#v", env["meta"])
	}
}

func TestCLI_DoctorFailsOnCorruptTasks(t *testing.T) {
	dir := isolate(t)
	mustRunEnv(t, "--dir", dir, "--storage", "file", "add", "soon corrupt")

	path := filepath.Join(dir, "kv", "todo.tasks.v1.blob")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt tasks: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--storage", "file", "doctor", "--fail"})
	if !errors.Is(err, store.ErrDoctorIssuesFound) {
		t.Fatalf("expected ErrDoctorIssuesFound; got %v", err)
	}
	if !strings.Contains(string(stdout), "tasks_invalid_json") {
		t.Fatalf("expected tasks_invalid_json issue; got:\n%s", stdout)
	}

	// Loading treats unreadable storage as an empty list.
	if xs := mustRunEnv(t, "--dir", dir, "--storage", "file", "list", "--active")["data"].([]any); len(xs) != 0 {
		t.Fatalf("expected empty list from corrupt storage; got %#v", xs)
	}
}

func TestCLI_Docs(t *testing.T) {
	isolate(t)

	env := mustRunEnv(t, "docs")
	topics, _ := dataMap(t, env)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics; got %#v", env)
	}

	stdout, _, err := runCLI(t, []string{"docs", "keys", "--raw"})
	if err != nil {
		t.Fatalf("docs --raw: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(stdout)), "#") {
		t.Fatalf("expected raw markdown; got %q", stdout)
	}

	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}

func TestCLI_Export(t *testing.T) {
	dir := isolate(t)
	mustRunEnv(t, "--dir", dir, "add", "first")
	id := dataMap(t, mustRunEnv(t, "--dir", dir, "add", "second"))["id"].(string)
	mustRunEnv(t, "--dir", dir, "toggle", id)

	stdout, _, err := runCLI(t, []string{"--dir", dir, "export"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	md := string(stdout)
	if !strings.Contains(md, "- [ ] first") || strings.Contains(md, "second") {
		t.Fatalf("unexpected stdout export:\n%s", md)
	}

	out := filepath.Join(t.TempDir(), "todo.md")
	env := mustRunEnv(t, "--dir", dir, "export", "--to", out, "--completed")
	if dataMap(t, env)["completed"] != float64(1) {
		t.Fatalf("unexpected export result: %#v", env)
	}
	b, err := os.ReadFile(out)
	if err != nil || !strings.Contains(string(b), "- [x] second") {
		t.Fatalf("expected completed task in file; err=%v\n%s", err, b)
	}
}
