package docs

import "testing"

func TestTopics_ListsEmbeddedContent(t *testing.T) {
	topics := Topics()
	want := map[string]bool{"keys": true, "quickstart": true, "storage": true}
	for _, tp := range topics {
		delete(want, tp)
	}
	if len(want) != 0 {
		t.Fatalf("missing topics %v in %v", want, topics)
	}
}

func TestGet(t *testing.T) {
	if body, ok := Get("QUICKSTART"); !ok || body == "" {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("expected path-like topic to be rejected")
	}
	if _, ok := Get("nope"); ok {
		t.Fatalf("expected unknown topic to be missing")
	}
	if Title("keys") != "Keys" {
		t.Fatalf("unexpected title: %q", Title("keys"))
	}
}
