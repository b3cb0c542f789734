package history

import (
	"strings"
	"testing"
)

func TestRecordAndHistory(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.Record("doc_1", "First draft.", "Import document"); err != nil {
		t.Fatalf("record baseline: %v", err)
	}
	if _, err := svc.Record("doc_1", "First draft, revised.", "Edit block"); err != nil {
		t.Fatalf("record revision: %v", err)
	}

	items, err := svc.History("doc_1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("history length %d, want 2", len(items))
	}
	// Newest first.
	if !strings.Contains(items[0].Message, "Edit block") {
		t.Errorf("head message %q", items[0].Message)
	}
	if !strings.Contains(items[1].Message, "Import document") {
		t.Errorf("baseline message %q", items[1].Message)
	}
}

func TestTextAtRecoversOldRevision(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.Record("doc_1", "Original text.", "Import"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record("doc_1", "Replaced text.", "Edit"); err != nil {
		t.Fatal(err)
	}

	items, err := svc.History("doc_1", 0)
	if err != nil {
		t.Fatal(err)
	}
	text, err := svc.TextAt("doc_1", items[1].Hash)
	if err != nil {
		t.Fatalf("text at %s: %v", items[1].Hash, err)
	}
	if text != "Original text." {
		t.Errorf("recovered %q, want original text", text)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc := New(t.TempDir())
	for _, msg := range []string{"one", "two", "three"} {
		if _, err := svc.Record("doc_1", msg, msg); err != nil {
			t.Fatal(err)
		}
	}
	items, err := svc.History("doc_1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("history length %d, want 2", len(items))
	}
}

func TestHistoryNegativeLimitReturnsAll(t *testing.T) {
	svc := New(t.TempDir())
	for _, msg := range []string{"one", "two"} {
		if _, err := svc.Record("doc_1", msg, msg); err != nil {
			t.Fatal(err)
		}
	}
	items, err := svc.History("doc_1", -1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("history length %d, want 2", len(items))
	}
}

func TestHistoryOfUnknownDocumentIsEmpty(t *testing.T) {
	svc := New(t.TempDir())
	items, err := svc.History("doc_missing", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty history, got %d", len(items))
	}
}

func TestRemoveDropsHistory(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Record("doc_1", "text", "Import"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove("doc_1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, err := svc.History("doc_1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("history survived removal: %d items", len(items))
	}
}

func TestDocumentsAreIsolated(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Record("doc_a", "Text A.", "Import"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record("doc_b", "Text B.", "Import"); err != nil {
		t.Fatal(err)
	}
	items, err := svc.History("doc_a", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("doc_a history %d, want 1", len(items))
	}
}
