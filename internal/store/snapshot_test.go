package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lexibook/api/internal/textdoc"
)

func TestDecodeSnapshotRejectsCorruptPayload(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"truncated json", `{"version":1,"documents":[{"id":"doc_`},
		{"wrong shape", `[1,2,3]`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		if _, err := decodeSnapshot([]byte(tc.payload)); !errors.Is(err, ErrCorruptSnapshot) {
			t.Errorf("%s: err=%v, want ErrCorruptSnapshot", tc.name, err)
		}
	}
}

func TestDecodeSnapshotRoundTrip(t *testing.T) {
	docs := []textdoc.Document{
		{
			ID:        "doc_1",
			Title:     "Reader",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Blocks: []textdoc.Block{
				{
					ID:   "blk_1",
					Text: "Hello world.",
					Tokens: []textdoc.Token{
						{ID: "tok_1", RawText: "Hello", NormalizedText: "Hello"},
						{ID: "tok_2", RawText: " "},
						{ID: "tok_3", RawText: "world", NormalizedText: "world", Translation: "世界"},
						{ID: "tok_4", RawText: "."},
					},
					Translation: "你好，世界。",
				},
			},
			ViewMode: textdoc.ViewBilingual,
		},
	}

	payload, err := json.Marshal(snapshot{Version: snapshotVersion, Documents: docs})
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "doc_1" {
		t.Fatalf("decoded %+v", got)
	}
	block := got[0].Blocks[0]
	if block.Translation != "你好，世界。" || len(block.Tokens) != 4 {
		t.Errorf("block round-trip lost data: %+v", block)
	}
	if block.Tokens[2].Translation != "世界" {
		t.Errorf("token annotation lost: %+v", block.Tokens[2])
	}
	if got[0].ViewMode != textdoc.ViewBilingual {
		t.Errorf("view mode %q, want bilingual", got[0].ViewMode)
	}
}

func TestDecodeSnapshotEmptyLibrary(t *testing.T) {
	got, err := decodeSnapshot([]byte(`{"version":1,"documents":[]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty library, got %d documents", len(got))
	}
}
