package search

import (
	"strings"
	"testing"

	"lexibook/api/internal/textdoc"
)

func testLibrary() []textdoc.Document {
	return []textdoc.Document{
		{
			ID:    "doc_1",
			Title: "The Old Man and the Sea",
			Blocks: []textdoc.Block{
				{
					ID:          "blk_1",
					Text:        "He was an old man who fished alone.",
					Translation: "他是一个独自打鱼的老人。",
				},
				{
					ID:   "blk_2",
					Text: "The boy loved him.",
					GrammarNotes: []textdoc.GrammarNote{
						{
							ID:         "note_1",
							SourceText: "loved him",
							Explanation: textdoc.GrammarAnalysis{
								Translation: "简单过去时，表示过去的情感",
							},
						},
					},
				},
			},
		},
		{
			ID:    "doc_2",
			Title: "Night Watch",
			Blocks: []textdoc.Block{
				{ID: "blk_3", Text: "An old clock ticked in the hall."},
			},
		},
	}
}

func newTestScanner() *Scanner {
	return NewScanner(testLibrary)
}

func TestScannerMatchesAcrossTypes(t *testing.T) {
	results, total, err := newTestScanner().Search(Query{Text: "old"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total=%d, want 3 (title, blk_1, blk_3)", total)
	}
	types := map[ResultType]int{}
	for _, r := range results {
		types[r.Type]++
	}
	if types[ResultDocument] != 1 || types[ResultBlock] != 2 {
		t.Errorf("result types %v", types)
	}
}

func TestScannerMatchesTranslationText(t *testing.T) {
	results, _, err := newTestScanner().Search(Query{Text: "老人"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].BlockID != "blk_1" {
		t.Fatalf("results %+v, want blk_1 via its translation", results)
	}
}

func TestScannerMatchesGrammarNotes(t *testing.T) {
	results, _, err := newTestScanner().Search(Query{Text: "loved", FilterType: ResultNote})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results %+v, want one note", results)
	}
	r := results[0]
	if r.ID != "note_1" || r.DocumentID != "doc_1" || r.BlockID != "blk_2" {
		t.Errorf("note hit %+v", r)
	}
}

func TestScannerDocumentFilter(t *testing.T) {
	results, total, err := newTestScanner().Search(Query{Text: "old", FilterDocumentID: "doc_2"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || results[0].BlockID != "blk_3" {
		t.Fatalf("results %+v, want only doc_2's block", results)
	}
}

func TestScannerCaseInsensitive(t *testing.T) {
	_, total, err := newTestScanner().Search(Query{Text: "OLD MAN"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total=%d, want 2 (title and blk_1)", total)
	}
}

func TestScannerPagination(t *testing.T) {
	s := newTestScanner()
	page1, total, err := s.Search(Query{Text: "old", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(page1) != 2 {
		t.Fatalf("page1 len=%d total=%d", len(page1), total)
	}
	page2, _, err := s.Search(Query{Text: "old", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 1 {
		t.Fatalf("page2 len=%d, want 1", len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages overlap")
	}
}

func TestScannerNegativePaginationClamped(t *testing.T) {
	s := newTestScanner()
	results, total, err := s.Search(Query{Text: "old", Offset: -1})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(results) != 3 {
		t.Fatalf("len=%d total=%d, want negative offset treated as 0", len(results), total)
	}
	results, _, err = s.Search(Query{Text: "old", Limit: -5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("len=%d, want negative limit to fall back to the default", len(results))
	}
	results, _, err = s.Search(Query{Text: "old", Limit: -5, Offset: -5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("len=%d with both negative", len(results))
	}
}

func TestScannerBlankQuery(t *testing.T) {
	results, total, err := newTestScanner().Search(Query{Text: "   "})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(results) != 0 {
		t.Errorf("blank query returned %d results", len(results))
	}
}

func TestSnippetKeepsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("长", 100) + " target " + strings.Repeat("文", 100)
	out := snippet(text, "target")
	if !strings.Contains(out, "target") {
		t.Fatalf("snippet lost the match: %q", out)
	}
	for _, r := range out {
		if r == '�' {
			t.Fatalf("snippet split a rune: %q", out)
		}
	}
}
