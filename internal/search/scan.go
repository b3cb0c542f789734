package search

import (
	"strings"
	"unicode/utf8"

	"lexibook/api/internal/textdoc"
)

// Scanner is the fallback backend: a case-insensitive substring scan over
// the in-memory library. The library is small enough (it is loaded whole at
// startup) that a linear pass is acceptable when Meilisearch is down.
type Scanner struct {
	snapshot func() []textdoc.Document
}

// NewScanner creates a scanner over a live view of the library. snapshot is
// called per query and must return a consistent copy.
func NewScanner(snapshot func() []textdoc.Document) *Scanner {
	return &Scanner{snapshot: snapshot}
}

// Healthy always reports true; the scanner has no external dependency.
func (s *Scanner) Healthy() bool {
	return true
}

// Search walks every document and collects substring matches in library
// order: documents first, then blocks, then notes.
func (s *Scanner) Search(q Query) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return nil, 0, nil
	}

	var matches []Result
	for _, doc := range s.snapshot() {
		if q.FilterDocumentID != "" && doc.ID != q.FilterDocumentID {
			continue
		}
		matches = append(matches, scanDocument(doc, needle, q.FilterType)...)
	}

	total := len(matches)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

func scanDocument(doc textdoc.Document, needle string, filter ResultType) []Result {
	var matches []Result

	if want(filter, ResultDocument) && contains(doc.Title, needle) {
		matches = append(matches, Result{
			Type:       ResultDocument,
			ID:         doc.ID,
			Title:      doc.Title,
			DocumentID: doc.ID,
		})
	}

	for _, block := range doc.Blocks {
		if want(filter, ResultBlock) &&
			(contains(block.Text, needle) || contains(block.Translation, needle)) {
			matches = append(matches, Result{
				Type:       ResultBlock,
				ID:         block.ID,
				Title:      block.Translation,
				Snippet:    snippet(block.Text, needle),
				DocumentID: doc.ID,
				BlockID:    block.ID,
			})
		}
		if !want(filter, ResultNote) {
			continue
		}
		for _, note := range block.GrammarNotes {
			if contains(note.SourceText, needle) || contains(note.Explanation.Translation, needle) {
				matches = append(matches, Result{
					Type:       ResultNote,
					ID:         note.ID,
					Title:      note.SourceText,
					Snippet:    note.Explanation.Translation,
					DocumentID: doc.ID,
					BlockID:    block.ID,
				})
			}
		}
	}
	return matches
}

func want(filter, rtyp ResultType) bool {
	return filter == "" || filter == rtyp
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// snippet trims long block text around the first match.
func snippet(text, needle string) string {
	const window = 80
	idx := strings.Index(strings.ToLower(text), needle)
	if idx < 0 {
		return truncate(text, 2*window)
	}
	start := idx - window
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := idx + len(needle) + window
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	out := text[start:end]
	if start > 0 {
		out = "…" + out
	}
	if end < len(text) {
		out += "…"
	}
	return out
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "…"
}
