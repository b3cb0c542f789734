// Package search indexes the library for full-text lookup. Meilisearch is
// the primary backend; when it is down or unconfigured, an in-memory scan
// over the loaded library answers queries instead.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument ResultType = "document"
	ResultBlock    ResultType = "block"
	ResultNote     ResultType = "note"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type       ResultType `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	DocumentID string     `json:"documentId"`
	BlockID    string     `json:"blockId,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text             string
	FilterType       ResultType // empty = all types
	FilterDocumentID string
	Limit            int
	Offset           int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexDocument(doc DocumentRecord) error
	IndexBlock(b BlockRecord) error
	IndexNote(n NoteRecord) error
	DeleteDocument(id string) error
	DeleteBlock(id string) error
	DeleteNote(id string) error
}

// DocumentRecord is the data we index for a document.
type DocumentRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BlockRecord is the data we index for a paragraph block.
type BlockRecord struct {
	ID          string `json:"id"`
	DocumentID  string `json:"documentId"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// NoteRecord is the data we index for a grammar note.
type NoteRecord struct {
	ID          string `json:"id"`
	DocumentID  string `json:"documentId"`
	BlockID     string `json:"blockId"`
	SourceText  string `json:"sourceText"`
	Explanation string `json:"explanation"`
}
