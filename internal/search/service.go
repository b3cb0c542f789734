package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to the
// in-memory scanner.
type Service struct {
	meili   *Meili
	scanner *Scanner
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, scanner *Scanner) *Service {
	return &Service{meili: meili, scanner: scanner}
}

// Search tries Meilisearch if healthy, otherwise falls back to the scanner.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to scan: %v", err)
	}

	results, total, err := s.scanner.Search(q)
	if err != nil {
		log.Printf("search: scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexDocument indexes a document title (fire-and-forget to Meilisearch).
func (s *Service) IndexDocument(doc DocumentRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexDocument(doc); err != nil {
			log.Printf("search: index document %s: %v", doc.ID, err)
		}
	}()
}

// IndexBlock indexes a block (fire-and-forget to Meilisearch).
func (s *Service) IndexBlock(b BlockRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexBlock(b); err != nil {
			log.Printf("search: index block %s: %v", b.ID, err)
		}
	}()
}

// IndexNote indexes a grammar note (fire-and-forget to Meilisearch).
func (s *Service) IndexNote(n NoteRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexNote(n); err != nil {
			log.Printf("search: index note %s: %v", n.ID, err)
		}
	}()
}

// DeleteDocument removes a document from the search index (fire-and-forget).
func (s *Service) DeleteDocument(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteDocument(id); err != nil {
			log.Printf("search: delete document %s: %v", id, err)
		}
	}()
}

// DeleteBlock removes a block from the search index (fire-and-forget).
func (s *Service) DeleteBlock(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteBlock(id); err != nil {
			log.Printf("search: delete block %s: %v", id, err)
		}
	}()
}

// DeleteNote removes a grammar note from the search index (fire-and-forget).
func (s *Service) DeleteNote(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteNote(id); err != nil {
			log.Printf("search: delete note %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes the whole library into Meilisearch. Called during
// Bootstrap after the library snapshot is loaded.
func (s *Service) ReindexAll(documents []DocumentRecord, blocks []BlockRecord, notes []NoteRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if err := s.meili.IndexDocuments(documents); err != nil {
		log.Printf("search: reindex documents: %v", err)
	}
	if err := s.meili.IndexBlocks(blocks); err != nil {
		log.Printf("search: reindex blocks: %v", err)
	}
	if err := s.meili.IndexNotes(notes); err != nil {
		log.Printf("search: reindex notes: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
