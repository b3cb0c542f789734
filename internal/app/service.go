// Package app holds the application service and HTTP surface. The service
// owns the in-memory library aggregate: every operation copies the affected
// document, applies a pure transition, swaps the whole tree and persists the
// snapshot. Enrichment completions re-enter through the same path.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"lexibook/api/internal/enrich"
	"lexibook/api/internal/export"
	"lexibook/api/internal/history"
	"lexibook/api/internal/search"
	"lexibook/api/internal/store"
	"lexibook/api/internal/textdoc"
	"lexibook/api/internal/util"
)

type LibraryStore interface {
	LoadLibrary(ctx context.Context) ([]textdoc.Document, error)
	SaveLibrary(ctx context.Context, documents []textdoc.Document) error
	Ping(ctx context.Context) error
}

type FileStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

type HistoryService interface {
	Record(documentID, text, message string) (history.CommitInfo, error)
	History(documentID string, limit int) ([]history.CommitInfo, error)
	TextAt(documentID, hash string) (string, error)
	Remove(documentID string) error
}

type SearchService interface {
	Search(q search.Query) search.Response
	IndexDocument(doc search.DocumentRecord)
	IndexBlock(b search.BlockRecord)
	IndexNote(n search.NoteRecord)
	DeleteDocument(id string)
	DeleteBlock(id string)
	DeleteNote(id string)
	ReindexAll(documents []search.DocumentRecord, blocks []search.BlockRecord, notes []search.NoteRecord)
}

type Exporter interface {
	Export(doc textdoc.Document, req export.Request) (*export.Result, error)
}

type Service struct {
	store     LibraryStore
	tokenizer *textdoc.Tokenizer
	collab    enrich.Collaborator
	coord     *enrich.Coordinator
	search    SearchService
	files     FileStore
	history   HistoryService
	export    Exporter
	newID     util.IDGen

	mu      sync.Mutex
	library []textdoc.Document
}

// NewService wires the aggregate. collab, cache, searchSvc, files, history
// and exp may each be nil; the operations needing them fail with a
// descriptive error instead.
func NewService(
	libStore LibraryStore,
	tokenizer *textdoc.Tokenizer,
	collab enrich.Collaborator,
	cache enrich.WordCache,
	searchSvc SearchService,
	files FileStore,
	historySvc HistoryService,
	exp Exporter,
) *Service {
	s := &Service{
		store:     libStore,
		tokenizer: tokenizer,
		collab:    collab,
		search:    searchSvc,
		files:     files,
		history:   historySvc,
		export:    exp,
		newID:     util.NewID,
	}
	if collab != nil {
		s.coord = enrich.NewCoordinator(collab, cache, s)
	}
	return s
}

// Bootstrap loads the persisted library. A corrupt snapshot is logged and
// replaced with an empty library; the service never refuses to start over
// bad data. On first run a sample document is seeded.
func (s *Service) Bootstrap(ctx context.Context) error {
	documents, err := s.store.LoadLibrary(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrCorruptSnapshot) {
			return fmt.Errorf("load library: %w", err)
		}
		log.Printf("app: %v, starting with empty library", err)
		documents = nil
	}

	s.mu.Lock()
	s.library = documents
	s.mu.Unlock()

	if len(documents) == 0 {
		if _, err := s.CreateDocument(ctx, "Welcome to Lexibook", seedText); err != nil {
			log.Printf("app: seed document: %v", err)
		}
	}

	s.reindexAll()
	return nil
}

const seedText = "Reading is the best way to grow a vocabulary.\n\n" +
	"Paste any English text here, then tap a word to see its translation."

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// DocumentSummary is the list-view projection of a document.
type DocumentSummary struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	CreatedAt  time.Time        `json:"createdAt"`
	ViewMode   textdoc.ViewMode `json:"viewMode"`
	BlockCount int              `json:"blockCount"`
}

func (s *Service) ListDocuments(ctx context.Context) []DocumentSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]DocumentSummary, 0, len(s.library))
	for _, doc := range s.library {
		summaries = append(summaries, DocumentSummary{
			ID:         doc.ID,
			Title:      doc.Title,
			CreatedAt:  doc.CreatedAt,
			ViewMode:   doc.ViewMode,
			BlockCount: len(doc.Blocks),
		})
	}
	return summaries
}

func (s *Service) GetDocument(ctx context.Context, documentID string) (textdoc.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.library {
		if doc.ID == documentID {
			return doc.Clone(), nil
		}
	}
	return textdoc.Document{}, errDocumentNotFound(documentID)
}

func (s *Service) CreateDocument(ctx context.Context, title, text string) (textdoc.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "text is required", nil)
	}

	doc := textdoc.Document{
		ID:        s.newID("doc"),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		ViewMode:  textdoc.ViewOriginal,
		Blocks:    s.tokenizer.Tokenize(text),
	}

	s.mu.Lock()
	s.library = append(s.library, doc)
	if err := s.store.SaveLibrary(ctx, s.library); err != nil {
		s.library = s.library[:len(s.library)-1]
		s.mu.Unlock()
		return textdoc.Document{}, fmt.Errorf("save library: %w", err)
	}
	s.mu.Unlock()

	s.recordHistory(doc, "Import document")
	s.indexDocument(doc)
	return doc, nil
}

// ImportDocument stores the uploaded file, extracts its text through the
// collaborator and tokenizes it into a new document. Extraction failures
// surface to this call only.
func (s *Service) ImportDocument(ctx context.Context, filename, contentType string, data []byte) (textdoc.Document, error) {
	if s.collab == nil {
		return textdoc.Document{}, domainError(http.StatusServiceUnavailable, "ENRICH_UNAVAILABLE", "language service not configured", nil)
	}
	if len(data) == 0 {
		return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "file is empty", nil)
	}

	if s.files != nil {
		key := "imports/" + s.newID("file") + "/" + filename
		if err := s.files.Put(ctx, key, contentType, data); err != nil {
			log.Printf("app: store upload %s: %v", filename, err)
		}
	}

	text, err := s.collab.ExtractText(ctx, filename, data)
	if err != nil {
		if errors.Is(err, enrich.ErrExtraction) {
			return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "EXTRACTION_FAILED", err.Error(), nil)
		}
		return textdoc.Document{}, fmt.Errorf("extract text: %w", err)
	}

	title := strings.TrimSuffix(filename, extOf(filename))
	if strings.TrimSpace(title) == "" {
		title = "Imported document"
	}
	return s.CreateDocument(ctx, title, text)
}

func extOf(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return filename[idx:]
	}
	return ""
}

func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	var removed *textdoc.Document
	kept := make([]textdoc.Document, 0, len(s.library))
	for _, doc := range s.library {
		if doc.ID == documentID {
			d := doc
			removed = &d
			continue
		}
		kept = append(kept, doc)
	}
	if removed == nil {
		s.mu.Unlock()
		return errDocumentNotFound(documentID)
	}
	if err := s.store.SaveLibrary(ctx, kept); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save library: %w", err)
	}
	s.library = kept
	s.mu.Unlock()

	if s.search != nil {
		s.search.DeleteDocument(documentID)
		for _, block := range removed.Blocks {
			s.search.DeleteBlock(block.ID)
			for _, note := range block.GrammarNotes {
				s.search.DeleteNote(note.ID)
			}
		}
	}
	if s.history != nil {
		if err := s.history.Remove(documentID); err != nil {
			log.Printf("app: remove history %s: %v", documentID, err)
		}
	}
	return nil
}

func (s *Service) SetViewMode(ctx context.Context, documentID string, mode textdoc.ViewMode) (textdoc.Document, error) {
	if mode != textdoc.ViewOriginal && mode != textdoc.ViewBilingual {
		return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "viewMode must be original or bilingual", nil)
	}
	return s.mutate(ctx, documentID, "", func(doc textdoc.Document) (textdoc.Document, bool) {
		return textdoc.SetViewMode(doc, mode), true
	})
}

func (s *Service) AddBlock(ctx context.Context, documentID, text string) (textdoc.Document, error) {
	normalized := textdoc.NormalizeBlockText(text)
	if normalized == "" {
		return textdoc.Document{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "text is required", nil)
	}
	doc, err := s.mutate(ctx, documentID, "Add block", func(doc textdoc.Document) (textdoc.Document, bool) {
		return textdoc.AddBlock(doc, s.tokenizer.TokenizeBlock(normalized)), true
	})
	if err == nil {
		s.indexDocument(doc)
	}
	return doc, err
}

// EditBlock replaces a block's text. Editing to normalized-equal text is a
// no-op that returns the document unchanged; a real edit re-tokenizes the
// block and drops its enrichment.
func (s *Service) EditBlock(ctx context.Context, documentID, blockID, text string) (textdoc.Document, error) {
	s.mu.Lock()
	idx := s.findDocument(documentID)
	if idx < 0 {
		s.mu.Unlock()
		return textdoc.Document{}, errDocumentNotFound(documentID)
	}
	current := s.library[idx]
	if _, ok := current.FindBlock(blockID); !ok {
		s.mu.Unlock()
		return textdoc.Document{}, errBlockNotFound(blockID)
	}

	next, changed := textdoc.EditBlockText(current, blockID, text, s.tokenizer)
	if !changed {
		out := current.Clone()
		s.mu.Unlock()
		return out, nil
	}
	s.library[idx] = next
	if err := s.store.SaveLibrary(ctx, s.library); err != nil {
		s.library[idx] = current
		s.mu.Unlock()
		return textdoc.Document{}, fmt.Errorf("save library: %w", err)
	}
	out := next.Clone()
	s.mu.Unlock()

	s.recordHistory(out, "Edit block")
	s.indexDocument(out)
	return out, nil
}

func (s *Service) DeleteBlock(ctx context.Context, documentID, blockID string) (textdoc.Document, error) {
	doc, err := s.mutate(ctx, documentID, "Delete block", func(doc textdoc.Document) (textdoc.Document, bool) {
		return textdoc.DeleteBlock(doc, blockID)
	})
	if err != nil {
		var domainErr *DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "TARGET_GONE" {
			return textdoc.Document{}, errBlockNotFound(blockID)
		}
		return textdoc.Document{}, err
	}
	if s.search != nil {
		s.search.DeleteBlock(blockID)
	}
	return doc, nil
}

// TranslateDocument translates every block sequentially and returns the
// number of blocks that failed. Results are applied through the mutator as
// they arrive, so a partially failed run still keeps the successes.
func (s *Service) TranslateDocument(ctx context.Context, documentID string) (int, error) {
	if s.coord == nil {
		return 0, domainError(http.StatusServiceUnavailable, "ENRICH_UNAVAILABLE", "language service not configured", nil)
	}
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	return s.coord.TranslateDocument(ctx, doc), nil
}

// ActivationResult reports what a token or badge activation decided to do.
type ActivationResult struct {
	Action string `json:"action"`
	State  string `json:"state"`
}

// ActivateToken runs the word-tap transition: fetch a translation for an
// untranslated word, clear an annotated one, ignore everything else. The
// fetch runs in the background; its completion re-enters via the mutator.
func (s *Service) ActivateToken(ctx context.Context, documentID, blockID, tokenID string) (ActivationResult, error) {
	doc, block, token, err := s.findToken(documentID, blockID, tokenID)
	if err != nil {
		return ActivationResult{}, err
	}

	inFlight := s.coord != nil && s.coord.InFlight(tokenID)
	action := textdoc.OnTokenActivate(token, inFlight)
	switch action {
	case textdoc.TokenActionFetchTranslation:
		if s.coord == nil {
			return ActivationResult{}, domainError(http.StatusServiceUnavailable, "ENRICH_UNAVAILABLE", "language service not configured", nil)
		}
		sentence := sentenceOf(block, token)
		go func() {
			if err := s.coord.TranslateToken(context.Background(), doc.ID, block.ID, token, sentence); err != nil {
				log.Printf("app: translate token %s: %v", token.ID, err)
			}
		}()
		return ActivationResult{Action: "fetch-translation", State: string(textdoc.StateOf(token))}, nil
	case textdoc.TokenActionClear:
		updated, err := s.mutate(ctx, documentID, "", func(d textdoc.Document) (textdoc.Document, bool) {
			return textdoc.ClearTokenAnnotation(d, blockID, tokenID)
		})
		if err != nil {
			return ActivationResult{}, err
		}
		return ActivationResult{Action: "clear", State: stateIn(updated, blockID, tokenID)}, nil
	default:
		return ActivationResult{Action: "none", State: string(textdoc.StateOf(token))}, nil
	}
}

// ActivateBadge runs the badge-tap transition: fetch the definition once,
// then toggle panel visibility. The cached definition survives hiding.
func (s *Service) ActivateBadge(ctx context.Context, documentID, blockID, tokenID string) (ActivationResult, error) {
	doc, block, token, err := s.findToken(documentID, blockID, tokenID)
	if err != nil {
		return ActivationResult{}, err
	}

	inFlight := s.coord != nil && s.coord.InFlight(tokenID)
	action := textdoc.OnBadgeActivate(token, inFlight)
	switch action {
	case textdoc.BadgeActionFetchDefinition:
		if s.coord == nil {
			return ActivationResult{}, domainError(http.StatusServiceUnavailable, "ENRICH_UNAVAILABLE", "language service not configured", nil)
		}
		sentence := sentenceOf(block, token)
		go func() {
			if err := s.coord.DefineToken(context.Background(), doc.ID, block.ID, token, sentence); err != nil {
				log.Printf("app: define token %s: %v", token.ID, err)
			}
		}()
		return ActivationResult{Action: "fetch-definition", State: string(textdoc.StateOf(token))}, nil
	case textdoc.BadgeActionShow, textdoc.BadgeActionHide:
		visible := action == textdoc.BadgeActionShow
		updated, err := s.mutate(ctx, documentID, "", func(d textdoc.Document) (textdoc.Document, bool) {
			return textdoc.SetDefinitionVisible(d, blockID, tokenID, visible)
		})
		if err != nil {
			return ActivationResult{}, err
		}
		name := "hide-definition"
		if visible {
			name = "show-definition"
		}
		return ActivationResult{Action: name, State: stateIn(updated, blockID, tokenID)}, nil
	default:
		return ActivationResult{Action: "none", State: string(textdoc.StateOf(token))}, nil
	}
}

// AddGrammarNote analyzes the selected text and pins the result to the
// block. The selection must occur literally in the block's text.
func (s *Service) AddGrammarNote(ctx context.Context, documentID, blockID, sourceText string) (textdoc.GrammarNote, error) {
	if s.coord == nil {
		return textdoc.GrammarNote{}, domainError(http.StatusServiceUnavailable, "ENRICH_UNAVAILABLE", "language service not configured", nil)
	}
	sourceText = strings.TrimSpace(sourceText)
	if sourceText == "" {
		return textdoc.GrammarNote{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "sourceText is required", nil)
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return textdoc.GrammarNote{}, err
	}
	block, ok := doc.FindBlock(blockID)
	if !ok {
		return textdoc.GrammarNote{}, errBlockNotFound(blockID)
	}
	if !strings.Contains(block.Text, sourceText) {
		return textdoc.GrammarNote{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "selection does not occur in block text", nil)
	}

	analysis, err := s.coord.AnalyzeSelection(ctx, sourceText)
	if err != nil {
		return textdoc.GrammarNote{}, fmt.Errorf("analyze selection: %w", err)
	}

	note := textdoc.GrammarNote{
		ID:          s.newID("note"),
		SourceText:  sourceText,
		Explanation: analysis,
	}
	if _, err := s.mutate(ctx, documentID, "", func(d textdoc.Document) (textdoc.Document, bool) {
		return textdoc.AddGrammarNote(d, blockID, note)
	}); err != nil {
		return textdoc.GrammarNote{}, err
	}

	if s.search != nil {
		s.search.IndexNote(search.NoteRecord{
			ID:          note.ID,
			DocumentID:  documentID,
			BlockID:     blockID,
			SourceText:  note.SourceText,
			Explanation: analysis.Translation,
		})
	}
	return note, nil
}

func (s *Service) RemoveGrammarNote(ctx context.Context, documentID, blockID, noteID string) error {
	if _, err := s.mutate(ctx, documentID, "", func(d textdoc.Document) (textdoc.Document, bool) {
		return textdoc.RemoveGrammarNote(d, blockID, noteID)
	}); err != nil {
		var domainErr *DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "TARGET_GONE" {
			return domainError(http.StatusNotFound, "NOT_FOUND", "Grammar note not found", nil)
		}
		return err
	}
	if s.search != nil {
		s.search.DeleteNote(noteID)
	}
	return nil
}

func (s *Service) History(ctx context.Context, documentID string, limit int) ([]history.CommitInfo, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []history.CommitInfo{}, nil
	}
	return s.history.History(documentID, limit)
}

func (s *Service) HistoryText(ctx context.Context, documentID, hash string) (string, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return "", err
	}
	if s.history == nil {
		return "", domainError(http.StatusNotFound, "NOT_FOUND", "History not configured", nil)
	}
	text, err := s.history.TextAt(documentID, hash)
	if err != nil {
		return "", domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	return text, nil
}

func (s *Service) Export(ctx context.Context, documentID string, req export.Request) (*export.Result, error) {
	if s.export == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "export not configured", nil)
	}
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	result, err := s.export.Export(doc, req)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be html or pdf", nil)
		}
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "pdf renderer unavailable", nil)
		}
		return nil, fmt.Errorf("export: %w", err)
	}
	return result, nil
}

func (s *Service) Search(ctx context.Context, q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// LibrarySnapshot returns a deep copy of every document, for the search
// fallback scanner.
func (s *Service) LibrarySnapshot() []textdoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]textdoc.Document, 0, len(s.library))
	for _, doc := range s.library {
		out = append(out, doc.Clone())
	}
	return out
}

// --- enrichment write-back (enrich.Mutator) ---

// ApplyBlockTranslation binds a finished paragraph translation to its block.
// Returns false when the document or block no longer exists; the result is
// discarded in that case.
func (s *Service) ApplyBlockTranslation(ctx context.Context, docID, blockID string, tr enrich.ParagraphTranslation) bool {
	doc, err := s.mutate(ctx, docID, "", func(d textdoc.Document) (textdoc.Document, bool) {
		return textdoc.SetBlockTranslation(d, blockID, tr.Paragraph, tr.Sentences)
	})
	if err != nil {
		return false
	}
	if s.search != nil {
		if block, ok := doc.FindBlock(blockID); ok {
			s.search.IndexBlock(search.BlockRecord{
				ID: block.ID, DocumentID: docID, Text: block.Text, Translation: block.Translation,
			})
		}
	}
	return true
}

func (s *Service) ApplyTokenTranslation(ctx context.Context, docID, blockID, tokenID, translation string) bool {
	_, err := s.mutate(ctx, docID, "", func(d textdoc.Document) (textdoc.Document, bool) {
		return textdoc.SetTokenTranslation(d, blockID, tokenID, translation)
	})
	return err == nil
}

func (s *Service) ApplyTokenDefinition(ctx context.Context, docID, blockID, tokenID string, def textdoc.Definition) bool {
	_, err := s.mutate(ctx, docID, "", func(d textdoc.Document) (textdoc.Document, bool) {
		return textdoc.SetTokenDefinition(d, blockID, tokenID, def)
	})
	return err == nil
}

// --- internals ---

// mutate runs one transition under the lock, swaps the tree and saves. A
// false transition result maps to TARGET_GONE. historyMsg, when non-empty,
// records the document text after the change.
func (s *Service) mutate(ctx context.Context, documentID, historyMsg string, transition func(textdoc.Document) (textdoc.Document, bool)) (textdoc.Document, error) {
	s.mu.Lock()
	idx := s.findDocument(documentID)
	if idx < 0 {
		s.mu.Unlock()
		return textdoc.Document{}, errDocumentNotFound(documentID)
	}

	next, ok := transition(s.library[idx])
	if !ok {
		s.mu.Unlock()
		return textdoc.Document{}, domainError(http.StatusNotFound, "TARGET_GONE", "target no longer exists", nil)
	}
	prev := s.library[idx]
	s.library[idx] = next
	if err := s.store.SaveLibrary(ctx, s.library); err != nil {
		s.library[idx] = prev
		s.mu.Unlock()
		return textdoc.Document{}, fmt.Errorf("save library: %w", err)
	}
	out := next.Clone()
	s.mu.Unlock()

	if historyMsg != "" {
		s.recordHistory(out, historyMsg)
	}
	return out, nil
}

// findDocument returns the index of a document, or -1. Caller holds the lock.
func (s *Service) findDocument(documentID string) int {
	for i := range s.library {
		if s.library[i].ID == documentID {
			return i
		}
	}
	return -1
}

func (s *Service) findToken(documentID, blockID, tokenID string) (textdoc.Document, textdoc.Block, textdoc.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findDocument(documentID)
	if idx < 0 {
		return textdoc.Document{}, textdoc.Block{}, textdoc.Token{}, errDocumentNotFound(documentID)
	}
	doc := s.library[idx].Clone()
	block, ok := doc.FindBlock(blockID)
	if !ok {
		return textdoc.Document{}, textdoc.Block{}, textdoc.Token{}, errBlockNotFound(blockID)
	}
	token, ok := block.FindToken(tokenID)
	if !ok {
		return textdoc.Document{}, textdoc.Block{}, textdoc.Token{}, domainError(http.StatusNotFound, "NOT_FOUND", "Token not found", nil)
	}
	return doc, block, token, nil
}

func (s *Service) recordHistory(doc textdoc.Document, message string) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(doc.ID, doc.PlainText(), message); err != nil {
		log.Printf("app: record history %s: %v", doc.ID, err)
	}
}

func (s *Service) indexDocument(doc textdoc.Document) {
	if s.search == nil {
		return
	}
	s.search.IndexDocument(search.DocumentRecord{ID: doc.ID, Title: doc.Title})
	for _, block := range doc.Blocks {
		s.search.IndexBlock(search.BlockRecord{
			ID: block.ID, DocumentID: doc.ID, Text: block.Text, Translation: block.Translation,
		})
	}
}

func (s *Service) reindexAll() {
	if s.search == nil {
		return
	}
	s.mu.Lock()
	var docs []search.DocumentRecord
	var blocks []search.BlockRecord
	var notes []search.NoteRecord
	for _, doc := range s.library {
		docs = append(docs, search.DocumentRecord{ID: doc.ID, Title: doc.Title})
		for _, block := range doc.Blocks {
			blocks = append(blocks, search.BlockRecord{
				ID: block.ID, DocumentID: doc.ID, Text: block.Text, Translation: block.Translation,
			})
			for _, note := range block.GrammarNotes {
				notes = append(notes, search.NoteRecord{
					ID: note.ID, DocumentID: doc.ID, BlockID: block.ID,
					SourceText: note.SourceText, Explanation: note.Explanation.Translation,
				})
			}
		}
	}
	s.mu.Unlock()
	s.search.ReindexAll(docs, blocks, notes)
}

func sentenceOf(block textdoc.Block, token textdoc.Token) string {
	sentences := block.Sentences()
	if token.SentenceIndex >= 0 && token.SentenceIndex < len(sentences) {
		return strings.TrimSpace(sentences[token.SentenceIndex])
	}
	return block.Text
}

func stateIn(doc textdoc.Document, blockID, tokenID string) string {
	if block, ok := doc.FindBlock(blockID); ok {
		if token, ok := block.FindToken(tokenID); ok {
			return string(textdoc.StateOf(token))
		}
	}
	return ""
}

func errDocumentNotFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Document not found", map[string]any{"documentId": id})
}

func errBlockNotFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Block not found", map[string]any{"blockId": id})
}
