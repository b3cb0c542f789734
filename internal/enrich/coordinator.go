package enrich

import (
	"context"
	"log"
	"strings"
	"sync"

	"lexibook/api/internal/textdoc"
)

// WordCache stores word-level enrichment keyed on word+sentence so repeat
// lookups skip the collaborator. Optional; a nil cache disables it.
type WordCache interface {
	GetTranslation(ctx context.Context, word, sentence string) (string, bool)
	PutTranslation(ctx context.Context, word, sentence, translation string)
	GetDefinition(ctx context.Context, word, sentence string) (textdoc.Definition, bool)
	PutDefinition(ctx context.Context, word, sentence string, def textdoc.Definition)
}

// Mutator is the single write-back point for enrichment results. Each Apply
// binds a result to exact Block/Token ids and reports false when the target
// no longer exists, in which case the result is discarded.
type Mutator interface {
	ApplyBlockTranslation(ctx context.Context, docID, blockID string, tr ParagraphTranslation) bool
	ApplyTokenTranslation(ctx context.Context, docID, blockID, tokenID, translation string) bool
	ApplyTokenDefinition(ctx context.Context, docID, blockID, tokenID string, def textdoc.Definition) bool
}

type Coordinator struct {
	collab Collaborator
	cache  WordCache
	mut    Mutator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCoordinator(collab Collaborator, cache WordCache, mut Mutator) *Coordinator {
	return &Coordinator{
		collab:   collab,
		cache:    cache,
		mut:      mut,
		inFlight: make(map[string]struct{}),
	}
}

// InFlight reports whether a request for the given token is outstanding.
func (c *Coordinator) InFlight(tokenID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[tokenID]
	return ok
}

func (c *Coordinator) begin(tokenID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[tokenID]; ok {
		return false
	}
	c.inFlight[tokenID] = struct{}{}
	return true
}

func (c *Coordinator) end(tokenID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, tokenID)
}

// TranslateDocument translates a document's blocks one at a time, so at
// most one request is outstanding against the collaborator.
// Blank blocks are skipped. A failing block is logged and left unmodified;
// the remaining blocks are still attempted. Returns the number of failed
// blocks.
func (c *Coordinator) TranslateDocument(ctx context.Context, doc textdoc.Document) int {
	failed := 0
	for _, block := range doc.Blocks {
		if strings.TrimSpace(block.Text) == "" {
			continue
		}
		result, err := c.collab.TranslateParagraph(ctx, block.Text, block.Sentences())
		if err != nil {
			log.Printf("enrich: translate block %s: %v", block.ID, err)
			failed++
			continue
		}
		if !c.mut.ApplyBlockTranslation(ctx, doc.ID, block.ID, result) {
			log.Printf("enrich: block %s gone, translation discarded", block.ID)
		}
	}
	return failed
}

// TranslateToken fetches a short contextual translation for one word token.
// A second call while the first is in flight is a no-op. The result is
// applied only if the token still exists.
func (c *Coordinator) TranslateToken(ctx context.Context, docID, blockID string, token textdoc.Token, sentence string) error {
	if !token.IsWord() {
		return nil
	}
	if !c.begin(token.ID) {
		return nil
	}
	defer c.end(token.ID)

	if c.cache != nil {
		if translation, ok := c.cache.GetTranslation(ctx, token.NormalizedText, sentence); ok {
			c.mut.ApplyTokenTranslation(ctx, docID, blockID, token.ID, translation)
			return nil
		}
	}

	translation, err := c.collab.TranslateWord(ctx, token.NormalizedText, sentence)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.PutTranslation(ctx, token.NormalizedText, sentence, translation)
	}
	if !c.mut.ApplyTokenTranslation(ctx, docID, blockID, token.ID, translation) {
		log.Printf("enrich: token %s gone, translation discarded", token.ID)
	}
	return nil
}

// DefineToken fetches the detailed definition for one word token, with the
// same dedup and apply-or-discard rules as TranslateToken.
func (c *Coordinator) DefineToken(ctx context.Context, docID, blockID string, token textdoc.Token, sentence string) error {
	if !token.IsWord() {
		return nil
	}
	if !c.begin(token.ID) {
		return nil
	}
	defer c.end(token.ID)

	if c.cache != nil {
		if def, ok := c.cache.GetDefinition(ctx, token.NormalizedText, sentence); ok {
			c.mut.ApplyTokenDefinition(ctx, docID, blockID, token.ID, def)
			return nil
		}
	}

	def, err := c.collab.DefineWord(ctx, token.NormalizedText, sentence)
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.PutDefinition(ctx, token.NormalizedText, sentence, def)
	}
	if !c.mut.ApplyTokenDefinition(ctx, docID, blockID, token.ID, def) {
		log.Printf("enrich: token %s gone, definition discarded", token.ID)
	}
	return nil
}

// AnalyzeSelection runs grammar analysis on a literal selected substring.
// Keyed on the text itself, independent of token identity.
func (c *Coordinator) AnalyzeSelection(ctx context.Context, selection string) (textdoc.GrammarAnalysis, error) {
	return c.collab.AnalyzeGrammar(ctx, selection)
}
