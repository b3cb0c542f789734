package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lexibook/api/internal/textdoc"
	"lexibook/api/internal/util"
)

type fakeCollaborator struct {
	translateParagraphFn func(context.Context, string, []string) (ParagraphTranslation, error)
	translateWordFn      func(context.Context, string, string) (string, error)
	defineWordFn         func(context.Context, string, string) (textdoc.Definition, error)
	analyzeGrammarFn     func(context.Context, string) (textdoc.GrammarAnalysis, error)
}

func (f *fakeCollaborator) ExtractText(context.Context, string, []byte) (string, error) {
	return "", nil
}
func (f *fakeCollaborator) TranslateParagraph(ctx context.Context, paragraph string, sentences []string) (ParagraphTranslation, error) {
	if f.translateParagraphFn != nil {
		return f.translateParagraphFn(ctx, paragraph, sentences)
	}
	return ParagraphTranslation{Paragraph: "译文"}, nil
}
func (f *fakeCollaborator) TranslateWord(ctx context.Context, word, sentence string) (string, error) {
	if f.translateWordFn != nil {
		return f.translateWordFn(ctx, word, sentence)
	}
	return "词", nil
}
func (f *fakeCollaborator) DefineWord(ctx context.Context, word, sentence string) (textdoc.Definition, error) {
	if f.defineWordFn != nil {
		return f.defineWordFn(ctx, word, sentence)
	}
	return textdoc.Definition{IPA: "/x/", Senses: []textdoc.Sense{{Pos: "n", Def: "def"}}}, nil
}
func (f *fakeCollaborator) AnalyzeGrammar(ctx context.Context, text string) (textdoc.GrammarAnalysis, error) {
	if f.analyzeGrammarFn != nil {
		return f.analyzeGrammarFn(ctx, text)
	}
	return textdoc.GrammarAnalysis{Translation: "分析"}, nil
}

type applied struct {
	blockID string
	tokenID string
	value   string
}

type fakeMutator struct {
	mu      sync.Mutex
	exists  func(blockID string) bool
	blocks  []applied
	tokens  []applied
	defined []applied
}

func (m *fakeMutator) targetExists(blockID string) bool {
	if m.exists == nil {
		return true
	}
	return m.exists(blockID)
}

func (m *fakeMutator) ApplyBlockTranslation(_ context.Context, _, blockID string, tr ParagraphTranslation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.targetExists(blockID) {
		return false
	}
	m.blocks = append(m.blocks, applied{blockID: blockID, value: tr.Paragraph})
	return true
}
func (m *fakeMutator) ApplyTokenTranslation(_ context.Context, _, blockID, tokenID, translation string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.targetExists(blockID) {
		return false
	}
	m.tokens = append(m.tokens, applied{blockID: blockID, tokenID: tokenID, value: translation})
	return true
}
func (m *fakeMutator) ApplyTokenDefinition(_ context.Context, _, blockID, tokenID string, def textdoc.Definition) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.targetExists(blockID) {
		return false
	}
	m.defined = append(m.defined, applied{blockID: blockID, tokenID: tokenID, value: def.IPA})
	return true
}

func testDocument(t *testing.T, raw string) textdoc.Document {
	t.Helper()
	tok := textdoc.NewTokenizer(textdoc.PunctSegmenter{}, util.SequentialIDGen())
	doc := textdoc.Document{ID: "doc_1"}
	for _, block := range tok.Tokenize(raw) {
		doc = textdoc.AddBlock(doc, block)
	}
	return doc
}

func TestTranslateDocumentPartialFailureIsolation(t *testing.T) {
	doc := testDocument(t, "First block.\n\nSecond block.\n\nThird block.")
	failing := doc.Blocks[1].ID

	var attempted []string
	collab := &fakeCollaborator{
		translateParagraphFn: func(_ context.Context, paragraph string, _ []string) (ParagraphTranslation, error) {
			attempted = append(attempted, paragraph)
			if paragraph == "Second block." {
				return ParagraphTranslation{}, errors.New("upstream 500")
			}
			return ParagraphTranslation{Paragraph: "译: " + paragraph}, nil
		},
	}
	mut := &fakeMutator{}
	coord := NewCoordinator(collab, nil, mut)

	failed := coord.TranslateDocument(context.Background(), doc)
	if failed != 1 {
		t.Fatalf("failed=%d, want 1", failed)
	}
	if len(attempted) != 3 {
		t.Fatalf("attempted %d blocks, want all 3", len(attempted))
	}
	if len(mut.blocks) != 2 {
		t.Fatalf("applied %d block translations, want 2", len(mut.blocks))
	}
	for _, a := range mut.blocks {
		if a.blockID == failing {
			t.Error("failing block received a translation")
		}
	}
}

func TestTranslateDocumentSkipsBlankBlocks(t *testing.T) {
	doc := testDocument(t, "Real content.")
	doc = textdoc.AddBlock(doc, textdoc.Block{ID: "blk_blank", Text: "   "})

	var attempted int
	collab := &fakeCollaborator{
		translateParagraphFn: func(context.Context, string, []string) (ParagraphTranslation, error) {
			attempted++
			return ParagraphTranslation{Paragraph: "译"}, nil
		},
	}
	coord := NewCoordinator(collab, nil, &fakeMutator{})
	coord.TranslateDocument(context.Background(), doc)
	if attempted != 1 {
		t.Errorf("attempted %d blocks, want 1 (blank skipped)", attempted)
	}
}

func TestTranslateDocumentSequentialOrder(t *testing.T) {
	doc := testDocument(t, "Alpha.\n\nBeta.\n\nGamma.")
	var order []string
	collab := &fakeCollaborator{
		translateParagraphFn: func(_ context.Context, paragraph string, _ []string) (ParagraphTranslation, error) {
			order = append(order, paragraph)
			return ParagraphTranslation{Paragraph: paragraph}, nil
		},
	}
	coord := NewCoordinator(collab, nil, &fakeMutator{})
	coord.TranslateDocument(context.Background(), doc)
	want := []string{"Alpha.", "Beta.", "Gamma."}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("block order %v, want %v", order, want)
		}
	}
}

func TestTranslateTokenDiscardedWhenBlockDeleted(t *testing.T) {
	doc := testDocument(t, "Hello world.")
	block := doc.Blocks[0]
	token, _ := block.FindToken(block.Tokens[0].ID)

	release := make(chan struct{})
	collab := &fakeCollaborator{
		translateWordFn: func(context.Context, string, string) (string, error) {
			<-release
			return "你好", nil
		},
	}
	mut := &fakeMutator{exists: func(string) bool { return false }} // deleted mid-flight
	coord := NewCoordinator(collab, nil, mut)

	done := make(chan error, 1)
	go func() {
		done <- coord.TranslateToken(context.Background(), doc.ID, block.ID, token, block.Text)
	}()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("translate token: %v", err)
	}
	if len(mut.tokens) != 0 {
		t.Error("result applied although target was gone")
	}
}

func TestTranslateTokenDeduplicatesInFlight(t *testing.T) {
	doc := testDocument(t, "Hello world.")
	block := doc.Blocks[0]
	token := block.Tokens[0]

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	collab := &fakeCollaborator{
		translateWordFn: func(context.Context, string, string) (string, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(started)
			<-release
			return "你好", nil
		},
	}
	mut := &fakeMutator{}
	coord := NewCoordinator(collab, nil, mut)

	done := make(chan struct{})
	go func() {
		_ = coord.TranslateToken(context.Background(), doc.ID, block.ID, token, block.Text)
		close(done)
	}()
	<-started

	if !coord.InFlight(token.ID) {
		t.Error("token should report in-flight")
	}
	// Second activation while in flight: returns immediately, no extra call.
	if err := coord.TranslateToken(context.Background(), doc.ID, block.ID, token, block.Text); err != nil {
		t.Fatalf("deduped call errored: %v", err)
	}
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("collaborator called %d times, want 1", calls)
	}
	if len(mut.tokens) != 1 {
		t.Errorf("applied %d results, want 1", len(mut.tokens))
	}
	if coord.InFlight(token.ID) {
		t.Error("token still in flight after completion")
	}
}

func TestTranslateTokenUsesCache(t *testing.T) {
	doc := testDocument(t, "Hello world.")
	block := doc.Blocks[0]
	token := block.Tokens[0]

	var collabCalls int
	collab := &fakeCollaborator{
		translateWordFn: func(context.Context, string, string) (string, error) {
			collabCalls++
			return "你好", nil
		},
	}
	cache := &memoryCache{translations: map[string]string{}}
	mut := &fakeMutator{}
	coord := NewCoordinator(collab, cache, mut)

	ctx := context.Background()
	if err := coord.TranslateToken(ctx, doc.ID, block.ID, token, block.Text); err != nil {
		t.Fatal(err)
	}
	if err := coord.TranslateToken(ctx, doc.ID, block.ID, token, block.Text); err != nil {
		t.Fatal(err)
	}
	if collabCalls != 1 {
		t.Errorf("collaborator called %d times, want 1 (second hit cached)", collabCalls)
	}
	if len(mut.tokens) != 2 {
		t.Errorf("applied %d results, want 2", len(mut.tokens))
	}
}

type memoryCache struct {
	translations map[string]string
	definitions  map[string]textdoc.Definition
}

func (m *memoryCache) GetTranslation(_ context.Context, word, sentence string) (string, bool) {
	v, ok := m.translations[word+"|"+sentence]
	return v, ok
}
func (m *memoryCache) PutTranslation(_ context.Context, word, sentence, translation string) {
	m.translations[word+"|"+sentence] = translation
}
func (m *memoryCache) GetDefinition(_ context.Context, word, sentence string) (textdoc.Definition, bool) {
	if m.definitions == nil {
		return textdoc.Definition{}, false
	}
	v, ok := m.definitions[word+"|"+sentence]
	return v, ok
}
func (m *memoryCache) PutDefinition(_ context.Context, word, sentence string, def textdoc.Definition) {
	if m.definitions == nil {
		m.definitions = map[string]textdoc.Definition{}
	}
	m.definitions[word+"|"+sentence] = def
}
