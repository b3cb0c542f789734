package textdoc

import (
	"testing"

	"lexibook/api/internal/util"
)

func sampleDocument(t *testing.T) (Document, *Tokenizer) {
	t.Helper()
	tok := NewTokenizer(PunctSegmenter{}, util.SequentialIDGen())
	doc := Document{ID: "doc_1", Title: "Sample", ViewMode: ViewOriginal}
	for _, block := range tok.Tokenize("Hello world.\n\nGoodbye.") {
		doc = AddBlock(doc, block)
	}
	return doc, tok
}

func wordToken(t *testing.T, block Block, word string) Token {
	t.Helper()
	for _, token := range block.Tokens {
		if token.NormalizedText == word {
			return token
		}
	}
	t.Fatalf("word %q not found in block %s", word, block.ID)
	return Token{}
}

func TestEditBlockTextNoOpOnEqualText(t *testing.T) {
	doc, tok := sampleDocument(t)
	blockID := doc.Blocks[0].ID

	// Same text modulo normalization must not regenerate tokens.
	next, changed := EditBlockText(doc, blockID, "  Hello world.\r\n", tok)
	if changed {
		t.Fatal("expected no-op edit for normalized-equal text")
	}
	if next.Blocks[0].Tokens[0].ID != doc.Blocks[0].Tokens[0].ID {
		t.Error("token identity changed on a no-op edit")
	}
}

func TestEditBlockTextClearsEnrichment(t *testing.T) {
	doc, tok := sampleDocument(t)
	block := doc.Blocks[0]
	world := wordToken(t, block, "world")

	doc, ok := SetBlockTranslation(doc, block.ID, "你好，世界。", []string{"你好，世界。"})
	if !ok {
		t.Fatal("set block translation failed")
	}
	doc, ok = SetTokenTranslation(doc, block.ID, world.ID, "世界")
	if !ok {
		t.Fatal("set token translation failed")
	}
	doc, ok = SetTokenDefinition(doc, block.ID, world.ID, Definition{IPA: "/wɜːld/"})
	if !ok {
		t.Fatal("set token definition failed")
	}
	doc, ok = AddGrammarNote(doc, block.ID, GrammarNote{ID: "note_1", SourceText: "Hello world", Explanation: GrammarAnalysis{Translation: "问候"}})
	if !ok {
		t.Fatal("add grammar note failed")
	}

	doc, changed := EditBlockText(doc, block.ID, "Hello there, world.", tok)
	if !changed {
		t.Fatal("expected edit to apply")
	}

	edited, _ := doc.FindBlock(block.ID)
	if edited.ID != block.ID {
		t.Error("block identity must survive an edit")
	}
	if edited.Translation != "" || len(edited.SentenceTranslations) != 0 {
		t.Error("block translation not cleared by edit")
	}
	for _, token := range edited.Tokens {
		if token.Translation != "" || token.Definition != nil {
			t.Errorf("token %q kept enrichment across edit", token.RawText)
		}
	}
	if len(edited.GrammarNotes) != 1 {
		t.Fatalf("grammar notes must be retained, got %d", len(edited.GrammarNotes))
	}
	if edited.NoteStale(edited.GrammarNotes[0]) {
		t.Error("note source still present, should not be stale")
	}

	// After an edit that removes the source text, the note stays but reads
	// as stale.
	doc, _ = EditBlockText(doc, block.ID, "Completely different.", tok)
	edited, _ = doc.FindBlock(block.ID)
	if len(edited.GrammarNotes) != 1 {
		t.Fatal("grammar notes must survive any edit")
	}
	if !edited.NoteStale(edited.GrammarNotes[0]) {
		t.Error("note should be stale once its source text is gone")
	}
}

func TestDeleteBlock(t *testing.T) {
	doc, _ := sampleDocument(t)
	blockID := doc.Blocks[0].ID

	next, ok := DeleteBlock(doc, blockID)
	if !ok {
		t.Fatal("delete failed")
	}
	if len(next.Blocks) != 1 {
		t.Fatalf("expected 1 remaining block, got %d", len(next.Blocks))
	}
	if _, found := next.FindBlock(blockID); found {
		t.Error("deleted block still present")
	}

	if _, ok := DeleteBlock(next, blockID); ok {
		t.Error("deleting a missing block must be a no-op")
	}
}

func TestLateResultForDeletedBlockIsDiscarded(t *testing.T) {
	doc, _ := sampleDocument(t)
	blockID := doc.Blocks[0].ID
	tokenID := wordToken(t, doc.Blocks[0], "world").ID

	doc, _ = DeleteBlock(doc, blockID)

	// A translation completing after the delete must not reintroduce the
	// block or change anything.
	next, ok := SetBlockTranslation(doc, blockID, "late", nil)
	if ok {
		t.Error("block translation applied to a deleted block")
	}
	if len(next.Blocks) != len(doc.Blocks) {
		t.Error("late result reintroduced a block")
	}
	if _, ok := SetTokenTranslation(doc, blockID, tokenID, "late"); ok {
		t.Error("token translation applied to a deleted block")
	}
}

func TestSetTokenTranslationRefusesNonWordTokens(t *testing.T) {
	doc, _ := sampleDocument(t)
	block := doc.Blocks[0]
	for _, token := range block.Tokens {
		if token.IsWord() {
			continue
		}
		if _, ok := SetTokenTranslation(doc, block.ID, token.ID, "x"); ok {
			t.Errorf("translation applied to non-word token %q", token.RawText)
		}
		if _, ok := SetTokenDefinition(doc, block.ID, token.ID, Definition{Raw: "x"}); ok {
			t.Errorf("definition applied to non-word token %q", token.RawText)
		}
	}
}

func TestSetBlockTranslationToleratesShortSentenceList(t *testing.T) {
	doc, tok := sampleDocument(t)
	doc, _ = EditBlockText(doc, doc.Blocks[0].ID, "One. Two. Three.", tok)
	blockID := doc.Blocks[0].ID

	// Shorter result than the block's sentence count.
	doc, ok := SetBlockTranslation(doc, blockID, "一。二。三。", []string{"一。"})
	if !ok {
		t.Fatal("set block translation failed")
	}
	block, _ := doc.FindBlock(blockID)
	if len(block.SentenceTranslations) != 1 || block.SentenceTranslations[0] != "一。" {
		t.Errorf("sentence translations %v, want index 0 only", block.SentenceTranslations)
	}

	// Longer result than the block's sentence count is truncated.
	doc, _ = SetBlockTranslation(doc, blockID, "一。二。三。", []string{"一。", "二。", "三。", "四。"})
	block, _ = doc.FindBlock(blockID)
	if len(block.SentenceTranslations) != 3 {
		t.Errorf("expected 3 sentence translations, got %d", len(block.SentenceTranslations))
	}
}

func TestRemoveGrammarNote(t *testing.T) {
	doc, _ := sampleDocument(t)
	blockID := doc.Blocks[0].ID
	doc, _ = AddGrammarNote(doc, blockID, GrammarNote{ID: "note_1", SourceText: "Hello"})
	doc, _ = AddGrammarNote(doc, blockID, GrammarNote{ID: "note_2", SourceText: "world"})

	doc, ok := RemoveGrammarNote(doc, blockID, "note_1")
	if !ok {
		t.Fatal("remove failed")
	}
	block, _ := doc.FindBlock(blockID)
	if len(block.GrammarNotes) != 1 || block.GrammarNotes[0].ID != "note_2" {
		t.Errorf("unexpected notes after removal: %+v", block.GrammarNotes)
	}

	if _, ok := RemoveGrammarNote(doc, blockID, "note_1"); ok {
		t.Error("removing a missing note must be a no-op")
	}
}

func TestTransitionsDoNotAliasInput(t *testing.T) {
	doc, _ := sampleDocument(t)
	blockID := doc.Blocks[0].ID
	tokenID := wordToken(t, doc.Blocks[0], "Hello").ID

	next, _ := SetTokenTranslation(doc, blockID, tokenID, "你好")
	original, _ := doc.FindBlock(blockID)
	for _, token := range original.Tokens {
		if token.Translation != "" {
			t.Fatal("transition mutated the input document")
		}
	}
	updated, _ := next.FindBlock(blockID)
	token, _ := updated.FindToken(tokenID)
	if token.Translation != "你好" {
		t.Error("translation missing from the returned document")
	}
}
