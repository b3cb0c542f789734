package textdoc

// Transition functions. Each takes the current document value and returns a
// fresh one; the caller swaps the whole tree atomically. The bool result is
// false when the target no longer exists (or the action is a no-op), in which
// case the returned document is the input unchanged; late enrichment results
// for deleted targets are discarded silently this way.

// AddBlock appends a block to the document.
func AddBlock(doc Document, block Block) Document {
	out := doc.Clone()
	out.Blocks = append(out.Blocks, block)
	return out
}

// DeleteBlock removes the block with the given id.
func DeleteBlock(doc Document, blockID string) (Document, bool) {
	if _, ok := doc.FindBlock(blockID); !ok {
		return doc, false
	}
	out := doc.Clone()
	kept := out.Blocks[:0]
	for _, b := range out.Blocks {
		if b.ID != blockID {
			kept = append(kept, b)
		}
	}
	out.Blocks = kept
	return out, true
}

// EditBlockText replaces a block's text. A no-op when the normalized new text
// equals the current text. Otherwise the token list is regenerated with fresh
// identities and all enrichment on the block and its tokens is cleared, since
// identity cannot be carried across an arbitrary edit. Grammar notes are
// retained; NoteStale flags the ones whose source text is gone.
func EditBlockText(doc Document, blockID, newText string, tok *Tokenizer) (Document, bool) {
	normalized := NormalizeBlockText(newText)
	current, ok := doc.FindBlock(blockID)
	if !ok || current.Text == normalized {
		return doc, false
	}
	fresh := tok.TokenizeBlock(normalized)
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID != blockID {
			continue
		}
		notes := out.Blocks[i].GrammarNotes
		out.Blocks[i] = fresh
		out.Blocks[i].ID = blockID
		out.Blocks[i].GrammarNotes = notes
	}
	return out, true
}

// SetViewMode switches the document's presentation mode.
func SetViewMode(doc Document, mode ViewMode) Document {
	out := doc.Clone()
	out.ViewMode = mode
	return out
}

// AddGrammarNote appends a note to a block. Notes are append-only; they are
// never edited in place.
func AddGrammarNote(doc Document, blockID string, note GrammarNote) (Document, bool) {
	if _, ok := doc.FindBlock(blockID); !ok {
		return doc, false
	}
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID == blockID {
			out.Blocks[i].GrammarNotes = append(out.Blocks[i].GrammarNotes, note)
		}
	}
	return out, true
}

// RemoveGrammarNote drops a note by id.
func RemoveGrammarNote(doc Document, blockID, noteID string) (Document, bool) {
	changed := false
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID != blockID {
			continue
		}
		kept := out.Blocks[i].GrammarNotes[:0]
		for _, note := range out.Blocks[i].GrammarNotes {
			if note.ID == noteID {
				changed = true
				continue
			}
			kept = append(kept, note)
		}
		out.Blocks[i].GrammarNotes = kept
	}
	if !changed {
		return doc, false
	}
	return out, true
}

// SetBlockTranslation applies a paragraph translation result. The sentence
// list is aligned by index and may be shorter than the block's sentences; a
// short or empty list is tolerated.
func SetBlockTranslation(doc Document, blockID, paragraph string, sentences []string) (Document, bool) {
	block, ok := doc.FindBlock(blockID)
	if !ok {
		return doc, false
	}
	spanCount := len(block.Sentences())
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID != blockID {
			continue
		}
		out.Blocks[i].Translation = paragraph
		translations := make(map[int]string)
		for index, text := range sentences {
			if index >= spanCount {
				break
			}
			translations[index] = text
		}
		out.Blocks[i].SentenceTranslations = translations
	}
	return out, true
}

// SetTokenTranslation applies a word translation. Refused for non-word
// tokens: translations are set only on tokens with a non-empty normalized
// form.
func SetTokenTranslation(doc Document, blockID, tokenID, translation string) (Document, bool) {
	return updateToken(doc, blockID, tokenID, func(tok *Token) bool {
		if !tok.IsWord() {
			return false
		}
		tok.Translation = translation
		return true
	})
}

// SetTokenDefinition caches a detailed definition and shows its panel.
func SetTokenDefinition(doc Document, blockID, tokenID string, def Definition) (Document, bool) {
	return updateToken(doc, blockID, tokenID, func(tok *Token) bool {
		if !tok.IsWord() {
			return false
		}
		tok.Definition = &def
		tok.ShowDefinition = true
		return true
	})
}

// ClearTokenAnnotation drops a token's translation and definition and hides
// any open panel, returning it to the untranslated state.
func ClearTokenAnnotation(doc Document, blockID, tokenID string) (Document, bool) {
	return updateToken(doc, blockID, tokenID, func(tok *Token) bool {
		tok.Translation = ""
		tok.Definition = nil
		tok.ShowDefinition = false
		return true
	})
}

// SetDefinitionVisible toggles the definition panel without touching the
// cached definition.
func SetDefinitionVisible(doc Document, blockID, tokenID string, visible bool) (Document, bool) {
	return updateToken(doc, blockID, tokenID, func(tok *Token) bool {
		if tok.Definition == nil {
			return false
		}
		tok.ShowDefinition = visible
		return true
	})
}

func updateToken(doc Document, blockID, tokenID string, apply func(*Token) bool) (Document, bool) {
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID != blockID {
			continue
		}
		for j := range out.Blocks[i].Tokens {
			if out.Blocks[i].Tokens[j].ID != tokenID {
				continue
			}
			if !apply(&out.Blocks[i].Tokens[j]) {
				return doc, false
			}
			return out, true
		}
	}
	return doc, false
}
