// Package textdoc holds the document/annotation data model: a library of
// documents decomposed into blocks, sentences and tokens, with enrichment
// layered on top. All mutation happens through the pure transition functions
// in mutate.go; the aggregate is never edited in place.
package textdoc

import (
	"strings"
	"time"
)

// ViewMode controls how a document is presented.
type ViewMode string

const (
	ViewOriginal  ViewMode = "original"
	ViewBilingual ViewMode = "bilingual"
)

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Blocks    []Block   `json:"blocks"`
	ViewMode  ViewMode  `json:"viewMode"`
}

// Block is a paragraph-level unit. Text is the normalized paragraph and the
// ground truth from which Tokens is derived; concatenating the tokens'
// RawText reproduces Text exactly.
type Block struct {
	ID                   string         `json:"id"`
	Text                 string         `json:"text"`
	Tokens               []Token        `json:"tokens"`
	Translation          string         `json:"translation,omitempty"`
	SentenceTranslations map[int]string `json:"sentenceTranslations,omitempty"`
	GrammarNotes         []GrammarNote  `json:"grammarNotes,omitempty"`
}

// Token is the smallest addressable unit: either a word (NormalizedText
// non-empty, a maximal run of letters, digits, apostrophe or hyphen) or a
// punctuation/whitespace run (NormalizedText empty).
type Token struct {
	ID             string      `json:"id"`
	RawText        string      `json:"rawText"`
	NormalizedText string      `json:"normalizedText,omitempty"`
	SentenceIndex  int         `json:"sentenceIndex"`
	Translation    string      `json:"translation,omitempty"`
	Definition     *Definition `json:"definition,omitempty"`
	ShowDefinition bool        `json:"showDefinition,omitempty"`
}

// IsWord reports whether the token can carry a translation or definition.
func (t Token) IsWord() bool {
	return t.NormalizedText != ""
}

// Definition is a detailed dictionary record for a word. When the language
// service's response does not match the expected shape, Raw holds the
// unparsed text and the structured fields stay empty.
type Definition struct {
	IPA      string    `json:"ipa,omitempty"`
	Senses   []Sense   `json:"senses,omitempty"`
	Examples []Example `json:"examples,omitempty"`
	Phrases  []string  `json:"phrases,omitempty"`
	Raw      string    `json:"raw,omitempty"`
}

type Sense struct {
	Pos string `json:"pos"`
	Def string `json:"def"`
}

type Example struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// GrammarNote is an immutable annotation pinned to the block in which the
// originating selection occurred. It is keyed by the literal selected text,
// not by token identity, so it survives edits that remove the text.
type GrammarNote struct {
	ID          string          `json:"id"`
	SourceText  string          `json:"sourceText"`
	Explanation GrammarAnalysis `json:"explanation"`
	// Stale is derived, not stored: recomputed from the block text whenever
	// the document is cloned for a response.
	Stale bool `json:"stale,omitempty"`
}

// GrammarAnalysis mirrors the analyzeGrammar response. Raw carries the
// unparsed fallback when the response cannot be validated.
type GrammarAnalysis struct {
	Structure     []string       `json:"structure,omitempty"`
	GrammarPoints []GrammarPoint `json:"grammarPoints,omitempty"`
	Translation   string         `json:"translation,omitempty"`
	Raw           string         `json:"raw,omitempty"`
}

type GrammarPoint struct {
	Point string `json:"point"`
	Desc  string `json:"desc"`
}

// Sentences reconstructs the block's sentence spans from its tokens.
func (b Block) Sentences() []string {
	var spans []string
	for _, tok := range b.Tokens {
		for tok.SentenceIndex >= len(spans) {
			spans = append(spans, "")
		}
		spans[tok.SentenceIndex] += tok.RawText
	}
	return spans
}

// FindToken returns the token with the given id, if present.
func (b Block) FindToken(tokenID string) (Token, bool) {
	for _, tok := range b.Tokens {
		if tok.ID == tokenID {
			return tok, true
		}
	}
	return Token{}, false
}

// NoteStale reports whether a grammar note's source text no longer occurs in
// the block. Notes are kept unconditionally across edits; staleness is
// surfaced so callers can flag rather than hide them.
func (b Block) NoteStale(note GrammarNote) bool {
	return !strings.Contains(b.Text, note.SourceText)
}

// FindBlock returns the block with the given id, if present.
func (d Document) FindBlock(blockID string) (Block, bool) {
	for _, b := range d.Blocks {
		if b.ID == blockID {
			return b, true
		}
	}
	return Block{}, false
}

// PlainText joins the block texts with blank lines, the inverse of paragraph
// splitting during tokenization.
func (d Document) PlainText() string {
	texts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n\n")
}

// Clone deep-copies the document so transitions can replace the whole tree
// without aliasing the previous state.
func (d Document) Clone() Document {
	out := d
	out.Blocks = make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out.Blocks[i] = b.clone()
	}
	return out
}

func (b Block) clone() Block {
	out := b
	out.Tokens = make([]Token, len(b.Tokens))
	for i, tok := range b.Tokens {
		out.Tokens[i] = tok
		if tok.Definition != nil {
			def := *tok.Definition
			out.Tokens[i].Definition = &def
		}
	}
	if b.SentenceTranslations != nil {
		out.SentenceTranslations = make(map[int]string, len(b.SentenceTranslations))
		for k, v := range b.SentenceTranslations {
			out.SentenceTranslations[k] = v
		}
	}
	out.GrammarNotes = append([]GrammarNote(nil), b.GrammarNotes...)
	for i := range out.GrammarNotes {
		out.GrammarNotes[i].Stale = b.NoteStale(out.GrammarNotes[i])
	}
	return out
}
