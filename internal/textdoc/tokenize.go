package textdoc

import (
	"regexp"
	"strings"
	"unicode"

	"lexibook/api/internal/util"
)

// wordPattern matches the word side of the alternation; everything between
// matches is emitted as a punctuation/whitespace token, so every input
// character lands in exactly one token.
var wordPattern = regexp.MustCompile(`[A-Za-z0-9'-]+`)

var blankLine = regexp.MustCompile(`\n[ \t]*\n+`)

// Segmenter detects sentence boundaries within a paragraph. The returned
// spans must concatenate back to the exact input. Segmentation is an
// external capability; the default is a punctuation heuristic, but a real
// locale-aware backend can be injected.
type Segmenter interface {
	Segment(paragraph string) []string
}

type Tokenizer struct {
	seg Segmenter
	ids util.IDGen
}

func NewTokenizer(seg Segmenter, ids util.IDGen) *Tokenizer {
	return &Tokenizer{seg: seg, ids: ids}
}

func NewDefaultTokenizer() *Tokenizer {
	return NewTokenizer(PunctSegmenter{}, util.NewID)
}

// Tokenize decomposes raw text into blocks: normalize line endings, split on
// blank-line boundaries, trim, drop empties, then tokenize each paragraph.
func (t *Tokenizer) Tokenize(raw string) []Block {
	blocks := make([]Block, 0)
	for _, para := range SplitParagraphs(raw) {
		blocks = append(blocks, t.TokenizeBlock(para))
	}
	return blocks
}

// TokenizeBlock derives a fresh block, with fresh identities, from one
// normalized paragraph.
func (t *Tokenizer) TokenizeBlock(text string) Block {
	block := Block{ID: t.ids("blk"), Text: text}
	for index, span := range t.seg.Segment(text) {
		block.Tokens = append(block.Tokens, t.tokenizeSpan(span, index)...)
	}
	return block
}

func (t *Tokenizer) tokenizeSpan(span string, sentenceIndex int) []Token {
	var tokens []Token
	other := func(raw string) Token {
		return Token{ID: t.ids("tok"), RawText: raw, SentenceIndex: sentenceIndex}
	}
	last := 0
	for _, loc := range wordPattern.FindAllStringIndex(span, -1) {
		if loc[0] > last {
			tokens = append(tokens, other(span[last:loc[0]]))
		}
		word := span[loc[0]:loc[1]]
		tokens = append(tokens, Token{
			ID:             t.ids("tok"),
			RawText:        word,
			NormalizedText: word,
			SentenceIndex:  sentenceIndex,
		})
		last = loc[1]
	}
	if last < len(span) {
		tokens = append(tokens, other(span[last:]))
	}
	return tokens
}

// SplitParagraphs normalizes line endings and splits on blank-line
// boundaries, trimming each paragraph and dropping empty ones.
func SplitParagraphs(raw string) []string {
	var paragraphs []string
	for _, part := range blankLine.Split(normalizeNewlines(raw), -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

// NormalizeBlockText is the canonical form a block's text is stored in; edit
// equality is decided on this form.
func NormalizeBlockText(raw string) string {
	return strings.TrimSpace(normalizeNewlines(raw))
}

func normalizeNewlines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(raw, "\r", "\n")
}

// PunctSegmenter splits after runs of terminal punctuation, folding closing
// quotes/brackets and trailing whitespace into the finished sentence so the
// spans concatenate losslessly.
type PunctSegmenter struct{}

func (PunctSegmenter) Segment(paragraph string) []string {
	runes := []rune(paragraph)
	var spans []string
	start := 0
	i := 0
	for i < len(runes) {
		if !isTerminal(runes[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && isTerminal(runes[j]) {
			j++
		}
		for j < len(runes) && isClosing(runes[j]) {
			j++
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		spans = append(spans, string(runes[start:j]))
		start = j
		i = j
	}
	if start < len(runes) {
		spans = append(spans, string(runes[start:]))
	}
	return spans
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}
