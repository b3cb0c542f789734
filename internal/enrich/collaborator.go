// Package enrich coordinates asynchronous language-service enrichment:
// paragraph and word translations, detailed definitions and grammar
// analysis. Requests are deduplicated per token, whole-document translation
// runs at concurrency 1, and results are written back through the same
// mutation path as structural edits.
package enrich

import (
	"context"
	"errors"

	"lexibook/api/internal/textdoc"
)

var (
	// ErrExtraction marks an unreadable or unsupported source file, or a
	// service error during extraction.
	ErrExtraction = errors.New("text extraction failed")
	// ErrTranslation marks a word-, block- or selection-level enrichment
	// failure.
	ErrTranslation = errors.New("translation failed")
)

// ParagraphTranslation is the result of translating one block. Sentences is
// aligned to the input sentence list by index but may be shorter or empty;
// consumers must tolerate that.
type ParagraphTranslation struct {
	Paragraph string   `json:"paragraph"`
	Sentences []string `json:"sentences"`
}

// Collaborator is the external language-processing service. Every call is
// fallible network I/O; definition and grammar responses that fail shape
// validation degrade to a raw-text record instead of an error.
type Collaborator interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
	TranslateParagraph(ctx context.Context, paragraph string, sentences []string) (ParagraphTranslation, error)
	TranslateWord(ctx context.Context, word, sentence string) (string, error)
	DefineWord(ctx context.Context, word, sentence string) (textdoc.Definition, error)
	AnalyzeGrammar(ctx context.Context, text string) (textdoc.GrammarAnalysis, error)
}
