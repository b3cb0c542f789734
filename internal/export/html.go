package export

import (
	"html/template"
	"strings"

	"lexibook/api/internal/textdoc"
)

// BlockHTML renders a block's token stream. Word tokens with a translation
// become ruby text so the gloss sits above the word; tokens with a stored
// definition also get a badge marker. Non-word tokens pass through escaped.
func BlockHTML(block textdoc.Block) template.HTML {
	var b strings.Builder
	for _, token := range block.Tokens {
		text := template.HTMLEscapeString(token.RawText)
		switch {
		case token.IsWord() && token.Translation != "":
			b.WriteString(`<ruby class="annotated">`)
			b.WriteString(text)
			b.WriteString(`<rt>`)
			b.WriteString(template.HTMLEscapeString(token.Translation))
			b.WriteString(`</rt></ruby>`)
			if token.Definition != nil {
				b.WriteString(`<sup class="badge">•</sup>`)
			}
		default:
			b.WriteString(text)
		}
	}
	return template.HTML(b.String())
}

func toTemplateData(doc textdoc.Document, includeNotes bool) TemplateData {
	data := TemplateData{
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		Bilingual: doc.ViewMode == textdoc.ViewBilingual,
	}
	for _, block := range doc.Blocks {
		tb := TemplateBlock{
			TextHTML:    BlockHTML(block),
			Translation: block.Translation,
		}
		if includeNotes {
			for _, note := range block.GrammarNotes {
				tb.Notes = append(tb.Notes, TemplateNote{
					SourceText:  note.SourceText,
					Explanation: noteExplanation(note),
					Stale:       block.NoteStale(note),
				})
			}
		}
		data.Blocks = append(data.Blocks, tb)
	}
	return data
}

func noteExplanation(note textdoc.GrammarNote) string {
	if note.Explanation.Raw != "" {
		return note.Explanation.Raw
	}
	var parts []string
	if note.Explanation.Translation != "" {
		parts = append(parts, note.Explanation.Translation)
	}
	for _, point := range note.Explanation.GrammarPoints {
		parts = append(parts, point.Point+": "+point.Desc)
	}
	return strings.Join(parts, " · ")
}
