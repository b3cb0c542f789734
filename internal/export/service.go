package export

import (
	"fmt"

	"lexibook/api/internal/textdoc"
)

// Service provides document export functionality
type Service struct{}

// NewService creates a new export service
func NewService() *Service {
	return &Service{}
}

// Export renders the document in the requested format.
func (s *Service) Export(doc textdoc.Document, req Request) (*Result, error) {
	html, err := RenderDocumentHTML(toTemplateData(doc, req.IncludeNotes))
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(doc.Title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(html, doc.Title)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
}
