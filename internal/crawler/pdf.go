package crawler

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts plain text from a PDF body. PDFs carry no usable
// metadata for us, so the title is derived from the URL path.
func extractPDF(pageURL string, body []byte) (content *Content) {
	// The parser panics on some malformed files.
	defer func() {
		if recover() != nil {
			content = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return nil
	}

	return &Content{
		URL:   pageURL,
		Title: subjectFromURL(pageURL),
		Text:  collapseWhitespace(string(text)),
	}
}
