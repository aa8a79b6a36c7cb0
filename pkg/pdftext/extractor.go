// Package pdftext turns PDF documents into the plain text the classifier
// consumes. It gates input by size, sniffs the content type before handing
// bytes to the PDF parser, and assembles page texts in document order.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/ledongthuc/pdf"
)

// DefaultMaxSize is the largest document accepted when Config.MaxSize is
// left zero.
const DefaultMaxSize = 10 << 20 // 10 MiB

// Config controls extraction limits.
type Config struct {
	// MaxSize is the largest document size accepted, in bytes. Zero
	// selects DefaultMaxSize.
	MaxSize int64
}

// Extractor extracts plain text from PDF documents. It holds no per-call
// state and is safe for concurrent use.
type Extractor struct {
	maxSize int64
}

// Result is the outcome of extracting one document.
type Result struct {
	// Text is the concatenation of every page's text in page order.
	// Pages that produced no text contribute nothing.
	Text string

	// Pages is the page count reported by the document.
	Pages int

	// PageErrors lists pages whose text could not be extracted. The
	// remaining pages still contribute to Text.
	PageErrors []*PageError
}

// New returns an Extractor with the configured limits.
func New(cfg Config) *Extractor {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &Extractor{maxSize: cfg.MaxSize}
}

// IsPDF reports whether content carries a PDF signature.
func IsPDF(content []byte) bool {
	kind, _ := filetype.Match(content)
	return kind == matchers.TypePdf
}

// ExtractFile extracts the text of the document at path. The size gate
// runs against the file's stat size, so oversized documents are rejected
// without reading them.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if info.Size() > e.maxSize {
		return nil, &SizeLimitError{Size: info.Size(), Limit: e.maxSize}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return e.Extract(ctx, content)
}

// Extract extracts the text of an in-memory document. Non-PDF content is
// rejected with ErrNotPDF before it reaches the parser.
func (e *Extractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	if int64(len(content)) > e.maxSize {
		return nil, &SizeLimitError{Size: int64(len(content)), Limit: e.maxSize}
	}
	if err := sniff(content); err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	res := &Result{Pages: r.NumPage()}
	var text bytes.Buffer
	for i := 1; i <= res.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			res.PageErrors = append(res.PageErrors, &PageError{Page: i, Err: err})
			continue
		}
		text.WriteString(pageText)
	}
	res.Text = text.String()
	return res, nil
}

// sniff classifies the leading bytes and rejects everything but PDF. The
// detected type is folded into the error so callers can report what the
// input actually was.
func sniff(content []byte) error {
	kind, _ := filetype.Match(content)
	if kind == matchers.TypePdf {
		return nil
	}
	if kind == filetype.Unknown {
		return fmt.Errorf("%w (unrecognized content)", ErrNotPDF)
	}
	return fmt.Errorf("%w (detected %s)", ErrNotPDF, kind.MIME.Value)
}
