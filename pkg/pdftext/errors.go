package pdftext

import (
	"errors"
	"fmt"
)

// ErrNotPDF rejects input whose leading bytes do not carry a PDF
// signature. Callers that accept plain text as well should sniff with
// IsPDF before extracting.
var ErrNotPDF = errors.New("input is not a PDF document")

// SizeLimitError reports a document rejected before parsing because it
// exceeds the configured size limit.
type SizeLimitError struct {
	Size  int64 // document size in bytes
	Limit int64 // configured limit in bytes
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("document is %.1f MiB, limit is %.1f MiB",
		float64(e.Size)/(1<<20), float64(e.Limit)/(1<<20))
}

// PageError records a page whose text could not be extracted. Page errors
// are diagnostics, not failures: extraction continues and the remaining
// pages still produce text.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
