// Package report renders classification results for terminals, plain-text
// report files, and JSON consumers.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// noFindingsBanner is printed when classification found nothing.
const noFindingsBanner = "= No IOCs found ="

var separator = strings.Repeat("-", 14)

// styles holds color formatters for the console report.
type styles struct {
	heading   *color.Color
	separator *color.Color
	banner    *color.Color
	metadata  *color.Color
}

// newStyles creates color formatters for report output.
// enabled=false respects --color never and the NO_COLOR env var.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:   color.New(color.Bold),
		separator: color.New(color.FgHiBlack),
		banner:    color.New(color.FgYellow),
		metadata:  color.New(color.FgHiBlue),
	}

	if !enabled {
		s.heading.DisableColor()
		s.separator.DisableColor()
		s.banner.DisableColor()
		s.metadata.DisableColor()
	}

	return s
}

// Header identifies the document a report describes.
type Header struct {
	Title string
	Path  string
}

// Renderer writes human-readable reports: one section per label with a
// separator line, script sections first, then indicator sections, each
// label's values on their own lines.
type Renderer struct {
	out io.Writer
	s   *styles
}

// NewRenderer returns a Renderer writing to out. colored=false produces
// plain text suitable for files and pipes.
func NewRenderer(out io.Writer, colored bool) *Renderer {
	return &Renderer{out: out, s: newStyles(colored)}
}

// Render writes every section of the result set, or the no-findings
// banner when classification came up empty.
func (r *Renderer) Render(rs *types.ResultSet) {
	for _, label := range rs.ScriptLabels() {
		r.section(string(label), rs.Scripts[label])
	}
	for _, label := range rs.IndicatorLabels() {
		r.section(string(label), strings.Join(rs.Indicators[label], "\n"))
	}
	if rs.Empty() {
		fmt.Fprintln(r.out, r.s.banner.Sprint(noFindingsBanner))
	}
}

// RenderDocument writes a TITLE/PATH header before the result sections.
// An empty result set renders only the banner, without the header.
func (r *Renderer) RenderDocument(hdr Header, rs *types.ResultSet) {
	if !rs.Empty() {
		fmt.Fprintf(r.out, "\n%s %s\n%s %s\n",
			r.s.metadata.Sprint("TITLE:"), hdr.Title,
			r.s.metadata.Sprint("PATH:"), hdr.Path)
	}
	r.Render(rs)
}

func (r *Renderer) section(label, body string) {
	fmt.Fprintf(r.out, "\n%s\n%s\n%s\n",
		r.s.heading.Sprint(label),
		r.s.separator.Sprint(separator),
		body)
}

// WriteFile writes an uncolored document report to path, replacing any
// previous report.
func WriteFile(path string, hdr Header, rs *types.ResultSet) error {
	var buf bytes.Buffer
	NewRenderer(&buf, false).RenderDocument(hdr, rs)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WriteJSON encodes the result set as indented JSON.
func WriteJSON(w io.Writer, rs *types.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}
