// Package script detects non-Latin writing systems in document text.
package script

import (
	"github.com/praetorian-inc/docsift/pkg/matcher"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// Detector matches script rules against text. Each rule covers a Unicode
// block range; FARSI is the deliberate overlap, a four-letter subset of
// the Arabic block that separates Persian from Arabic-only text.
type Detector struct {
	rules []*types.Rule
	ex    *matcher.Extractor
}

// NewDetector builds a detector over the given script rules.
func NewDetector(rules []*types.Rule) (*Detector, error) {
	ex, err := matcher.NewExtractor(rules)
	if err != nil {
		return nil, err
	}
	return &Detector{rules: rules, ex: ex}, nil
}

// Rules returns the detector's rules in their registration order.
func (d *Detector) Rules() []*types.Rule {
	return d.rules
}

// Detect returns, per script label, every matched text run in document
// order. Labels with no matches are omitted; fragments are kept verbatim
// and undeduplicated so the aggregator can join them into one blob.
func (d *Detector) Detect(text string) (map[types.Label][]string, error) {
	found := make(map[types.Label][]string)
	for _, r := range d.rules {
		values, err := d.ex.Values(r, text)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			found[r.Label] = values
		}
	}
	return found, nil
}
