// Package classify aggregates script detection, indicator extraction and
// domain validity filtering into a per-document result set.
package classify

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/praetorian-inc/docsift/pkg/matcher"
	"github.com/praetorian-inc/docsift/pkg/prefilter"
	"github.com/praetorian-inc/docsift/pkg/rule"
	"github.com/praetorian-inc/docsift/pkg/script"
	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// Session runs the classification pipeline with rules compiled once at
// construction. Classify resets the found-category counter on entry, so a
// session is reusable across documents serially; it is not safe for
// concurrent Classify calls.
type Session struct {
	registry  *rule.Registry
	detector  *script.Detector
	extractor *matcher.Extractor
	prefilter *prefilter.Prefilter
	domains   *tld.Filter
	counter   int
}

// NewSession builds a session over the given registry and domain filter.
func NewSession(registry *rule.Registry, domains *tld.Filter) (*Session, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, errors.New("classify: registry has no rules")
	}
	if domains == nil {
		return nil, errors.New("classify: domain filter is required")
	}

	s := &Session{
		registry:  registry,
		prefilter: prefilter.New(registry.Indicators()),
		domains:   domains,
	}

	if scripts := registry.Scripts(); len(scripts) > 0 {
		detector, err := script.NewDetector(scripts)
		if err != nil {
			return nil, err
		}
		s.detector = detector
	}

	if indicators := registry.Indicators(); len(indicators) > 0 {
		extractor, err := matcher.NewExtractor(indicators)
		if err != nil {
			return nil, err
		}
		s.extractor = extractor
	}

	return s, nil
}

// Counter returns the found-category count of the last Classify call.
// Found categories are labels with a non-empty final set; a DOMAIN set
// emptied by the validity filter is un-counted.
func (s *Session) Counter() int {
	return s.counter
}

// Classify runs the full pipeline over text and returns the result set.
// The text is folded to lower case once and every stage works on the
// folded copy. TLD refresh or validation failures degrade to warnings
// inside the cache and never abort classification.
func (s *Session) Classify(ctx context.Context, text string) (*types.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folded := strings.ToLower(text)
	rs := types.NewResultSet()
	s.counter = 0

	// Scripts first. Fragments of a label concatenate into one blob,
	// undeduplicated, and each non-empty label counts once.
	if s.detector != nil {
		detected, err := s.detector.Detect(folded)
		if err != nil {
			return nil, err
		}
		for label, fragments := range detected {
			rs.Scripts[label] = strings.Join(fragments, "")
			s.counter++
		}
	}

	// Indicator sweep in registry order. The prefilter drops rules whose
	// keywords are absent from the document; results are identical, the
	// regexes just never run.
	if s.extractor != nil {
		viable := make(map[*types.Rule]bool)
		for _, r := range s.prefilter.Filter(folded) {
			viable[r] = true
		}

		dedup := matcher.NewDeduplicator()
		for _, r := range s.registry.Indicators() {
			if !viable[r] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			matches, err := s.extractor.Extract(r, folded)
			if err != nil {
				return nil, err
			}

			dedup.Reset()
			var set []string
			for _, m := range matches {
				if dedup.IsDuplicate(m) {
					continue
				}
				dedup.Add(m)
				set = append(set, m.Value)
			}
			if len(set) == 0 {
				continue
			}
			s.counter++

			if r.Label == types.LabelDomain {
				set = s.filterDomains(ctx, set)
				if len(set) == 0 {
					// Only invalid-TLD candidates: the category was
					// never really found.
					s.counter--
					continue
				}
			}

			sort.Strings(set)
			rs.Indicators[r.Label] = set
		}
	}

	rs.Found = s.counter
	return rs, nil
}

// filterDomains refreshes the TLD list on first need, then keeps the
// valid candidates. The refresh is lazy so documents without domain
// candidates never touch the network.
func (s *Session) filterDomains(ctx context.Context, candidates []string) []string {
	s.domains.Cache().EnsureFresh(ctx)
	return s.domains.FilterDomains(candidates)
}
