package prefilter

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/praetorian-inc/docsift/pkg/types"
)

// Prefilter gates rules on an Aho-Corasick keyword scan so a document only
// pays for the regexes that can possibly hit. A rule's keywords must be
// lower-case guaranteed substrings of any text its pattern matches; rules
// without keywords are always checked.
type Prefilter struct {
	matcher        *ahocorasick.Matcher
	keywords       []string
	keywordRules   map[string][]*types.Rule
	noKeywordRules []*types.Rule
}

// New builds a prefilter over the given rules.
func New(rules []*types.Rule) *Prefilter {
	pf := &Prefilter{
		keywordRules:   make(map[string][]*types.Rule),
		noKeywordRules: make([]*types.Rule, 0),
	}

	keywordSet := make(map[string]bool)
	for _, r := range rules {
		if len(r.Keywords) == 0 {
			pf.noKeywordRules = append(pf.noKeywordRules, r)
			continue
		}
		for _, keyword := range r.Keywords {
			if !keywordSet[keyword] {
				keywordSet[keyword] = true
				pf.keywords = append(pf.keywords, keyword)
			}
			pf.keywordRules[keyword] = append(pf.keywordRules[keyword], r)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns the rules worth running against text: every keyword-free
// rule plus each rule with at least one keyword present. Text must already
// be lower-cased, the same folding the extractor applies.
func (pf *Prefilter) Filter(text string) []*types.Rule {
	result := make([]*types.Rule, 0, len(pf.noKeywordRules))
	result = append(result, pf.noKeywordRules...)

	if pf.matcher == nil {
		return result
	}

	hits := pf.matcher.Match([]byte(text))

	seen := make(map[*types.Rule]bool)
	for _, r := range pf.noKeywordRules {
		seen[r] = true
	}

	for _, hit := range hits {
		keyword := pf.keywords[hit]
		for _, r := range pf.keywordRules[keyword] {
			if !seen[r] {
				seen[r] = true
				result = append(result, r)
			}
		}
	}

	return result
}
