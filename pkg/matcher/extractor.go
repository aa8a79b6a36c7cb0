package matcher

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// Extractor applies catalog rules to document text using regexp2. The
// catalog depends on lookaheads and lookbehinds that the standard library's
// RE2 engine cannot express, so patterns are tried in RE2 mode first and
// fall back to the full backtracking engine.
//
// All matching is performed against the lower-cased form of the input;
// original casing is deliberately lost, and every rule is written against
// folded text (or carries the case-insensitive flag).
//
// The regex cache is read-only after construction, so a single Extractor
// is safe for concurrent Extract calls.
type Extractor struct {
	regexCache map[string]*regexp2.Regexp // keyed by rule ID, read-only after init
}

// NewExtractor precompiles every rule pattern to catch errors early.
func NewExtractor(rules []*types.Rule) (*Extractor, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules provided")
	}

	e := &Extractor{
		regexCache: make(map[string]*regexp2.Regexp, len(rules)),
	}
	for _, rule := range rules {
		re, err := compileRule(rule)
		if err != nil {
			return nil, err
		}
		e.regexCache[rule.ID] = re
	}
	return e, nil
}

// compileRule tries the RE2 subset first (no backtracking), then falls back
// to the default engine for patterns using lookarounds.
func compileRule(rule *types.Rule) (*regexp2.Regexp, error) {
	var flags regexp2.RegexOptions
	if rule.CaseInsensitive {
		flags = regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(rule.Pattern, regexp2.RE2|regexp2.Multiline|flags)
	if err != nil {
		re, err = regexp2.Compile(rule.Pattern, regexp2.None|flags)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q for rule %s: %w", rule.Pattern, rule.ID, err)
		}
	}
	// Bound catastrophic backtracking on hostile documents.
	re.MatchTimeout = 5 * time.Second
	return re, nil
}

// Extract returns all non-overlapping matches of rule against the
// lower-cased text, in left-to-right document order. Whitespace-only
// matches are dropped; they are never valid indicator entries. A regex
// timeout degrades to a stderr warning and a partial (possibly empty)
// result rather than an error.
//
// The only error condition is a rule this Extractor never compiled, which
// is a programming error on the caller's side.
func (e *Extractor) Extract(rule *types.Rule, text string) ([]types.Match, error) {
	re := e.regexCache[rule.ID]
	if re == nil {
		return nil, fmt.Errorf("rule %s was not compiled by this extractor", rule.ID)
	}

	lowered := strings.ToLower(text)

	var matches []types.Match
	m, err := re.FindStringMatch(lowered)
	if err != nil {
		warnRegexError(rule, err)
		return matches, nil
	}
	for m != nil {
		if value := m.String(); strings.TrimSpace(value) != "" {
			matches = append(matches, types.Match{Label: rule.Label, Value: value})
		}
		m, err = re.FindNextMatch(m)
		if err != nil {
			warnRegexError(rule, err)
			break
		}
	}
	return matches, nil
}

// Values returns just the matched substrings from Extract, in the same
// order.
func (e *Extractor) Values(rule *types.Rule, text string) ([]string, error) {
	matches, err := e.Extract(rule, text)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(matches))
	for i, m := range matches {
		values[i] = m.Value
	}
	return values, nil
}

func warnRegexError(rule *types.Rule, err error) {
	if strings.Contains(err.Error(), "match timeout") {
		fmt.Fprintf(os.Stderr, "[warn] rule %s regex timeout on content (skipping rule for this document)\n", rule.ID)
		return
	}
	fmt.Fprintf(os.Stderr, "[warn] rule %s regex error (skipping rule for this document): %v\n", rule.ID, err)
}
