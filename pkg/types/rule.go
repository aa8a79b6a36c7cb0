package types

// Label is the semantic name under which a rule's matches are reported,
// e.g. "DOMAIN" or "SHA256".
type Label string

// LabelDomain marks the one indicator category whose matches pass through
// the TLD validity filter before aggregation.
const LabelDomain Label = "DOMAIN"

// Rule is a recognition rule with pattern and metadata. Rules are immutable
// after load; identity within the registry is (Category, Name).
type Rule struct {
	ID               string   // e.g., "ds.network.domain"
	Name             string   // lookup name within the category, e.g., "domain"
	Category         Category // organizational grouping, never emitted
	Label            Label    // output label; empty for lookup-only rules
	Pattern          string   // regex pattern, applied to lower-cased text
	CaseInsensitive  bool     // compile with case folding for patterns authored against original case
	Description      string   // optional
	Examples         []string // positive test cases
	NegativeExamples []string // negative test cases
	References       []string // documentation URLs
	Keywords         []string // literal substrings for prefiltering; empty means always run
}

// Enumerated reports whether the rule participates in classification.
// Lookup-only rules (no output label) are reachable via Registry.Lookup but
// are never swept over document text.
func (r *Rule) Enumerated() bool {
	return r.Label != ""
}
