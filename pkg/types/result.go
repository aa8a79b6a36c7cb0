package types

import "sort"

// Match is a single raw extraction result: a matched substring plus the
// label of the rule that produced it. Matches are ephemeral; only the
// aggregated ResultSet survives a classification run.
type Match struct {
	Label Label  `json:"label"`
	Value string `json:"value"`
}

// ResultSet is the aggregate outcome of classifying one document.
type ResultSet struct {
	// Indicators maps each indicator label to its deduplicated matches,
	// sorted lexicographically ascending. Labels that matched nothing are
	// absent from the map.
	Indicators map[Label][]string `json:"indicators"`

	// Scripts maps each script label to the concatenation of its matched
	// fragments in document order. Script hits are reported as a single
	// blob per label, not as a deduplicated list.
	Scripts map[Label]string `json:"scripts,omitempty"`

	// Found tallies the labels (indicator and script) that produced a
	// non-empty result. Found <= 0 means the document had no indicators.
	Found int `json:"found"`
}

// NewResultSet returns an empty result set with initialized maps.
func NewResultSet() *ResultSet {
	return &ResultSet{
		Indicators: make(map[Label][]string),
		Scripts:    make(map[Label]string),
	}
}

// Empty reports whether classification found nothing.
func (rs *ResultSet) Empty() bool {
	return rs.Found <= 0
}

// Total returns the number of indicator values across all labels.
func (rs *ResultSet) Total() int {
	n := 0
	for _, vals := range rs.Indicators {
		n += len(vals)
	}
	return n
}

// IndicatorLabels returns the labels present in Indicators in sorted order.
func (rs *ResultSet) IndicatorLabels() []Label {
	labels := make([]Label, 0, len(rs.Indicators))
	for label := range rs.Indicators {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// ScriptLabels returns the labels present in Scripts in sorted order.
func (rs *ResultSet) ScriptLabels() []Label {
	labels := make([]Label, 0, len(rs.Scripts))
	for label := range rs.Scripts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}
