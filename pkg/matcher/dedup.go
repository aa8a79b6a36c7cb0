package matcher

import "github.com/praetorian-inc/docsift/pkg/types"

// Deduplicator removes duplicate matches by (label, value). The same
// indicator appearing several times in one document counts once.
type Deduplicator struct {
	seen map[string]bool
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]bool),
	}
}

// IsDuplicate returns true if the match value was already seen under its
// label.
func (d *Deduplicator) IsDuplicate(m types.Match) bool {
	return d.seen[computeKey(m)]
}

// Add marks a match as seen.
func (d *Deduplicator) Add(m types.Match) {
	d.seen[computeKey(m)] = true
}

// Reset clears the deduplicator for reuse.
func (d *Deduplicator) Reset() {
	clear(d.seen)
}

// computeKey joins label and value with a separator neither can contain.
func computeKey(m types.Match) string {
	return string(m.Label) + "\x00" + m.Value
}
