package tld

import "strings"

// DefaultExcludedTLDs is the policy list of suffixes suppressed even when
// delegated. These are historical noise sources: .gov never appears in
// the threat reporting this tool targets except as prose, and .py/.zip
// collide with Python scripts and archive file names.
func DefaultExcludedTLDs() []string {
	return []string{"gov", "foo", "py", "zip"}
}

// Filter decides whether domain candidates are worth reporting. Validity
// is purely suffix membership: the candidate's TLD must be in the cache
// and not on the excluded list. No other semantic checks apply.
type Filter struct {
	cache    *Cache
	excluded map[string]bool
}

// NewFilter builds a filter over cache. A nil excluded slice selects
// DefaultExcludedTLDs; an explicit empty slice disables exclusion.
func NewFilter(cache *Cache, excluded []string) *Filter {
	if excluded == nil {
		excluded = DefaultExcludedTLDs()
	}
	set := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		set[strings.ToLower(e)] = true
	}
	return &Filter{cache: cache, excluded: set}
}

// Cache returns the underlying TLD cache.
func (f *Filter) Cache() *Cache {
	return f.cache
}

// Excluded returns whether tld is on the exclusion list.
func (f *Filter) Excluded(tld string) bool {
	return f.excluded[strings.ToLower(tld)]
}

// IsValidDomain reports whether candidate's suffix after the last "." is
// a delegated, non-excluded TLD. Defanged candidates such as "bad[.]zip"
// fail here: the bracket survives into the suffix, which then matches no
// delegated TLD.
func (f *Filter) IsValidDomain(candidate string) bool {
	suffix := candidate
	if idx := strings.LastIndex(candidate, "."); idx >= 0 {
		suffix = candidate[idx+1:]
	}
	suffix = strings.ToLower(suffix)

	if f.excluded[suffix] {
		return false
	}
	return f.cache.Contains(suffix)
}

// FilterDomains returns the valid subset of candidates in input order.
// Pure over the current cache state.
func (f *Filter) FilterDomains(candidates []string) []string {
	valid := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if f.IsValidDomain(candidate) {
			valid = append(valid, candidate)
		}
	}
	return valid
}
