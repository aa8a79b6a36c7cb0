package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/docsift/pkg/types"
)

// FilterConfig narrows a rule set before it is compiled into a registry.
// Include and Exclude hold regular expressions matched against each rule's
// ID and category, so "hash" selects the whole hash category while
// "ds.hash.md5" selects a single rule.
type FilterConfig struct {
	Include []string // keep only rules matching at least one pattern
	Exclude []string // drop rules matching any pattern
}

// ParsePatterns splits a comma-separated flag value into individual
// patterns, trimming whitespace and dropping empty entries.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include patterns first, then exclude patterns. An empty
// include list keeps every rule. Returns an error if any pattern is not a
// valid regular expression.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	if len(rules) == 0 {
		return rules, nil
	}

	include, err := compilePatterns(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(config.Exclude)
	if err != nil {
		return nil, err
	}

	filtered := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if len(include) > 0 && !matchesRule(r, include) {
			continue
		}
		if matchesRule(r, exclude) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

// matchesRule reports whether any regex matches the rule's ID or category.
func matchesRule(r *types.Rule, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(r.ID) || re.MatchString(string(r.Category)) {
			return true
		}
	}
	return false
}
