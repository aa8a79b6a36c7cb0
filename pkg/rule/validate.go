package rule

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// ValidateRule checks rule consistency and required fields.
// Returns error if rule is invalid.
func ValidateRule(r *types.Rule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}

	if r.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule pattern is required")
	}
	if !r.Category.Valid() {
		return fmt.Errorf("rule %s has unknown category %q", r.ID, r.Category)
	}

	// The catalog leans on lookarounds, so validity means "compiles under
	// the full engine", not under the RE2 subset the matcher tries first.
	opts := regexp2.None
	if r.CaseInsensitive {
		opts |= regexp2.IgnoreCase
	}
	if _, err := regexp2.Compile(r.Pattern, opts); err != nil {
		return fmt.Errorf("invalid pattern regex for rule %s: %w", r.ID, err)
	}

	return nil
}
