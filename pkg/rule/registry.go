package rule

import (
	"fmt"

	"github.com/praetorian-inc/docsift/pkg/types"
)

// NotFoundError reports a lookup for a (category, name) pair absent from
// the registry. Hitting it at runtime is a programming error, not a
// condition to recover from.
type NotFoundError struct {
	Category types.Category
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rule %s/%s not found in registry", e.Category, e.Name)
}

// Registry is the read-only rule catalog: typed lookup by (category, name)
// plus the two enumerations the classifier sweeps. Construct once, share
// freely; it is never mutated after NewRegistry returns.
type Registry struct {
	byKey      map[types.Category]map[string]*types.Rule
	indicators []*types.Rule
	scripts    []*types.Rule
	all        []*types.Rule
}

// NewRegistry validates rules and builds a registry from them. Rules keep
// the order they were loaded in; duplicate IDs, duplicate (category, name)
// pairs and duplicate output labels are construction errors.
func NewRegistry(rules []*types.Rule) (*Registry, error) {
	reg := &Registry{
		byKey: make(map[types.Category]map[string]*types.Rule),
	}
	seenID := make(map[string]bool)
	seenLabel := make(map[types.Label]string)

	for _, r := range rules {
		if err := ValidateRule(r); err != nil {
			return nil, err
		}
		if seenID[r.ID] {
			return nil, fmt.Errorf("duplicate rule ID %s", r.ID)
		}
		seenID[r.ID] = true

		byName := reg.byKey[r.Category]
		if byName == nil {
			byName = make(map[string]*types.Rule)
			reg.byKey[r.Category] = byName
		}
		if _, ok := byName[r.Name]; ok {
			return nil, fmt.Errorf("duplicate rule %s/%s", r.Category, r.Name)
		}
		byName[r.Name] = r

		if r.Enumerated() {
			if prev, ok := seenLabel[r.Label]; ok {
				return nil, fmt.Errorf("rules %s and %s share output label %q", prev, r.ID, r.Label)
			}
			seenLabel[r.Label] = r.ID
			if r.Category == types.CategoryScript {
				reg.scripts = append(reg.scripts, r)
			} else {
				reg.indicators = append(reg.indicators, r)
			}
		}
		reg.all = append(reg.all, r)
	}

	return reg, nil
}

// NewBuiltinRegistry builds a registry from the embedded catalog.
func NewBuiltinRegistry() (*Registry, error) {
	rules, err := NewLoader().LoadBuiltinRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin rules: %w", err)
	}
	return NewRegistry(rules)
}

// Lookup returns the rule registered under (category, name).
func (reg *Registry) Lookup(category types.Category, name string) (*types.Rule, error) {
	if byName := reg.byKey[category]; byName != nil {
		if r, ok := byName[name]; ok {
			return r, nil
		}
	}
	return nil, &NotFoundError{Category: category, Name: name}
}

// Indicators returns the general-indicator rules (every enumerated rule
// outside the script category) in load order.
func (reg *Registry) Indicators() []*types.Rule {
	return reg.indicators
}

// Scripts returns the script-detection rules in load order.
func (reg *Registry) Scripts() []*types.Rule {
	return reg.scripts
}

// All returns every registered rule, lookup-only rules included.
func (reg *Registry) All() []*types.Rule {
	return reg.all
}

// Len returns the number of registered rules.
func (reg *Registry) Len() int {
	return len(reg.all)
}
