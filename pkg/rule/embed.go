package rule

import "embed"

// builtinRulesFS embeds the built-in rules directory: the indicator catalog
// plus the script-detection rules, one YAML file per category.
//
//go:embed rules/*.yml
var builtinRulesFS embed.FS
