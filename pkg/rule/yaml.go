package rule

// yamlRule is the intermediate struct for parsing the YAML rule format.
// Maps YAML fields to the types.Rule structure.
type yamlRule struct {
	Name             string   `yaml:"name"`
	ID               string   `yaml:"id"`
	Category         string   `yaml:"category"`
	Label            string   `yaml:"label,omitempty"`
	Pattern          string   `yaml:"pattern"`
	CaseInsensitive  bool     `yaml:"case_insensitive,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
	References       []string `yaml:"references,omitempty"`
	Keywords         []string `yaml:"keywords,omitempty"`
}

// yamlRulesFile represents the top-level structure of a rules YAML file:
// a "rules" array at the top level.
type yamlRulesFile struct {
	Rules []yamlRule `yaml:"rules"`
}
