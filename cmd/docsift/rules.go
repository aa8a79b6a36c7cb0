package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/praetorian-inc/docsift/pkg/rule"
	"github.com/praetorian-inc/docsift/pkg/types"
	"github.com/spf13/cobra"
)

var (
	rulesPath    string
	outputFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage recognition rules",
	Long:  "Commands for listing and inspecting the rule catalog",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long:  "Display the rule catalog with IDs, categories and output labels",
	RunE:  runRulesList,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to custom rules file")
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error

	// Load rules (builtin or custom)
	if rulesPath != "" {
		rules, err = loader.LoadRulesFile(rulesPath)
		if err != nil {
			return fmt.Errorf("loading rules from %s: %w", rulesPath, err)
		}
	} else {
		rules, err = loader.LoadBuiltinRules()
		if err != nil {
			return fmt.Errorf("loading builtin rules: %w", err)
		}
	}

	// Output based on format
	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, rules)
	case "table":
		return outputRulesTable(cmd, rules)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRulesJSON(cmd *cobra.Command, rules []*types.Rule) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

func outputRulesTable(cmd *cobra.Command, rules []*types.Rule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tCategory\tLabel\n")
	fmt.Fprintf(w, "--\t----\t--------\t-----\n")

	for _, r := range rules {
		label := string(r.Label)
		if !r.Enumerated() {
			label = "(lookup only)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, label)
	}

	return nil
}
