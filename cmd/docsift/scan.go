package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/praetorian-inc/docsift"
	"github.com/praetorian-inc/docsift/pkg/pdftext"
	"github.com/praetorian-inc/docsift/pkg/report"
	"github.com/praetorian-inc/docsift/pkg/rule"
	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/praetorian-inc/docsift/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	scanRulesPath    string
	scanRulesInclude string
	scanRulesExclude string
	scanOutputPath   string
	scanOutputFormat string
	scanColor        string
	scanMaxFileSize  int64
	scanTLDFile      string
	scanTLDURL       string
	scanTLDMaxAge    time.Duration
	scanNoRefresh    bool
	scanExcludeTLDs  string
)

var scanCmd = &cobra.Command{
	Use:   "scan <document>",
	Short: "Classify a document's indicators of compromise",
	Long:  "Extract text from a PDF or UTF-8 text document and report the IOCs it contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to custom rules file")
	scanCmd.Flags().StringVar(&scanRulesInclude, "rules-include", "", "Keep only rules whose ID or category matches a regex (comma-separated)")
	scanCmd.Flags().StringVar(&scanRulesExclude, "rules-exclude", "", "Drop rules whose ID or category matches a regex (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "", "Write a plain-text report to this path")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", pdftext.DefaultMaxSize, "Maximum document size to classify (bytes)")
	scanCmd.Flags().StringVar(&scanTLDFile, "tld-file", "", "Path to the TLD list snapshot (default: user cache directory)")
	scanCmd.Flags().StringVar(&scanTLDURL, "tld-url", tld.DefaultSourceURL, "URL the TLD list is refreshed from")
	scanCmd.Flags().DurationVar(&scanTLDMaxAge, "tld-max-age", tld.DefaultMaxAge, "How old the TLD snapshot may grow before refresh")
	scanCmd.Flags().BoolVar(&scanNoRefresh, "no-refresh", false, "Never refresh the TLD list over the network")
	scanCmd.Flags().StringVar(&scanExcludeTLDs, "exclude-tlds", "", "TLD suffixes rejected regardless of the IANA list (comma-separated; pass an empty value to disable the default exclusions)")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	// Validate target exists
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("document does not exist: %s", target)
	}

	if scanOutputFormat != "human" && scanOutputFormat != "json" {
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}

	// Load rules
	rules, err := loadRules(scanRulesPath, scanRulesInclude, scanRulesExclude)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	engine, err := docsift.New(scanOptions(cmd, rules)...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	if verbose && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d rules\n", engine.RuleCount())
	}

	doc, err := engine.ClassifyDocument(context.Background(), target)
	if err != nil {
		return fmt.Errorf("classifying %s: %w", target, err)
	}

	// Pages that failed extraction are diagnostics, not failures.
	if !quiet {
		for _, pageErr := range doc.PageErrors {
			fmt.Fprintf(cmd.ErrOrStderr(), "[warn] %s: %v\n", doc.Title, pageErr)
		}
	}

	// Output based on format (stderr summary keeps stdout pure JSON)
	if scanOutputFormat == "json" {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Classified %s: %d indicator categories\n", doc.Title, doc.Results.Found)
		}
		return report.WriteJSON(cmd.OutOrStdout(), doc.Results)
	}

	renderer := report.NewRenderer(cmd.OutOrStdout(), resolveColor(scanColor))
	renderer.Render(doc.Results)

	if scanOutputPath != "" {
		hdr := report.Header{Title: doc.Title, Path: doc.Path}
		if err := report.WriteFile(scanOutputPath, hdr, doc.Results); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to: %s\n", scanOutputPath)
		}
	}

	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func loadRules(path, include, exclude string) ([]*types.Rule, error) {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error

	if path != "" {
		// Custom rules from file
		rules, err = loader.LoadRulesFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		// Builtin rules
		rules, err = loader.LoadBuiltinRules()
		if err != nil {
			return nil, err
		}
	}

	// Apply filtering if patterns specified
	if include != "" || exclude != "" {
		config := rule.FilterConfig{
			Include: rule.ParsePatterns(include),
			Exclude: rule.ParsePatterns(exclude),
		}
		rules, err = rule.Filter(rules, config)
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}

	return rules, nil
}

func scanOptions(cmd *cobra.Command, rules []*types.Rule) []docsift.Option {
	opts := []docsift.Option{
		docsift.WithRules(rules),
		docsift.WithMaxDocumentSize(scanMaxFileSize),
		docsift.WithAutoRefresh(!scanNoRefresh),
		docsift.WithTLDMaxAge(scanTLDMaxAge),
	}
	if scanTLDFile != "" {
		opts = append(opts, docsift.WithTLDCachePath(scanTLDFile))
	}
	if scanTLDURL != "" {
		opts = append(opts, docsift.WithTLDSourceURL(scanTLDURL))
	}
	if cmd.Flags().Changed("exclude-tlds") {
		opts = append(opts, docsift.WithExcludedTLDs(splitList(scanExcludeTLDs)...))
	}
	return opts
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveColor maps the --color flag onto the global color switch and
// reports whether output should be colored.
func resolveColor(mode string) bool {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		// Check if stdout is a TTY and NO_COLOR is not set
		if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		} else {
			color.NoColor = false
		}
	}
	return !color.NoColor
}
