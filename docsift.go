// Package docsift extracts and classifies indicators of compromise from
// documents.
//
// Docsift sweeps document text with a curated rule catalog (hashes, network
// indicators, PII, cryptocurrency addresses, suspicious file names), detects
// non-Latin writing systems, validates domain candidates against the IANA
// TLD registry, and aggregates everything into a per-label result set.
//
// # Basic Usage
//
// Create an engine with the builtin catalog and classify text:
//
//	engine, err := docsift.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	results, err := engine.Classify(ctx, "Contact admin@example.com or visit http://bad.zip/x")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, label := range results.IndicatorLabels() {
//	    fmt.Printf("%s: %v\n", label, results.Indicators[label])
//	}
//
// # Classifying Files
//
// ClassifyDocument accepts a PDF or a UTF-8 text file:
//
//	doc, err := engine.ClassifyDocument(ctx, "report.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if doc.Results.Empty() {
//	    fmt.Println("no indicators found")
//	}
//
// # Offline Use
//
// Disable automatic TLD refresh to keep classification off the network:
//
//	engine, err := docsift.New(docsift.WithAutoRefresh(false))
package docsift

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/praetorian-inc/docsift/pkg/classify"
	"github.com/praetorian-inc/docsift/pkg/pdftext"
	"github.com/praetorian-inc/docsift/pkg/rule"
	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/praetorian-inc/docsift/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/docsift" without subpackages.
type (
	// Rule defines one recognition pattern and its reporting label.
	Rule = types.Rule

	// ResultSet is the aggregate outcome of classifying one document.
	ResultSet = types.ResultSet

	// Label is the name under which matches are reported, e.g. "DOMAIN".
	Label = types.Label

	// Category groups rules for lookup, e.g. "hash" or "network".
	Category = types.Category
)

// Document is the outcome of classifying one file.
type Document struct {
	Path    string
	Title   string
	Pages   int // zero for plain-text input
	Results *types.ResultSet

	// PageErrors lists PDF pages whose text could not be extracted.
	// The remaining pages were still classified.
	PageErrors []*pdftext.PageError
}

// Engine classifies documents. A single Engine may be reused across
// documents and goroutines; classification runs are serialized, and each
// run resets the found-category counter and re-evaluates TLD freshness.
type Engine struct {
	registry  *rule.Registry
	session   *classify.Session
	extractor *pdftext.Extractor
	cache     *tld.Cache
	config    *engineConfig
	mu        sync.Mutex
}

// engineConfig holds engine configuration.
type engineConfig struct {
	rules        []*types.Rule
	excludedTLDs []string
	cachePath    string
	sourceURL    string
	maxAge       time.Duration
	noRefresh    bool
	client       *http.Client
	maxDocSize   int64
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithRules uses custom rules instead of the builtin catalog.
func WithRules(rules []*Rule) Option {
	return func(c *engineConfig) {
		c.rules = rules
	}
}

// WithExcludedTLDs replaces the policy exclusions applied on top of the
// IANA list. Calling it with no suffixes disables exclusions entirely.
func WithExcludedTLDs(tlds ...string) Option {
	return func(c *engineConfig) {
		if tlds == nil {
			tlds = []string{}
		}
		c.excludedTLDs = tlds
	}
}

// WithTLDCachePath sets where the TLD list snapshot is kept. The default
// lives under the user cache directory.
func WithTLDCachePath(path string) Option {
	return func(c *engineConfig) {
		c.cachePath = path
	}
}

// WithTLDSourceURL overrides where the TLD list is downloaded from.
// Default is tld.DefaultSourceURL, the IANA registry.
func WithTLDSourceURL(url string) Option {
	return func(c *engineConfig) {
		c.sourceURL = url
	}
}

// WithTLDMaxAge sets how old the TLD snapshot may grow before a refresh
// is attempted. Default is tld.DefaultMaxAge.
func WithTLDMaxAge(age time.Duration) Option {
	return func(c *engineConfig) {
		c.maxAge = age
	}
}

// WithAutoRefresh toggles implicit TLD refresh. Disabled, the engine only
// ever reads the local snapshot and never touches the network.
func WithAutoRefresh(enabled bool) Option {
	return func(c *engineConfig) {
		c.noRefresh = !enabled
	}
}

// WithHTTPClient overrides the client used for TLD downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *engineConfig) {
		c.client = client
	}
}

// WithMaxDocumentSize sets the largest document ClassifyDocument accepts,
// in bytes. Default is pdftext.DefaultMaxSize.
func WithMaxDocumentSize(size int64) Option {
	return func(c *engineConfig) {
		c.maxDocSize = size
	}
}

// New creates an Engine with the given options.
//
// By default, the engine:
//   - Uses the full builtin rule catalog
//   - Keeps the TLD snapshot under the user cache directory and refreshes
//     it from IANA when it is missing or older than three days
//   - Rejects documents larger than 10 MiB
func New(opts ...Option) (*Engine, error) {
	config := &engineConfig{
		cachePath:  DefaultTLDCachePath(),
		maxDocSize: pdftext.DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(config)
	}

	// Load rules if not provided
	if config.rules == nil {
		loader := rule.NewLoader()
		rules, err := loader.LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		config.rules = rules
	}

	registry, err := rule.NewRegistry(config.rules)
	if err != nil {
		return nil, fmt.Errorf("building rule registry: %w", err)
	}

	cache := tld.NewCache(tld.Config{
		Path:      config.cachePath,
		SourceURL: config.sourceURL,
		MaxAge:    config.maxAge,
		Client:    config.client,
		NoRefresh: config.noRefresh,
	})

	session, err := classify.NewSession(registry, tld.NewFilter(cache, config.excludedTLDs))
	if err != nil {
		return nil, err
	}

	return &Engine{
		registry:  registry,
		session:   session,
		extractor: pdftext.New(pdftext.Config{MaxSize: config.maxDocSize}),
		cache:     cache,
		config:    config,
	}, nil
}

// Classify runs the full pipeline over text: script detection, indicator
// extraction, domain validation and aggregation.
//
// Example:
//
//	results, err := engine.Classify(ctx, text)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("found %d indicator categories\n", results.Found)
func (e *Engine) Classify(ctx context.Context, text string) (*types.ResultSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.Classify(ctx, text)
}

// ClassifyDocument reads, extracts and classifies the file at path. PDF
// content is recognized by signature; anything else must be UTF-8 text.
// Oversized input is rejected with a *pdftext.SizeLimitError before any
// parsing happens.
func (e *Engine) ClassifyDocument(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if info.Size() > e.config.maxDocSize {
		return nil, &pdftext.SizeLimitError{Size: info.Size(), Limit: e.config.maxDocSize}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc := &Document{Path: path, Title: filepath.Base(path)}

	var text string
	if pdftext.IsPDF(content) {
		res, err := e.extractor.Extract(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", doc.Title, err)
		}
		text = res.Text
		doc.Pages = res.Pages
		doc.PageErrors = res.PageErrors
	} else {
		if !utf8.Valid(content) {
			return nil, fmt.Errorf("%s: %w and not UTF-8 text", doc.Title, pdftext.ErrNotPDF)
		}
		text = string(content)
	}

	results, err := e.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	doc.Results = results
	return doc, nil
}

// Close releases engine resources, dropping the in-memory TLD set.
// Always call Close when done with the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Invalidate()
	return nil
}

// RuleCount returns the number of rules loaded.
func (e *Engine) RuleCount() int {
	return e.registry.Len()
}

// Rules returns a copy of the loaded rules.
func (e *Engine) Rules() []*Rule {
	rules := make([]*Rule, len(e.config.rules))
	copy(rules, e.config.rules)
	return rules
}

// LoadRulesFromFile loads every rule in a YAML file.
// Use this with WithRules to create an engine with custom rules.
//
// Example:
//
//	rules, err := docsift.LoadRulesFromFile("/path/to/rules.yaml")
//	if err != nil {
//	    return err
//	}
//	engine, err := docsift.New(docsift.WithRules(rules))
func LoadRulesFromFile(path string) ([]*Rule, error) {
	loader := rule.NewLoader()
	return loader.LoadRulesFile(path)
}

// LoadBuiltinRules returns the builtin rule catalog.
// This can be used to inspect available rules or create a subset.
//
// Example:
//
//	rules, err := docsift.LoadBuiltinRules()
//	if err != nil {
//	    return err
//	}
//
//	// Keep only the hash rules
//	var hashRules []*docsift.Rule
//	for _, r := range rules {
//	    if strings.HasPrefix(r.ID, "ds.hash") {
//	        hashRules = append(hashRules, r)
//	    }
//	}
//	engine, err := docsift.New(docsift.WithRules(hashRules))
func LoadBuiltinRules() ([]*Rule, error) {
	loader := rule.NewLoader()
	return loader.LoadBuiltinRules()
}

// DefaultTLDCachePath is where the TLD snapshot lives when no path is
// configured: under the user cache directory, falling back to the system
// temp directory.
func DefaultTLDCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "docsift", "tlds-alpha-by-domain.txt")
}
