// Package tld maintains the IANA top-level-domain allow list that backs
// the domain validity filter. The list is cached on disk and refreshed
// over HTTP when it goes stale; refresh failure is a degraded mode, not
// an error.
package tld

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultSourceURL is the IANA registry of delegated TLDs.
	DefaultSourceURL = "https://data.iana.org/TLD/tlds-alpha-by-domain.txt"

	// DefaultMaxAge is how old the on-disk list may grow before a
	// refresh is attempted.
	DefaultMaxAge = 72 * time.Hour

	fetchTimeout = 10 * time.Second
)

// Config holds cache construction parameters. Zero values fall back to
// the defaults above; only Path is required.
type Config struct {
	// Path is the local cache file.
	Path string

	// SourceURL overrides the download location.
	SourceURL string

	// MaxAge overrides the staleness threshold.
	MaxAge time.Duration

	// Client overrides the HTTP client. The default applies fetchTimeout.
	Client *http.Client

	// NoRefresh disables all implicit network access: EnsureFresh then
	// only ever reads the local file. Refresh remains available for
	// explicit calls.
	NoRefresh bool
}

// Cache is the TLD allow list: an on-disk snapshot of the IANA registry
// plus an in-memory set. The in-memory set only changes through Load,
// Refresh, EnsureFresh and Invalidate; lookups never touch disk or
// network.
type Cache struct {
	path        string
	sourceURL   string
	maxAge      time.Duration
	client      *http.Client
	autoRefresh bool

	mu     sync.RWMutex
	tlds   map[string]bool
	loaded bool
}

// NewCache builds a cache from config, applying defaults for unset fields.
func NewCache(cfg Config) *Cache {
	if cfg.SourceURL == "" {
		cfg.SourceURL = DefaultSourceURL
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: fetchTimeout}
	}
	return &Cache{
		path:        cfg.Path,
		sourceURL:   cfg.SourceURL,
		maxAge:      cfg.MaxAge,
		client:      cfg.Client,
		autoRefresh: !cfg.NoRefresh,
	}
}

// Path returns the location of the on-disk snapshot.
func (c *Cache) Path() string {
	return c.path
}

// EnsureFresh brings the in-memory set up to date: a missing file is
// downloaded, a stale file (mtime older than max age, compared in UTC)
// is refreshed, a fresh file is read without any network call. At most
// one download attempt is made, never retried; on failure the prior
// contents stay in use, or the set stays empty when there are none. All
// failures degrade to stderr warnings.
func (c *Cache) EnsureFresh(ctx context.Context) {
	info, err := os.Stat(c.path)
	if err != nil {
		if !c.autoRefresh {
			warnf("tld list %s missing and refresh disabled, domain validation inactive", c.path)
			c.setEmpty()
			return
		}
		if err := c.Refresh(ctx); err != nil {
			warnf("tld list download failed (%v), domain validation inactive", err)
			c.setEmpty()
		}
		return
	}

	if c.autoRefresh && time.Now().UTC().Sub(info.ModTime().UTC()) > c.maxAge {
		err := c.Refresh(ctx)
		if err == nil {
			return
		}
		warnf("tld list refresh failed (%v), keeping stale list", err)
	}

	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return
	}
	if err := c.Load(); err != nil {
		warnf("tld list read failed (%v), domain validation inactive", err)
		c.setEmpty()
	}
}

// Refresh unconditionally downloads the list, persists it atomically
// (temp file + rename) and swaps the in-memory set. Unlike EnsureFresh
// it reports failure to the caller.
func (c *Cache) Refresh(ctx context.Context) error {
	data, err := c.download(ctx)
	if err != nil {
		return fmt.Errorf("downloading tld list: %w", err)
	}
	if err := c.persist(data); err != nil {
		return fmt.Errorf("persisting tld list: %w", err)
	}

	c.mu.Lock()
	c.tlds = parseTLDs(data)
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Load reads the on-disk snapshot into memory, replacing the current set.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading tld list: %w", err)
	}

	c.mu.Lock()
	c.tlds = parseTLDs(data)
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Invalidate drops the in-memory set. The next EnsureFresh re-reads the
// file (and refreshes it if stale).
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.tlds = nil
	c.loaded = false
	c.mu.Unlock()
}

// Contains reports whether tld is a delegated top-level domain. Lookups
// against a never-loaded cache are simply false.
func (c *Cache) Contains(tld string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tlds[strings.ToLower(tld)]
}

// Len returns the number of TLDs currently in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tlds)
}

// TLDs returns the in-memory set sorted ascending.
func (c *Cache) TLDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.tlds))
	for t := range c.tlds {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Cache) setEmpty() {
	c.mu.Lock()
	c.tlds = make(map[string]bool)
	c.loaded = true
	c.mu.Unlock()
}

func (c *Cache) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", c.sourceURL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// persist writes data verbatim next to the target and renames it into
// place, so readers of the path never observe a partial file.
func (c *Cache) persist(data []byte) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "tlds-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// parseTLDs reads the IANA line format: one TLD per line, "#" comments
// and blank lines ignored, values folded to lower case.
func parseTLDs(data []byte) map[string]bool {
	set := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = true
	}
	return set
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[warn] "+format+"\n", args...)
}
