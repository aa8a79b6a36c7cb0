package tld

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedCache(t *testing.T, tlds string) *Cache {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tlds.txt")
	require.NoError(t, os.WriteFile(path, []byte(tlds), 0o644))

	c := NewCache(Config{Path: path})
	require.NoError(t, c.Load())
	return c
}

func TestIsValidDomain(t *testing.T) {
	c := loadedCache(t, "COM\nNET\nZIP\nGOV\n")
	f := NewFilter(c, nil)

	tests := []struct {
		candidate string
		valid     bool
	}{
		{"example.com", true},
		{"sub.example.net", true},
		{"example.xyz", false},      // not delegated in this cache
		{"bad.zip", false},          // delegated but policy-excluded
		{"agency.gov", false},       // policy-excluded
		{"report.pdf", false},       // file name, pdf is no TLD
		{"bad[.]zip", false},        // defanged, suffix never parses
		{"no-dot-candidate", false}, // whole value treated as suffix
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, f.IsValidDomain(tt.candidate), "candidate %q", tt.candidate)
	}
}

func TestIsValidDomain_FoldsSuffix(t *testing.T) {
	c := loadedCache(t, "COM\n")
	f := NewFilter(c, nil)

	assert.True(t, f.IsValidDomain("EXAMPLE.COM"))
}

func TestNewFilter_NilSelectsDefaultExclusions(t *testing.T) {
	c := loadedCache(t, "COM\nZIP\nPY\nFOO\nGOV\n")
	f := NewFilter(c, nil)

	for _, excluded := range DefaultExcludedTLDs() {
		assert.True(t, f.Excluded(excluded), "expected %q excluded by default", excluded)
		assert.False(t, f.IsValidDomain("host."+excluded))
	}
	assert.True(t, f.IsValidDomain("host.com"))
}

func TestNewFilter_EmptyDisablesExclusions(t *testing.T) {
	c := loadedCache(t, "COM\nZIP\n")
	f := NewFilter(c, []string{})

	assert.True(t, f.IsValidDomain("bad.zip"))
}

func TestNewFilter_CustomExclusions(t *testing.T) {
	c := loadedCache(t, "COM\nNET\n")
	f := NewFilter(c, []string{"com"})

	assert.False(t, f.IsValidDomain("example.com"))
	assert.True(t, f.IsValidDomain("example.net"))
}

func TestFilterDomains(t *testing.T) {
	c := loadedCache(t, "COM\nNET\nZIP\n")
	f := NewFilter(c, nil)

	got := f.FilterDomains([]string{"a.com", "b.zip", "c.net", "d.unknown"})
	assert.Equal(t, []string{"a.com", "c.net"}, got)
}

func TestFilterDomains_EmptyCache(t *testing.T) {
	// A cache that never loaded validates nothing; every candidate drops.
	c := NewCache(Config{Path: filepath.Join(t.TempDir(), "tlds.txt")})
	f := NewFilter(c, nil)

	got := f.FilterDomains([]string{"a.com", "b.net"})
	assert.Empty(t, got)
}

func TestFilterDomains_NoCandidates(t *testing.T) {
	c := loadedCache(t, "COM\n")
	f := NewFilter(c, nil)

	assert.Empty(t, f.FilterDomains(nil))
}
