package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/praetorian-inc/docsift/pkg/rule"
	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/praetorian-inc/docsift/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileFilter builds a domain filter over a fresh on-disk TLD list, so
// classification never reaches for the network.
func fileFilter(t *testing.T, tlds string) *tld.Filter {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tlds.txt")
	require.NoError(t, os.WriteFile(path, []byte(tlds), 0o644))
	return tld.NewFilter(tld.NewCache(tld.Config{Path: path}), nil)
}

func builtinSession(t *testing.T, domains *tld.Filter) *Session {
	t.Helper()

	reg, err := rule.NewBuiltinRegistry()
	require.NoError(t, err)

	s, err := NewSession(reg, domains)
	require.NoError(t, err)
	return s
}

func TestClassify_MixedIndicators(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	rs, err := s.Classify(context.Background(),
		"Contact admin@example.com or visit http://bad.zip/x, file report.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@example.com"}, rs.Indicators["EMAIL"])
	assert.Equal(t, []string{"example.com"}, rs.Indicators["DOMAIN"])
	assert.Equal(t, []string{"report.pdf"}, rs.Indicators["OFFICE/PDF"])
	assert.Equal(t, []string{"http://bad.zip/x"}, rs.Indicators["URL"])
	assert.Equal(t, []string{"bad.zip"}, rs.Indicators["ARCHIVE"])

	// bad.zip is policy-excluded and report.pdf has no delegated TLD, so
	// only example.com survives the domain filter.
	assert.Len(t, rs.Indicators, 5)
	assert.Empty(t, rs.Scripts)
	assert.Equal(t, 5, rs.Found)
	assert.False(t, rs.Empty())
}

func TestClassify_ArabicOnlyText(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	rs, err := s.Classify(context.Background(), "مرحبا بالعالم")
	require.NoError(t, err)

	// Fragments concatenate into a single blob without separators.
	assert.Equal(t, "مرحبابالعالم", rs.Scripts["ARABIC"])
	assert.Len(t, rs.Scripts, 1)
	assert.Empty(t, rs.Indicators)
	assert.Equal(t, 1, rs.Found)
	assert.False(t, rs.Empty())
}

func TestClassify_EmptyInput(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	rs, err := s.Classify(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, rs.Indicators)
	assert.Empty(t, rs.Scripts)
	assert.Equal(t, 0, rs.Found)
	assert.True(t, rs.Empty())
}

func TestClassify_TLDFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// No cache file and a failing source: every domain candidate drops,
	// and classification continues without error.
	path := filepath.Join(t.TempDir(), "tlds.txt")
	domains := tld.NewFilter(tld.NewCache(tld.Config{Path: path, SourceURL: srv.URL}), nil)
	s := builtinSession(t, domains)

	rs, err := s.Classify(context.Background(), "visit example.com today")
	require.NoError(t, err)

	assert.NotContains(t, rs.Indicators, types.LabelDomain)
	assert.Equal(t, 0, rs.Found)
	assert.True(t, rs.Empty())
}

func TestClassify_TLDRefreshIsLazy(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("COM\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "tlds.txt")
	cache := tld.NewCache(tld.Config{Path: path, SourceURL: srv.URL})
	domains := tld.NewFilter(cache, nil)

	// A document without domain candidates never triggers a fetch.
	s := builtinSession(t, domains)
	_, err := s.Classify(context.Background(), "plain words only")
	require.NoError(t, err)
	assert.Equal(t, int32(0), calls.Load())

	// The first domain candidate does.
	s = builtinSession(t, domains)
	rs, err := s.Classify(context.Background(), "see example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"example.com"}, rs.Indicators["DOMAIN"])
}

func TestClassify_DeduplicatesAndSorts(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	text := "d41d8cd98f00b204e9800998ecf8427e then 00000000000000000000000000000000 " +
		"then d41d8cd98f00b204e9800998ecf8427e again"
	rs, err := s.Classify(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00000000000000000000000000000000",
		"d41d8cd98f00b204e9800998ecf8427e",
	}, rs.Indicators["MD5"])
	assert.Equal(t, 1, rs.Found)
}

func TestClassify_DomainPartiallyValid(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	rs, err := s.Classify(context.Background(), "hosts a.com and b.org listed")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.com"}, rs.Indicators["DOMAIN"])
	assert.Equal(t, 1, rs.Found)
}

func TestClassify_DomainEmptiedUncountsCategory(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	// report.pdf raises the domain rule and the office rule; the domain
	// filter then drops it, leaving only the office category counted.
	// The Cyrillic run counts separately.
	rs, err := s.Classify(context.Background(), "файл report.pdf")
	require.NoError(t, err)

	assert.NotContains(t, rs.Indicators, types.LabelDomain)
	assert.Equal(t, []string{"report.pdf"}, rs.Indicators["OFFICE/PDF"])
	assert.Equal(t, "файл", rs.Scripts["CYRILLIC"])
	assert.Equal(t, 2, rs.Found)
}

func TestClassify_Idempotent(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))
	text := "Contact admin@example.com or visit http://bad.zip/x, file report.pdf"

	first, err := s.Classify(context.Background(), text)
	require.NoError(t, err)
	second, err := s.Classify(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Found, s.Counter())
}

func TestClassify_CanceledContext(t *testing.T) {
	s := builtinSession(t, fileFilter(t, "COM\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Classify(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSession_Validation(t *testing.T) {
	domains := fileFilter(t, "COM\n")

	_, err := NewSession(nil, domains)
	assert.Error(t, err)

	empty, err := rule.NewRegistry(nil)
	require.NoError(t, err)
	_, err = NewSession(empty, domains)
	assert.Error(t, err)

	reg, err := rule.NewBuiltinRegistry()
	require.NoError(t, err)
	_, err = NewSession(reg, nil)
	assert.Error(t, err)
}
