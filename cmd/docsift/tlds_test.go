package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/praetorian-inc/docsift/pkg/tld"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTLDServer tracks how many downloads the commands trigger.
func countingTLDServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func resetTLDFlags(t *testing.T) {
	t.Helper()
	verbose = false
	quiet = false
	tldsFile = filepath.Join(t.TempDir(), "tlds.txt")
	tldsURL = tld.DefaultSourceURL
	tldsMaxAge = tld.DefaultMaxAge
	tldsForce = false
}

func TestRunTLDsRefresh_DownloadsMissing(t *testing.T) {
	resetTLDFlags(t)
	srv, calls := countingTLDServer(t, "COM\nORG\nNET\n")
	tldsURL = srv.URL

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsRefresh(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, buf.String(), "Downloaded 3 TLDs")
	assert.FileExists(t, tldsFile)
}

func TestRunTLDsRefresh_FreshSkipsNetwork(t *testing.T) {
	resetTLDFlags(t)
	srv, calls := countingTLDServer(t, "COM\n")
	tldsURL = srv.URL
	require.NoError(t, os.WriteFile(tldsFile, []byte("COM\n"), 0o644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsRefresh(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, int32(0), calls.Load())
	assert.Contains(t, buf.String(), "fresh")
}

func TestRunTLDsRefresh_ForceBypassesFreshness(t *testing.T) {
	resetTLDFlags(t)
	srv, calls := countingTLDServer(t, "COM\nIO\n")
	tldsURL = srv.URL
	tldsForce = true
	require.NoError(t, os.WriteFile(tldsFile, []byte("COM\n"), 0o644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsRefresh(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, buf.String(), "Downloaded 2 TLDs")
}

func TestRunTLDsRefresh_StaleRefreshes(t *testing.T) {
	resetTLDFlags(t)
	srv, calls := countingTLDServer(t, "COM\n")
	tldsURL = srv.URL
	tldsMaxAge = time.Hour
	require.NoError(t, os.WriteFile(tldsFile, []byte("ORG\n"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(tldsFile, old, old))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsRefresh(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestRunTLDsRefresh_DownloadFailure(t *testing.T) {
	resetTLDFlags(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	tldsURL = srv.URL

	cmd := &cobra.Command{}
	err := runTLDsRefresh(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refreshing TLD list")
}

func TestRunTLDsShow(t *testing.T) {
	resetTLDFlags(t)
	require.NoError(t, os.WriteFile(tldsFile, []byte("# comment\nORG\nCOM\n"), 0o644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsShow(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, "# 2 TLDs cached at "+tldsFile+"\ncom\norg\n", buf.String())
}

func TestRunTLDsShow_QuietListsOnly(t *testing.T) {
	resetTLDFlags(t)
	quiet = true
	require.NoError(t, os.WriteFile(tldsFile, []byte("COM\n"), 0o644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runTLDsShow(cmd, []string{})
	require.NoError(t, err)

	assert.Equal(t, "com\n", buf.String())
}

func TestRunTLDsShow_MissingFile(t *testing.T) {
	resetTLDFlags(t)

	cmd := &cobra.Command{}
	err := runTLDsShow(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading TLD list")
}
