package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/resolver/httpresolver"
	"github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

func newResolverBackend(t *testing.T) *httpresolver.Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("purpose") != "download" {
			http.Error(w, "wrong purpose", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("reference") == "missing" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"error":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio-" + r.URL.Query().Get("reference")))
	}))
	t.Cleanup(srv.Close)

	r, err := httpresolver.New(logger.NewTestLogger(), httpresolver.Config{BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return r
}

func TestRunDownload_WritesFile(t *testing.T) {
	resolver := newResolverBackend(t)
	out := filepath.Join(t.TempDir(), "song.mp3")

	n, path, err := runDownload(context.Background(), resolver, "abc", out)
	require.NoError(t, err)

	assert.Equal(t, out, path)
	assert.Equal(t, len("audio-abc"), n)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "audio-abc", string(data))
}

func TestRunDownload_DefaultName(t *testing.T) {
	resolver := newResolverBackend(t)
	t.Chdir(t.TempDir())

	_, path, err := runDownload(context.Background(), resolver, "abc", "")
	require.NoError(t, err)
	assert.Equal(t, "abc.audio", path)
	assert.FileExists(t, path)
}

func TestRunDownload_Refused(t *testing.T) {
	resolver := newResolverBackend(t)
	out := filepath.Join(t.TempDir(), "missing.mp3")

	_, _, err := runDownload(context.Background(), resolver, "missing", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolutionFailed)
	assert.NoFileExists(t, out)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, app.GetVersionInfo().FullString()+"\n", buf.String())
}

func TestGlobalFlags_Overrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level = \"warn\"\n"), 0o600))

	flags := &globalFlags{configPath: cfgPath}
	cfg, err := flags.load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Audio.Mock)

	flags.logLevel = "debug"
	flags.mockAudio = true
	cfg, err = flags.load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Audio.Mock)
}

func TestDownloadCommand_RequiresReference(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"download"})

	assert.Error(t, root.Execute())
}
