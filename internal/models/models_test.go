package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "ggml-small.en.bin", FileName("small.en"))
	require.Equal(t, "ggml-base.bin", FileName("ggml-base"))
	require.Equal(t, "ggml-medium.bin", FileName("ggml-medium.bin"))
	require.Equal(t, "ggml-tiny.bin", FileName(" tiny.bin "))
}

func TestResolve(t *testing.T) {
	require.Equal(t, "/models/ggml-small.en.bin", Resolve("/models", "small.en"))
	require.Equal(t, "/models/custom.bin", Resolve("/models", "custom.bin"))
	require.Equal(t, "/opt/whisper/ggml-large.bin", Resolve("/models", "/opt/whisper/ggml-large.bin"))
	require.Equal(t, "sub/ggml-x.bin", Resolve("/models", "sub/ggml-x.bin"))
}

func TestShortName(t *testing.T) {
	require.Equal(t, "small.en", ShortName("/models/ggml-small.en.bin"))
	require.Equal(t, "base", ShortName("ggml-base.bin"))
}

func TestListSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ggml-small.en.bin", "ggml-base.bin", "notes.txt", "ggml-tiny.bin.part"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ggml-dir.bin"), 0o755))

	names, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"ggml-base.bin", "ggml-small.en.bin"}, names)
}

func TestListMissingDirIsEmpty(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestDownloadWritesModel(t *testing.T) {
	payload := bytes.Repeat([]byte("w"), 4096)
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "models")
	var progress bytes.Buffer
	path, err := Download(context.Background(), Options{BaseURL: server.URL + "/", Client: server.Client()}, "base.en", dir, &progress)
	require.NoError(t, err)
	require.Equal(t, "/ggml-base.en.bin", requested)
	require.Equal(t, filepath.Join(dir, "ggml-base.en.bin"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.NoFileExists(t, path+".part")
	require.Contains(t, progress.String(), "100%")
}

func TestDownloadSkipsExistingModel(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ggml-small.bin")
	require.NoError(t, os.WriteFile(existing, []byte("cached"), 0o644))

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer server.Close()

	path, err := Download(context.Background(), Options{BaseURL: server.URL, Client: server.Client()}, "small", dir, nil)
	require.NoError(t, err)
	require.Equal(t, existing, path)
	require.Zero(t, calls)
}

func TestDownloadNonSuccessStatusLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), Options{BaseURL: server.URL, Client: server.Client()}, "missing", dir, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.NoFileExists(t, filepath.Join(dir, "ggml-missing.bin"))
	require.NoFileExists(t, filepath.Join(dir, "ggml-missing.bin.part"))
}

func TestDownloadTruncatedBodyRemovesPartial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("short"))
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), Options{BaseURL: server.URL, Client: server.Client()}, "tiny", dir, nil)
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "ggml-tiny.bin"))
	require.NoFileExists(t, filepath.Join(dir, "ggml-tiny.bin.part"))
}

func TestDownloadRequiresName(t *testing.T) {
	_, err := Download(context.Background(), Options{}, " ", t.TempDir(), nil)
	require.Error(t, err)
}
