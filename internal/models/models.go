// Package models names, lists, and downloads ggml whisper model files.
package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL hosts the published ggml model files.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

const (
	filePrefix = "ggml-"
	fileSuffix = ".bin"
)

// FileName maps a short model name such as "small.en" to "ggml-small.en.bin".
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, filePrefix) {
		name = filePrefix + name
	}
	if !strings.HasSuffix(name, fileSuffix) {
		name += fileSuffix
	}
	return name
}

// Resolve returns the model file path for name inside dir.
// Names that are absolute or contain a path separator are used as-is.
func Resolve(dir string, name string) string {
	name = strings.TrimSpace(name)
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if strings.HasSuffix(name, fileSuffix) {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, FileName(name))
}

// ShortName strips the ggml- prefix and .bin suffix from a model file name.
func ShortName(file string) string {
	return strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), filePrefix), fileSuffix)
}

// List returns the sorted model file names found in dir.
// A missing directory yields an empty list.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list models in %s: %w", dir, err)
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		info, statErr := os.Stat(match)
		if statErr != nil || info.IsDir() {
			continue
		}
		names = append(names, filepath.Base(match))
	}
	sort.Strings(names)
	return names, nil
}

// Options configures Download.
type Options struct {
	BaseURL string
	Client  *http.Client
}

func (o Options) baseURL() string {
	if strings.TrimSpace(o.BaseURL) == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(o.BaseURL, "/")
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 30 * time.Minute}
}

// Download fetches model name into dir and returns the final path.
// An existing file is returned untouched. Partial downloads never survive a failure.
func Download(ctx context.Context, opts Options, name string, dir string, progress io.Writer) (path string, err error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("model name is required")
	}
	file := FileName(filepath.Base(name))
	path = filepath.Join(dir, file)

	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create models dir %s: %w", dir, err)
	}

	url := opts.baseURL() + "/" + file
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	partial := path + ".part"
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", partial, err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(partial)
		}
	}()

	var dst io.Writer = out
	if progress != nil {
		dst = &progressWriter{out: out, progress: progress, total: resp.ContentLength}
	}
	if _, err = io.Copy(dst, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", partial, err)
	}
	if err = out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", partial, err)
	}
	if err = os.Rename(partial, path); err != nil {
		return "", fmt.Errorf("finalize %s: %w", path, err)
	}
	if progress != nil {
		_, _ = fmt.Fprintln(progress)
	}
	return path, nil
}

// progressWriter reports whole-percent progress as bytes are written.
type progressWriter struct {
	out      io.Writer
	progress io.Writer
	total    int64
	written  int64
	last     int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	w.written += int64(n)
	if w.total > 0 {
		percent := w.written * 100 / w.total
		if percent != w.last {
			w.last = percent
			_, _ = fmt.Fprintf(w.progress, "\r%3d%%", percent)
		}
	}
	return n, err
}
