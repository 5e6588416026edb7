// Package fetch retrieves per-build result documents from a local
// directory or over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when no document exists for a build.
var ErrNotFound = errors.New("result document not found")

// BuildPlaceholder is replaced by the build id in HTTP URL templates.
const BuildPlaceholder = "{build}"

// maxDocumentSize bounds a single result document.
const maxDocumentSize = 256 << 20

// Dir reads documents stored as <Root>/<id>.json or <Root>/<id>/full_results.json.
type Dir struct {
	Root string
}

// NewDir creates a directory fetcher.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Fetch returns the document for buildID.
func (d *Dir) Fetch(ctx context.Context, buildID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := []string{
		filepath.Join(d.Root, buildID+".json"),
		filepath.Join(d.Root, buildID, "full_results.json"),
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
	}
	return nil, fmt.Errorf("%w: build %s under %s", ErrNotFound, buildID, d.Root)
}

// HTTP fetches documents from a URL template containing {build}.
type HTTP struct {
	Template string
	Client   *http.Client
}

// NewHTTP creates an HTTP fetcher with a bounded client timeout.
func NewHTTP(template string) *HTTP {
	return &HTTP{
		Template: template,
		Client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// URL returns the document URL for buildID.
func (h *HTTP) URL(buildID string) string {
	return strings.ReplaceAll(h.Template, BuildPlaceholder, buildID)
}

// Fetch returns the document for buildID.
func (h *HTTP) Fetch(ctx context.Context, buildID string) ([]byte, error) {
	url := h.URL(buildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}
