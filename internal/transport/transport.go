// Package transport acquires STL payloads by URL, from local files, or by
// rendering OpenSCAD sources
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/goslice/pkg/openscad"
)

// ErrStatus is returned when a server answers with anything but 200
var ErrStatus = errors.New("unexpected status")

// DefaultMaxSize caps the payload size of a single fetch
const DefaultMaxSize = 256 << 20

// Renderer turns an OpenSCAD source into an STL payload
type Renderer interface {
	Render(ctx context.Context, scadFile string) ([]byte, error)
}

// Fetcher acquires payloads. It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	maxSize int64
	scad    Renderer
	logger  *slog.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithClient sets the HTTP client
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxSize caps payloads at n bytes
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) { f.maxSize = n }
}

// WithRenderer sets the OpenSCAD renderer used for .scad sources
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) { f.scad = r }
}

// New creates a Fetcher
func New(logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &Fetcher{
		client:  &http.Client{Timeout: 2 * time.Minute},
		maxSize: DefaultMaxSize,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.scad == nil {
		f.scad = openscad.NewRenderer(".", logger)
	}
	return f
}

// IsURL reports whether source is fetched over HTTP
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the payload named by source: an http(s) URL, an .scad
// file rendered to STL, or any other local file read as is
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case IsURL(source):
		return f.get(ctx, source)
	case openscad.IsSource(source):
		return f.scad.Render(ctx, source)
	default:
		return f.read(source)
	}
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	data, err := f.readAll(resp.Body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetched payload", "url", url, "bytes", len(data), "time", time.Since(start))
	return data, nil
}

func (f *Fetcher) read(path string) ([]byte, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return f.readAll(file)
}

func (f *Fetcher) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("payload exceeds %d bytes", f.maxSize)
	}
	return data, nil
}
