package scriptload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/errors"
)

// maxScriptBytes caps the downloaded bundle; plotly 1.x minified is ~2.5MB
const maxScriptBytes = 16 << 20

var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// Loader fetches the chart library once. The fetch starts when the loader is
// constructed; every Wait call observes the same outcome.
type Loader struct {
	url     string
	client  *http.Client
	timeout time.Duration
	inline  bool

	done chan struct{}
	lib  *chart.Library
	err  error
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for the fetch
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithTimeout bounds the fetch; zero means wait forever
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithInline controls whether the script body is downloaded for embedding.
// Without it the library resolves immediately to a URL reference.
func WithInline(inline bool) Option {
	return func(l *Loader) { l.inline = inline }
}

// New starts loading the library at url
func New(url string, opts ...Option) *Loader {
	l := &Loader{
		url:    url,
		client: http.DefaultClient,
		inline: true,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if !l.inline {
		l.lib = &chart.Library{URL: url, Version: versionOf(url)}
		close(l.done)
		return l
	}

	go l.fetch()
	return l
}

// Resolved returns a loader that is already complete with lib
func Resolved(lib *chart.Library) *Loader {
	l := &Loader{lib: lib, done: make(chan struct{})}
	close(l.done)
	return l
}

// Wait blocks until the library is loaded, the load failed, or ctx ends
func (l *Loader) Wait(ctx context.Context) (*chart.Library, error) {
	select {
	case <-l.done:
		return l.lib, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the load has completed
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) fetch() {
	defer close(l.done)

	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	log.Printf("[ScriptLoader] Fetching %s", l.url)

	body, err := l.get(ctx)
	if err != nil {
		log.Printf("[ScriptLoader] Failed to load %s after %v: %v", l.url, time.Since(start), err)
		l.err = errors.ExternalServiceError("chart library CDN", err)
		return
	}

	log.Printf("[ScriptLoader] Loaded %s (%d bytes) in %.2fms", l.url, len(body), float64(time.Since(start).Nanoseconds())/1e6)
	l.lib = &chart.Library{URL: l.url, Version: versionOf(l.url), Source: body}
}

func (l *Loader) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxScriptBytes {
		return nil, fmt.Errorf("script exceeds %d bytes", maxScriptBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty script body")
	}
	return body, nil
}

func versionOf(url string) string {
	return versionPattern.FindString(url)
}
