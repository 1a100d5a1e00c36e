package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/siddheshzz/galileo/tile"
)

func init() {
	Register("http", func(rawURL string) (Source, error) { return NewHTTP("", rawURL), nil })
	Register("https", func(rawURL string) (Source, error) { return NewHTTP("", rawURL), nil })
}

const httpUserAgent = "galileo/1.0"

// httpBackstopTimeout caps a single request when the caller's context
// carries no deadline of its own.
const httpBackstopTimeout = 30 * time.Second

// HTTP fetches tiles from a server exposing {z}/{x}/{y} templated
// URLs. Placeholders are substituted per request; everything else in
// the template is preserved.
type HTTP struct {
	name     string
	template string
	client   *http.Client
}

// NewHTTP creates a source for the templated URL. An empty name
// defaults to the template's host.
func NewHTTP(name, template string) *HTTP {
	if name == "" {
		name = hostOf(template)
	}
	return &HTTP{
		name:     name,
		template: template,
		client:   &http.Client{Timeout: httpBackstopTimeout},
	}
}

// Name implements Source.
func (s *HTTP) Name() string { return s.name }

// URL returns the request URL for a coordinate.
func (s *HTTP) URL(c tile.Coord) string {
	u := strings.ReplaceAll(s.template, "{z}", strconv.FormatUint(uint64(c.Z), 10))
	u = strings.ReplaceAll(u, "{x}", strconv.FormatUint(uint64(c.X), 10))
	u = strings.ReplaceAll(u, "{y}", strconv.FormatUint(uint64(c.Y), 10))
	return u
}

// Fetch implements Source. Status 404 and 204 map to ErrNotFound;
// other non-200 statuses are plain errors. Gzip bodies are inflated
// whether or not the server declared the encoding.
func (s *HTTP) Fetch(ctx context.Context, c tile.Coord) ([]byte, error) {
	url := s.URL(c)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", url, err)
	}
	req.Header.Set("User-Agent", httpUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyNetErr(url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	default:
		return nil, fmt.Errorf("source: %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyNetErr(url, err)
	}
	if len(body) == 0 {
		// Some servers answer empty 200s for void tiles.
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	return maybeInflate(body)
}

// classifyNetErr folds timeout-shaped failures into ErrTimeout so the
// retry policy can tell them from terminal errors.
func classifyNetErr(url string, err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, url, err)
	}
	return fmt.Errorf("source: %s: %w", url, err)
}

func hostOf(template string) string {
	rest := template
	if _, after, ok := strings.Cut(template, "://"); ok {
		rest = after
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
