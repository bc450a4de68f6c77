package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Source yields the names of agents the coordinator currently knows about.
type Source interface {
	Names(ctx context.Context) (map[string]struct{}, error)
}

// Static is a fixed name set, useful for tests and one-shot tooling.
type Static map[string]struct{}

// Names implements Source.
func (s Static) Names(context.Context) (map[string]struct{}, error) {
	return s, nil
}

// HTTPSource fetches the attached-agent list from a coordinator endpoint
// that returns a JSON string array.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the HTTP client, e.g. for custom TLS settings.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// NewHTTPSource returns a Source backed by the given coordinator URL.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Names implements Source.
func (s *HTTPSource) Names(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build node list request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch node list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node list endpoint returned status %d", resp.StatusCode)
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("failed to decode node list: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}
