package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rangershop/backend/pkg/config"
)

// State classifies the outcome of an image lookup. Callers map every state
// to an empty image when no URL is available; the distinction exists so the
// outcomes can be logged and cached differently.
type State int

const (
	// StateFound means the provider returned at least one image URL.
	StateFound State = iota
	// StateNotFound means the provider answered but had no results.
	StateNotFound
	// StateUnavailable means the provider could not be reached or errored.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateFound:
		return "found"
	case StateNotFound:
		return "not_found"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result carries the lookup outcome and the image URL when one was found.
type Result struct {
	State State
	URL   string
}

// Finder is the lookup surface consumed by the catalog service.
type Finder interface {
	FindImage(ctx context.Context, query string) (Result, error)
}

// Client queries the configured image search provider.
type Client struct {
	cfg        config.ImageSearchConfig
	httpClient *http.Client
}

// NewClient builds an image search client. The http.Client is injected so
// tests can point it at a local server.
func NewClient(cfg config.ImageSearchConfig, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("image search base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	URL       string `json:"url"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

func (i searchItem) imageURL() string {
	if i.URL != "" {
		return i.URL
	}
	if i.Link != "" {
		return i.Link
	}
	return i.Thumbnail
}

// FindImage looks up an image URL for the query. Provider failures are
// reported as StateUnavailable together with the underlying error so the
// caller can log and continue without an image.
func (c *Client) FindImage(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{State: StateNotFound}, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("num", "1")

	endpoint := fmt.Sprintf("%s/imagesearch?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{State: StateUnavailable}, fmt.Errorf("build image search request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
		req.Header.Set("x-rapidapi-host", c.cfg.Host)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Result{State: StateUnavailable}, fmt.Errorf("image search request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return Result{State: StateUnavailable}, fmt.Errorf("image search http %d", res.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Result{State: StateUnavailable}, fmt.Errorf("decode image search response: %w", err)
	}

	for _, item := range body.Items {
		if u := item.imageURL(); u != "" {
			return Result{State: StateFound, URL: u}, nil
		}
	}
	return Result{State: StateNotFound}, nil
}
