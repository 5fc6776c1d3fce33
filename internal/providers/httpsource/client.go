package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/providers"
)

// Config controls how the client reaches the roster export.
type Config struct {
	URL            string
	Token          string
	Timeout        time.Duration
	HTTPClient     *http.Client
	PhotoOverrides map[string]string
}

// Client fetches the roster JSON array over HTTP.
type Client struct {
	url        string
	token      string
	httpClient httpDoer
	overrides  providers.PhotoOverrides
	now        func() time.Time
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		url:        normalizeURL(cfg.URL),
		token:      cfg.Token,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		overrides:  providers.PhotoOverrides(cfg.PhotoOverrides),
		now:        time.Now,
	}
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string {
	return providerName
}

// FetchRoster retrieves and decodes the full record array.
func (c *Client) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header, c.now()),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &providers.StatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var records []domainroster.Person
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return providers.NormalizeRecords(records, c.overrides), nil
}
