package contractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Client fetches contractor records from the business service. Results are
// cached for a short TTL and outgoing requests are rate limited so a branch
// office hammering the form does not hammer the registry.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
	limiter  *rate.Limiter
	cache    *cache.Cache
}

type Option func(*Client)

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithCacheTTL sets how long fetched contractors are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache.New(ttl, 2*ttl)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

func NewClient(baseURL, apiToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(10), 1),
		cache:    cache.New(5*time.Minute, 10*time.Minute),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches a single contractor by id.
func (c *Client) Get(ctx context.Context, id int64) (*Contractor, error) {
	key := strconv.FormatInt(id, 10)
	if v, ok := c.cache.Get(key); ok {
		cached := v.(Contractor)
		return &cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/api/business/v1/contractors/%d/", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.fetchError(resp)
	}

	var ct Contractor
	if err := json.NewDecoder(resp.Body).Decode(&ct); err != nil {
		return nil, fmt.Errorf("decoding contractor: %w", err)
	}

	c.cache.Set(key, ct, cache.DefaultExpiration)

	return &ct, nil
}

func (c *Client) fetchError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Detail == "" {
		body.Detail = http.StatusText(resp.StatusCode)
	}

	return &FetchError{StatusCode: resp.StatusCode, Detail: body.Detail}
}
