package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perrors "github.com/jmgilman/go/errors"

	"github.com/jonwraymond/discogstools/observe"
)

const (
	// DefaultBaseURL is the public Discogs database API.
	DefaultBaseURL = "https://api.discogs.com"

	// DefaultUserAgent identifies this client to the upstream.
	DefaultUserAgent = "DiscogsTools/1.0"

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 8 * 1024 * 1024
)

// HTTPClient implements Client against the Discogs REST API.
type HTTPClient struct {
	baseURL   string
	userAgent string
	key       string
	secret    string
	http      *http.Client
	logger    observe.Logger
	limits    *rateLimitTracker
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCredentials sets the consumer key and secret. Without them the client
// runs anonymously with a lower upstream rate limit.
func WithCredentials(key, secret string) Option {
	return func(c *HTTPClient) {
		c.key = key
		c.secret = secret
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for request-level debug output.
func WithLogger(l observe.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a client with the given options.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: DefaultTimeout},
		logger:    observe.NopLogger(),
		limits:    &rateLimitTracker{now: time.Now},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether consumer credentials are configured.
func (c *HTTPClient) Authenticated() bool {
	return c.key != "" && c.secret != ""
}

// RateLimit returns the most recent budget reported by the upstream.
func (c *HTTPClient) RateLimit() RateLimit {
	return c.limits.snapshot()
}

// Search returns the first page of releases matching params.
func (c *HTTPClient) Search(ctx context.Context, params SearchParams) ([]ReleaseSummary, error) {
	q := url.Values{}
	for k, v := range params.query() {
		q.Set(k, v)
	}

	var raw rawSearchResponse
	if err := c.get(ctx, "search", "/database/search", q, &raw); err != nil {
		return nil, err
	}

	out := make([]ReleaseSummary, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.Type != "" && r.Type != "release" {
			continue
		}
		out = append(out, r.normalize())
	}
	return out, nil
}

// Release returns the full record of one release.
func (c *HTTPClient) Release(ctx context.Context, id int) (*ReleaseDetail, error) {
	var raw rawRelease
	path := "/releases/" + strconv.Itoa(id)
	if err := c.get(ctx, "release", path, nil, &raw); err != nil {
		return nil, perrors.WithContext(err, "release_id", id)
	}
	detail := raw.normalize()
	return &detail, nil
}

func (c *HTTPClient) get(ctx context.Context, op, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return perrors.Wrapf(err, perrors.CodeInternal, "%s: build request", op)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.discogs.v2.discogs+json")
	if c.Authenticated() {
		req.Header.Set("Authorization", fmt.Sprintf("Discogs key=%s, secret=%s", c.key, c.secret))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "discogs request failed",
			observe.Field{Key: "op", Value: op},
			observe.Err(err),
		)
		return perrors.Wrapf(err, perrors.CodeNetwork, "%s: request failed", op)
	}
	defer func() { _ = resp.Body.Close() }()

	c.limits.observe(resp.Header)
	c.logger.Debug(ctx, "discogs request",
		observe.Field{Key: "op", Value: op},
		observe.Field{Key: "status", Value: resp.StatusCode},
		observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return perrors.Wrapf(err, perrors.CodeNetwork, "%s: read body", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, errorMessage(body))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return perrors.Wrapf(err, perrors.CodeSchemaFailed, "%s: decode response", op)
	}
	return nil
}

// errorMessage extracts the upstream's {"message": "..."} body if present.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

var _ Client = (*HTTPClient)(nil)
