// Package source talks to the remote read-only planets API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/hpungsan/holocron/internal/config"
	"github.com/hpungsan/holocron/internal/errors"
	"github.com/hpungsan/holocron/internal/planet"
)

// maxBodyBytes caps how much of a response body is decoded.
const maxBodyBytes = 8 << 20

// Client fetches listing pages and related resources over HTTP.
type Client struct {
	client    *http.Client
	names     *cache.Cache // nil when the resident name cache is disabled
	userAgent string
}

// New returns a Client configured from cfg.
func New(cfg *config.Config) *Client {
	c := &Client{userAgent: cfg.UserAgent}
	c.client = &http.Client{
		Timeout:   cfg.HTTPTimeout(),
		Transport: c,
	}
	if ttl := cfg.ResidentCacheTTL(); ttl > 0 {
		c.names = cache.New(ttl, 2*ttl)
	}
	return c
}

// RoundTrip sets the User-Agent header on every outgoing request.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	return http.DefaultTransport.RoundTrip(req)
}

// envelope distinguishes an absent results key from an empty one.
type envelope struct {
	Results *[]planet.Raw `json:"results"`
	Next    *string       `json:"next"`
}

// GetPage fetches one page of the listing. A body without a results array
// is an error, so a malformed page never advances the cursor.
func (c *Client) GetPage(ctx context.Context, url string) (*planet.Page, error) {
	var env envelope
	if err := c.getJSON(ctx, url, &env); err != nil {
		return nil, err
	}
	if env.Results == nil {
		return nil, errors.NewNetwork(url, fmt.Errorf("response has no results"))
	}
	results := *env.Results
	if results == nil {
		results = []planet.Raw{}
	}
	return &planet.Page{Results: results, Next: env.Next}, nil
}

// resource is the part of a related resource we read.
type resource struct {
	Name *string `json:"name"`
}

// GetName fetches a related resource and returns its display name.
func (c *Client) GetName(ctx context.Context, url string) (string, error) {
	if c.names != nil {
		if v, ok := c.names.Get(url); ok {
			return v.(string), nil
		}
	}

	var r resource
	if err := c.getJSON(ctx, url, &r); err != nil {
		return "", err
	}
	if r.Name == nil {
		return "", errors.NewNetwork(url, fmt.Errorf("response has no name field"))
	}

	if c.names != nil {
		c.names.SetDefault(url, *r.Name)
	}
	return *r.Name, nil
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewNetwork(url, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewNetwork(url, fmt.Errorf("failed to perform request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return errors.NewNetwork(url, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return errors.NewNetwork(url, fmt.Errorf("failed to decode response: %w", err))
	}

	slog.Debug("remote fetch", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))
	return nil
}
