package wfm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultBaseURL = "https://api.warframe.market/v2"

// minRequestInterval paces requests to stay under the warframe.market
// rate limit (3 requests/sec for anonymous clients).
const minRequestInterval = 340 * time.Millisecond

// Client is a rate-limited warframe.market HTTP client.
// All requests share a single pacing clock, so concurrent callers are
// serialized down to the allowed request rate.
type Client struct {
	http     *http.Client
	sem      chan struct{}
	mu       sync.Mutex
	lastReq  time.Time
	platform string
	language string

	// BaseURL overrides the production endpoint (tests point it at a stub).
	BaseURL string

	orderCache *OrderCache
}

// NewClient creates a client for the given platform ("pc", "ps4", "xbox",
// "switch") and language code.
func NewClient(platform, language string) *Client {
	if platform == "" {
		platform = "pc"
	}
	if language == "" {
		language = "en"
	}
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		sem:        make(chan struct{}, 4),
		platform:   platform,
		language:   language,
		BaseURL:    defaultBaseURL,
		orderCache: NewOrderCache(),
	}
}

// HealthCheck pings the items endpoint to verify connectivity.
func (c *Client) HealthCheck() bool {
	req, err := c.newRequest(c.BaseURL + "/items")
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

// GetJSON fetches a URL and decodes JSON into dst, pacing the request
// against the shared rate limit.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()
	c.waitTurn()

	req, err := c.newRequest(url)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// waitTurn blocks until the minimum interval since the previous request
// has elapsed, then claims the current slot.
func (c *Client) waitTurn() {
	c.mu.Lock()
	elapsed := time.Since(c.lastReq)
	if elapsed < minRequestInterval {
		// Hold the lock while sleeping so queued callers line up behind us.
		time.Sleep(minRequestInterval - elapsed)
	}
	c.lastReq = time.Now()
	c.mu.Unlock()
}

func (c *Client) newRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "plat-tracker/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Platform", c.platform)
	req.Header.Set("Language", c.language)
	return req, nil
}

// APIError is a non-200 response from warframe.market.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("warframe.market %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == 404
}
