package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrBadStatus is returned when the counter service answers with a non-2xx status.
var ErrBadStatus = errors.New("counter service returned an error status")

// Client talks to the click counter service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// All fetches every counter from GET /api/all/.
func (c *Client) All(ctx context.Context) (map[string]int64, error) {
	return c.get(ctx, c.baseURL+"/api/all/")
}

// Click registers one click for repo via GET /api/click?repo= and returns the
// counters the service reported back.
func (c *Client) Click(ctx context.Context, repo string) (map[string]int64, error) {
	q := url.Values{"repo": {repo}}
	return c.get(ctx, c.baseURL+"/api/click?"+q.Encode())
}

func (c *Client) get(ctx context.Context, target string) (map[string]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "AwesomeArcade-Counter/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("counter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode counters: %w", err)
	}
	out := make(map[string]int64, len(raw))
	for repo, v := range raw {
		n, err := ParseCount(v)
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", repo, err)
		}
		out[repo] = n
	}
	return out, nil
}
