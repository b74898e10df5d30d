package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docbind/docbind/errors"
)

// Client wraps http.Client for documentation hosts: scheme allowlist,
// redirect cap, request timeout and a response size cap.
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
	maxBodyBytes   int64
}

// NewClient creates the network client used for documentation fetches.
func NewClient(timeout time.Duration) *Client {
	c := &Client{
		Client:         &http.Client{Timeout: timeout},
		allowedSchemes: []string{"http", "https"},
		maxRedirects:   10,
		maxBodyBytes:   16 << 20,
	}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.maxRedirects {
			return errors.Newf("stopped after %d redirects", c.maxRedirects)
		}
		if err := c.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}
	return c
}

func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range c.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}
	if u.Hostname() == "" {
		return errors.New("URL missing hostname")
	}
	return nil
}

// Fetch retrieves a document body from a network URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.NewFetchError("invalid URL %q: %v", rawURL, err)
	}
	if err := c.validateURL(u); err != nil {
		return nil, errors.NewFetchError("blocked URL %q: %v", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.NewFetchError("building request for %s: %v", rawURL, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.NewFetchError("fetching %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetchError("fetching %s: %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, errors.NewFetchError("reading %s: %v", rawURL, err)
	}
	return data, nil
}
