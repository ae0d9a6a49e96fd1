// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the shared outbound HTTP client for provider calls. Deadlines are
// the caller's job: requests carry their own context, so a zero timeout here
// leaves the client unbounded.
type Client struct {
	inner *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		inner: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.inner.Do(req)
}
