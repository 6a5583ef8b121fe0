package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// apiClient is the shared plumbing for vendor HTTP APIs: one pooled
// http.Client, a client-side rate limiter, and status classification into
// UpstreamError so the fallback chain can decide on retries.
type apiClient struct {
	name    string
	hc      *http.Client
	limiter *rate.Limiter
}

func newAPIClient(name string, timeout time.Duration, perSec float64, burst int) apiClient {
	if perSec <= 0 {
		perSec = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return apiClient{
		name:    name,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

func (c *apiClient) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return permanent(err)
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &UpstreamError{Provider: c.name, Status: res.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return permanent(err)
	}
	return nil
}
