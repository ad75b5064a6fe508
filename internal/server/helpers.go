package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const healthPollInterval = 100 * time.Millisecond

// WaitForHealthy polls /health until the server answers 200 OK or ctx ends.
// baseURL may use the http(s) or ws(s) scheme.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL, err := healthEndpoint(baseURL)
	if err != nil {
		return err
	}
	httpClient := &http.Client{Timeout: time.Second}

	for {
		if healthy(ctx, httpClient, healthURL) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not healthy: %w", baseURL, ctx.Err())
		case <-time.After(healthPollInterval):
		}
	}
}

func healthEndpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = "/health"
	u.RawQuery = ""
	return u.String(), nil
}

func healthy(ctx context.Context, httpClient *http.Client, healthURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
