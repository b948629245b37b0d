package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Canvas LMS REST client scoped to student-level
// endpoints. All requests carry the bearer token and a 30 second timeout.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Canvas client. The base URL is normalized to https
// and the access token is required.
func NewClient(rawURL, token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("canvas access token is required")
	}
	if rawURL == "" {
		rawURL = "https://canvas.instructure.com"
	}

	normalized := strings.TrimRight(rawURL, "/")
	if strings.HasPrefix(normalized, "http://") {
		normalized = "https://" + strings.TrimPrefix(normalized, "http://")
	} else if !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return &Client{
		baseURL: normalized + "/api/v1",
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs one GET and returns the body together with the Link header
// so callers can follow pagination.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, string, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		target = endpoint
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to call Canvas API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, resp.Header.Get("Link"), nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", fmt.Errorf("resource not found")
	default:
		return nil, "", fmt.Errorf("Canvas API error (status %d): %s", resp.StatusCode, string(body))
	}
}

// getJSON performs one GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	body, _, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getPaginated collects every page of a list endpoint by following the
// Link header's rel="next" URL.
func getPaginated[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var all []T
	target := endpoint

	for {
		body, link, err := c.get(ctx, target, params)
		if err != nil {
			return nil, err
		}

		var page []T
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode page: %w", err)
		}
		all = append(all, page...)

		next := nextPageURL(link)
		if next == "" {
			break
		}
		// The next URL already carries the query parameters.
		target = next
		params = nil
	}

	return all, nil
}

// nextPageURL extracts the rel="next" URL from an RFC 5988 Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		urlPart := strings.Trim(strings.TrimSpace(section[0]), "<>")
		for _, attr := range section[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return urlPart
			}
		}
	}
	return ""
}

// CheckConnection verifies the token by fetching the current user.
func (c *Client) CheckConnection(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "users/self", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
