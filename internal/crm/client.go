package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client pushes profile attributes and behavioral events to the marketing
// CRM. Sync failures are reported to the caller but never block the action
// that triggered them.
type Client interface {
	// Identify upserts a person in the CRM keyed by auth subject.
	Identify(ctx context.Context, subject string, attributes map[string]any) error

	// Track records a named event for a person.
	Track(ctx context.Context, subject, event string, data map[string]any) error
}

// Noop is a Client that does nothing, used when no CRM credentials are
// configured.
type Noop struct{}

var _ Client = Noop{}

func (Noop) Identify(ctx context.Context, subject string, attributes map[string]any) error {
	return nil
}

func (Noop) Track(ctx context.Context, subject, event string, data map[string]any) error {
	return nil
}

// HTTPClient talks to a track-API style CRM over HTTPS with basic auth
// (site ID as username, API key as password).
type HTTPClient struct {
	baseURL string
	siteID  string
	apiKey  string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a CRM client with a bounded request timeout.
func NewHTTPClient(baseURL, siteID, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		siteID:  siteID,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Identify(ctx context.Context, subject string, attributes map[string]any) error {
	path := fmt.Sprintf("/api/v1/customers/%s", url.PathEscape(subject))
	return c.send(ctx, http.MethodPut, path, attributes)
}

func (c *HTTPClient) Track(ctx context.Context, subject, event string, data map[string]any) error {
	path := fmt.Sprintf("/api/v1/customers/%s/events", url.PathEscape(subject))
	payload := map[string]any{"name": event}
	if len(data) > 0 {
		payload["data"] = data
	}
	return c.send(ctx, http.MethodPost, path, payload)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.siteID, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("crm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		log.Printf("[CRMClient] %s %s returned %d: %s", method, path, resp.StatusCode, snippet)
		return fmt.Errorf("crm returned status %d", resp.StatusCode)
	}
	return nil
}
