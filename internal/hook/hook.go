// Package hook is the client side of the external automation webhooks.
// Both the plan-generation and chat-answer endpoints are opaque: a JSON
// payload goes out, and whatever comes back (plain text, a bare JSON
// string, or an object with any of several known field names) is
// resolved to a single text body through one ordered-match pass.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// responseKeys are the candidate field names searched, in priority order,
// when a webhook answers with a JSON object.
var responseKeys = []string{
	"response", "answer", "message", "text",
	"reply", "result", "output", "plan", "content",
}

type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Post sends payload as JSON to url and returns the raw response body.
// A non-2xx status is an error; the body is still read and discarded so
// the connection can be reused.
func (c *Client) Post(ctx context.Context, url string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return string(raw), nil
}

// ExtractText resolves a raw webhook response to its text body:
//
//  1. If the body is not valid JSON, the raw text itself is the answer.
//  2. If it decodes to a JSON string, that string is the answer.
//  3. If it decodes to an object, the first non-empty string among
//     responseKeys wins; with no match the raw text is the answer.
//
// The result may still be empty; callers substitute their own fallback.
func ExtractText(raw string) string {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}

	switch v := decoded.(type) {
	case string:
		return v
	case map[string]interface{}:
		for _, key := range responseKeys {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return raw
	default:
		return raw
	}
}
