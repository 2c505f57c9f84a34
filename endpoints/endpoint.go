package endpoints

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/marcelsud/n8n-gateway/gateway/signature"
)

/* Endpoint represents one n8n webhook the gateway forwards to
 * Maps a logical key to a destination URL with call settings
 */
type Endpoint struct {
	Key            string
	URL            string
	TestURL        string        // Optional: n8n "webhook-test" URL echoed by health probes
	Timeout        time.Duration // Default per-call timeout, overridable per request
	ResultFields   []string      // Dotted paths tried in order to extract the caller-facing result
	RequiredFields []string      // Top-level payload fields that must be present and non-empty
	Aliases        []string      // Extra HTTP paths mounted to the same forward handler
	SigningSecret  string        // Optional Standard Webhooks secret (whsec_ prefix)
	Fallback       []json.RawMessage
}

// HasFallback reports whether demo payloads are configured for the endpoint
func (e Endpoint) HasFallback() bool {
	return len(e.Fallback) > 0
}

// Validate checks if the endpoint configuration is valid
func (e *Endpoint) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if err := validateURL(e.URL); err != nil {
		return fmt.Errorf("invalid url for endpoint %s: %w", e.Key, err)
	}
	if e.TestURL != "" {
		if err := validateURL(e.TestURL); err != nil {
			return fmt.Errorf("invalid test_url for endpoint %s: %w", e.Key, err)
		}
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive for endpoint %s", e.Key)
	}
	for _, alias := range e.Aliases {
		if !strings.HasPrefix(alias, "/") {
			return fmt.Errorf("alias %q must start with / for endpoint %s", alias, e.Key)
		}
	}
	if e.SigningSecret != "" {
		if _, err := signature.ParseSecret(e.SigningSecret); err != nil {
			return fmt.Errorf("invalid signing_secret for endpoint %s: %w", e.Key, err)
		}
	}
	for i, payload := range e.Fallback {
		if !json.Valid(payload) {
			return fmt.Errorf("fallback %d is not valid JSON for endpoint %s", i, e.Key)
		}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	return nil
}
