package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway/signature"
)

// maxResponseBytes caps how much of a webhook reply is read into memory
const maxResponseBytes = 32 << 20

// MaxCallTimeout bounds a per-call timeout override. The HTTP server sizes
// its write timeout from it.
const MaxCallTimeout = 600 * time.Second

// Resolver looks endpoints up by key. *endpoints.Registry implements it.
type Resolver interface {
	Resolve(key string) (endpoints.Endpoint, error)
}

// ForwardResult is a webhook reply captured verbatim.
// Parsed is set only when RawBody is valid JSON; IsJSON tells a JSON
// null apart from a body that did not parse.
type ForwardResult struct {
	StatusCode int
	RawBody    []byte
	Parsed     any
	IsJSON     bool
	Result     any // first ResultFields match inside Parsed
	HasResult  bool
}

// Data returns the caller-facing value: the extracted result field when
// present, else the decoded JSON, else the raw body as text.
func (r ForwardResult) Data() any {
	if r.HasResult {
		return r.Result
	}
	if r.IsJSON {
		return r.Parsed
	}
	return string(r.RawBody)
}

// OK reports whether the webhook replied with a 2xx status
func (r ForwardResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Forwarder struct {
	registry Resolver
	client   *http.Client
	now      func() time.Time
}

// NewForwarder creates a forwarder. The client must not carry its own
// Timeout: deadlines are applied per call from the endpoint settings.
func NewForwarder(registry Resolver, client *http.Client) *Forwarder {
	if client == nil {
		client = &http.Client{}
	}
	return &Forwarder{
		registry: registry,
		client:   client,
		now:      time.Now,
	}
}

// Forward POSTs payload to the webhook registered under key. A timeout of
// zero uses the endpoint default. Any HTTP reply, 4xx and 5xx included, is
// returned as a result; only transport failures are errors.
func (f *Forwarder) Forward(ctx context.Context, key string, payload json.RawMessage, timeout time.Duration) (ForwardResult, error) {
	endpoint, err := f.registry.Resolve(key)
	if err != nil {
		return ForwardResult{}, &ConfigurationError{Key: key, Err: err}
	}

	body := bytes.TrimSpace(payload)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return ForwardResult{}, fmt.Errorf("forwarding to %s: %w", key, ErrInvalidPayload)
	}

	if timeout <= 0 {
		timeout = endpoint.Timeout
	}
	if timeout > MaxCallTimeout {
		timeout = max(MaxCallTimeout, endpoint.Timeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return ForwardResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	if endpoint.SigningSecret != "" {
		secret, err := signature.ParseSecret(endpoint.SigningSecret)
		if err != nil {
			return ForwardResult{}, &ConfigurationError{Key: key, Err: err}
		}
		msgID := "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		if err := signature.Apply(req.Header, secret, msgID, f.now(), body); err != nil {
			return ForwardResult{}, fmt.Errorf("signing request: %w", err)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return ForwardResult{}, &UpstreamUnreachableError{Key: key, URL: endpoint.URL, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ForwardResult{}, &UpstreamUnreachableError{Key: key, URL: endpoint.URL, Err: fmt.Errorf("reading response: %w", err)}
	}

	result := ForwardResult{
		StatusCode: resp.StatusCode,
		RawBody:    raw,
	}
	if parsed, ok := decodeJSON(raw); ok {
		result.Parsed = parsed
		result.IsJSON = true
		result.Result, result.HasResult = extract(parsed, endpoint.ResultFields)
	}
	return result, nil
}

// unwrapURLError drops the *url.Error wrapper so messages read
// "context deadline exceeded" rather than repeating method and URL
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
