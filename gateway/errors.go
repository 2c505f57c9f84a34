package gateway

import (
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned when a payload is not valid JSON or misses a required field
var ErrInvalidPayload = errors.New("invalid payload")

// ConfigurationError is returned for webhook keys missing from the registry.
// No network I/O happens before it is returned.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown webhook %q", e.Key)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UpstreamUnreachableError wraps transport failures talking to a webhook:
// connection refused, DNS failure, timeout expiry.
type UpstreamUnreachableError struct {
	Key string
	URL string
	Err error
}

func (e *UpstreamUnreachableError) Error() string {
	return fmt.Sprintf("webhook %s unreachable: %v", e.Key, e.Err)
}

func (e *UpstreamUnreachableError) Unwrap() error { return e.Err }

// UpstreamError is a reply from a reachable webhook with a non-2xx status
type UpstreamError struct {
	Key        string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("webhook %s responded with status %d", e.Key, e.StatusCode)
}
