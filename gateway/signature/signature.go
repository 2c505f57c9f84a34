// Package signature signs outbound webhook calls following the Standard
// Webhooks scheme, so n8n workflows can verify the gateway as the caller.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix for Standard Webhooks symmetric secrets
	SecretPrefix = "whsec_"

	// Version is the version identifier for symmetric signatures
	Version = "v1"

	MinSecretBytes = 24
	MaxSecretBytes = 64
)

// Header names set on signed requests
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// Secret is a decoded signing secret
type Secret []byte

// ParseSecret parses a base64-encoded secret with the whsec_ prefix
func ParseSecret(encoded string) (Secret, error) {
	if !strings.HasPrefix(encoded, SecretPrefix) {
		return nil, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, SecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) < MinSecretBytes || len(raw) > MaxSecretBytes {
		return nil, fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}
	return Secret(raw), nil
}

// Sign returns "v1,<base64 hmac>" over {msgID}.{timestamp}.{payload}
func Sign(secret Secret, msgID string, timestamp time.Time, payload []byte) (string, error) {
	if strings.Contains(msgID, ".") {
		return "", fmt.Errorf("message ID must not contain '.'")
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)

	return Version + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Apply signs payload and sets the three Standard Webhooks headers on h
func Apply(h http.Header, secret Secret, msgID string, timestamp time.Time, payload []byte) error {
	sig, err := Sign(secret, msgID, timestamp, payload)
	if err != nil {
		return err
	}
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(timestamp.Unix(), 10))
	h.Set(HeaderSignature, sig)
	return nil
}

// Verify checks the signed headers of h against payload. Any of the
// space-delimited signatures in the signature header may match.
func Verify(h http.Header, secret Secret, payload []byte) (bool, error) {
	msgID := h.Get(HeaderID)
	ts, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return false, fmt.Errorf("parsing timestamp header: %w", err)
	}

	expected, err := Sign(secret, msgID, time.Unix(ts, 0), payload)
	if err != nil {
		return false, fmt.Errorf("calculating signature: %w", err)
	}

	for _, candidate := range strings.Fields(h.Get(HeaderSignature)) {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(expected)) == 1 {
			return true, nil
		}
	}
	return false, nil
}
