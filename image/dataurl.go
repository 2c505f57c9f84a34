package image

import (
	"encoding/base64"
	"strings"
)

const dataURLScheme = "data:"

// Decode strips an optional data URL prefix ("data:image/png;base64,") and
// decodes the rest as standard base64. A "data:" prefix without a comma is
// taken as part of the payload rather than rejected.
func Decode(payload string) ([]byte, error) {
	encoded := strings.TrimSpace(payload)
	if strings.HasPrefix(encoded, dataURLScheme) {
		if _, rest, found := strings.Cut(encoded, ","); found {
			encoded = rest
		}
	}

	encoded = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ' ':
			return -1
		}
		return r
	}, encoded)
	if encoded == "" {
		return nil, &DecodeError{Reason: "empty payload"}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil && len(encoded)%4 != 0 {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, &DecodeError{Reason: "invalid base64", Err: err}
	}
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty payload"}
	}
	return data, nil
}
