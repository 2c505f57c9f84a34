package image

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0xff}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload string
	}{
		{"plain base64", encoded},
		{"data url", "data:image/png;base64," + encoded},
		{"data url with surrounding whitespace", "  data:image/jpeg;base64," + encoded + "\n"},
		{"wrapped lines", encoded[:8] + "\r\n" + encoded[8:]},
		{"missing padding", base64.RawStdEncoding.EncodeToString(raw)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Decode(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, raw, data)
		})
	}

	t.Run("data prefix without comma is treated as payload", func(t *testing.T) {
		// "data:" itself is not valid base64, so this still fails, but as a decode
		// error of the whole string rather than a prefix parsing error
		_, err := Decode("data:image/png;base64")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "invalid base64", decodeErr.Reason)
	})

	t.Run("error - empty", func(t *testing.T) {
		_, err := Decode("")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "empty payload", decodeErr.Reason)
	})

	t.Run("error - empty data url body", func(t *testing.T) {
		_, err := Decode("data:image/png;base64,")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
	})

	t.Run("error - not base64", func(t *testing.T) {
		_, err := Decode("not-valid-base64!!")
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Contains(t, err.Error(), "invalid base64")
	})
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"photo.png":             "photo.png",
		"":                      DefaultFileName,
		"../../etc/passwd":      "passwd",
		`C:\Users\me\slika.jpg`: "slika.jpg",
		"my photo (1).png":      "my_photo_1.png",
		".hidden":               "hidden",
		"čćžšđ":                 DefaultFileName,
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}
