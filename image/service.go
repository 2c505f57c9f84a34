package image

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultFileName is used when the caller does not suggest one
const DefaultFileName = "generated_image.png"

const maxNameAttempts = 3

// UseCase defines the image intake operations
type UseCase interface {
	Receive(ctx context.Context, base64Payload, suggestedFileName string) (StoredImage, error)
	Open(ctx context.Context, name string) (File, error)
	Sweep(ctx context.Context, olderThan time.Duration) (int, error)
}

type Service struct {
	Store      Store
	PathPrefix string // retrieval path prefix, e.g. "/v1/images"

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewService creates a new image service
func NewService(store Store, pathPrefix string) *Service {
	return &Service{
		Store:      store,
		PathPrefix: strings.TrimSuffix(pathPrefix, "/"),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Receive decodes the payload and stores it as {ULID}_{sanitized name}
func (s *Service) Receive(ctx context.Context, base64Payload, suggestedFileName string) (StoredImage, error) {
	data, err := Decode(base64Payload)
	if err != nil {
		return StoredImage{}, err
	}

	original := SanitizeFileName(suggestedFileName)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := s.newToken() + "_" + original

		err := s.Store.Create(ctx, name, data)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			var storageErr *StorageError
			if errors.As(err, &storageErr) {
				return StoredImage{}, err
			}
			return StoredImage{}, &StorageError{Op: "create", Err: err}
		}

		return StoredImage{
			FileName:      name,
			OriginalName:  original,
			Size:          int64(len(data)),
			RetrievalPath: s.PathPrefix + "/" + name,
			CreatedAt:     time.Now(),
		}, nil
	}
	return StoredImage{}, &StorageError{Op: "create", Err: fmt.Errorf("no free file name after %d attempts", maxNameAttempts)}
}

// Open returns a stored image for serving
func (s *Service) Open(ctx context.Context, name string) (File, error) {
	if !validStoredName(name) {
		return nil, ErrNotFound
	}
	return s.Store.Open(ctx, name)
}

// Sweep removes images older than olderThan. A non-positive duration disables it.
func (s *Service) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	n, err := s.Store.Sweep(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return n, fmt.Errorf("sweeping images: %w", err)
	}
	return n, nil
}

func (s *Service) newToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// SanitizeFileName reduces a client supplied name to a safe base name
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case allowedRune(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	clean := strings.TrimLeft(b.String(), ".")
	if clean == "" {
		return DefaultFileName
	}
	if len(clean) > 120 {
		clean = clean[len(clean)-120:]
	}
	return clean
}

func allowedRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_'
}

func validStoredName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if !allowedRune(r) {
			return false
		}
	}
	return true
}
