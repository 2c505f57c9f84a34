package image

import (
	"errors"
	"fmt"
	"time"
)

/* StoredImage is a decoded image persisted under a generated unique name
 * Immutable once written; removed only by the retention sweep or by hand
 */
type StoredImage struct {
	FileName      string    `json:"fileName"`
	OriginalName  string    `json:"originalName"`
	Size          int64     `json:"size"`
	RetrievalPath string    `json:"retrievalPath"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a requested image does not exist
var ErrNotFound = errors.New("image not found")

// DecodeError is returned for empty or malformed base64 / data URL input
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding image: %s: %v", e.Reason, e.Err)
	}
	return "decoding image: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError is returned when the image cannot be written
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storing image: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
