package image

import (
	"context"
	"io"
	"os"
	"time"
)

// Writer persists image bytes
type Writer interface {
	/* Create writes data under name and fails with an error satisfying
	 * errors.Is(err, os.ErrExist) when the name is taken. A failed write
	 * must not leave a file behind.
	 */
	Create(ctx context.Context, name string, data []byte) error
}

// Reader opens stored images
type Reader interface {
	Open(ctx context.Context, name string) (File, error)
}

// Sweeper removes old images
type Sweeper interface {
	// Sweep deletes images last modified before cutoff and returns how many it removed
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// File is an opened stored image
type File interface {
	io.ReadSeekCloser
	Stat() (os.FileInfo, error)
}

type Store interface {
	Writer
	Reader
	Sweeper
}
