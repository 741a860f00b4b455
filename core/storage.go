package core

import (
	"context"
	"io"
)

// FileStore persists named byte streams (course files, assignment attachments,
// submission attachments) and hands back a stable reference usable later for
// retrieval.
type FileStore interface {
	// Save stores the stream under the given folder and returns its reference.
	Save(ctx context.Context, folder, filename string, r io.Reader) (ref string, err error)
	// Open retrieves a previously stored stream by its reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
