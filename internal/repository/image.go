package repository

import (
	"context"
	"io"
)

// ImageStore keeps uploaded image files under flat, store-generated names.
type ImageStore interface {
	// Save writes the image under name and returns the public URL clients use to fetch it.
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the named image. Returns domain.ErrImageNotFound if it does not exist.
	Delete(ctx context.Context, name string) error
}
