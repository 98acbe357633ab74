package policies

import (
	"context"
	"io"
)

// UploaderPort stores listing photos and returns a public URL.
type UploaderPort interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
