// Package uploads stores post images and hands back the path or URL
// referenced from the post document.
package uploads

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, file io.Reader, name string) (string, error)
}
