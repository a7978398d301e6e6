package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Dir writes images under a local media directory and returns the
// relative path. Used when no Cloudinary URL is configured.
type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

func (u *Dir) Upload(_ context.Context, file io.Reader, name string) (string, error) {
	rel := filepath.Join("posts", name)
	out, err := os.Create(filepath.Join(u.root, rel))
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return rel, nil
}
