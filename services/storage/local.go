package storagesvc

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kymani/udahili/core"
)

type localUploader struct {
	root string
}

var _ core.Uploader = (*localUploader)(nil)

// NewLocalUploader stores files under the configured media root. Meant for
// local development and tests; production uses the cloudinary uploader.
func NewLocalUploader(root string) core.Uploader {
	return &localUploader{root: root}
}

func (u *localUploader) UploadBytes(_ context.Context, folder, filename string, content []byte) (string, error) {
	dir := filepath.Join(u.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating media dir")
	}
	fp := filepath.Join(dir, filename)
	if err := os.WriteFile(fp, content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return fp, nil
}
