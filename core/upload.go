package core

import "context"

// Uploader is any service that can store a file and return an opaque locator.
// Locators are persisted verbatim and never interpreted.
type Uploader interface {
	UploadBytes(ctx context.Context, folder, filename string, content []byte) (string, error)
}
