package storagesvc

import (
	"bytes"
	"context"
	"path"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/kymani/udahili/core"
)

type cloudinaryUploader struct {
	cld *cld.Cloudinary
}

var _ core.Uploader = (*cloudinaryUploader)(nil)

func NewCloudinaryUploader(conf *core.Config) (core.Uploader, error) {
	c, err := cld.NewFromURL(conf.CloudinaryURL)
	if err != nil {
		return nil, errors.Wrap(err, "configuring cloudinary")
	}
	return &cloudinaryUploader{cld: c}, nil
}

func (u *cloudinaryUploader) UploadBytes(ctx context.Context, folder, filename string, content []byte) (string, error) {
	res, err := u.cld.Upload.Upload(
		ctx,
		bytes.NewReader(content),
		uploader.UploadParams{
			Folder:       folder,
			PublicID:     trimExt(filename),
			ResourceType: "image",
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "uploading to cloudinary")
	}
	return res.SecureURL, nil
}

func trimExt(filename string) string {
	if ext := path.Ext(filename); ext != "" {
		return filename[:len(filename)-len(ext)]
	}
	return filename
}
