package photostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"hotelbook/internal/adapters/observability"
)

// Cloudinary uploads photos to a Cloudinary folder. The public id is the
// photo name without its extension so re-uploads overwrite in place.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(url, folder string) (*Cloudinary, error) {
	if url == "" {
		return nil, errors.New("CLOUDINARY_URL is required")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Save(ctx context.Context, name string, r io.Reader) error {
	err := c.upload(ctx, name, r)
	observability.ObservePhotoWrite("cloudinary", 0, err)
	return err
}

func (c *Cloudinary) upload(ctx context.Context, name string, r io.Reader) error {
	start := time.Now()
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  strings.TrimSuffix(name, filepath.Ext(name)),
		Folder:    c.folder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		observability.ObserveExternal("cloudinary", "upload", 0, time.Since(start))
		return err
	}
	if res.Error.Message != "" {
		observability.ObserveExternal("cloudinary", "upload", 400, time.Since(start))
		return fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	observability.ObserveExternal("cloudinary", "upload", 200, time.Since(start))
	return nil
}
