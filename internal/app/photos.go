package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

// PhotoPolicy checks uploads and writes accepted files to the store.
type PhotoPolicy struct {
	store   domain.PhotoStore
	maxSize int64
}

func NewPhotoPolicy(store domain.PhotoStore, maxSize int64) *PhotoPolicy {
	return &PhotoPolicy{store: store, maxSize: maxSize}
}

// PhotoName is the stored filename for a resource's photo.
func PhotoName(id int64, original string) string {
	return fmt.Sprintf("photo_%d%s", id, filepath.Ext(original))
}

// Save validates up and persists it as photo_<id><ext>, returning the name.
func (p *PhotoPolicy) Save(ctx context.Context, id int64, up *domain.Upload) (string, error) {
	if up == nil || up.Body == nil {
		return "", domain.BadRequestf("Please upload a file")
	}
	ct, err := contentType(up)
	if err != nil {
		return "", domain.Internal("Problem with file upload", err)
	}
	if !strings.HasPrefix(ct, "image") {
		return "", domain.BadRequestf("Please upload an image file")
	}
	if p.maxSize > 0 && up.Size > p.maxSize {
		return "", domain.BadRequestf("Please upload an image less than %d", p.maxSize)
	}

	name := PhotoName(id, up.Filename)
	if err := p.store.Save(ctx, name, up.Body); err != nil {
		log.Error().Err(err).Str("file", name).Msg("photo write failed")
		return "", domain.Internal("Problem with file upload", err)
	}
	return name, nil
}

// contentType trusts the declared part type and falls back to sniffing
// the content when the client sent nothing useful.
func contentType(up *domain.Upload) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}
	mt, err := mimetype.DetectReader(up.Body)
	if err != nil {
		return "", err
	}
	if _, err := up.Body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
