package photostore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hotelbook/internal/adapters/observability"
)

// Disk writes photos under a single upload directory.
type Disk struct{ dir string }

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// Save replaces any existing file of the same name.
func (d *Disk) Save(ctx context.Context, name string, r io.Reader) error {
	n, err := d.write(ctx, name, r)
	observability.ObservePhotoWrite("disk", n, err)
	return err
}

func (d *Disk) write(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if name != filepath.Base(name) {
		return 0, fmt.Errorf("invalid file name %q", name)
	}
	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

func (d *Disk) Dir() string { return d.dir }
