// Package imagestore keeps uploaded images on local disk or in an
// S3-compatible bucket.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
)

var errBadName = errors.New("image name must be a single path element")

// Disk stores images as flat files in one directory. Public URLs point at
// the API server's /uploads static route.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(dir, publicBaseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/") + "/uploads"}, nil
}

func (d *Disk) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	p, err := d.path(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("close image file: %w", err)
	}

	return d.baseURL + "/" + name, nil
}

func (d *Disk) Delete(_ context.Context, name string) error {
	p, err := d.path(name)
	if err != nil {
		return domain.ErrImageNotFound
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrImageNotFound
		}
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// Ping checks that the upload directory is still there.
func (d *Disk) Ping(_ context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", d.dir)
	}
	return nil
}

func (d *Disk) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errBadName
	}
	return filepath.Join(d.dir, name), nil
}
