package objstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores objects as plain files under a root directory. Public URLs
// are baseURL + "/" + object path, with the files expected to be served
// by a static file server or CDN pointed at root.
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Disk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *Disk) Put(_ context.Context, path string, data []byte, _ string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write object %s: %w", path, err)
	}
	return nil
}

func (d *Disk) PublicURL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (d *Disk) ParsePath(publicURL string) (string, bool) {
	rest, ok := strings.CutPrefix(publicURL, d.baseURL+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

func (d *Disk) Remove(_ context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		full, err := d.resolve(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
			continue
		}
		// drop the chapter dir once its last page is gone
		_ = os.Remove(filepath.Dir(full))
	}
	return errors.Join(errs...)
}
