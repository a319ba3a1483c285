// Package objstore is the object-storage boundary for cached chapter
// images. The cache layer only talks to the Store interface; the disk
// implementation backs single-process deployments and tests.
package objstore

import "context"

type Store interface {
	// Put writes an object, overwriting any existing one at path.
	Put(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL returns the externally reachable URL for path.
	PublicURL(path string) string

	// ParsePath maps a public URL back to the object path it serves.
	ParsePath(publicURL string) (string, bool)

	// Remove deletes the given objects. Missing objects are not errors.
	Remove(ctx context.Context, paths []string) error
}
