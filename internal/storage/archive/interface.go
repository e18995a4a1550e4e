// internal/storage/archive/interface.go
package archive

import "context"

// Storage is a flat object namespace holding snapshot files.
// Paths are slash separated and relative to the storage root.
type Storage interface {
	// Read returns the object at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns every object path under prefix. A missing root
	// yields an error matching fs.ErrNotExist.
	List(ctx context.Context, prefix string) ([]string, error)

	// Write stores data at path, replacing any existing object.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Describe names the backend for logs, e.g. "localfs:/srv/data".
	Describe() string
}
