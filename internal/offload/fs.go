package offload

import (
	"io"
	"os"
)

// File is the writable side of a created upload target.
type File interface {
	io.Writer
	io.Closer
}

// FS creates upload targets. OSFS is used outside tests.
type FS interface {
	Create(name string) (File, error)
}

// OSFS creates (or truncates) regular files with os.Create.
type OSFS struct{}

// Create implements FS.
func (OSFS) Create(name string) (File, error) {
	return os.Create(name)
}
