// Package cachestore provides content-addressable storage for the engine's
// cache_root: intermediate builder outputs and final artifacts are written
// once, keyed by content hash, and reused across builds that request the
// same content.
package cachestore

import (
	"context"
	"io"
	"time"
)

// ObjectStore provides content-addressable storage for build artifacts.
// Objects are stored by their content hash, enabling deduplication and
// efficient cache invalidation.
type ObjectStore interface {
	// Put stores an object and returns its content hash.
	// If the object already exists, it returns the existing hash without writing.
	Put(ctx context.Context, obj *Object) (hash string, err error)

	// Get retrieves an object by its content hash.
	// Returns ErrNotFound if the object doesn't exist.
	Get(ctx context.Context, hash string) (*Object, error)

	// Exists checks if an object with the given hash exists.
	Exists(ctx context.Context, hash string) (bool, error)

	// Delete removes an object by its content hash.
	// Returns ErrNotFound if the object doesn't exist.
	Delete(ctx context.Context, hash string) error

	// List returns all object hashes matching the given type filter.
	// If objectType is empty, returns all objects.
	List(ctx context.Context, objectType ObjectType) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Object represents a stored artifact with its metadata.
type Object struct {
	// Hash is the content hash (SHA256) of the data.
	Hash string

	// Type identifies the kind of object.
	Type ObjectType

	// Size is the size of the data in bytes.
	Size int64

	// Data is the object content.
	// For large objects, this may be nil and should be read via Reader.
	Data []byte

	// Metadata stores additional key-value pairs.
	Metadata Metadata

	// Reader provides streaming access to large objects (optional).
	Reader io.ReadCloser
}

// Metadata stores object metadata.
type Metadata struct {
	// CreatedAt is when the object was first stored.
	CreatedAt time.Time

	// LastAccessed is when the object was last retrieved.
	LastAccessed time.Time

	// RefCount counts how many times Put has stored this object.
	// Garbage collection does not consult it.
	RefCount int

	// Custom allows storage-specific metadata.
	Custom map[string]string
}

// ObjectType identifies the kind of stored object.
type ObjectType string

const (
	// ObjectTypeIntermediate represents an atomic builder's intermediate
	// output (a cropped PDF, a scaled SVG, a converted raster image) kept
	// so a later build can reuse it without rerunning the tool.
	ObjectTypeIntermediate ObjectType = "intermediate"

	// ObjectTypeArtifact represents a final target artifact: a rendered
	// page, an assembled PDF, or a packaged EPUB.
	ObjectTypeArtifact ObjectType = "artifact"

	// ObjectTypeTempFile represents an arbitrary blob saved by the
	// SaveTempFile builder under its content hash.
	ObjectTypeTempFile ObjectType = "temp_file"
)

// ErrNotFound is returned when an object doesn't exist.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	return "object not found: " + e.Hash
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
