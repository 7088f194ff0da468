package resultstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hupe1980/biclique/archive"
)

// ErrNotFound is returned when an archive does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrInvalidName is returned for empty, absolute or escaping names.
var ErrInvalidName = errors.New("resultstore: invalid name")

// Extension is the file extension of archive names produced by ArchiveName.
const Extension = ".bcq"

// Store is a flat namespace of immutable archives.
type Store interface {
	// Put writes the archive atomically, replacing any previous one.
	Put(ctx context.Context, name string, r io.Reader) error
	// Get opens the archive for reading. The caller must close it.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// List returns all names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes the archive. Deleting a missing archive is not an error.
	Delete(ctx context.Context, name string) error
}

// ValidateName checks that name is a clean relative slash path.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name ||
		name == ".." || strings.HasPrefix(name, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ArchiveName returns the conventional name for a run's archive.
func ArchiveName(runID string) string {
	return path.Join("runs", runID+Extension)
}

// SaveRecord encodes rec and stores it under name.
func SaveRecord(ctx context.Context, s Store, name string, rec *archive.Record, opts ...archive.Option) (archive.Header, error) {
	var buf bytes.Buffer
	h, err := archive.Encode(&buf, rec, opts...)
	if err != nil {
		return archive.Header{}, err
	}
	if err := s.Put(ctx, name, &buf); err != nil {
		return archive.Header{}, fmt.Errorf("resultstore: put %s: %w", name, err)
	}
	return h, nil
}

// LoadRecord reads and decodes the archive stored under name.
func LoadRecord(ctx context.Context, s Store, name string) (*archive.Record, archive.Header, error) {
	rc, err := s.Get(ctx, name)
	if err != nil {
		return nil, archive.Header{}, err
	}
	defer rc.Close()

	return archive.Decode(rc)
}
