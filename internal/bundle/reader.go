package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
)

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens a bundle for reading. It detects .tar.xz and .tar.gz
// compression from the file name.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tberrors.NewIO("open", path, err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, tberrors.Wrap(err, "xz reader")
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case strings.HasSuffix(path, ".tar.gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, tberrors.Wrap(err, "gzip reader")
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, tberrors.NewUnsupported("bundle format "+DetectFormat(path), "use .tar.xz or .tar.gz")
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the bundle reader and any underlying decompressors.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Visitor is a callback function for iterating bundle entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in the bundle, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return tberrors.Wrap(err, "read bundle header")
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// IterateBundle opens a bundle and iterates through its entries.
func IterateBundle(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}

// ContainsPath checks if the bundle contains a path matching the predicate.
func ContainsPath(path string, predicate func(name string) bool) (bool, error) {
	var found bool
	err := IterateBundle(path, func(header *tar.Header, _ io.Reader) (bool, error) {
		if predicate(header.Name) {
			found = true
			return true, nil // stop iteration
		}
		return false, nil
	})
	return found, err
}

// ReadFile reads a specific file from the bundle.
func ReadFile(bundlePath, filename string) ([]byte, error) {
	var content []byte
	err := IterateBundle(bundlePath, func(header *tar.Header, r io.Reader) (bool, error) {
		// Handle bundles with or without a leading directory
		name := header.Name
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == filename || header.Name == filename {
			var err error
			content, err = io.ReadAll(r)
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, tberrors.NewNotFound("bundle file", filename)
	}
	return content, nil
}
