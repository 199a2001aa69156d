// Package bundle packs report exports into portable compressed tar
// archives. Every bundle carries a manifest.json that records a
// fingerprint for each file, so unpacking can detect corrupted or
// tampered contents. Bundles are written as .tar.xz by default and
// .tar.gz bundles are read transparently.
package bundle

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/internal/logging"
)

const (
	// ManifestName is the name of the manifest entry inside a bundle.
	ManifestName = "manifest.json"

	// ManifestVersion is the manifest schema version written by Pack.
	ManifestVersion = "1"

	// DefaultExt is the conventional file extension for bundles.
	DefaultExt = ".tallybundle.tar.xz"
)

// Manifest describes the contents of a bundle.
type Manifest struct {
	ID        string            `json:"id"`
	Version   string            `json:"version"`
	Title     string            `json:"title,omitempty"`
	CreatedAt string            `json:"created_at"`
	Files     []FileEntry       `json:"files"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FileEntry records one bundled file and its content fingerprint.
type FileEntry struct {
	Name        string             `json:"name"`
	Size        int64              `json:"size"`
	Fingerprint fingerprint.Digest `json:"fingerprint"`
}

// ExtractBundleID extracts the bundle ID from a filename by removing
// known extensions.
func ExtractBundleID(filename string) string {
	id := filepath.Base(filename)
	compoundExts := []string{
		".tallybundle.tar.xz",
		".tallybundle.tar.gz",
	}
	for _, ext := range compoundExts {
		if strings.HasSuffix(id, ext) {
			return strings.TrimSuffix(id, ext)
		}
	}

	singleExts := []string{".tar.xz", ".tar.gz", ".tar"}
	for _, ext := range singleExts {
		if strings.HasSuffix(id, ext) {
			return strings.TrimSuffix(id, ext)
		}
	}

	return id
}

// DetectFormat detects the bundle format from the file extension.
func DetectFormat(path string) string {
	switch {
	case strings.HasSuffix(path, ".tar.xz"):
		return "tar.xz"
	case strings.HasSuffix(path, ".tar.gz"):
		return "tar.gz"
	case strings.HasSuffix(path, ".tar"):
		return "tar"
	default:
		return "unknown"
	}
}

// IsSupportedFormat returns true if the file has a supported bundle extension.
func IsSupportedFormat(path string) bool {
	return strings.HasSuffix(path, ".tar.xz") ||
		strings.HasSuffix(path, ".tar.gz")
}

// IsBundle reports whether path looks like a bundle: a supported archive
// that contains a manifest entry.
func IsBundle(path string) bool {
	if !IsSupportedFormat(path) {
		return false
	}
	found, _ := ContainsPath(path, func(name string) bool {
		return entryName(name) == ManifestName
	})
	return found
}

// Info reads the manifest from a bundle without extracting it.
func Info(path string) (*Manifest, error) {
	data, err := ReadFile(path, ManifestName)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, tberrors.Wrap(err, "decode bundle manifest")
	}
	return &m, nil
}

// Verify checks every file in the bundle against the manifest
// fingerprints without writing anything to disk.
func Verify(path string) (*Manifest, error) {
	return scan(path, "")
}

// Unpack extracts a bundle into dstDir and verifies each extracted file
// against the manifest fingerprints. The manifest itself is not written
// to dstDir.
func Unpack(srcPath, dstDir string) (*Manifest, error) {
	if dstDir == "" {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "unpack needs a destination directory")
	}
	m, err := scan(srcPath, dstDir)
	if err != nil {
		return nil, err
	}
	logging.BundleEvent("unpack", srcPath, "bundle_id", m.ID, "files", len(m.Files))
	return m, nil
}

// scan reads every entry in the bundle, extracting regular files under
// dstDir when it is non-empty, and checks the contents against the
// manifest. Entries may appear in any order.
func scan(srcPath, dstDir string) (*Manifest, error) {
	var manifest *Manifest
	digests := make(map[string]fingerprint.Digest)
	sizes := make(map[string]int64)

	err := IterateBundle(srcPath, func(header *tar.Header, r io.Reader) (bool, error) {
		if header.Typeflag != tar.TypeReg {
			return false, nil
		}
		name, err := sanitizeEntryName(header.Name)
		if err != nil {
			return false, err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return false, tberrors.Wrapf(err, "read bundle entry %s", header.Name)
		}

		if entryName(name) == ManifestName {
			var m Manifest
			if err := json.Unmarshal(data, &m); err != nil {
				return false, tberrors.Wrap(err, "decode bundle manifest")
			}
			manifest = &m
			return false, nil
		}

		digests[name] = fingerprint.Bytes(data)
		sizes[name] = int64(len(data))

		if dstDir == "" {
			return false, nil
		}
		target := filepath.Join(dstDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return false, tberrors.NewIO("create directory", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return false, tberrors.NewIO("write", target, err)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, tberrors.NewNotFound("bundle manifest", srcPath)
	}

	listed := make(map[string]bool, len(manifest.Files))
	for _, entry := range manifest.Files {
		listed[entry.Name] = true
		got, ok := digests[entry.Name]
		if !ok {
			return nil, tberrors.NewNotFound("bundle file", entry.Name)
		}
		if sizes[entry.Name] != entry.Size {
			return nil, tberrors.Wrapf(tberrors.ErrInvalidInput,
				"bundle file %s: size changed from %d to %d", entry.Name, entry.Size, sizes[entry.Name])
		}
		if got != entry.Fingerprint {
			return nil, tberrors.Wrapf(tberrors.ErrInvalidInput,
				"bundle file %s: fingerprint mismatch", entry.Name)
		}
	}
	for name := range digests {
		if !listed[name] {
			return nil, tberrors.Wrapf(tberrors.ErrInvalidInput,
				"bundle file %s is not listed in the manifest", name)
		}
	}

	return manifest, nil
}

// entryName strips an optional leading directory from a tar entry name.
func entryName(name string) string {
	if idx := strings.Index(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// sanitizeEntryName cleans a tar entry name and rejects names that would
// escape the extraction directory.
func sanitizeEntryName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "" || clean == "." || path.IsAbs(clean) ||
		clean == ".." || strings.HasPrefix(clean, "../") {
		return "", tberrors.Wrapf(tberrors.ErrInvalidInput, "unsafe bundle entry name %q", name)
	}
	return clean, nil
}
