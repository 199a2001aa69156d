package bundle

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/internal/logging"
)

// packedFile is one file staged for writing into a bundle.
type packedFile struct {
	name string
	data []byte
}

// Pack bundles every regular file under srcDir into a compressed tar
// archive at dstPath. The manifest is generated and written as the first
// entry. The compression is chosen from the dstPath extension, .tar.xz
// or .tar.gz.
func Pack(srcDir, dstPath, title string) (*Manifest, error) {
	return PackWithMetadata(srcDir, dstPath, title, nil)
}

// PackWithMetadata is Pack with extra key/value pairs recorded in the
// manifest.
func PackWithMetadata(srcDir, dstPath, title string, metadata map[string]string) (*Manifest, error) {
	files, err := stageFiles(srcDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, tberrors.Wrapf(tberrors.ErrInvalidInput, "nothing to bundle in %s", srcDir)
	}

	created := time.Now().UTC().Truncate(time.Second)
	manifest := &Manifest{
		ID:        uuid.NewString(),
		Version:   ManifestVersion,
		Title:     title,
		CreatedAt: created.Format(time.RFC3339),
		Files:     make([]FileEntry, 0, len(files)),
		Metadata:  metadata,
	}
	for _, f := range files {
		manifest.Files = append(manifest.Files, FileEntry{
			Name:        f.name,
			Size:        int64(len(f.data)),
			Fingerprint: fingerprint.Bytes(f.data),
		})
	}

	if err := writeArchive(dstPath, manifest, files, created); err != nil {
		return nil, err
	}

	logging.BundleEvent("pack", dstPath, "bundle_id", manifest.ID, "files", len(manifest.Files))
	return manifest, nil
}

// stageFiles reads every regular file under srcDir into memory, sorted
// by relative path. A manifest.json at the root of srcDir is skipped
// since Pack generates its own.
func stageFiles(srcDir string) ([]packedFile, error) {
	var files []packedFile
	err := filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == ManifestName {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, packedFile{name: rel, data: data})
		return nil
	})
	if err != nil {
		return nil, tberrors.NewIO("read", srcDir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// writeArchive writes the manifest and staged files as a compressed tar
// stream at dstPath.
func writeArchive(dstPath string, manifest *Manifest, files []packedFile, modTime time.Time) (err error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return tberrors.NewIO("create directory", filepath.Dir(dstPath), err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return tberrors.NewIO("create", dstPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = tberrors.NewIO("close", dstPath, cerr)
		}
	}()

	var body io.Writer
	var finish io.Closer
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		xw, werr := xz.NewWriter(out)
		if werr != nil {
			return tberrors.Wrap(werr, "xz writer")
		}
		body, finish = xw, xw
	case strings.HasSuffix(dstPath, ".tar.gz"):
		gw := gzip.NewWriter(out)
		body, finish = gw, gw
	default:
		return tberrors.NewUnsupported("bundle format "+DetectFormat(dstPath), "use .tar.xz or .tar.gz")
	}

	tw := tar.NewWriter(body)

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return tberrors.Wrap(err, "encode bundle manifest")
	}
	if err := writeEntry(tw, ManifestName, manifestJSON, modTime); err != nil {
		return err
	}
	for _, f := range files {
		if err := writeEntry(tw, f.name, f.data, modTime); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return tberrors.Wrap(err, "finish tar stream")
	}
	if err := finish.Close(); err != nil {
		return tberrors.Wrap(err, "finish compression")
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	header := &tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return tberrors.Wrapf(err, "write header for %s", name)
	}
	if _, err := tw.Write(data); err != nil {
		return tberrors.Wrapf(err, "write %s", name)
	}
	return nil
}
