package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"quickbackup/internal/backup"
)

// Zip archives completed snapshot directories into single deflate-
// compressed .zip files.
type Zip struct {
	logger backup.Logger
}

// NewZip creates a Zip archiver.
func NewZip(logger backup.Logger) *Zip {
	return &Zip{logger: logger}
}

// Archive writes every regular file under snapshotDir into
// destRoot/name.zip, with entry paths relative to snapshotDir so the
// mirrored directory structure is preserved. On success the uncompressed
// snapshot directory is removed and the archive size is returned. On
// failure the partial archive is removed and the snapshot directory is
// left untouched.
func (z *Zip) Archive(snapshotDir, destRoot, name string) (int64, error) {
	archivePath := filepath.Join(destRoot, name+".zip")

	f, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(archivePath)
		}
	}()

	zw := zip.NewWriter(f)
	if err := z.writeTree(zw, snapshotDir); err != nil {
		zw.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	success = true

	// The archive is complete; it replaces the snapshot tree as the sole
	// artifact of the run.
	if err := os.RemoveAll(snapshotDir); err != nil {
		z.logger.Warn("archive written but snapshot directory could not be removed",
			"dir", snapshotDir, "error", err)
	}

	return info.Size(), nil
}

// writeTree adds every regular file under root to the archive.
func (z *Zip) writeTree(zw *zip.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking snapshot: %w", err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("building header for %s: %w", path, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("adding %s to archive: %w", rel, err)
		}

		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("compressing %s: %w", rel, err)
		}
		return nil
	})
}

// Compile-time check that Zip implements backup.Archiver.
var _ backup.Archiver = (*Zip)(nil)
