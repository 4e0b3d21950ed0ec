package snapshot

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"quickbackup/internal/backup"
)

// Builder mirrors profile sources into a snapshot directory.
//
// Each source keeps its own top-level name inside the snapshot: a source
// /home/u/docs becomes <snapshotDir>/docs/..., relativized against the
// source's parent. Directory structure is mirrored even for directories
// that end up empty. Files within a directory source are processed in the
// order filepath.WalkDir yields them (lexical within each directory).
type Builder struct {
	logger backup.Logger
}

// NewBuilder creates a Builder that reports progress through logger.
func NewBuilder(logger backup.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build processes the sources in order. Missing sources and per-file copy
// failures are logged and counted; they never abort the run.
func (b *Builder) Build(sources []string, snapshotDir string, detector *backup.ChangeDetector) *backup.RunStats {
	stats := &backup.RunStats{}
	rootNames := make(map[string]struct{})

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			b.logger.Warn("skipping unavailable source", "source", source, "error", err)
			continue
		}

		b.logger.Info("backing up source", "source", source)
		rootName := uniqueRootName(source, rootNames)

		if !info.IsDir() {
			outcome := b.processFile(source, filepath.Join(snapshotDir, rootName), detector)
			stats.Apply(outcome)
			continue
		}

		b.buildTree(source, filepath.Join(snapshotDir, rootName), detector, stats)
	}

	return stats
}

// buildTree mirrors one directory source under root.
func (b *Builder) buildTree(source, root string, detector *backup.ChangeDetector, stats *backup.RunStats) {
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			b.logger.Warn("cannot enumerate path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(source, path)
		if relErr != nil {
			b.logger.Warn("cannot relativize path", "path", path, "error", relErr)
			return nil
		}
		target := filepath.Join(root, rel)

		if d.IsDir() {
			if mkErr := os.MkdirAll(target, 0755); mkErr != nil {
				b.logger.Warn("cannot mirror directory", "path", path, "error", mkErr)
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			b.logger.Debug("skipping irregular file", "path", path)
			return nil
		}

		stats.Apply(b.processFile(path, target, detector))
		return nil
	})
	if err != nil {
		// WalkDir callbacks above never return errors other than SkipDir.
		b.logger.Warn("walk aborted", "source", source, "error", err)
	}
}

// processFile runs the change check and, when needed, the copy for a
// single file.
func (b *Builder) processFile(src, dst string, detector *backup.ChangeDetector) backup.CopyOutcome {
	changed, digest := detector.Evaluate(src)
	if !changed {
		b.logger.Debug("file unchanged", "path", src)
		return backup.CopyOutcome{Path: src, Kind: backup.OutcomeSkipped}
	}

	n, err := copyFile(src, dst)
	if err != nil {
		b.logger.Error("copy failed", "path", src, "error", err)
		return backup.CopyOutcome{Path: src, Kind: backup.OutcomeFailed, Err: err}
	}

	detector.Commit(src, digest)
	b.logger.Debug("file copied", "path", src, "bytes", n)
	return backup.CopyOutcome{Path: src, Kind: backup.OutcomeCopied, Bytes: n}
}

// uniqueRootName picks the snapshot-top-level name for a source. Two
// sources with the same basename under different parents must not
// collide, so a taken name is extended with the first 8 hex characters of
// the MD5 of the full source path; a numeric suffix covers the remaining
// pathological cases (the same source listed twice).
func uniqueRootName(source string, used map[string]struct{}) string {
	name := filepath.Base(filepath.Clean(source))
	if _, taken := used[name]; taken {
		sum := md5.Sum([]byte(source))
		name = fmt.Sprintf("%s-%s", name, hex.EncodeToString(sum[:])[:8])
	}
	base := name
	for i := 1; ; i++ {
		if _, taken := used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
	used[name] = struct{}{}
	return name
}

// Compile-time check that Builder implements backup.SnapshotBuilder.
var _ backup.SnapshotBuilder = (*Builder)(nil)
