package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Run-fatal conditions. Everything else that can go wrong during a backup
// degrades to a logged, counted outcome.
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNoDestination      = errors.New("no destination specified")
	ErrDestinationMissing = errors.New("destination does not exist")
)

// Options are the per-run knobs exposed by the CLI.
type Options struct {
	DestOverride string // --dest; takes precedence over profile and config
	Incremental  bool
	Compress     bool
}

// Summary reports one completed backup run.
type Summary struct {
	Profile     string
	Destination string
	SnapshotDir string
	Incremental bool
	Stats       RunStats

	// Archive fields are set only when compression ran and succeeded.
	Archived    bool
	ArchivePath string
	ArchiveSize int64
	Ratio       float64 // 1 - archived/original, 0 when nothing was copied
}

// Service is the orchestration layer that sequences a backup run:
// resolve the profile and destination, create the snapshot directory,
// build the snapshot, persist the fingerprint index, optionally archive,
// and record the last-backup time on the profile.
type Service struct {
	profiles    ProfileStore
	store       FingerprintStore
	builder     SnapshotBuilder
	archiver    Archiver
	defaultDest string
	logger      Logger
	clock       Clock
}

// NewService creates a Service with the provided dependencies.
// defaultDest is the config-level fallback destination and may be empty.
func NewService(profiles ProfileStore, store FingerprintStore, builder SnapshotBuilder, archiver Archiver, defaultDest string, logger Logger, clock Clock) *Service {
	return &Service{
		profiles:    profiles,
		store:       store,
		builder:     builder,
		archiver:    archiver,
		defaultDest: defaultDest,
		logger:      logger,
		clock:       clock,
	}
}

// snapshotTimeFormat names snapshot directories {profile}_{timestamp}.
const snapshotTimeFormat = "20060102_150405"

// Backup runs a single backup for the named profile.
//
// Fatal errors (unknown profile, unresolvable or missing destination,
// snapshot directory creation failure) abort before any source file is
// touched. Per-file failures, fingerprint persistence failures, archival
// failures and the profile timestamp update are all non-fatal: once files
// have been copied the run reports success.
func (s *Service) Backup(name string, opts Options) (*Summary, error) {
	profile, err := s.profiles.Get(name)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	dest, err := s.resolveDestination(profile, opts.DestOverride)
	if err != nil {
		return nil, err
	}

	start := s.clock.Now()
	snapshotName := fmt.Sprintf("%s_%s", profile.Name, start.Format(snapshotTimeFormat))
	snapshotDir := filepath.Join(dest, snapshotName)

	s.logger.Info("starting backup",
		"profile", profile.Name,
		"destination", snapshotDir,
		"incremental", opts.Incremental,
		"compress", opts.Compress,
	)

	if err := os.Mkdir(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	detector := NewChangeDetector(s.store, profile.Name, opts.Incremental)
	stats := s.builder.Build(profile.Sources, snapshotDir, detector)

	if opts.Incremental {
		if err := s.store.Save(); err != nil {
			s.logger.Warn("could not persist fingerprint index", "error", err)
		}
	}

	summary := &Summary{
		Profile:     profile.Name,
		Destination: dest,
		SnapshotDir: snapshotDir,
		Incremental: opts.Incremental,
		Stats:       *stats,
	}

	if opts.Compress && stats.FilesCopied > 0 {
		archivePath := filepath.Join(dest, snapshotName+".zip")
		size, err := s.archiver.Archive(snapshotDir, dest, snapshotName)
		if err != nil {
			s.logger.Error("compression failed, keeping uncompressed snapshot", "error", err)
		} else {
			summary.Archived = true
			summary.ArchivePath = archivePath
			summary.ArchiveSize = size
			summary.Ratio = CompressionRatio(size, stats.BytesCopied)
		}
	}

	if err := s.profiles.SetLastBackup(profile.Name, s.clock.Now()); err != nil {
		s.logger.Warn("could not update profile last-backup time", "error", err)
	}

	s.logger.Info("backup complete",
		"profile", profile.Name,
		"copied", stats.FilesCopied,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"bytes", stats.BytesCopied,
	)
	return summary, nil
}

// resolveDestination applies the precedence override > profile > config
// default and verifies the chosen directory exists.
func (s *Service) resolveDestination(profile *Profile, override string) (string, error) {
	dest := override
	if dest == "" {
		dest = profile.Destination
	}
	if dest == "" {
		dest = s.defaultDest
	}
	if dest == "" {
		return "", ErrNoDestination
	}

	info, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDestinationMissing, dest)
		}
		return "", fmt.Errorf("checking destination: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrDestinationMissing, dest)
	}
	return dest, nil
}

// CompressionRatio is the fraction of space saved by an archive,
// 1 - archived/original. Defined as 0 when original is 0.
func CompressionRatio(archived, original int64) float64 {
	if original <= 0 {
		return 0
	}
	return 1 - float64(archived)/float64(original)
}
