package app

import (
	"fmt"
	"os"
	"path/filepath"

	"quickbackup/internal/archive"
	"quickbackup/internal/backup"
	"quickbackup/internal/config"
	"quickbackup/internal/fingerprint"
	"quickbackup/internal/profile"
	"quickbackup/internal/snapshot"
)

// App is the application layer between the CLI and the backup service.
// It constructs all dependencies from config, exposes high-level
// operations that accept raw string paths, and manages resource lifecycle
// on Close.
type App struct {
	cfg      *config.Config
	profiles backup.ProfileStore
	index    *fingerprint.Index
	service  *backup.Service
	logger   backup.Logger
	logFile  *os.File
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(cfg *config.Config) (*App, error) {
	runID := backup.UUIDGenerator{}.New()[:8]
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	profiles, err := profile.NewStoreFromConfig(cfg.Database, backup.UUIDGenerator{}, backup.RealClock{})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating profile store: %w", err)
	}

	index := fingerprint.Load(cfg.IndexPath, logger)
	builder := snapshot.NewBuilder(logger)
	archiver := archive.NewZip(logger)

	svc := backup.NewService(profiles, index, builder, archiver, cfg.DefaultDestination, logger, backup.RealClock{})

	return &App{
		cfg:      cfg,
		profiles: profiles,
		index:    index,
		service:  svc,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// CreateProfile validates and absolutizes the given paths and stores a
// new profile. destination may be empty.
func (a *App) CreateProfile(name string, sources []string, destination string) error {
	absSources := make([]string, 0, len(sources))
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("resolving source %s: %w", src, err)
		}
		absSources = append(absSources, abs)
	}

	if destination != "" {
		abs, err := filepath.Abs(destination)
		if err != nil {
			return fmt.Errorf("resolving destination: %w", err)
		}
		destination = abs
	}

	p := &backup.Profile{
		Name:        name,
		Sources:     absSources,
		Destination: destination,
	}
	if err := a.profiles.Create(p); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}

	a.logger.Info("profile created", "name", name, "sources", len(absSources))
	return nil
}

// GetProfile returns the named profile, or (nil, nil) if it does not exist.
func (a *App) GetProfile(name string) (*backup.Profile, error) {
	return a.profiles.Get(name)
}

// ListProfiles returns all profiles ordered by name.
func (a *App) ListProfiles() ([]*backup.Profile, error) {
	return a.profiles.List()
}

// DeleteProfile removes the named profile.
func (a *App) DeleteProfile(name string) error {
	if err := a.profiles.Delete(name); err != nil {
		return err
	}
	a.logger.Info("profile deleted", "name", name)
	return nil
}

// Backup runs a backup for the named profile.
func (a *App) Backup(name string, opts backup.Options) (*backup.Summary, error) {
	return a.service.Backup(name, opts)
}

// Close closes the profile store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.profiles.Close(); err != nil {
		firstErr = fmt.Errorf("closing profile store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}
