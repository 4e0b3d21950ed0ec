package profile

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quickbackup/internal/backup"
	"quickbackup/internal/profile/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements backup.ProfileStore on SQLite. Profiles are rows
// in the profiles table; their ordered source lists live in
// profile_sources keyed by position.
type SQLiteStore struct {
	db    *sql.DB
	idgen backup.IDGenerator
	clock backup.Clock
}

// NewSQLiteStore opens (or creates) the profile database at path and
// migrates it to the latest schema. path can be ":memory:" for tests.
func NewSQLiteStore(path string, idgen backup.IDGenerator, clock backup.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating profile database: %w", err)
	}

	return &SQLiteStore{db: db, idgen: idgen, clock: clock}, nil
}

// Get returns the profile with the given name, or (nil, nil) if absent.
func (s *SQLiteStore) Get(name string) (*backup.Profile, error) {
	row := s.db.QueryRow(
		"SELECT id, name, destination, created_at, last_backup FROM profiles WHERE name = ?", name)

	p, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding profile by name: %w", err)
	}

	if p.Sources, err = s.sourcesFor(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// Create stores a new profile. The store assigns the ID and creation time
// when the caller left them empty.
func (s *SQLiteStore) Create(p *backup.Profile) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if len(p.Sources) == 0 {
		return fmt.Errorf("profile needs at least one source")
	}

	if p.ID == "" {
		p.ID = s.idgen.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.clock.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO profiles (id, name, destination, created_at, last_backup) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Destination, p.CreatedAt, p.LastBackup)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	for i, src := range p.Sources {
		_, err = tx.Exec(
			"INSERT INTO profile_sources (profile_id, position, path) VALUES (?, ?, ?)",
			p.ID, i, src)
		if err != nil {
			return fmt.Errorf("inserting source %s: %w", src, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing profile: %w", err)
	}
	return nil
}

// List returns all profiles ordered by name.
func (s *SQLiteStore) List() ([]*backup.Profile, error) {
	rows, err := s.db.Query(
		"SELECT id, name, destination, created_at, last_backup FROM profiles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*backup.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	for _, p := range profiles {
		if p.Sources, err = s.sourcesFor(p.ID); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// Delete removes the named profile and its sources.
func (s *SQLiteStore) Delete(name string) error {
	res, err := s.db.Exec("DELETE FROM profiles WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", backup.ErrProfileNotFound, name)
	}
	return nil
}

// SetLastBackup updates the last-backup timestamp for the named profile.
func (s *SQLiteStore) SetLastBackup(name string, t time.Time) error {
	res, err := s.db.Exec("UPDATE profiles SET last_backup = ? WHERE name = ?", t, name)
	if err != nil {
		return fmt.Errorf("updating last backup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating last backup: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", backup.ErrProfileNotFound, name)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sourcesFor returns a profile's source paths in declaration order.
func (s *SQLiteStore) sourcesFor(profileID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT path FROM profile_sources WHERE profile_id = ? ORDER BY position", profileID)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	return sources, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*backup.Profile, error) {
	p := &backup.Profile{}
	if err := row.Scan(&p.ID, &p.Name, &p.Destination, &p.CreatedAt, &p.LastBackup); err != nil {
		return nil, err
	}
	return p, nil
}

// validateName rejects names that would break the fingerprint-index key
// format ("{profile}:{path}") or the snapshot directory name.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if strings.ContainsAny(name, ":/\\") {
		return fmt.Errorf("profile name cannot contain ':', '/' or '\\': %s", name)
	}
	return nil
}

// Compile-time check that SQLiteStore implements backup.ProfileStore.
var _ backup.ProfileStore = (*SQLiteStore)(nil)
