package backup

import (
	"database/sql"
	"time"
)

// Profile is a named backup job: an ordered list of source paths, an
// optional destination, and bookkeeping timestamps. The backup service
// reads Sources and Destination and writes LastBackup; profile lifecycle
// (create/list/delete) belongs to the ProfileStore and the CLI.
type Profile struct {
	ID          string
	Name        string
	Sources     []string
	Destination string // empty means "use config default or --dest"
	CreatedAt   time.Time
	LastBackup  sql.NullTime
}

// ProfileStore is a named-record store for backup profiles.
type ProfileStore interface {
	// Get returns the profile with the given name, or (nil, nil) if absent.
	Get(name string) (*Profile, error)

	// Create stores a new profile. Names are unique.
	Create(profile *Profile) error

	// List returns all profiles ordered by name.
	List() ([]*Profile, error)

	// Delete removes the named profile. Deleting an absent profile is an error.
	Delete(name string) error

	// SetLastBackup updates the last-backup timestamp for the named profile.
	SetLastBackup(name string, t time.Time) error

	// Close closes the underlying storage.
	Close() error
}
