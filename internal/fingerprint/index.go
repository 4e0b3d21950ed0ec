package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"quickbackup/internal/backup"
)

// Index is the persistent fingerprint store backing incremental backups.
// It maps "{profile}:{absolute path}" to a 32-hex-character content digest.
//
// The index is loaded once at startup and mutated in memory during a
// backup run; Save rewrites the whole file atomically. A single run owns
// the index exclusively, so there is no internal locking.
type Index struct {
	path    string
	entries map[string]string
	dirty   bool
}

// indexFile is the on-disk TOML shape of the index.
type indexFile struct {
	Fingerprints map[string]string `toml:"fingerprints"`
}

// Load reads the index at path. A missing or unreadable index is not an
// error: incremental backups degrade to "everything changed", which only
// costs extra copying. Corruption is reported through logger at warn.
func Load(path string, logger backup.Logger) *Index {
	idx := &Index{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read fingerprint index, treating as empty", "path", path, "error", err)
		}
		return idx
	}

	var file indexFile
	if err := toml.Unmarshal(data, &file); err != nil {
		logger.Warn("fingerprint index is corrupt, treating as empty", "path", path, "error", err)
		return idx
	}
	if file.Fingerprints != nil {
		idx.entries = file.Fingerprints
	}
	return idx
}

// DigestOf computes the content digest of the file at path.
func (idx *Index) DigestOf(path string) (string, error) {
	return DigestOf(path)
}

// Lookup returns the recorded digest for (profileID, path).
func (idx *Index) Lookup(profileID, path string) (string, bool) {
	digest, ok := idx.entries[key(profileID, path)]
	return digest, ok
}

// Record stores the digest for (profileID, path) in memory.
func (idx *Index) Record(profileID, path, digest string) {
	k := key(profileID, path)
	if idx.entries[k] == digest {
		return
	}
	idx.entries[k] = digest
	idx.dirty = true
}

// Len returns the number of recorded fingerprints.
func (idx *Index) Len() int { return len(idx.entries) }

// Save persists the index atomically: write to a temp file in the same
// directory, then rename over the destination. An interrupted Save leaves
// the previous index intact.
func (idx *Index) Save() error {
	if !idx.dirty {
		return nil
	}

	dir := filepath.Dir(idx.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".fingerprints-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := toml.NewEncoder(tmp).Encode(indexFile{Fingerprints: idx.entries}); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding fingerprint index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index file: %w", err)
	}
	if err := os.Rename(tmpPath, idx.path); err != nil {
		return fmt.Errorf("replacing fingerprint index: %w", err)
	}

	success = true
	idx.dirty = false
	return nil
}

// key builds the composite index key. The profile name cannot contain
// ':' (enforced at profile creation), so the key parses unambiguously.
func key(profileID, path string) string {
	return profileID + ":" + path
}

// Compile-time check that Index implements backup.FingerprintStore.
var _ backup.FingerprintStore = (*Index)(nil)
