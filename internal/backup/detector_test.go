package backup_test

import (
	"errors"
	"testing"

	"quickbackup/internal/backup"
)

// fakeStore is an in-memory FingerprintStore whose digests are scripted
// per path. A path with no scripted digest fails DigestOf, standing in
// for an unreadable file.
type fakeStore struct {
	digests map[string]string // path -> digest; absent means DigestOf fails
	entries map[string]string // "profile:path" -> recorded digest

	digestCalls int
	lookupCalls int
	saveCalls   int
	saveErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		digests: make(map[string]string),
		entries: make(map[string]string),
	}
}

func (s *fakeStore) DigestOf(path string) (string, error) {
	s.digestCalls++
	digest, ok := s.digests[path]
	if !ok {
		return "", errors.New("unreadable file")
	}
	return digest, nil
}

func (s *fakeStore) Lookup(profileID, path string) (string, bool) {
	s.lookupCalls++
	digest, ok := s.entries[profileID+":"+path]
	return digest, ok
}

func (s *fakeStore) Record(profileID, path, digest string) {
	s.entries[profileID+":"+path] = digest
}

func (s *fakeStore) Save() error {
	s.saveCalls++
	return s.saveErr
}

var _ backup.FingerprintStore = (*fakeStore)(nil)

func TestChangeDetector_Evaluate(t *testing.T) {
	t.Run("full mode treats everything as changed without consulting the store", func(t *testing.T) {
		store := newFakeStore()
		d := backup.NewChangeDetector(store, "work", false)

		changed, digest := d.Evaluate("/any/file")
		if !changed {
			t.Error("Evaluate() changed = false, want true in full mode")
		}
		if digest != "" {
			t.Errorf("Evaluate() digest = %q, want empty in full mode", digest)
		}
		if store.digestCalls != 0 || store.lookupCalls != 0 {
			t.Errorf("store consulted in full mode: %d digest, %d lookup calls",
				store.digestCalls, store.lookupCalls)
		}
	})

	t.Run("unknown file is changed", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "abc"
		d := backup.NewChangeDetector(store, "work", true)

		changed, digest := d.Evaluate("/f")
		if !changed {
			t.Error("Evaluate() changed = false, want true for unrecorded file")
		}
		if digest != "abc" {
			t.Errorf("Evaluate() digest = %q, want %q", digest, "abc")
		}
	})

	t.Run("matching digest is unchanged", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "abc"
		store.entries["work:/f"] = "abc"
		d := backup.NewChangeDetector(store, "work", true)

		changed, _ := d.Evaluate("/f")
		if changed {
			t.Error("Evaluate() changed = true, want false for matching digest")
		}
	})

	t.Run("differing digest is changed", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "new"
		store.entries["work:/f"] = "old"
		d := backup.NewChangeDetector(store, "work", true)

		changed, _ := d.Evaluate("/f")
		if !changed {
			t.Error("Evaluate() changed = false, want true for differing digest")
		}
	})

	t.Run("digest failure classifies as changed", func(t *testing.T) {
		store := newFakeStore()
		store.entries["work:/f"] = "old"
		d := backup.NewChangeDetector(store, "work", true)

		changed, digest := d.Evaluate("/f")
		if !changed {
			t.Error("Evaluate() changed = false, want true when digest fails")
		}
		if digest != "" {
			t.Errorf("Evaluate() digest = %q, want empty on failure", digest)
		}
	})

	t.Run("entry under another profile does not match", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "abc"
		store.entries["other:/f"] = "abc"
		d := backup.NewChangeDetector(store, "work", true)

		changed, _ := d.Evaluate("/f")
		if !changed {
			t.Error("Evaluate() changed = false, want true: entry belongs to another profile")
		}
	})
}

func TestChangeDetector_Commit(t *testing.T) {
	t.Run("records the evaluated digest", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "abc"
		d := backup.NewChangeDetector(store, "work", true)

		_, digest := d.Evaluate("/f")
		d.Commit("/f", digest)

		if got := store.entries["work:/f"]; got != "abc" {
			t.Errorf("recorded digest = %q, want %q", got, "abc")
		}
	})

	t.Run("recomputes when evaluation produced no digest", func(t *testing.T) {
		store := newFakeStore()
		d := backup.NewChangeDetector(store, "work", true)

		// First evaluation fails, then the file becomes readable.
		changed, digest := d.Evaluate("/f")
		if !changed || digest != "" {
			t.Fatalf("Evaluate() = %v, %q; want true, empty", changed, digest)
		}
		store.digests["/f"] = "late"

		d.Commit("/f", digest)
		if got := store.entries["work:/f"]; got != "late" {
			t.Errorf("recorded digest = %q, want %q", got, "late")
		}
	})

	t.Run("skips silently when recompute also fails", func(t *testing.T) {
		store := newFakeStore()
		d := backup.NewChangeDetector(store, "work", true)

		d.Commit("/f", "")
		if _, ok := store.entries["work:/f"]; ok {
			t.Error("Commit() recorded an entry despite digest failure")
		}
	})

	t.Run("is a no-op in full mode", func(t *testing.T) {
		store := newFakeStore()
		store.digests["/f"] = "abc"
		d := backup.NewChangeDetector(store, "work", false)

		d.Commit("/f", "abc")
		if len(store.entries) != 0 {
			t.Error("Commit() recorded an entry in full mode")
		}
	})
}
