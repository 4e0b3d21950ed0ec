package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"quickbackup/internal/backup"
)

func TestLoad(t *testing.T) {
	t.Run("missing file loads as empty index", func(t *testing.T) {
		idx := Load(filepath.Join(t.TempDir(), "fingerprints.toml"), backup.NewNopLogger())
		if idx.Len() != 0 {
			t.Errorf("Len() = %d, want 0", idx.Len())
		}
	})

	t.Run("corrupt file loads as empty index", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fingerprints.toml")
		writeFile(t, path, []byte("this is {{ not toml"))

		idx := Load(path, backup.NewNopLogger())
		if idx.Len() != 0 {
			t.Errorf("Len() = %d, want 0", idx.Len())
		}
	})
}

func TestIndex_RecordLookup(t *testing.T) {
	idx := Load(filepath.Join(t.TempDir(), "fingerprints.toml"), backup.NewNopLogger())

	if _, ok := idx.Lookup("work", "/a/b.txt"); ok {
		t.Fatal("Lookup() on empty index returned ok")
	}

	idx.Record("work", "/a/b.txt", "0123456789abcdef0123456789abcdef")

	digest, ok := idx.Lookup("work", "/a/b.txt")
	if !ok {
		t.Fatal("Lookup() after Record returned !ok")
	}
	if digest != "0123456789abcdef0123456789abcdef" {
		t.Errorf("digest = %q, want recorded value", digest)
	}

	// Same path under a different profile is a distinct key.
	if _, ok := idx.Lookup("other", "/a/b.txt"); ok {
		t.Error("Lookup() found entry under wrong profile")
	}
}

func TestIndex_Save(t *testing.T) {
	t.Run("round-trips entries through disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fingerprints.toml")

		idx := Load(path, backup.NewNopLogger())
		idx.Record("work", "/home/u/docs/a.txt", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
		idx.Record("photos", "/home/u/pics/b.jpg", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

		if err := idx.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		reloaded := Load(path, backup.NewNopLogger())
		if reloaded.Len() != 2 {
			t.Fatalf("reloaded Len() = %d, want 2", reloaded.Len())
		}
		digest, ok := reloaded.Lookup("work", "/home/u/docs/a.txt")
		if !ok || digest != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
			t.Errorf("Lookup() after reload = %q, %v", digest, ok)
		}
	})

	t.Run("clean index writes nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fingerprints.toml")

		idx := Load(path, backup.NewNopLogger())
		if err := idx.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Save() of clean index created a file")
		}
	})

	t.Run("recording an identical digest does not dirty the index", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fingerprints.toml")

		idx := Load(path, backup.NewNopLogger())
		idx.Record("work", "/a", "cccccccccccccccccccccccccccccccc")
		if err := idx.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		info1, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat index: %v", err)
		}

		idx.Record("work", "/a", "cccccccccccccccccccccccccccccccc")
		if err := idx.Save(); err != nil {
			t.Fatalf("second Save() error = %v", err)
		}

		info2, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat index: %v", err)
		}
		if !info1.ModTime().Equal(info2.ModTime()) {
			t.Error("Save() rewrote file for a no-op Record")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fingerprints.toml")

		idx := Load(path, backup.NewNopLogger())
		idx.Record("p", "/x", "dddddddddddddddddddddddddddddddd")
		if err := idx.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("reading dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("dir has %d entries, want 1 (the index)", len(entries))
		}
	})
}

func TestIndex_DigestOf(t *testing.T) {
	// Index delegates to the package digest function; the fail-open
	// classification on error happens in the change detector.
	path := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, path, []byte("content"))

	idx := Load(filepath.Join(t.TempDir(), "fingerprints.toml"), backup.NewNopLogger())

	fromIndex, err := idx.DigestOf(path)
	if err != nil {
		t.Fatalf("DigestOf() error = %v", err)
	}
	direct, _ := DigestOf(path)
	if fromIndex != direct {
		t.Errorf("Index.DigestOf = %q, DigestOf = %q", fromIndex, direct)
	}
}
