package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:            "/home/user/.local/share/qb",
		LogDir:             "/home/user/.local/share/qb/log",
		DefaultDestination: "/mnt/backup",
		IndexPath:          "/home/user/.local/share/qb/fingerprints.toml",
		Database:           DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/qb/db"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.DefaultDestination != original.DefaultDestination {
		t.Errorf("DefaultDestination = %q, want %q", got.DefaultDestination, original.DefaultDestination)
	}
	if got.IndexPath != original.IndexPath {
		t.Errorf("IndexPath = %q, want %q", got.IndexPath, original.IndexPath)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/qb")

	if cfg.BaseDir != "/data/qb" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/qb")
	}
	if cfg.LogDir != "/data/qb/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/qb/log")
	}
	if cfg.IndexPath != "/data/qb/fingerprints.toml" {
		t.Errorf("IndexPath = %q, want %q", cfg.IndexPath, "/data/qb/fingerprints.toml")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Database.DataDir != "/data/qb/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/qb/db")
	}
	if cfg.DefaultDestination != "" {
		t.Errorf("DefaultDestination = %q, want empty", cfg.DefaultDestination)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "qb.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "qb.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "qb.toml")
		cfg := NewConfig(dir)
		cfg.DefaultDestination = "/mnt/backup"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.DefaultDestination != "/mnt/backup" {
			t.Errorf("DefaultDestination = %q, want %q", got.DefaultDestination, "/mnt/backup")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/qb.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
