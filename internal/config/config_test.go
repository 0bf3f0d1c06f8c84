package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frameforge/internal/config"
)

func TestNewConfig(t *testing.T) {
	cfg := config.NewConfig("/data/frameforge")

	if cfg.BaseDir != "/data/frameforge" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/frameforge")
	}
	if cfg.LogDir != filepath.Join("/data/frameforge", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.AutoSave.Mode != "interval" {
		t.Errorf("AutoSave.Mode = %q, want %q", cfg.AutoSave.Mode, "interval")
	}
	if cfg.AutoSave.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %d, want 30", cfg.AutoSave.IntervalSeconds)
	}
	if cfg.AutoSave.DebounceMillis != 300 {
		t.Errorf("DebounceMillis = %d, want 300", cfg.AutoSave.DebounceMillis)
	}
	if cfg.Target.Type != "filesystem" {
		t.Errorf("Target.Type = %q, want %q", cfg.Target.Type, "filesystem")
	}
	if cfg.Catalog.Type != "sqlite" {
		t.Errorf("Catalog.Type = %q, want %q", cfg.Catalog.Type, "sqlite")
	}
}

func TestManager_ReadWrite(t *testing.T) {
	m := &config.Manager{}
	cfg := config.NewConfig("/tmp/ff")
	cfg.AutoSave.Mode = "instant"
	cfg.Target = config.TargetConfig{Type: "s3", S3Bucket: "archives", S3Region: "us-east-1"}

	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.AutoSave.Mode != "instant" {
		t.Errorf("AutoSave.Mode = %q, want %q", got.AutoSave.Mode, "instant")
	}
	if got.Target.Type != "s3" || got.Target.S3Bucket != "archives" {
		t.Errorf("Target = %+v, want s3/archives", got.Target)
	}
	if got.Catalog.DataDir != cfg.Catalog.DataDir {
		t.Errorf("Catalog.DataDir = %q, want %q", got.Catalog.DataDir, cfg.Catalog.DataDir)
	}
}

func TestManager_ReadInvalid(t *testing.T) {
	m := &config.Manager{}
	if _, err := m.Read(strings.NewReader("not = [valid toml")); err == nil {
		t.Error("Read() error = nil, want error")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates the file and parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "frameforge.toml")
		cfg := config.NewConfig("/tmp/ff")

		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := config.ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseDir != "/tmp/ff" {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, "/tmp/ff")
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "frameforge.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := config.Init(path, config.NewConfig("/tmp/ff")); err == nil {
			t.Error("Init() error = nil, want error")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := config.ReadFromFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("ReadFromFile() error = nil, want error")
	}
}
