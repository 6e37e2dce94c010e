package configs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type cardSection struct {
	Width  int    `toml:"width"`
	Format string `toml:"format"`
}

func TestSaveAndLoadTOML(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.toml")

	original := cardSection{Width: 640, Format: "qoi"}
	if err := SaveTOML(testFile, original); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	var loaded cardSection
	if err := LoadTOML(testFile, &loaded); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if loaded != original {
		t.Errorf("Expected %+v, got %+v", original, loaded)
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	var data cardSection
	if err := LoadTOML(filepath.Join(t.TempDir(), "nonexistent.toml"), &data); err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
}

func TestLoadTOMLUnknownKeys(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.toml")
	if err := os.WriteFile(testFile, []byte("width = 10\nwdith = 20\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var data cardSection
	err := LoadTOML(testFile, &data)
	var unknown *UnknownKeysError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownKeysError, got %v", err)
	}
	if len(unknown.Keys) != 1 || unknown.Keys[0].String() != "wdith" {
		t.Errorf("Unexpected unknown keys: %v", unknown.Keys)
	}
}

func TestSaveTOMLCreatesPrivateFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "subdir", "test.toml")

	if err := SaveTOML(testFile, cardSection{Width: 1}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("File was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}
}
