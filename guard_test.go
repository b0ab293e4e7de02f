package archiver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckCreateMissingPath(t *testing.T) {

	path := filepath.Join(t.TempDir(), "new.tar")

	if err := CheckCreate(path, false); err != nil {
		t.Fatalf("archiver tests: unexpected error for missing path: %s", err)
	}
}

func TestCheckCreateExistingPath(t *testing.T) {

	path := filepath.Join(t.TempDir(), "existing.tar")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("archiver tests: cannot write test file: %s", err)
	}

	err := CheckCreate(path, false)
	if err == nil {
		t.Fatal("archiver tests: expected an error for an existing path without overwrite")
	}
	if KindOf(err) != KindTargetExists {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindTargetExists)
	}

	if err = CheckCreate(path, true); err != nil {
		t.Fatalf("archiver tests: unexpected error for existing path with overwrite: %s", err)
	}
}

func TestEnsureDirCreates(t *testing.T) {

	path := filepath.Join(t.TempDir(), "2024")

	if err := EnsureDir(path); err != nil {
		t.Fatalf("archiver tests: cannot create directory: %s", err)
	}

	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		t.Fatalf("archiver tests: directory was not created")
	}

	// A second call on the now-existing directory must succeed.
	if err = EnsureDir(path); err != nil {
		t.Fatalf("archiver tests: unexpected error for existing directory: %s", err)
	}
}

func TestEnsureDirUnusable(t *testing.T) {

	path := filepath.Join(t.TempDir(), "2024")
	if err := os.WriteFile(path, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("archiver tests: cannot write test file: %s", err)
	}

	err := EnsureDir(path)
	if err == nil {
		t.Fatal("archiver tests: expected an error for a file in place of the directory")
	}
	if KindOf(err) != KindDirectoryUnusable {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindDirectoryUnusable)
	}
}
