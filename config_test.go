package archiver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigVerifyFlagConflict(t *testing.T) {

	cfg := &Config{
		Source:   t.TempDir(),
		Target:   t.TempDir(),
		Profile:  "database.yml",
		DBInsert: true,
		DBUpdate: true,
	}

	err := cfg.Verify()
	if err == nil {
		t.Fatal("archiver tests: expected an error for conflicting db options")
	}
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindInvalidArgument)
	}
}

func TestConfigVerifyProfileRequired(t *testing.T) {

	cfg := &Config{
		Source:   t.TempDir(),
		Target:   t.TempDir(),
		DBInsert: true,
	}

	err := cfg.Verify()
	if err == nil {
		t.Fatal("archiver tests: expected an error for a db option without a profile")
	}
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindInvalidArgument)
	}
}

func TestConfigVerifyPaths(t *testing.T) {

	cfg := &Config{
		Source: filepath.Join(t.TempDir(), "missing"),
		Target: t.TempDir(),
	}

	if err := cfg.Verify(); KindOf(err) != KindInvalidArgument {
		t.Fatalf("archiver tests: expected an invalid argument error for a missing source")
	}

	cfg = &Config{Source: t.TempDir(), Target: t.TempDir()}

	if err := cfg.Verify(); err != nil {
		t.Fatalf("archiver tests: unexpected error for valid paths: %s", err)
	}
}

func TestLoadProfile(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "database.yml")

	if err := os.WriteFile(path, []byte("database: /srv/registry.db\n"), 0644); err != nil {
		t.Fatalf("archiver tests: cannot write profile: %s", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("archiver tests: cannot load profile: %s", err)
	}
	if profile.Database != "/srv/registry.db" {
		t.Errorf("database: got '%s', want '/srv/registry.db'", profile.Database)
	}
}

func TestLoadProfileRelative(t *testing.T) {

	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	if err := os.WriteFile(filepath.Join(dir, "database.yml"), []byte("database: registry.db\n"), 0644); err != nil {
		t.Fatalf("archiver tests: cannot write profile: %s", err)
	}

	profile, err := LoadProfile("database.yml")
	if err != nil {
		t.Fatalf("archiver tests: cannot load relative profile: %s", err)
	}
	if profile.Database != "registry.db" {
		t.Errorf("database: got '%s', want 'registry.db'", profile.Database)
	}
}

func TestLoadProfileMissing(t *testing.T) {

	t.Setenv(ConfigDirEnv, "")

	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("archiver tests: expected an error for a missing profile")
	}
	if KindOf(err) != KindMissingConfiguration {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindMissingConfiguration)
	}
}

func TestLoadProfileWithoutDatabase(t *testing.T) {

	path := filepath.Join(t.TempDir(), "database.yml")

	if err := os.WriteFile(path, []byte("other: value\n"), 0644); err != nil {
		t.Fatalf("archiver tests: cannot write profile: %s", err)
	}

	if _, err := LoadProfile(path); KindOf(err) != KindMissingConfiguration {
		t.Fatalf("archiver tests: expected a missing configuration error")
	}
}
