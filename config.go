package archiver

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigDirEnv names the environment variable holding the directory under
// which relative profile paths are resolved.
const ConfigDirEnv = "DICOM_ARCHIVE_CONFIG"

// Config holds the configuration values for one pipeline run. The fields
// correspond exactly with the command line flags. A Config is built once by
// the option adapter and never mutated afterwards.
type Config struct {
	Source    string // Source DICOM directory.
	Target    string // Target directory for the archive.
	Profile   string // Registry connection profile file, empty for no registry.
	Service   string // Base URL of the metadata extraction service.
	KeyPath   string // OpenPGP public key for bundle encryption, empty for none.
	Verbose   bool
	Today     bool
	Year      bool
	Overwrite bool
	DBInsert  bool
	DBUpdate  bool
}

// Verify verifies the validity of a configuration.
func (cfg *Config) Verify() error {

	if cfg.DBInsert && cfg.DBUpdate {
		return Errorf(KindInvalidArgument,
			"options '--db-insert' and '--db-update' must not be set both at the same time")
	}

	if (cfg.DBInsert || cfg.DBUpdate) && cfg.Profile == "" {
		return Errorf(KindInvalidArgument,
			"option '--profile' must be set when a '--db-*' option is set")
	}

	if err := checkReadableDir(cfg.Source); err != nil {
		return wrap(KindInvalidArgument, err, "source must be a readable directory path")
	}

	if err := checkWritableDir(cfg.Target); err != nil {
		return wrap(KindInvalidArgument, err, "target must be a writable directory path")
	}

	return nil
}

// Profile holds the registry connection settings loaded from the profile
// file named by the '--profile' option.
type Profile struct {
	Database string `yaml:"database"` // SQLite database path or DSN.
}

// LoadProfile reads and parses a registry connection profile. A relative
// path is resolved under the DICOM_ARCHIVE_CONFIG directory when that
// environment variable is set.
func LoadProfile(path string) (*Profile, error) {

	var (
		profile Profile
		data    []byte
		err     error
	)

	if !filepath.IsAbs(path) {
		if dir := os.Getenv(ConfigDirEnv); dir != "" {
			path = filepath.Join(dir, path)
		}
	}

	if data, err = os.ReadFile(path); err != nil {
		return nil, wrap(KindMissingConfiguration, err, "cannot read profile '%s'", path)
	}

	if err = yaml.Unmarshal(data, &profile); err != nil {
		return nil, wrap(KindMissingConfiguration, err, "cannot parse profile '%s'", path)
	}

	if profile.Database == "" {
		return nil, Errorf(KindMissingConfiguration,
			"profile '%s' does not set a 'database' value", path)
	}

	return &profile, nil
}

func checkReadableDir(path string) error {

	var (
		fi  os.FileInfo
		dir *os.File
		err error
	)

	if fi, err = os.Stat(path); err != nil {
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("'%s' is not a directory", path)
	}

	if dir, err = os.Open(path); err != nil {
		return err
	}

	return dir.Close()
}

// checkWritableDir probes writability by creating and removing a temporary
// file, since permission bits alone do not account for ownership or ACLs.
func checkWritableDir(path string) error {

	var (
		fi    os.FileInfo
		probe *os.File
		err   error
	)

	if fi, err = os.Stat(path); err != nil {
		return err
	}

	if !fi.IsDir() {
		return fmt.Errorf("'%s' is not a directory", path)
	}

	if probe, err = os.CreateTemp(path, ".dicom-archive-probe-*"); err != nil {
		return err
	}

	probe.Close()

	return os.Remove(probe.Name())
}
