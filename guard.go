package archiver

import (
	"log"
	"os"
)

// CheckCreate decides whether an artifact may be written at path. If the
// path already exists and overwrite is false, it fails with a TargetExists
// error. If it exists and overwrite is true, it proceeds with a warning.
// Every artifact path is checked independently before that artifact is
// written.
func CheckCreate(path string, overwrite bool) error {

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrap(KindIOFailure, err, "cannot stat '%s'", path)
	}

	if !overwrite {
		return Errorf(KindTargetExists,
			"file or directory '%s' already exists, use option '--overwrite' to overwrite it", path)
	}

	log.Printf("dicom-archive: WARNING: overwriting '%s'", path)

	return nil
}

// EnsureDir creates the directory at path if it does not exist. If the path
// exists but is not a writable directory, it fails with a DirectoryUnusable
// error, distinct from a TargetExists conflict.
func EnsureDir(path string) error {

	if _, err := os.Stat(path); err != nil {

		if !os.IsNotExist(err) {
			return wrap(KindIOFailure, err, "cannot stat '%s'", path)
		}

		log.Printf("dicom-archive: creating directory '%s'", path)

		if err = os.Mkdir(path, 0755); err != nil {
			return wrap(KindDirectoryUnusable, err, "cannot create directory '%s'", path)
		}

		return nil
	}

	if err := checkWritableDir(path); err != nil {
		return wrap(KindDirectoryUnusable, err,
			"path '%s' exists but is not a writable directory", path)
	}

	return nil
}
