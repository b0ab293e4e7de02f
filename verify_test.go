package archiver

import (
	"path/filepath"
	"strings"
	"testing"
)

const staleChecksum = "00000000000000000000000000000000"

// sealTamperedBundle builds a bundle whose embedded log records a stale
// tarball checksum, bypassing the pipeline so the log can disagree with
// the payload. With tamperZipball, the zipball checksum is stale too;
// otherwise it is the real one, so verification reaches the tarball check.
func sealTamperedBundle(t *testing.T, tamperZipball bool) string {
	t.Helper()

	source := newSourceDir(t, "Subj01")
	target := t.TempDir()

	var (
		tarPath     = filepath.Join(target, "Subj01.tar")
		zipPath     = filepath.Join(target, "Subj01.tar.gz")
		summaryPath = filepath.Join(target, "Subj01.meta")
		logPath     = filepath.Join(target, "Subj01.log")
		archivePath = filepath.Join(target, "DCM_Subj01.tar")
	)

	if err := CreateTarball(source, tarPath); err != nil {
		t.Fatalf("archiver tests: cannot create tarball: %s", err)
	}
	if err := CompressTarball(tarPath, zipPath); err != nil {
		t.Fatalf("archiver tests: cannot compress tarball: %s", err)
	}

	zipballChecksum := staleChecksum

	if !tamperZipball {
		zipSum, err := MakeHash(zipPath)
		if err != nil {
			t.Fatalf("archiver tests: cannot hash zipball: %s", err)
		}
		zipballChecksum = zipSum
	}

	archiveLog := NewLog(source, archivePath, staleChecksum, zipballChecksum)

	if err := sampleSummary("1.2.3", nil).WriteToFile(summaryPath); err != nil {
		t.Fatalf("archiver tests: cannot write summary: %s", err)
	}
	if err := archiveLog.WriteToFile(logPath); err != nil {
		t.Fatalf("archiver tests: cannot write log: %s", err)
	}
	if err := SealArchive(archivePath, zipPath, summaryPath, logPath); err != nil {
		t.Fatalf("archiver tests: cannot seal archive: %s", err)
	}

	return archivePath
}

// A bundle whose log disagrees with its payload fails verification with a
// classified error naming the mismatched checksum.
func TestVerifyBundleZipballMismatch(t *testing.T) {

	archivePath := sealTamperedBundle(t, true)

	_, err := VerifyBundle(archivePath, "", "")
	if err == nil {
		t.Fatal("archiver tests: expected verification to fail")
	}
	if KindOf(err) != KindIOFailure {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindIOFailure)
	}
	if !strings.Contains(err.Error(), "zipball checksum mismatch") {
		t.Errorf("error does not name the mismatched checksum:\n%s", err)
	}
}

// A real zipball checksum paired with a stale tarball checksum passes the
// first validation and fails the second.
func TestVerifyBundleTarballMismatch(t *testing.T) {

	archivePath := sealTamperedBundle(t, false)

	_, err := VerifyBundle(archivePath, "", "")
	if err == nil {
		t.Fatal("archiver tests: expected verification to fail")
	}
	if KindOf(err) != KindIOFailure {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindIOFailure)
	}
	if !strings.Contains(err.Error(), "tarball checksum mismatch") {
		t.Errorf("error does not name the mismatched checksum:\n%s", err)
	}
}
