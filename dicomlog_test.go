package archiver

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLogPlaceholder(t *testing.T) {

	archiveLog := NewLog("/data/Subj01", "/archives/DCM_Subj01.tar", "aaa", "bbb")

	if archiveLog.ArchiveChecksum != archiveChecksumPlaceholder {
		t.Errorf("archive checksum: got '%s', want the placeholder", archiveLog.ArchiveChecksum)
	}
	if archiveLog.TarballChecksum != "aaa" || archiveLog.ZipballChecksum != "bbb" {
		t.Errorf("intermediate checksums were not recorded")
	}
}

func TestLogRoundTrip(t *testing.T) {

	original := &Log{
		SourcePath:      "/data/Subj01",
		TargetPath:      "/archives/DCM_2024-08-27_Subj01.tar",
		CreatorHost:     "workstation",
		CreatorOS:       "linux",
		CreatorName:     "operator",
		ArchiveDate:     "2024-08-27 10:00:00",
		SummaryVersion:  1,
		ArchiveVersion:  1,
		TarballChecksum: "d41d8cd98f00b204e9800998ecf8427e",
		ZipballChecksum: "e2fc714c4727ee9395f324cd2e7f331f",
		ArchiveChecksum: archiveChecksumPlaceholder,
	}

	parsed, err := ReadLog(original.WriteToString())
	if err != nil {
		t.Fatalf("archiver tests: cannot parse rendered log: %s", err)
	}

	if diff := cmp.Diff(original, parsed); diff != "" {
		t.Errorf("log round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLogRenderingKeys(t *testing.T) {

	text := NewLog("/data/Subj01", "/archives/DCM_Subj01.tar", "aaa", "bbb").WriteToString()

	for _, key := range []string{
		"Taken from dir",
		"Archive target location",
		"md5sum for DICOM tarball",
		"md5sum for DICOM tarball gzipped",
		"md5sum for complete archive",
	} {
		if !strings.Contains(text, key) {
			t.Errorf("log rendering is missing key '%s':\n%s", key, text)
		}
	}
}
