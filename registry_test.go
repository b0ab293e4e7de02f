package archiver

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry, err := OpenRegistry(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("archiver tests: cannot open registry: %s", err)
	}
	t.Cleanup(func() { registry.Close() })

	return registry
}

func sampleSummary(studyUID string, scanDate *time.Time) *Summary {

	series := 1
	echoTime := 2.5

	return &Summary{
		Info: Info{
			StudyUID:        studyUID,
			PatientID:       "SUBJ01",
			PatientName:     "Subj01",
			PatientSex:      "F",
			ScanDate:        scanDate,
			ScannerModel:    "Prisma",
			ScannerSoftware: "syngo MR E11",
			Institution:     "Example Institute",
			Modality:        "MR",
		},
		Files: []File{
			{SeriesNumber: &series, MD5Sum: "aaa", FileName: "image-000001.dcm"},
			{SeriesNumber: &series, MD5Sum: "bbb", FileName: "image-000002.dcm"},
		},
		Acquisitions: []Acquisition{
			{SeriesNumber: series, SeriesDescription: "t1_mprage", EchoTime: &echoTime, FilesCount: 2},
		},
	}
}

func sampleLog(target string) *Log {
	archiveLog := NewLog("/data/Subj01", target, "tarsum", "zipsum")
	archiveLog.ArchiveChecksum = "archsum"
	return archiveLog
}

func TestRegistryLookupAbsent(t *testing.T) {

	registry := newTestRegistry(t)

	record, err := registry.Lookup("1.2.3")
	if err != nil {
		t.Fatalf("archiver tests: lookup failed: %s", err)
	}
	if record != nil {
		t.Fatalf("archiver tests: expected no record, got %+v", record)
	}
}

func TestRegistryInsertAndLookup(t *testing.T) {

	registry := newTestRegistry(t)
	summary := sampleSummary("1.2.3", date(2024, time.August, 27))

	location := "/archives/DCM_2024-08-27_Subj01.tar"

	if err := registry.Insert(sampleLog(location), summary, location); err != nil {
		t.Fatalf("archiver tests: insert failed: %s", err)
	}

	record, err := registry.Lookup("1.2.3")
	if err != nil {
		t.Fatalf("archiver tests: lookup failed: %s", err)
	}
	if record == nil {
		t.Fatal("archiver tests: expected a record after insert")
	}
	if record.StudyUID != "1.2.3" {
		t.Errorf("study uid: got '%s', want '1.2.3'", record.StudyUID)
	}
	if record.ArchiveLocation != "/archives/DCM_2024-08-27_Subj01.tar" {
		t.Errorf("archive location: got '%s'", record.ArchiveLocation)
	}
	if !strings.Contains(record.CreateInfo, "Taken from dir") {
		t.Errorf("create info does not hold the archiving log:\n%s", record.CreateInfo)
	}
}

// Inserting the same study twice fails the second time with an insert
// conflict, backed by the UNIQUE constraint on the study UID.
func TestRegistryInsertTwiceConflict(t *testing.T) {

	registry := newTestRegistry(t)
	summary := sampleSummary("1.2.3", nil)

	location := "/archives/DCM_Subj01.tar"

	if err := registry.Insert(sampleLog(location), summary, location); err != nil {
		t.Fatalf("archiver tests: first insert failed: %s", err)
	}

	err := registry.Insert(sampleLog(location), summary, location)
	if err == nil {
		t.Fatal("archiver tests: expected the second insert to fail")
	}
	if KindOf(err) != KindInsertConflict {
		t.Fatalf("archiver tests: got kind %s, want %s", KindOf(err), KindInsertConflict)
	}
}

func TestRegistryUpdate(t *testing.T) {

	registry := newTestRegistry(t)
	summary := sampleSummary("1.2.3", date(2024, time.August, 27))

	location := "/archives/DCM_2024-08-27_Subj01.tar"

	if err := registry.Insert(sampleLog(location), summary, location); err != nil {
		t.Fatalf("archiver tests: insert failed: %s", err)
	}

	record, err := registry.Lookup("1.2.3")
	if err != nil || record == nil {
		t.Fatalf("archiver tests: lookup after insert failed: %s", err)
	}

	moved := "/archives/2024/DCM_2024-08-27_Subj01.tar"

	if err = registry.Update(record, sampleLog(moved), summary, moved); err != nil {
		t.Fatalf("archiver tests: update failed: %s", err)
	}

	record, err = registry.Lookup("1.2.3")
	if err != nil || record == nil {
		t.Fatalf("archiver tests: lookup after update failed: %s", err)
	}
	if record.ArchiveLocation != "/archives/2024/DCM_2024-08-27_Subj01.tar" {
		t.Errorf("archive location was not updated: got '%s'", record.ArchiveLocation)
	}
}
