package archiver

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

const (
	summaryVersion = 1
	archiveVersion = 1

	// The log file is written into the bundle before the bundle checksum
	// can exist; only the registry record carries the final sum.
	archiveChecksumPlaceholder = "Provided in database only"
)

// Log is the archiving log: the record of what was archived, to where,
// and with which checksums. ArchiveChecksum is the only field mutated
// after construction, filled in once the sealed bundle has been hashed.
type Log struct {
	SourcePath      string
	TargetPath      string
	CreatorHost     string
	CreatorOS       string
	CreatorName     string
	ArchiveDate     string
	SummaryVersion  int
	ArchiveVersion  int
	TarballChecksum string
	ZipballChecksum string
	ArchiveChecksum string
}

// NewLog builds the archiving log for a run, recording the source and
// target paths, the two intermediate checksums, and the current execution
// environment.
func NewLog(source, target, tarballChecksum, zipballChecksum string) *Log {

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &Log{
		SourcePath:      source,
		TargetPath:      target,
		CreatorHost:     host,
		CreatorOS:       runtime.GOOS,
		CreatorName:     os.Getenv("USER"),
		ArchiveDate:     time.Now().Format("2006-01-02 15:04:05"),
		SummaryVersion:  summaryVersion,
		ArchiveVersion:  archiveVersion,
		TarballChecksum: tarballChecksum,
		ZipballChecksum: zipballChecksum,
		ArchiveChecksum: archiveChecksumPlaceholder,
	}
}

// WriteToString renders the log in its lossless text dictionary form.
func (l *Log) WriteToString() string {
	return WriteDict([]DictEntry{
		{"Taken from dir", l.SourcePath},
		{"Archive target location", l.TargetPath},
		{"Name of creating host", l.CreatorHost},
		{"Name of host OS", l.CreatorOS},
		{"Created by user", l.CreatorName},
		{"Archived on", l.ArchiveDate},
		{"dicomSummary version", strconv.Itoa(l.SummaryVersion)},
		{"dicomTar version", strconv.Itoa(l.ArchiveVersion)},
		{"md5sum for DICOM tarball", l.TarballChecksum},
		{"md5sum for DICOM tarball gzipped", l.ZipballChecksum},
		{"md5sum for complete archive", l.ArchiveChecksum},
	})
}

// WriteToFile writes the text rendering of the log to path.
func (l *Log) WriteToFile(path string) error {
	if err := os.WriteFile(path, []byte(l.WriteToString()), 0644); err != nil {
		return wrap(KindIOFailure, err, "cannot write log file '%s'", path)
	}
	return nil
}

// ReadLog parses a log from its text dictionary form.
func ReadLog(text string) (*Log, error) {

	entries, err := ReadDict(text)
	if err != nil {
		return nil, wrap(KindIOFailure, err, "cannot parse archiving log")
	}

	sumVersion, err := strconv.Atoi(entries["dicomSummary version"])
	if err != nil {
		return nil, wrap(KindIOFailure, err, "invalid summary version in archiving log")
	}

	tarVersion, err := strconv.Atoi(entries["dicomTar version"])
	if err != nil {
		return nil, wrap(KindIOFailure, err, "invalid archive version in archiving log")
	}

	return &Log{
		SourcePath:      entries["Taken from dir"],
		TargetPath:      entries["Archive target location"],
		CreatorHost:     entries["Name of creating host"],
		CreatorOS:       entries["Name of host OS"],
		CreatorName:     entries["Created by user"],
		ArchiveDate:     entries["Archived on"],
		SummaryVersion:  sumVersion,
		ArchiveVersion:  tarVersion,
		TarballChecksum: entries["md5sum for DICOM tarball"],
		ZipballChecksum: entries["md5sum for DICOM tarball gzipped"],
		ArchiveChecksum: entries["md5sum for complete archive"],
	}, nil
}
