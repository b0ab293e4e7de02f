package archiver

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Registry is the persistent store tracking which studies have been
// archived and where. Records are keyed by the study UID; the UNIQUE
// constraint on that column backs the at-most-one-insert guarantee even
// when two runs race past the lookup.
type Registry struct {
	db *sql.DB
}

// StudyRecord is one registry row, as returned by Lookup. CreateInfo holds
// the text rendering of the archiving log from the run that produced the
// record, used in insert conflict messages.
type StudyRecord struct {
	ArchiveID       int64
	StudyUID        string
	ArchiveLocation string
	CreateInfo      string
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS archive (
	ArchiveID           INTEGER PRIMARY KEY AUTOINCREMENT,
	StudyUID            TEXT NOT NULL UNIQUE,
	PatientID           TEXT,
	PatientName         TEXT,
	PatientDoB          TEXT,
	PatientSex          TEXT,
	CenterName          TEXT,
	DateAcquired        TEXT,
	DateFirstArchived   TEXT,
	DateLastArchived    TEXT,
	AcquisitionCount    INTEGER,
	NonDicomFileCount   INTEGER,
	DicomFileCount      INTEGER,
	TarballChecksum     TEXT,
	ZipballChecksum     TEXT,
	ArchiveChecksum     TEXT,
	CreatingUser        TEXT,
	SummaryVersion      INTEGER,
	ArchiveVersion      INTEGER,
	SourceLocation      TEXT,
	ArchiveLocation     TEXT,
	ScannerModel        TEXT,
	ScannerSoftware     TEXT,
	CreateInfo          TEXT,
	AcquisitionMetadata TEXT
);
CREATE TABLE IF NOT EXISTS archive_series (
	SeriesID          INTEGER PRIMARY KEY AUTOINCREMENT,
	ArchiveID         INTEGER NOT NULL REFERENCES archive(ArchiveID),
	SeriesNumber      INTEGER,
	SeriesDescription TEXT,
	SequenceName      TEXT,
	EchoTime          REAL,
	RepetitionTime    REAL,
	InversionTime     REAL,
	SliceThickness    REAL,
	PhaseEncoding     TEXT,
	NumberOfFiles     INTEGER
);
CREATE TABLE IF NOT EXISTS archive_files (
	FileID            INTEGER PRIMARY KEY AUTOINCREMENT,
	ArchiveID         INTEGER NOT NULL REFERENCES archive(ArchiveID),
	SeriesNumber      INTEGER,
	FileNumber        INTEGER,
	EchoNumber        INTEGER,
	SeriesDescription TEXT,
	Md5Sum            TEXT,
	FileName          TEXT
);
`

// OpenRegistry opens (and if necessary initializes) the registry database
// named by the profile.
func OpenRegistry(dsn string) (*Registry, error) {

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap(KindMissingConfiguration, err, "cannot open registry '%s'", dsn)
	}

	if _, err = db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, wrap(KindMissingConfiguration, err, "cannot initialize registry '%s'", dsn)
	}

	return &Registry{db: db}, nil
}

// Close releases the registry connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Lookup returns the registry record for a study UID, or nil if the study
// has not been archived.
func (r *Registry) Lookup(studyUID string) (*StudyRecord, error) {

	var record StudyRecord

	row := r.db.QueryRow(
		`SELECT ArchiveID, StudyUID, ArchiveLocation, CreateInfo FROM archive WHERE StudyUID = ?`,
		studyUID)

	err := row.Scan(&record.ArchiveID, &record.StudyUID, &record.ArchiveLocation, &record.CreateInfo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(KindIOFailure, err, "registry lookup for study '%s' failed", studyUID)
	}

	return &record, nil
}

// Insert creates the registry record for a newly archived study, from the
// completed archiving log and the study summary. The location names the
// bundle as it exists on disk, which differs from the log's target path
// when the bundle was encrypted after sealing. Inserting a study UID that
// is already present fails with an InsertConflict.
func (r *Registry) Insert(archiveLog *Log, summary *Summary, location string) error {

	tx, err := r.db.Begin()
	if err != nil {
		return wrap(KindIOFailure, err, "cannot begin registry transaction")
	}

	defer tx.Rollback()

	now := time.Now().Format("2006-01-02 15:04:05")

	result, err := tx.Exec(
		`INSERT INTO archive (
			StudyUID, PatientID, PatientName, PatientDoB, PatientSex, CenterName,
			DateAcquired, DateFirstArchived, DateLastArchived,
			AcquisitionCount, NonDicomFileCount, DicomFileCount,
			TarballChecksum, ZipballChecksum, ArchiveChecksum,
			CreatingUser, SummaryVersion, ArchiveVersion,
			SourceLocation, ArchiveLocation, ScannerModel, ScannerSoftware,
			CreateInfo, AcquisitionMetadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.Info.StudyUID,
		summary.Info.PatientID,
		summary.Info.PatientName,
		summary.Info.PatientBirthdate,
		summary.Info.PatientSex,
		summary.Info.Institution,
		writeDate(summary.Info.ScanDate),
		now,
		now,
		len(summary.Acquisitions),
		len(summary.OtherFiles),
		len(summary.Files),
		archiveLog.TarballChecksum,
		archiveLog.ZipballChecksum,
		archiveLog.ArchiveChecksum,
		archiveLog.CreatorName,
		archiveLog.SummaryVersion,
		archiveLog.ArchiveVersion,
		archiveLog.SourcePath,
		location,
		summary.Info.ScannerModel,
		summary.Info.ScannerSoftware,
		archiveLog.WriteToString(),
		summary.WriteToString(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return wrap(KindInsertConflict, err,
				"study '%s' is already inserted in the registry", summary.Info.StudyUID)
		}
		return wrap(KindIOFailure, err, "registry insert for study '%s' failed", summary.Info.StudyUID)
	}

	archiveID, err := result.LastInsertId()
	if err != nil {
		return wrap(KindIOFailure, err, "cannot read inserted archive id")
	}

	if err = insertChildren(tx, archiveID, summary); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return wrap(KindIOFailure, err, "cannot commit registry insert")
	}

	return nil
}

// Update replaces the registry record for an already archived study. The
// location names the bundle as it exists on disk, as for Insert. The
// series and file rows are rewritten from the new summary.
func (r *Registry) Update(record *StudyRecord, archiveLog *Log, summary *Summary, location string) error {

	tx, err := r.db.Begin()
	if err != nil {
		return wrap(KindIOFailure, err, "cannot begin registry transaction")
	}

	defer tx.Rollback()

	if _, err = tx.Exec(`DELETE FROM archive_files WHERE ArchiveID = ?`, record.ArchiveID); err != nil {
		return wrap(KindIOFailure, err, "cannot delete old file rows")
	}

	if _, err = tx.Exec(`DELETE FROM archive_series WHERE ArchiveID = ?`, record.ArchiveID); err != nil {
		return wrap(KindIOFailure, err, "cannot delete old series rows")
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	_, err = tx.Exec(
		`UPDATE archive SET
			PatientID = ?, PatientName = ?, PatientDoB = ?, PatientSex = ?, CenterName = ?,
			DateAcquired = ?, DateLastArchived = ?,
			AcquisitionCount = ?, NonDicomFileCount = ?, DicomFileCount = ?,
			TarballChecksum = ?, ZipballChecksum = ?, ArchiveChecksum = ?,
			CreatingUser = ?, SummaryVersion = ?, ArchiveVersion = ?,
			SourceLocation = ?, ArchiveLocation = ?, ScannerModel = ?, ScannerSoftware = ?,
			CreateInfo = ?, AcquisitionMetadata = ?
		WHERE ArchiveID = ?`,
		summary.Info.PatientID,
		summary.Info.PatientName,
		summary.Info.PatientBirthdate,
		summary.Info.PatientSex,
		summary.Info.Institution,
		writeDate(summary.Info.ScanDate),
		now,
		len(summary.Acquisitions),
		len(summary.OtherFiles),
		len(summary.Files),
		archiveLog.TarballChecksum,
		archiveLog.ZipballChecksum,
		archiveLog.ArchiveChecksum,
		archiveLog.CreatorName,
		archiveLog.SummaryVersion,
		archiveLog.ArchiveVersion,
		archiveLog.SourcePath,
		location,
		summary.Info.ScannerModel,
		summary.Info.ScannerSoftware,
		archiveLog.WriteToString(),
		summary.WriteToString(),
		record.ArchiveID,
	)
	if err != nil {
		return wrap(KindIOFailure, err, "registry update for study '%s' failed", summary.Info.StudyUID)
	}

	if err = insertChildren(tx, record.ArchiveID, summary); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return wrap(KindIOFailure, err, "cannot commit registry update")
	}

	return nil
}

func insertChildren(tx *sql.Tx, archiveID int64, summary *Summary) error {

	for _, acqui := range summary.Acquisitions {
		_, err := tx.Exec(
			`INSERT INTO archive_series (
				ArchiveID, SeriesNumber, SeriesDescription, SequenceName,
				EchoTime, RepetitionTime, InversionTime, SliceThickness,
				PhaseEncoding, NumberOfFiles
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			archiveID,
			acqui.SeriesNumber,
			acqui.SeriesDescription,
			acqui.SequenceName,
			acqui.EchoTime,
			acqui.RepetitionTime,
			acqui.InversionTime,
			acqui.SliceThickness,
			acqui.PhaseEncoding,
			acqui.FilesCount,
		)
		if err != nil {
			return wrap(KindIOFailure, err, "cannot insert series %d", acqui.SeriesNumber)
		}
	}

	for _, file := range summary.Files {
		_, err := tx.Exec(
			`INSERT INTO archive_files (
				ArchiveID, SeriesNumber, FileNumber, EchoNumber,
				SeriesDescription, Md5Sum, FileName
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			archiveID,
			file.SeriesNumber,
			file.FileNumber,
			file.EchoNumber,
			file.SeriesDescription,
			file.MD5Sum,
			file.FileName,
		)
		if err != nil {
			return wrap(KindIOFailure, err, "cannot insert file '%s'", file.FileName)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
