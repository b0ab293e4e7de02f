package archiver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Info holds the study-level fields of a summary. StudyUID is globally
// unique per imaging study and keys the registry. ScanDate is nil when no
// acquisition date could be found in the DICOMs.
type Info struct {
	StudyUID         string     `json:"study_uid"`
	PatientID        string     `json:"patient_id"`
	PatientName      string     `json:"patient_name"`
	PatientSex       string     `json:"patient_sex"`
	PatientBirthdate string     `json:"patient_birthdate"`
	ScanDate         *time.Time `json:"scan_date"`
	ScannerModel     string     `json:"scanner_model"`
	ScannerSoftware  string     `json:"scanner_software"`
	Institution      string     `json:"institution"`
	Modality         string     `json:"modality"`
}

// File describes one DICOM file of the study.
type File struct {
	SeriesNumber      *int   `json:"series_number"`
	FileNumber        *int   `json:"file_number"`
	EchoNumber        *int   `json:"echo_number"`
	SeriesDescription string `json:"series_description"`
	MD5Sum            string `json:"md5_sum"`
	FileName          string `json:"file_name"`
}

// Acquisition describes one acquisition series of the study.
type Acquisition struct {
	SeriesNumber      int      `json:"series_number"`
	SeriesDescription string   `json:"series_description"`
	SequenceName      string   `json:"sequence_name"`
	EchoTime          *float64 `json:"echo_time"`       // Milliseconds.
	RepetitionTime    *float64 `json:"repetition_time"` // Milliseconds.
	InversionTime     *float64 `json:"inversion_time"`  // Milliseconds.
	SliceThickness    *float64 `json:"slice_thickness"` // Millimeters.
	PhaseEncoding     string   `json:"phase_encoding"`
	FilesCount        int      `json:"files_count"`
}

// Summary is the metadata describing a DICOM study, produced by the
// external metadata extraction service. It is immutable for the duration
// of a pipeline run.
type Summary struct {
	Info         Info          `json:"info"`
	Files        []File        `json:"files"`
	Acquisitions []Acquisition `json:"acquisitions"`
	OtherFiles   []string      `json:"other_files"`
}

// WriteToString renders the summary in its sectioned text form: the study
// info dictionary, the files and acquisitions tables, and the totals.
func (s *Summary) WriteToString() string {

	var b strings.Builder

	b.WriteString("<STUDY>\n<STUDY_INFO>\n")
	b.WriteString(WriteDict([]DictEntry{
		{"Unique Study ID", s.Info.StudyUID},
		{"Patient Name", s.Info.PatientName},
		{"Patient ID", s.Info.PatientID},
		{"Patient date of birth", s.Info.PatientBirthdate},
		{"Scan Date", writeDate(s.Info.ScanDate)},
		{"Patient Sex", s.Info.PatientSex},
		{"Scanner Model Name", s.Info.ScannerModel},
		{"Scanner Software Version", s.Info.ScannerSoftware},
		{"Institution Name", s.Info.Institution},
		{"Modality", s.Info.Modality},
	}))
	b.WriteString("</STUDY_INFO>\n<FILES>\n")
	b.WriteString(s.writeFilesTable())
	b.WriteString("</FILES>\n<ACQUISITIONS>\n")
	b.WriteString(s.writeAcquisTable())
	b.WriteString("</ACQUISITIONS>\n<SUMMARY>\n")
	b.WriteString(WriteDict([]DictEntry{
		{"Total number of files", strconv.Itoa(len(s.Files) + len(s.OtherFiles))},
		{"Number of DICOM files", strconv.Itoa(len(s.Files))},
		{"Number of acquisitions", strconv.Itoa(len(s.Acquisitions))},
	}))
	b.WriteString("</SUMMARY>\n</STUDY>\n")

	return b.String()
}

// WriteToFile writes the text rendering of the summary to path.
func (s *Summary) WriteToFile(path string) error {
	if err := os.WriteFile(path, []byte(s.WriteToString()), 0644); err != nil {
		return wrap(KindIOFailure, err, "cannot write summary file '%s'", path)
	}
	return nil
}

func (s *Summary) writeFilesTable() string {

	var table Table

	table.AppendRow("SN", "FN", "EN", "Series", "md5sum", "File name")
	for _, file := range s.Files {
		table.AppendRow(
			writeInt(file.SeriesNumber),
			writeInt(file.FileNumber),
			writeInt(file.EchoNumber),
			file.SeriesDescription,
			file.MD5Sum,
			file.FileName,
		)
	}

	return table.String()
}

func (s *Summary) writeAcquisTable() string {

	var table Table

	table.AppendRow("Series (SN)", "Name of series", "Seq Name", "echoT ms", "repT ms", "invT ms", "sth mm", "PhEnc", "NoF")
	for _, acqui := range s.Acquisitions {
		table.AppendRow(
			strconv.Itoa(acqui.SeriesNumber),
			acqui.SeriesDescription,
			acqui.SequenceName,
			writeFloat(acqui.EchoTime),
			writeFloat(acqui.RepetitionTime),
			writeFloat(acqui.InversionTime),
			writeFloat(acqui.SliceThickness),
			acqui.PhaseEncoding,
			strconv.Itoa(acqui.FilesCount),
		)
	}

	return table.String()
}

func writeDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(DateFormat)
}

func writeInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func writeFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%g", *value)
}
