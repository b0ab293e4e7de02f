package archiver

import (
	"fmt"
	"path/filepath"
	"time"
)

// DateFormat is the calendar date layout used in archive names, summary
// fields, and registry columns.
const DateFormat = "2006-01-02"

// Resolution is the outcome of archive name resolution: the destination
// directory, the full archive path inside it, and any advisories to report
// to the operator. The directory is not created by the resolver; the caller
// delegates that to EnsureDir.
type Resolution struct {
	Dir         string
	ArchivePath string
	Advisories  []string
}

// ResolveArchivePath derives the final archive location from the target
// directory, the source base name, the scan date found in the DICOMs, and
// the '--today' and '--year' options. The today argument supplies the
// current date so that the resolution is deterministic given its inputs.
//
// The archive is named 'DCM_<date>_<base>.tar' when a scan date is known
// and 'DCM_<base>.tar' otherwise. With '--year', the archive is placed in
// a '<target>/<year>' subdirectory.
func ResolveArchivePath(target, baseName string, scanDate *time.Time, useToday, yearBucket bool, today time.Time) Resolution {

	var res Resolution

	date := scanDate

	if date == nil {
		if useToday {
			date = &today
		} else {
			res.Advisories = append(res.Advisories,
				"no scan date was found in the DICOMs, consider using option '--today' to use today's date as the scan date")
		}
	}

	if yearBucket && date == nil {
		res.Advisories = append(res.Advisories,
			"option '--year' was provided but no scan date was found in the DICOMs, the option will be ignored")
	}

	res.Dir = target

	if yearBucket && date != nil {
		res.Dir = filepath.Join(target, fmt.Sprintf("%d", date.Year()))
	}

	name := fmt.Sprintf("DCM_%s.tar", baseName)

	if date != nil {
		name = fmt.Sprintf("DCM_%s_%s.tar", date.Format(DateFormat), baseName)
	}

	res.ArchivePath = filepath.Join(res.Dir, name)

	return res
}
