package archiver

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Bundle is the set of artifact paths produced during a run. The four
// intermediate paths are deleted once the archive is sealed; ArchivePath
// is the only artifact that persists.
type Bundle struct {
	TarPath     string
	ZipPath     string
	SummaryPath string
	LogPath     string
	ArchivePath string
}

// Pipeline runs the archive construction and registry synchronization
// sequence for one source directory. The stages run strictly in order;
// no stage begins before the previous one has completed.
type Pipeline struct {
	cfg       *Config
	extractor Extractor
	registry  *Registry // nil when no registry was configured
}

// New builds a pipeline from an immutable configuration, a metadata
// extractor, and an optional registry. Components that do not need the
// registry never see it.
func New(cfg *Config, extractor Extractor, registry *Registry) *Pipeline {
	return &Pipeline{cfg: cfg, extractor: extractor, registry: registry}
}

// Run executes the pipeline and returns the study summary and the
// completed archiving log. Any failure aborts the run; intermediate files
// from stages that completed before the failure are deliberately left on
// disk for inspection.
func (p *Pipeline) Run() (*Summary, *Log, error) {

	var (
		cfg      = p.cfg
		source   = strings.TrimRight(cfg.Source, "/")
		baseName = filepath.Base(source)
		bundle   Bundle
		summary  *Summary
		record   *StudyRecord
		err      error
	)

	bundle.TarPath = filepath.Join(cfg.Target, baseName+".tar")
	bundle.ZipPath = filepath.Join(cfg.Target, baseName+".tar.gz")
	bundle.SummaryPath = filepath.Join(cfg.Target, baseName+".meta")
	bundle.LogPath = filepath.Join(cfg.Target, baseName+".log")

	for _, path := range []string{bundle.TarPath, bundle.ZipPath, bundle.SummaryPath, bundle.LogPath} {
		if err = CheckCreate(path, cfg.Overwrite); err != nil {
			return nil, nil, err
		}
	}

	p.verbose("extracting DICOM information (may take a long time)")

	if summary, err = p.extractor.Extract(source); err != nil {
		return nil, nil, err
	}

	// The registry precondition is enforced before any archive bytes are
	// written, so a conflicting run fails before the expensive stages.
	if p.registry != nil && (cfg.DBInsert || cfg.DBUpdate) {

		p.verbose("checking registry presence")

		if record, err = p.registry.Lookup(summary.Info.StudyUID); err != nil {
			return nil, nil, err
		}

		if cfg.DBInsert && record != nil {
			return nil, nil, Errorf(KindInsertConflict,
				"study '%s' is already inserted in the registry\nprevious archiving log:\n%s",
				summary.Info.StudyUID, record.CreateInfo)
		}

		if cfg.DBUpdate && record == nil {
			return nil, nil, Errorf(KindUpdateConflict,
				"no study '%s' found in the registry", summary.Info.StudyUID)
		}
	}

	p.verbose("copying into DICOM tar")

	if err = CreateTarball(source, bundle.TarPath); err != nil {
		return nil, nil, err
	}

	p.verbose("calculating DICOM tar MD5 sum")

	tarballChecksum, err := MakeHash(bundle.TarPath)
	if err != nil {
		return nil, nil, err
	}

	p.verbose("zipping DICOM tar (may take a long time)")

	if err = CompressTarball(bundle.TarPath, bundle.ZipPath); err != nil {
		return nil, nil, err
	}

	p.verbose("calculating DICOM zip MD5 sum")

	zipballChecksum, err := MakeHash(bundle.ZipPath)
	if err != nil {
		return nil, nil, err
	}

	p.verbose("getting DICOM scan date")

	res := ResolveArchivePath(cfg.Target, baseName, summary.Info.ScanDate, cfg.Today, cfg.Year, time.Now())

	for _, advisory := range res.Advisories {
		log.Printf("dicom-archive: WARNING: %s", advisory)
	}

	if res.Dir != cfg.Target {
		if err = EnsureDir(res.Dir); err != nil {
			return nil, nil, err
		}
	}

	bundle.ArchivePath = res.ArchivePath

	if err = CheckCreate(bundle.ArchivePath, cfg.Overwrite); err != nil {
		return nil, nil, err
	}

	archiveLog := NewLog(source, bundle.ArchivePath, tarballChecksum, zipballChecksum)

	if cfg.Verbose {
		fmt.Println("the archive will be created with the following arguments:")
		fmt.Println(archiveLog.WriteToString())
	}

	p.verbose("writing summary file")

	if err = summary.WriteToFile(bundle.SummaryPath); err != nil {
		return nil, nil, err
	}

	p.verbose("writing log file")

	if err = archiveLog.WriteToFile(bundle.LogPath); err != nil {
		return nil, nil, err
	}

	p.verbose("copying into DICOM archive")

	if err = SealArchive(bundle.ArchivePath, bundle.ZipPath, bundle.SummaryPath, bundle.LogPath); err != nil {
		return nil, nil, err
	}

	p.verbose("removing temporary files")

	cleanup(bundle.TarPath, bundle.ZipPath, bundle.SummaryPath, bundle.LogPath)

	p.verbose("calculating DICOM archive MD5 sum")

	// The bundle checksum is computed over the sealed file on disk, never
	// before the bundle is complete.
	if archiveLog.ArchiveChecksum, err = MakeHash(bundle.ArchivePath); err != nil {
		return nil, nil, err
	}

	if cfg.KeyPath != "" {

		p.verbose("encrypting DICOM archive")

		encryptedPath := bundle.ArchivePath + ".gpg"

		if err = CheckCreate(encryptedPath, cfg.Overwrite); err != nil {
			return nil, nil, err
		}

		if err = EncryptFile(bundle.ArchivePath, encryptedPath, cfg.KeyPath); err != nil {
			return nil, nil, err
		}

		cleanup(bundle.ArchivePath)
		bundle.ArchivePath = encryptedPath
	}

	// The registry records the bundle as it exists on disk, so an
	// encrypted run registers the '.gpg' path rather than the plaintext
	// path named in the log.
	if p.registry != nil && cfg.DBInsert {
		p.verbose("inserting into the registry")
		if err = p.registry.Insert(archiveLog, summary, bundle.ArchivePath); err != nil {
			return nil, nil, err
		}
	}

	if p.registry != nil && cfg.DBUpdate {
		p.verbose("updating the registry")
		if err = p.registry.Update(record, archiveLog, summary, bundle.ArchivePath); err != nil {
			return nil, nil, err
		}
	}

	return summary, archiveLog, nil
}

// cleanup removes intermediate artifacts. The final archive has already
// been committed at this point, so failures are reported as warnings and
// do not abort the run.
func cleanup(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			log.Printf("dicom-archive: WARNING: cannot remove temporary file '%s': %s", path, err)
		}
	}
}

func (p *Pipeline) verbose(message string) {
	if p.cfg.Verbose {
		log.Printf("dicom-archive: %s", message)
	}
}
