package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neuroscan/dicom-archiver"
)

var archiveFlags struct {
	profile   string
	service   string
	keyPath   string
	verbose   bool
	today     bool
	year      bool
	overwrite bool
	dbInsert  bool
	dbUpdate  bool
}

var archiveCmd = &cobra.Command{
	Use:   "archive <source> <target>",
	Short: "Archive a DICOM directory, optionally recording it in the registry",
	Long: `Read a DICOM directory, process it into a structured and compressed
archive bundle, and insert it into or update it in the study registry.

The registry connection is read from the YAML file named by '--profile',
resolved under the DICOM_ARCHIVE_CONFIG directory when relative. Without
'--profile', no registry interaction takes place.`,
	Args: cobra.ExactArgs(2),
	RunE: runArchive,
}

func init() {
	f := archiveCmd.Flags()
	f.StringVar(&archiveFlags.profile, "profile", "", "The registry connection profile file")
	f.StringVar(&archiveFlags.service, "service", "", "Base URL of the metadata extraction service (default: $DICOM_SUMMARY_SERVICE)")
	f.StringVar(&archiveFlags.keyPath, "key", "", "OpenPGP public key file for encrypting the sealed bundle")
	f.BoolVar(&archiveFlags.verbose, "verbose", false, "Set the command to be verbose")
	f.BoolVar(&archiveFlags.today, "today", false, "Use today's date as the scan date when none is found in the DICOMs")
	f.BoolVar(&archiveFlags.year, "year", false, "Create the archive in a year subdirectory (example: 2024/DCM_2024-08-27_FooBar.tar)")
	f.BoolVar(&archiveFlags.overwrite, "overwrite", false, "Overwrite the archive files if they already exist")
	f.BoolVar(&archiveFlags.dbInsert, "db-insert", false, "Insert the created archive in the registry (requires the study to not be already inserted)")
	f.BoolVar(&archiveFlags.dbUpdate, "db-update", false, "Update the archive in the registry (requires the study to already be inserted), generally used with '--overwrite'")
}

func runArchive(cmd *cobra.Command, args []string) error {

	var (
		registry *archiver.Registry
		err      error
	)

	cfg := &archiver.Config{
		Source:    args[0],
		Target:    args[1],
		Profile:   archiveFlags.profile,
		KeyPath:   archiveFlags.keyPath,
		Verbose:   archiveFlags.verbose,
		Today:     archiveFlags.today,
		Year:      archiveFlags.year,
		Overwrite: archiveFlags.overwrite,
		DBInsert:  archiveFlags.dbInsert,
		DBUpdate:  archiveFlags.dbUpdate,
	}

	if cfg.Service, err = serviceURL(archiveFlags.service); err != nil {
		return err
	}

	if err = cfg.Verify(); err != nil {
		return err
	}

	if cfg.Profile != "" {

		profile, err := archiver.LoadProfile(cfg.Profile)
		if err != nil {
			return err
		}

		if registry, err = archiver.OpenRegistry(profile.Database); err != nil {
			return err
		}

		defer registry.Close()
	}

	extractor := archiver.NewServiceExtractor(cfg.Service)

	if _, _, err = archiver.New(cfg, extractor, registry).Run(); err != nil {
		return err
	}

	fmt.Println("Success")

	return nil
}
