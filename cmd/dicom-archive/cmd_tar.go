package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neuroscan/dicom-archiver"
)

var tarFlags struct {
	service   string
	keyPath   string
	verbose   bool
	today     bool
	year      bool
	overwrite bool
}

var tarCmd = &cobra.Command{
	Use:   "tar <source> <target>",
	Short: "Archive a DICOM directory without any registry interaction",
	Long: `Read a DICOM directory and process it into a structured and compressed
archive bundle. Unlike 'archive', this subcommand never touches the study
registry.`,
	Args: cobra.ExactArgs(2),
	RunE: runTar,
}

func init() {
	f := tarCmd.Flags()
	f.StringVar(&tarFlags.service, "service", "", "Base URL of the metadata extraction service (default: $DICOM_SUMMARY_SERVICE)")
	f.StringVar(&tarFlags.keyPath, "key", "", "OpenPGP public key file for encrypting the sealed bundle")
	f.BoolVar(&tarFlags.verbose, "verbose", false, "Set the command to be verbose")
	f.BoolVar(&tarFlags.today, "today", false, "Use today's date as the scan date when none is found in the DICOMs")
	f.BoolVar(&tarFlags.year, "year", false, "Create the archive in a year subdirectory")
	f.BoolVar(&tarFlags.overwrite, "overwrite", false, "Overwrite the archive files if they already exist")
}

func runTar(cmd *cobra.Command, args []string) error {

	var err error

	cfg := &archiver.Config{
		Source:    args[0],
		Target:    args[1],
		KeyPath:   tarFlags.keyPath,
		Verbose:   tarFlags.verbose,
		Today:     tarFlags.today,
		Year:      tarFlags.year,
		Overwrite: tarFlags.overwrite,
	}

	if cfg.Service, err = serviceURL(tarFlags.service); err != nil {
		return err
	}

	if err = cfg.Verify(); err != nil {
		return err
	}

	extractor := archiver.NewServiceExtractor(cfg.Service)

	if _, _, err = archiver.New(cfg, extractor, nil).Run(); err != nil {
		return err
	}

	fmt.Println("Success")

	return nil
}
