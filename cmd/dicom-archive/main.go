// dicom-archive processes raw DICOM directories into structured and
// compressed archive bundles, and optionally records them in a study
// registry.
//
// Usage:
//
//	dicom-archive archive [--profile=<file>] [--db-insert|--db-update] <source> <target>
//	dicom-archive tar <source> <target>
//	dicom-archive verify [--key=<file>] <archive>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuroscan/dicom-archiver"
)

var rootCmd = &cobra.Command{
	Use:           "dicom-archive",
	Short:         "Process DICOM directories into checksummed archive bundles",
	Version:       archiver.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(archiveCmd, tarCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(archiver.ExitCode(err))
	}
}

// serviceURL resolves the metadata extraction service URL from the flag or
// the DICOM_SUMMARY_SERVICE environment variable.
func serviceURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DICOM_SUMMARY_SERVICE"); env != "" {
		return env, nil
	}
	return "", archiver.Errorf(archiver.KindInvalidArgument,
		"option '--service' must be set, or the DICOM_SUMMARY_SERVICE environment variable exported")
}
