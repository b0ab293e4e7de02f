package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neuroscan/dicom-archiver"
)

var verifyFlags struct {
	keyPath     string
	keyPassPath string
}

var verifyCmd = &cobra.Command{
	Use:   "verify <archive>",
	Short: "Check the checksums recorded in a sealed archive bundle",
	Long: `Open a sealed archive bundle, re-compute the checksums of its gzipped
payload and of the decompressed tarball, and compare them against the
values recorded in the embedded archiving log.

For '.gpg'-encrypted bundles, '--key' names the private key file and
'--key-pass' a file holding its passphrase; the passphrase can also be
exported in the DICOM_ARCHIVE_KEYPASS environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.keyPath, "key", "", "OpenPGP private key file for decrypting the bundle")
	f.StringVar(&verifyFlags.keyPassPath, "key-pass", "", "File holding the private key passphrase")
}

func runVerify(cmd *cobra.Command, args []string) error {

	archiveLog, err := archiver.VerifyBundle(args[0], verifyFlags.keyPath, verifyFlags.keyPassPath)
	if err != nil {
		return err
	}

	fmt.Print(archiveLog.WriteToString())
	fmt.Println("Success")

	return nil
}
