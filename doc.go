/*
Package archiver turns a raw DICOM directory into a single, checksummed,
compressed archive bundle, and optionally records that bundle in a study
registry keyed by the DICOM study UID.

Functionality

The pipeline runs the following ordered stages:

    - Guard every output path against accidental overwrite.
    - Obtain a study summary from the metadata extraction service.
    - Check the registry precondition (insert requires the study to be
      absent, update requires it to be present) before any bytes are
      written.
    - Pack the source directory into an uncompressed tarball and compute
      its MD5 sum.
    - Gzip the tarball (streaming) and compute the MD5 sum of the result.
    - Resolve the final archive name from the scan date and, optionally,
      a year subdirectory.
    - Build the archiving log, write the summary and log files, and seal
      the final bundle containing exactly the gzipped payload, the
      summary, and the log, each under its base name.
    - Remove the intermediate files, compute the MD5 sum of the sealed
      bundle, and perform the registry insert or update.

The final bundle is named 'DCM_<scan date>_<source base name>.tar', or
'DCM_<source base name>.tar' when no scan date is known. The sealed
bundle can optionally be encrypted with an OpenPGP public key.

Usage

The cmd/dicom-archive binary exposes the pipeline as three subcommands:

    # Archive a directory and insert it into the registry.
    dicom-archive archive --profile database.yml --db-insert /data/Subj01 /archives

    # Archive a directory without any registry interaction.
    dicom-archive tar /data/Subj01 /archives

    # Re-compute and check the checksums recorded in a sealed bundle.
    dicom-archive verify /archives/DCM_2024-08-27_Subj01.tar

Errors are reported with a distinct exit status per kind; see the Kind
constants.
*/
package archiver

// Version is the tool version reported by the command line interface.
const Version = "1.0.0"
