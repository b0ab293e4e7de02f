package archiver

import (
	"archive/tar"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
	"strings"
)

// VerifyBundle opens a sealed archive bundle, reads its three entries, and
// re-computes the checksums recorded in the embedded archiving log: the
// gzipped payload is hashed as stored, then decompressed and hashed again
// to reproduce the tarball checksum. A non-empty keyPath enables reading
// '.gpg'-encrypted bundles.
func VerifyBundle(archivePath, keyPath, keyPassPath string) (*Log, error) {

	var (
		file        *os.File
		reader      io.Reader
		payloadPath string
		logText     string
		summarySeen bool
		err         error
	)

	if file, err = os.Open(archivePath); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot open archive '%s'", archivePath)
	}

	defer file.Close()

	reader = file

	if strings.HasSuffix(strings.ToLower(archivePath), ".gpg") {

		if keyPath == "" {
			return nil, Errorf(KindInvalidArgument,
				"archive '%s' is encrypted but no key was given", archivePath)
		}

		keyFile, err := os.Open(keyPath)
		if err != nil {
			return nil, wrap(KindIOFailure, err, "cannot open key file '%s'", keyPath)
		}

		defer keyFile.Close()

		passReader, err := passphraseReader(keyPassPath)
		if err != nil {
			return nil, err
		}

		if reader, err = Decrypt(file, keyFile, passReader); err != nil {
			return nil, err
		}
	}

	tarReader := tar.NewReader(reader)

	for {

		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrap(KindIOFailure, err, "cannot read archive '%s'", archivePath)
		}

		switch {

		case strings.HasSuffix(header.Name, ".tar.gz"):
			if payloadPath, err = extractToTemp(tarReader, header.Name); err != nil {
				return nil, err
			}
			defer os.Remove(payloadPath)

		case strings.HasSuffix(header.Name, ".log"):
			data, err := io.ReadAll(tarReader)
			if err != nil {
				return nil, wrap(KindIOFailure, err, "cannot read log entry '%s'", header.Name)
			}
			logText = string(data)

		case strings.HasSuffix(header.Name, ".meta"):
			summarySeen = true

		default:
			return nil, Errorf(KindIOFailure, "unexpected archive entry '%s'", header.Name)
		}
	}

	if payloadPath == "" || logText == "" || !summarySeen {
		return nil, Errorf(KindIOFailure,
			"archive '%s' does not contain the expected payload, summary, and log entries", archivePath)
	}

	archiveLog, err := ReadLog(logText)
	if err != nil {
		return nil, err
	}

	log.Printf("dicom-archive: validating zipball checksum")

	zipballChecksum, err := MakeHash(payloadPath)
	if err != nil {
		return nil, err
	}

	if zipballChecksum != archiveLog.ZipballChecksum {
		return nil, Errorf(KindIOFailure, "zipball checksum mismatch: archive has %s, log records %s",
			zipballChecksum, archiveLog.ZipballChecksum)
	}

	log.Printf("dicom-archive: validating tarball checksum")

	tarballChecksum, err := hashDecompressed(payloadPath)
	if err != nil {
		return nil, err
	}

	if tarballChecksum != archiveLog.TarballChecksum {
		return nil, Errorf(KindIOFailure, "tarball checksum mismatch: archive has %s, log records %s",
			tarballChecksum, archiveLog.TarballChecksum)
	}

	return archiveLog, nil
}

// extractToTemp copies the current tar entry to a temporary file and
// returns its path.
func extractToTemp(r io.Reader, name string) (string, error) {

	tmp, err := os.CreateTemp("", "dicom-archive-*-"+strings.ReplaceAll(name, "/", "_"))
	if err != nil {
		return "", wrap(KindIOFailure, err, "cannot create temporary file for '%s'", name)
	}

	defer tmp.Close()

	if _, err = io.Copy(tmp, r); err != nil {
		os.Remove(tmp.Name())
		return "", wrap(KindIOFailure, err, "cannot extract '%s'", name)
	}

	return tmp.Name(), nil
}

// hashDecompressed streams the gzip file at path through decompression and
// returns the MD5 sum of the decompressed bytes.
func hashDecompressed(path string) (string, error) {

	file, err := os.Open(path)
	if err != nil {
		return "", wrap(KindIOFailure, err, "cannot open '%s'", path)
	}

	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return "", wrap(KindIOFailure, err, "cannot decompress '%s'", path)
	}

	sum := md5.New()

	if _, err = io.Copy(sum, gzipReader); err != nil {
		return "", wrap(KindIOFailure, err, "error decompressing '%s'", path)
	}

	if err = gzipReader.Close(); err != nil {
		return "", wrap(KindIOFailure, err, "error decompressing '%s'", path)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}
