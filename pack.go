package archiver

import (
	"archive/tar"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// CreateTarball packs the entries directly under source into an
// uncompressed tarball at tarPath. Each entry is stored under its name
// relative to source; directory entries are descended into so the tarball
// holds the full study. Entries are added in sorted order so that packing
// an unmodified directory twice yields identical bytes.
func CreateTarball(source, tarPath string) error {

	var (
		out     *os.File
		entries []os.DirEntry
		err     error
	)

	if out, err = os.Create(tarPath); err != nil {
		return wrap(KindIOFailure, err, "cannot create tarball '%s'", tarPath)
	}

	defer out.Close()

	tarWriter := tar.NewWriter(out)

	if entries, err = os.ReadDir(source); err != nil {
		return wrap(KindIOFailure, err, "cannot read source directory '%s'", source)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err = addTarEntry(tarWriter, source, entry.Name()); err != nil {
			return err
		}
	}

	if err = tarWriter.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot finish tarball '%s'", tarPath)
	}

	if err = out.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot close tarball '%s'", tarPath)
	}

	return nil
}

// addTarEntry writes the file or directory at relPath under base into the
// tar writer, descending into directories.
func addTarEntry(tarWriter *tar.Writer, base, relPath string) error {

	var (
		fullPath = filepath.Join(base, relPath)
		fi       os.FileInfo
		err      error
	)

	if fi, err = os.Stat(fullPath); err != nil {
		return wrap(KindIOFailure, err, "cannot stat '%s'", fullPath)
	}

	if err = writeTarHeader(tarWriter, fi, relPath); err != nil {
		return wrap(KindIOFailure, err, "cannot write tar header for '%s'", fullPath)
	}

	if fi.IsDir() {

		var children []os.DirEntry

		if children, err = os.ReadDir(fullPath); err != nil {
			return wrap(KindIOFailure, err, "cannot read directory '%s'", fullPath)
		}

		sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })

		for _, child := range children {
			if err = addTarEntry(tarWriter, base, filepath.Join(relPath, child.Name())); err != nil {
				return err
			}
		}

		return nil
	}

	return copyFileInto(tarWriter, fullPath)
}

// writeTarHeader writes a new file header to the tarball and prepares to
// write that file's data on the next write.
func writeTarHeader(tarWriter *tar.Writer, fi os.FileInfo, name string) error {

	var (
		tarHeader *tar.Header
		err       error
	)

	if tarHeader, err = tar.FileInfoHeader(fi, ""); err != nil {
		return err
	}

	tarHeader.Name = name
	if fi.IsDir() {
		tarHeader.Name += "/"
	}

	return tarWriter.WriteHeader(tarHeader)
}

func copyFileInto(w io.Writer, path string) error {

	var (
		file *os.File
		err  error
	)

	if file, err = os.Open(path); err != nil {
		return wrap(KindIOFailure, err, "cannot open '%s'", path)
	}

	defer file.Close()

	if _, err = io.Copy(w, file); err != nil {
		return wrap(KindIOFailure, err, "error copying '%s'", path)
	}

	return nil
}

// MakeHash computes the MD5 content digest of the file at path, streaming
// over the exact bytes on disk so the checksum is reproducible by any
// verifier reading the same file.
func MakeHash(path string) (string, error) {

	var (
		file *os.File
		err  error
	)

	if file, err = os.Open(path); err != nil {
		return "", wrap(KindIOFailure, err, "cannot open '%s' for hashing", path)
	}

	defer file.Close()

	sum := md5.New()

	if _, err = io.Copy(sum, file); err != nil {
		return "", wrap(KindIOFailure, err, "error hashing '%s'", path)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// CompressTarball stream-compresses the tarball at tarPath into a gzip
// file at zipPath, without loading the tarball into memory.
func CompressTarball(tarPath, zipPath string) error {

	var (
		in  *os.File
		out *os.File
		err error
	)

	if in, err = os.Open(tarPath); err != nil {
		return wrap(KindIOFailure, err, "cannot open tarball '%s'", tarPath)
	}

	defer in.Close()

	if out, err = os.Create(zipPath); err != nil {
		return wrap(KindIOFailure, err, "cannot create zipball '%s'", zipPath)
	}

	defer out.Close()

	gzipWriter := gzip.NewWriter(out)

	if _, err = io.Copy(gzipWriter, in); err != nil {
		return wrap(KindIOFailure, err, "error compressing '%s'", tarPath)
	}

	if err = gzipWriter.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot finish zipball '%s'", zipPath)
	}

	if err = out.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot close zipball '%s'", zipPath)
	}

	return nil
}

// SealArchive creates the final bundle at archivePath containing exactly
// the given entry files, each stored under its base name only, so the
// bundle is self-contained and relocatable.
func SealArchive(archivePath string, entryPaths ...string) error {

	var (
		out *os.File
		err error
	)

	if out, err = os.Create(archivePath); err != nil {
		return wrap(KindIOFailure, err, "cannot create archive '%s'", archivePath)
	}

	defer out.Close()

	tarWriter := tar.NewWriter(out)

	for _, entryPath := range entryPaths {

		var fi os.FileInfo

		if fi, err = os.Stat(entryPath); err != nil {
			return wrap(KindIOFailure, err, "cannot stat '%s'", entryPath)
		}

		if err = writeTarHeader(tarWriter, fi, filepath.Base(entryPath)); err != nil {
			return wrap(KindIOFailure, err, "cannot write archive header for '%s'", entryPath)
		}

		if err = copyFileInto(tarWriter, entryPath); err != nil {
			return err
		}
	}

	if err = tarWriter.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot finish archive '%s'", archivePath)
	}

	if err = out.Close(); err != nil {
		return wrap(KindIOFailure, err, "cannot close archive '%s'", archivePath)
	}

	return nil
}
