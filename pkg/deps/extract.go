package deps

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

// destFile maps an archive member to its destination below destPath,
// stripping the configured number of leading path elements. A nil handle
// with no error means the member resolves to the destination root itself
// and should be skipped.
func destFile(destPath, item string, strip int) (*os.File, string, error) {
	pathParts := strings.Split(filepath.Clean(item), string(filepath.Separator))
	if strip > len(pathParts) {
		strip = len(pathParts)
	}

	dest := filepath.Join(destPath, strings.Join(pathParts[strip:], string(filepath.Separator)))
	if dest == destPath {
		return nil, "", nil
	}

	// leading .. elements survive filepath.Clean and would resolve outside
	// the destination
	if !strings.HasPrefix(dest, destPath+string(filepath.Separator)) {
		return nil, "", eris.Errorf("Archive entry %s escapes %s", item, destPath)
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, 0770)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	destHandle, err := os.Create(dest)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return destHandle, dest, nil
}

func extract(archive *downloadedArchive, entry Entry, destPath string) error {
	url := entry.URL

	switch {
	case strings.HasSuffix(url, ".zip"):
		return extractZip(archive, entry, destPath)
	case strings.HasSuffix(url, ".tar.gz"):
		reader, err := gzip.NewReader(progressReader(archive))
		if err != nil {
			return eris.Wrapf(err, "Failed to open %s as gzip", url)
		}
		defer reader.Close()

		return extractTar(reader, entry, destPath)
	case strings.HasSuffix(url, ".tar.bz2"):
		return extractTar(bzip2.NewReader(progressReader(archive)), entry, destPath)
	case strings.HasSuffix(url, ".tar.xz"):
		reader, err := xz.NewReader(progressReader(archive))
		if err != nil {
			return eris.Wrapf(err, "Failed to open %s as xz", url)
		}

		return extractTar(reader, entry, destPath)
	}

	return eris.Errorf("Archive format of %s not supported", url)
}

// progressReader reports extraction progress in terms of compressed bytes
// consumed, which is the only size known up front.
func progressReader(archive *downloadedArchive) io.Reader {
	bar := progressBar(archive.size, "      extract")
	return io.TeeReader(archive.handle, bar)
}

func extractZip(archive *downloadedArchive, entry Entry, destPath string) error {
	zipReader, err := zip.NewReader(archive.handle, archive.size)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s as zip", entry.URL)
	}

	bar := progressBar(int64(len(zipReader.File)), "      extract")
	defer bar.Finish()

	for _, item := range zipReader.File {
		bar.Add(1)
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		destHandle, dest, err := destFile(destPath, item.Name, entry.Strip)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		itemHandle, err := item.Open()
		if err != nil {
			destHandle.Close()
			return eris.Wrapf(err, "Failed to open archive entry %s", item.Name)
		}

		_, err = io.Copy(destHandle, itemHandle)
		itemHandle.Close()
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to write extracted file %s", dest)
		}
	}

	return nil
}

func extractTar(r io.Reader, entry Entry, destPath string) error {
	archive := tar.NewReader(r)

	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return eris.Wrap(err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		destHandle, dest, err := destFile(destPath, item.Name, entry.Strip)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		if item.Typeflag == tar.TypeSymlink {
			destHandle.Close()
			err = os.Remove(dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to remove placeholder file %s", dest)
			}

			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		_, err = io.Copy(destHandle, archive)
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to write extracted file %s", dest)
		}

		err = os.Chmod(dest, fi.Mode())
		if err != nil {
			return eris.Wrapf(err, "Failed to set permissions on %s", dest)
		}
	}

	return nil
}
