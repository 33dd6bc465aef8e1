package deps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/farrt/build-tools/pkg"
)

// Options control a Fetch run.
type Options struct {
	// Update replaces mismatched checksums in DEPS.yml instead of failing.
	Update bool
}

func progressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

// Fetch downloads, verifies and unpacks every entry from DEPS.yml that
// applies to the current platform. Up-to-date entries (same URL, same
// checksum, destination still present) are skipped via the stamp file. The
// stamp file is written even when a later entry fails so completed work
// isn't repeated.
func Fetch(ctx context.Context, projectRoot string, opts Options) error {
	pkg.PrintTask("Loading config")
	cfg, cfgData, stamps, err := LoadConfig(projectRoot)
	if err != nil {
		return err
	}

	vars := cfg.Vars
	vars[runtime.GOARCH] = "true"
	vars[runtime.GOOS] = "true"
	if os.Getenv("CI") == "true" {
		vars["ci"] = "true"
	}

	pkg.PrintTask("Downloading dependencies")
	changes := map[string]string{}
	fetchErr := fetchAll(ctx, cfg, vars, stamps, changes, projectRoot, opts)

	err = writeStamps(projectRoot, stamps)
	if err != nil {
		pkg.PrintError(err.Error())
	}

	if opts.Update && len(changes) > 0 {
		pkg.PrintTask("Updating " + ConfigName)
		err = applyChecksumChanges(projectRoot, cfgData, cfg, changes)
		if err != nil {
			pkg.PrintError(err.Error())
		}
	}

	if fetchErr == nil {
		pkg.PrintTask("Done")
	}

	return fetchErr
}

func fetchAll(ctx context.Context, cfg Config, vars, stamps, changes map[string]string, projectRoot string, opts Options) error {
	client := &http.Client{
		Timeout: time.Minute * 30,
	}

	for name, entry := range cfg.Deps {
		// Conditions are evaluated even for skipped entries because Eval
		// also resolves the URL placeholders update mode needs.
		skip := !entry.Eval(vars)
		if skip && !opts.Update {
			continue
		}

		destPath := filepath.Join(projectRoot, entry.Dest)
		destInfo, err := os.Stat(destPath)
		destExists := err == nil

		stampToken := entry.URL + "#" + entry.Sha256
		if stamp, ok := stamps[name]; ok && stampToken == stamp && destExists {
			continue
		}

		pkg.PrintSubtask(name + ":  " + entry.URL)
		if entry.Sha256 == "" && !opts.Update {
			return eris.Errorf("Dependency %s doesn't have a checksum", name)
		}

		archive, digest, err := download(ctx, client, entry.URL)
		if err != nil {
			return err
		}

		if digest != entry.Sha256 {
			if !opts.Update {
				archive.discard()
				return eris.Errorf("Checksum check failed for %s", name)
			}

			pkg.PrintSubtask("Updating checksum")
			changes[name] = digest
		}

		if skip {
			archive.discard()
			continue
		}

		if destExists {
			pkg.PrintSubtask("Remove " + destPath)
			if destInfo.IsDir() {
				err = os.RemoveAll(destPath)
			} else {
				err = os.Remove(destPath)
			}
			if err != nil {
				archive.discard()
				return eris.Wrapf(err, "Failed to remove %s", destPath)
			}
		}

		err = extract(archive, entry, destPath)
		archive.discard()
		if err != nil {
			return err
		}

		err = markExecutables(entry, destPath)
		if err != nil {
			return err
		}

		stamps[name] = stampToken
	}

	return nil
}

type downloadedArchive struct {
	handle *os.File
	size   int64
}

func (a *downloadedArchive) discard() {
	a.handle.Close()
	os.Remove(a.handle.Name())
}

func download(ctx context.Context, client *http.Client, url string) (*downloadedArchive, string, error) {
	handle, err := os.CreateTemp("", "farrt-dep-*.tmp")
	if err != nil {
		return nil, "", eris.Wrap(err, "Failed to create download file")
	}

	archive := &downloadedArchive{handle: handle}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		archive.discard()
		return nil, "", eris.Wrapf(err, "Failed to build request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		archive.discard()
		return nil, "", eris.Wrapf(err, "Failed to start download for %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		archive.discard()
		return nil, "", eris.Errorf("Download of %s failed with status %s", url, resp.Status)
	}

	hash := sha256.New()
	bar := progressBar(resp.ContentLength, "     download")
	_, err = io.Copy(io.MultiWriter(handle, hash, bar), resp.Body)
	bar.Finish()
	if err != nil {
		archive.discard()
		return nil, "", eris.Wrapf(err, "Failed during download of %s", url)
	}

	archive.size, err = handle.Seek(0, io.SeekCurrent)
	if err != nil {
		archive.discard()
		return nil, "", eris.Wrap(err, "Failed to determine download size")
	}

	_, err = handle.Seek(0, io.SeekStart)
	if err != nil {
		archive.discard()
		return nil, "", eris.Wrap(err, "Failed to seek in download file")
	}

	return archive, hex.EncodeToString(hash.Sum(nil)), nil
}

func markExecutables(entry Entry, destPath string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	// .zip files don't carry permissions which means we have to manually fix
	// permissions for binaries in .zip files
	for _, binPath := range entry.MarkExec {
		binPath = filepath.Join(destPath, binPath)
		fi, err := os.Stat(binPath)
		if err != nil {
			return eris.Wrapf(err, "Failed to read permissions for %s", binPath)
		}

		err = os.Chmod(binPath, fi.Mode()|0700)
		if err != nil {
			return eris.Wrapf(err, "Failed to mark %s as executable", binPath)
		}
	}

	return nil
}

func applyChecksumChanges(projectRoot, cfgData string, cfg Config, changes map[string]string) error {
	generated := cfgData
	for name, newChecksum := range changes {
		pos := strings.Index(generated, name+":\n")
		if pos == -1 {
			return eris.Errorf("Failed to find the section for %s!", name)
		}

		old := "sha256: " + cfg.Deps[name].Sha256
		subPos := strings.Index(generated[pos:], old)
		if subPos == -1 || cfg.Deps[name].Sha256 == "" {
			// no previous checksum; insert one right below the entry name
			start := pos + len(name) + 2
			generated = generated[:start] + "    sha256: " + newChecksum + "\n" + generated[start:]
			continue
		}

		start := pos + subPos + len("sha256: ")
		end := start + len(cfg.Deps[name].Sha256)
		generated = generated[:start] + newChecksum + generated[end:]
	}

	cfgPath := filepath.Join(projectRoot, ConfigName)
	err := os.WriteFile(cfgPath, []byte(generated), 0660)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", cfgPath)
	}

	return nil
}
