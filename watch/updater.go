// Package watch keeps the extracted health export in sync with the newest
// export archive dropped into the health folder.
package watch

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	// ExportDirName is the directory an archive is extracted into.
	ExportDirName = "apple_health_export"
	// ExportFileName is the XML document inside the export directory.
	ExportFileName = "export.xml"
)

var (
	// ErrNoArchive is returned when the health folder holds no export archive.
	ErrNoArchive = errors.New("no export archive found")
	// ErrUnsafeEntry is returned for archive entries that resolve outside the export directory.
	ErrUnsafeEntry = errors.New("archive entry escapes export directory")
)

// Updater extracts export archives from HealthDir into ExportDir.
type Updater struct {
	HealthDir string
	ExportDir string

	// Debounce delays a follow-mode check after the last archive event. Zero means 500ms.
	Debounce time.Duration
	Logger   log.FieldLogger
}

// NewUpdater returns an Updater extracting into <healthDir>/apple_health_export.
func NewUpdater(healthDir string) *Updater {
	return &Updater{
		HealthDir: healthDir,
		ExportDir: filepath.Join(healthDir, ExportDirName),
	}
}

// ExportPath is the path of the extracted export document.
func (u *Updater) ExportPath() string {
	return filepath.Join(u.ExportDir, ExportFileName)
}

// LatestArchive returns the most recently modified export*.zip or Export*.zip
// in HealthDir.
func (u *Updater) LatestArchive() (string, time.Time, error) {
	entries, err := os.ReadDir(u.HealthDir)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read health dir: %w", err)
	}

	var (
		latest  string
		modTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !isArchiveName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(modTime) {
			latest = filepath.Join(u.HealthDir, e.Name())
			modTime = info.ModTime()
		}
	}
	if latest == "" {
		return "", time.Time{}, ErrNoArchive
	}
	return latest, modTime, nil
}

// NeedsUpdate reports whether the newest archive is newer than the extracted
// export document, returning that archive.
func (u *Updater) NeedsUpdate() (string, bool, error) {
	archive, archiveTime, err := u.LatestArchive()
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(u.ExportPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return archive, true, nil
		}
		return "", false, fmt.Errorf("stat export: %w", err)
	}
	return archive, info.ModTime().Before(archiveTime), nil
}

// Extract replaces ExportDir with the contents of archive. A leading
// apple_health_export/ component is stripped from entry names. The archive is
// unpacked into a sibling directory first, so a broken archive leaves the
// previous export in place.
func (u *Updater) Extract(archive string) (err error) {
	zr, err := zip.OpenReader(archive)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("open archive: %w", err)
	}
	err = nil
	defer func() {
		err = multierr.Append(err, zr.Close())
	}()

	parent := filepath.Dir(u.ExportDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create health dir: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".extract-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	for _, f := range zr.File {
		if err := extractEntry(f, staging); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(u.ExportDir); err != nil {
		return fmt.Errorf("remove old export: %w", err)
	}
	if err := os.Rename(staging, u.ExportDir); err != nil {
		return fmt.Errorf("install export: %w", err)
	}
	return nil
}

// CheckAndUpdate extracts the newest archive when it is newer than the current
// export and then calls run. It reports whether an extraction happened; a
// missing archive or an up to date export is not an error.
func (u *Updater) CheckAndUpdate(run func() error) (bool, error) {
	logger := u.logger()

	archive, needed, err := u.NeedsUpdate()
	if errors.Is(err, ErrNoArchive) {
		logger.WithField("health_dir", u.HealthDir).Warn("no export archive in health folder")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !needed {
		logger.Info("export already up to date")
		return false, nil
	}

	logger.WithFields(log.Fields{
		"archive": filepath.Base(archive),
		"target":  u.ExportDir,
	}).Info("extracting new export")
	if err := u.Extract(archive); err != nil {
		return false, fmt.Errorf("extract %s: %w", filepath.Base(archive), err)
	}

	if run == nil {
		return true, nil
	}
	if err := run(); err != nil {
		return true, fmt.Errorf("run after update: %w", err)
	}
	return true, nil
}

func (u *Updater) logger() log.FieldLogger {
	if u.Logger != nil {
		return u.Logger
	}
	return log.StandardLogger()
}

func isArchiveName(name string) bool {
	if !strings.EqualFold(filepath.Ext(name), ".zip") {
		return false
	}
	return strings.HasPrefix(name, "export") || strings.HasPrefix(name, "Export")
}

func extractEntry(f *zip.File, dest string) (err error) {
	name := strings.TrimPrefix(f.Name, ExportDirName+"/")
	if name == "" || name == "/" {
		return nil
	}

	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: %s", ErrUnsafeEntry, f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return multierr.Append(fmt.Errorf("write entry %s: %w", f.Name, err), dst.Close())
	}
	return dst.Close()
}
