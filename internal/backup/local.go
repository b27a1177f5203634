package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

// LocalDestination stores snapshots in a filesystem directory.
type LocalDestination struct {
	dir      string
	validate func(path string) error
	logger   *zap.Logger
}

// NewLocalDestination constructs a local destination. validate is invoked on
// a restored database file before the restore is reported successful.
func NewLocalDestination(dir string, validate func(path string) error, logger *zap.Logger) *LocalDestination {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalDestination{dir: dir, validate: validate, logger: logger}
}

// Store writes the snapshot bytes into the backup directory and prunes the
// directory's history down to maxRev files. Every failure is converted into
// a message precise enough to tell permissions, disk space and bad paths
// apart.
func (d *LocalDestination) Store(filename string, data []byte, maxRev int) DestinationResult {
	if d.dir == "" {
		return DestinationResult{Message: "Local backup path not configured", Err: appErrors.ErrNoDestination}
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		if os.IsPermission(err) {
			return DestinationResult{
				Message: fmt.Sprintf("Permission denied: cannot create directory %q", d.dir),
				Err:     appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "create backup directory"),
			}
		}
		return DestinationResult{
			Message: fmt.Sprintf("Cannot access directory %q: %v", d.dir, err),
			Err:     appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "access backup directory"),
		}
	}

	path := filepath.Join(d.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		msg := fmt.Sprintf("Failed to copy database: %v", err)
		switch {
		case os.IsPermission(err):
			msg = fmt.Sprintf("Permission denied: cannot write to %q", path)
		case errors.Is(err, syscall.ENOSPC):
			msg = fmt.Sprintf("Insufficient disk space writing %q", path)
		}
		return DestinationResult{Message: msg, Err: appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "write backup file")}
	}

	if removed, err := d.prune(maxRev); err != nil {
		d.logger.Warn("failed to prune old local backups", zap.Error(err))
	} else if removed > 0 {
		d.logger.Sugar().Infow("pruned old local backups", "removed", removed, "kept", maxRev)
	}

	return DestinationResult{Success: true, Message: "Local backup created: " + filename}
}

// Restore selects the newest backup in the directory and overwrites the live
// database with it, keeping a best-effort pre-restore safety copy.
func (d *LocalDestination) Restore(livePath string, now time.Time) DestinationResult {
	if d.dir == "" {
		return DestinationResult{Message: "Local backup directory not found", Err: appErrors.ErrNoDestination}
	}
	if _, err := os.Stat(d.dir); err != nil {
		return DestinationResult{Message: "Local backup directory not found", Err: appErrors.ErrDestinationIO}
	}

	files, err := d.listBackups()
	if err != nil {
		return DestinationResult{
			Message: fmt.Sprintf("Cannot read backup directory: %v", err),
			Err:     appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "read backup directory"),
		}
	}
	if len(files) == 0 {
		return DestinationResult{Message: "No backup files found in local directory", Err: appErrors.ErrDestinationIO}
	}
	sortNewestFirst(files)
	latest := files[0]

	safetyCopy(livePath, now, d.logger)

	if err := copyFile(latest.path, livePath); err != nil {
		return DestinationResult{
			Message: fmt.Sprintf("Failed to restore database: %v", err),
			Err:     appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "overwrite live database"),
		}
	}

	if d.validate != nil {
		if err := d.validate(livePath); err != nil {
			return DestinationResult{
				Message: fmt.Sprintf("Restored database is corrupted: %v", err),
				Err:     appErrors.Wrap(err, appErrors.ErrCorruptRestore.Code, appErrors.ErrCorruptRestore.Message),
			}
		}
	}

	return DestinationResult{Success: true, Message: "Restored from local backup: " + latest.name}
}

func (d *LocalDestination) listBackups() ([]candidate, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	var files []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isBackupFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		c := candidate{
			name:     entry.Name(),
			path:     filepath.Join(d.dir, entry.Name()),
			modified: info.ModTime(),
		}
		c.nameTS, c.hasTS = parseBackupTimestamp(entry.Name())
		files = append(files, c)
	}
	return files, nil
}

// prune deletes the oldest backups beyond the revision limit.
func (d *LocalDestination) prune(maxRev int) (int, error) {
	files, err := d.listBackups()
	if err != nil {
		return 0, err
	}
	if len(files) <= maxRev {
		return 0, nil
	}
	sortNewestFirst(files)
	removed := 0
	for _, old := range files[maxRev:] {
		if err := os.Remove(old.path); err != nil {
			d.logger.Sugar().Warnw("failed to remove old backup", "file", old.name, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// safetyCopy preserves the live database next to itself before a restore
// overwrites it. Best effort: a failure is logged, never fatal.
func safetyCopy(livePath string, now time.Time, logger *zap.Logger) {
	if _, err := os.Stat(livePath); err != nil {
		return
	}
	dest := filepath.Join(filepath.Dir(livePath), preRestorePrefix+now.Format(timestampLayout)+fileSuffix)
	if err := copyFile(livePath, dest); err != nil {
		logger.Warn("failed to create pre-restore safety copy", zap.Error(err))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
