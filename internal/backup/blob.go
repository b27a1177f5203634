package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

// BlobEntry describes an object held by a blob store.
type BlobEntry struct {
	Name           string
	ServerModified time.Time
}

// BlobStore abstracts a cloud object store holding backup snapshots under a
// dedicated folder. Dropbox is the shipped implementation; anything with
// list/put/get/delete-by-name semantics fits.
type BlobStore interface {
	List(ctx context.Context) ([]BlobEntry, error)
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// CloudDestination stores snapshots in a BlobStore.
type CloudDestination struct {
	store    BlobStore
	validate func(path string) error
	logger   *zap.Logger
}

// NewCloudDestination constructs a cloud destination.
func NewCloudDestination(store BlobStore, validate func(path string) error, logger *zap.Logger) *CloudDestination {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudDestination{store: store, validate: validate, logger: logger}
}

// Store uploads the snapshot, refreshes the index object and prunes remote
// history. Index update and pruning are best effort and never fail the
// backup itself.
func (d *CloudDestination) Store(ctx context.Context, filename string, data []byte, timestamp string, maxRev int) DestinationResult {
	if d.store == nil {
		return DestinationResult{Message: "Dropbox token not configured", Err: appErrors.ErrNoDestination}
	}

	if err := d.store.Put(ctx, filename, data); err != nil {
		return DestinationResult{Message: uploadFailureMessage(err), Err: appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "upload backup")}
	}

	if err := d.updateIndex(ctx, filename, timestamp); err != nil {
		d.logger.Warn("failed to update cloud backup index", zap.Error(err))
	}
	if err := d.prune(ctx, maxRev); err != nil {
		d.logger.Warn("failed to prune cloud backups", zap.Error(err))
	}

	return DestinationResult{Success: true, Message: "Dropbox backup uploaded successfully: " + filename}
}

// Restore downloads the newest remote backup and overwrites the live
// database, keeping a best-effort pre-restore safety copy.
func (d *CloudDestination) Restore(ctx context.Context, livePath string, now time.Time) DestinationResult {
	if d.store == nil {
		return DestinationResult{Message: "Dropbox token not configured", Err: appErrors.ErrNoDestination}
	}

	entries, err := d.store.List(ctx)
	if err != nil {
		return DestinationResult{Message: listFailureMessage(err), Err: appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "list backups")}
	}

	var files []candidate
	for _, entry := range entries {
		if !isBackupFile(entry.Name) {
			continue
		}
		c := candidate{name: entry.Name, modified: entry.ServerModified}
		c.nameTS, c.hasTS = parseBackupTimestamp(entry.Name)
		files = append(files, c)
	}
	if len(files) == 0 {
		return DestinationResult{Message: "No backup files found in Dropbox", Err: appErrors.ErrDestinationIO}
	}
	sortNewestFirst(files)
	latest := files[0]

	data, err := d.store.Get(ctx, latest.name)
	if err != nil {
		return DestinationResult{
			Message: fmt.Sprintf("Failed to download backup %q: %v", latest.name, err),
			Err:     appErrors.Wrap(err, appErrors.ErrDestinationIO.Code, "download backup"),
		}
	}

	safetyCopy(livePath, now, d.logger)

	if err := os.WriteFile(livePath, data, 0o644); err != nil {
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

	return DestinationResult{Success: true, Message: "Restored from Dropbox backup: " + latest.name}
}

// updateIndex rewrites the remote bookkeeping object.
func (d *CloudDestination) updateIndex(ctx context.Context, filename, timestamp string) error {
	index := Index{}
	if raw, err := d.store.Get(ctx, indexObjectName); err == nil {
		_ = json.Unmarshal(raw, &index)
	}
	index.LastBackupTimestamp = timestamp
	index.LastBackupFile = filename
	index.BackupCount++

	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return d.store.Put(ctx, indexObjectName, raw)
}

// prune deletes remote backups beyond the revision limit, oldest first.
func (d *CloudDestination) prune(ctx context.Context, maxRev int) error {
	entries, err := d.store.List(ctx)
	if err != nil {
		return err
	}
	var files []candidate
	for _, entry := range entries {
		if !isBackupFile(entry.Name) {
			continue
		}
		c := candidate{name: entry.Name, modified: entry.ServerModified}
		c.nameTS, c.hasTS = parseBackupTimestamp(entry.Name)
		files = append(files, c)
	}
	if len(files) <= maxRev {
		return nil
	}
	sortNewestFirst(files)
	for _, old := range files[maxRev:] {
		if err := d.store.Delete(ctx, old.name); err != nil {
			d.logger.Sugar().Warnw("failed to delete old cloud backup", "file", old.name, "error", err)
		}
	}
	return nil
}

func uploadFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuthFailed):
		return "Invalid Dropbox token. Please check your token and try again."
	case errors.Is(err, ErrMissingScope):
		return "Missing Dropbox permissions. Enable files.content.write, files.metadata.write, files.content.read and files.metadata.read, then generate a new token."
	default:
		return fmt.Sprintf("Failed to upload backup to Dropbox: %v", err)
	}
}

func listFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuthFailed):
		return "Invalid Dropbox token. Please check your token and try again."
	case errors.Is(err, ErrMissingScope):
		return "Missing Dropbox permissions. Enable files.content.write, files.metadata.write, files.content.read and files.metadata.read, then generate a new token."
	default:
		return fmt.Sprintf("Dropbox API error: %v", err)
	}
}
