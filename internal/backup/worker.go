package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/priorcoder/institute-manager/pkg/errors"
)

// ErrOperationInFlight is returned when a backup or restore is requested
// while another one is still running.
var ErrOperationInFlight = errors.New("a backup or restore operation is already running")

// Snapshotter produces a consistent copy of the live database at destPath.
type Snapshotter interface {
	Snapshot(ctx context.Context, destPath string) error
}

// BlobFactory builds a cloud store from an access token. Injected so tests
// can run the orchestrator against a fake store.
type BlobFactory func(token string) BlobStore

// Orchestrator runs backup and restore operations against the configured
// destinations. At most one operation runs at a time.
type Orchestrator struct {
	livePath string
	snapshot Snapshotter
	validate func(path string) error
	blobs    BlobFactory
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewOrchestrator constructs an orchestrator for the live database at
// livePath. validate is run on every restored database before the restore is
// reported successful.
func NewOrchestrator(livePath string, snapshot Snapshotter, validate func(path string) error, blobs BlobFactory, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blobs == nil {
		blobs = func(token string) BlobStore { return NewDropboxClient(token) }
	}
	return &Orchestrator{
		livePath: livePath,
		snapshot: snapshot,
		validate: validate,
		blobs:    blobs,
		logger:   logger,
		now:      time.Now,
	}
}

// Busy reports whether an operation is currently running.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Run starts the requested operation in the background. It returns a status
// channel streaming progress messages and a result channel delivering exactly
// one Result. ErrOperationInFlight is returned when another operation is
// still running.
func (o *Orchestrator) Run(ctx context.Context, op Operation, settings Settings) (<-chan string, <-chan Result, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, nil, ErrOperationInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	status := make(chan string, 16)
	done := make(chan Result, 1)

	go func() {
		defer func() {
			o.mu.Lock()
			o.inFlight = false
			o.mu.Unlock()
			close(status)
			close(done)
		}()

		var result Result
		switch op {
		case OperationRestore:
			result = o.restore(ctx, settings, status)
		default:
			result = o.backup(ctx, settings, status)
		}
		o.logger.Info("backup operation finished",
			zap.String("operation", string(result.Operation)),
			zap.Bool("success", result.Success),
			zap.String("message", result.Message))
		done <- result
	}()

	return status, done, nil
}

// emit delivers a status message without ever blocking the operation.
func emit(status chan<- string, msg string) {
	select {
	case status <- msg:
	default:
	}
}

// backup snapshots the live database once and fans the bytes out to every
// configured destination. The run succeeds when at least one destination
// stored the snapshot.
func (o *Orchestrator) backup(ctx context.Context, settings Settings, status chan<- string) Result {
	result := Result{Operation: OperationBackup}

	if !settings.LocalConfigured() && !settings.CloudConfigured() {
		result.Message = "No backup methods configured. Please set up local path or Dropbox token."
		result.Err = appErrors.ErrNoDestination
		emit(status, "❌ "+result.Message)
		return result
	}

	ts := o.now()
	filename := BackupFileName(ts)

	data, err := o.snapshotBytes(ctx, filename)
	if err != nil {
		result.Message = fmt.Sprintf("Failed to create backup data: %v", err)
		result.Err = appErrors.Wrap(err, appErrors.ErrInternal.Code, "snapshot live database")
		emit(status, "❌ "+result.Message)
		return result
	}

	if settings.LocalConfigured() {
		emit(status, "Performing local backup...")
		dest := NewLocalDestination(settings.LocalPath, o.validate, o.logger)
		result.Local = dest.Store(filename, data, settings.Revisions())
		if result.Local.Success {
			emit(status, "✅ Local backup successful: "+filename)
		} else {
			emit(status, "❌ Local backup failed: "+result.Local.Message)
		}
	}

	if settings.CloudConfigured() {
		emit(status, "Performing Dropbox backup...")
		dest := NewCloudDestination(o.blobs(settings.DropboxToken), o.validate, o.logger)
		result.Cloud = dest.Store(ctx, filename, data, ts.Format(timestampLayout), settings.Revisions())
		if result.Cloud.Success {
			emit(status, "✅ Dropbox backup successful: "+filename)
		} else {
			emit(status, "❌ Dropbox backup failed: "+result.Cloud.Message)
		}
	}

	result.Success = result.Local.Success || result.Cloud.Success
	result.Summary = backupSummary(settings, result)
	if result.Success {
		result.Message = "Backup completed: " + result.Summary
	} else {
		result.Message = "Backup failed: " + result.Summary
		result.Err = appErrors.ErrDestinationIO
	}
	return result
}

// snapshotBytes writes a consistent snapshot into a scratch file and returns
// its contents. The scratch file never outlives the call.
func (o *Orchestrator) snapshotBytes(ctx context.Context, filename string) ([]byte, error) {
	tmp := filepath.Join(os.TempDir(), filename)
	defer os.Remove(tmp) //nolint:errcheck

	if err := o.snapshot.Snapshot(ctx, tmp); err != nil {
		return nil, err
	}
	return os.ReadFile(tmp)
}

// restore tries the local destination first, then Dropbox. The first
// destination that produces a valid database wins.
func (o *Orchestrator) restore(ctx context.Context, settings Settings, status chan<- string) Result {
	result := Result{Operation: OperationRestore}

	if !settings.LocalConfigured() && !settings.CloudConfigured() {
		result.Message = "No backup methods configured. Please set up local path or Dropbox token."
		result.Err = appErrors.ErrNoDestination
		emit(status, "❌ "+result.Message)
		return result
	}

	now := o.now()

	if settings.LocalConfigured() {
		emit(status, "Attempting local restore...")
		dest := NewLocalDestination(settings.LocalPath, o.validate, o.logger)
		result.Local = dest.Restore(o.livePath, now)
		if result.Local.Success {
			emit(status, "✅ "+result.Local.Message)
			result.Success = true
			result.Message = "Restore completed successfully"
			return result
		}
		emit(status, "❌ Local restore failed: "+result.Local.Message)
	}

	if settings.CloudConfigured() {
		emit(status, "Attempting Dropbox restore...")
		dest := NewCloudDestination(o.blobs(settings.DropboxToken), o.validate, o.logger)
		result.Cloud = dest.Restore(ctx, o.livePath, now)
		if result.Cloud.Success {
			emit(status, "✅ "+result.Cloud.Message)
			result.Success = true
			result.Message = "Restore completed successfully"
			return result
		}
		emit(status, "❌ Dropbox restore failed: "+result.Cloud.Message)
	}

	result.Message = "Restore failed - no valid backups found"
	result.Err = appErrors.ErrDestinationIO
	emit(status, "❌ "+result.Message)
	return result
}

// backupSummary renders a per-destination outcome line for configured
// destinations only.
func backupSummary(settings Settings, result Result) string {
	var parts []string
	if settings.LocalConfigured() {
		parts = append(parts, "Local: "+statusMark(result.Local.Success))
	}
	if settings.CloudConfigured() {
		parts = append(parts, "Dropbox: "+statusMark(result.Cloud.Success))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " | "
		}
		out += p
	}
	return out
}

func statusMark(ok bool) string {
	if ok {
		return "✅ Success"
	}
	return "❌ Failed"
}
