package backup

import (
	"sort"
	"strings"
	"time"
)

// Operation identifies what the worker is running.
type Operation string

const (
	OperationBackup  Operation = "backup"
	OperationRestore Operation = "restore"
)

const (
	filePrefix       = "institute_backup_"
	fileSuffix       = ".db"
	preRestorePrefix = "institute_backup_before_restore_"
	timestampLayout  = "20060102_150405"
	indexObjectName  = "backup_index.json"
)

// DestinationResult captures one destination's independent outcome.
type DestinationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Result is the structured completion value of a backup or restore run.
type Result struct {
	Operation Operation         `json:"operation"`
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Local     DestinationResult `json:"local"`
	Cloud     DestinationResult `json:"dropbox"`
	Summary   string            `json:"summary,omitempty"`
	Err       error             `json:"-"`
}

// Index is the optional cloud-side object recording backup bookkeeping.
type Index struct {
	LastBackupTimestamp string `json:"last_backup_timestamp"`
	LastBackupFile      string `json:"last_backup_file"`
	BackupCount         int    `json:"backup_count"`
}

// BackupFileName names a snapshot deterministically from its creation time.
func BackupFileName(ts time.Time) string {
	return filePrefix + ts.Format(timestampLayout) + fileSuffix
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) &&
		!strings.HasPrefix(name, preRestorePrefix) &&
		strings.HasSuffix(name, fileSuffix)
}

// parseBackupTimestamp extracts the timestamp embedded in a backup filename.
// It serves as a tiebreaker against clock-skewed or copy-mangled mtimes.
func parseBackupTimestamp(name string) (time.Time, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// candidate is a discovered backup file on either destination kind.
type candidate struct {
	name     string
	path     string
	modified time.Time
	nameTS   time.Time
	hasTS    bool
}

// sortNewestFirst orders candidates by reported modification time with the
// filename timestamp as tiebreaker.
func sortNewestFirst(files []candidate) {
	sort.Slice(files, func(i, j int) bool {
		if !files[i].modified.Equal(files[j].modified) {
			return files[i].modified.After(files[j].modified)
		}
		return files[i].nameTS.After(files[j].nameTS)
	})
}
