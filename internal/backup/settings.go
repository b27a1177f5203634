package backup

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

const (
	keyringService = "institute_app"
	keyringUser    = "dropbox_token"

	defaultMaxRevisions = 5
	minRevisions        = 1
	maxRevisions        = 20
)

// Settings is the persisted backup configuration. The Dropbox token lives in
// the platform keyring; it is only written into the settings file when the
// keyring is unavailable, and that downgrade is flagged on load and save.
type Settings struct {
	LocalPath    string `json:"local_path"`
	MaxRevisions int    `json:"max_revisions"`
	DropboxToken string `json:"dropbox_token,omitempty"`

	// TokenFromFallback reports that the token came from, or had to be
	// written to, the plain settings file. Callers must surface this as a
	// degraded-security warning.
	TokenFromFallback bool `json:"-"`
}

// LocalConfigured reports whether a local destination is set up.
func (s *Settings) LocalConfigured() bool { return s.LocalPath != "" }

// CloudConfigured reports whether a cloud destination is set up.
func (s *Settings) CloudConfigured() bool { return s.DropboxToken != "" }

// Revisions returns the retention limit clamped to the allowed range.
func (s *Settings) Revisions() int {
	if s.MaxRevisions < minRevisions {
		return defaultMaxRevisions
	}
	if s.MaxRevisions > maxRevisions {
		return maxRevisions
	}
	return s.MaxRevisions
}

type secretStore interface {
	Get() (string, error)
	Set(secret string) error
	Delete() error
}

type platformKeyring struct{}

func (platformKeyring) Get() (string, error)    { return keyring.Get(keyringService, keyringUser) }
func (platformKeyring) Set(secret string) error { return keyring.Set(keyringService, keyringUser, secret) }
func (platformKeyring) Delete() error           { return keyring.Delete(keyringService, keyringUser) }

// SettingsStore persists Settings as plain JSON plus the keyring-held token.
type SettingsStore struct {
	path    string
	secrets secretStore
	logger  *zap.Logger
}

// NewSettingsStore constructs a store backed by the given file path.
func NewSettingsStore(path string, logger *zap.Logger) *SettingsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsStore{path: path, secrets: platformKeyring{}, logger: logger}
}

// Load reads settings, falling back to defaults when the file is missing.
func (st *SettingsStore) Load() (*Settings, error) {
	settings := &Settings{MaxRevisions: defaultMaxRevisions}

	raw, err := os.ReadFile(st.path)
	switch {
	case os.IsNotExist(err):
		// First run: nothing persisted yet.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(raw, settings); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	}

	fileToken := settings.DropboxToken
	settings.DropboxToken = ""

	token, err := st.secrets.Get()
	if err == nil && token != "" {
		settings.DropboxToken = token
	} else if fileToken != "" {
		settings.DropboxToken = fileToken
		settings.TokenFromFallback = true
		st.logger.Warn("cloud token loaded from plain settings file; secure keyring unavailable")
	}

	settings.MaxRevisions = settings.Revisions()
	return settings, nil
}

// Save writes settings to disk and stores the token in the keyring. When the
// keyring rejects the write the token is kept in the settings file instead
// and the degraded-security fallback is flagged.
func (st *SettingsStore) Save(settings *Settings) error {
	settings.MaxRevisions = settings.Revisions()
	settings.TokenFromFallback = false

	persisted := Settings{
		LocalPath:    settings.LocalPath,
		MaxRevisions: settings.MaxRevisions,
	}

	if settings.DropboxToken != "" {
		if err := st.secrets.Set(settings.DropboxToken); err != nil {
			persisted.DropboxToken = settings.DropboxToken
			settings.TokenFromFallback = true
			st.logger.Warn("keyring unavailable, storing cloud token in plain settings file",
				zap.Error(err))
		}
	} else {
		// Token cleared: best effort removal from the keyring.
		_ = st.secrets.Delete()
	}

	raw, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(st.path, raw, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
