package backup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSecretStore struct {
	token   string
	getErr  error
	setErr  error
	deleted bool
}

func (f *fakeSecretStore) Get() (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.token, nil
}

func (f *fakeSecretStore) Set(secret string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = secret
	return nil
}

func (f *fakeSecretStore) Delete() error {
	f.deleted = true
	f.token = ""
	return nil
}

func newTestSettingsStore(t *testing.T, secrets secretStore) *SettingsStore {
	t.Helper()
	return &SettingsStore{
		path:    filepath.Join(t.TempDir(), "settings.json"),
		secrets: secrets,
		logger:  zap.NewNop(),
	}
}

func TestSettingsLoadDefaultsWhenFileMissing(t *testing.T) {
	st := newTestSettingsStore(t, &fakeSecretStore{getErr: errors.New("no entry")})

	settings, err := st.Load()
	require.NoError(t, err)

	assert.Empty(t, settings.LocalPath)
	assert.Equal(t, defaultMaxRevisions, settings.MaxRevisions)
	assert.False(t, settings.CloudConfigured())
	assert.False(t, settings.TokenFromFallback)
}

func TestSettingsRoundTripWithKeyring(t *testing.T) {
	secrets := &fakeSecretStore{}
	st := newTestSettingsStore(t, secrets)

	require.NoError(t, st.Save(&Settings{
		LocalPath:    "/backups",
		MaxRevisions: 8,
		DropboxToken: "secret-token",
	}))

	// The token must never land in the settings file when the keyring works.
	raw, err := os.ReadFile(st.path)
	require.NoError(t, err)
	var onDisk map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.NotContains(t, onDisk, "dropbox_token")

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "/backups", loaded.LocalPath)
	assert.Equal(t, 8, loaded.MaxRevisions)
	assert.Equal(t, "secret-token", loaded.DropboxToken)
	assert.False(t, loaded.TokenFromFallback)
}

func TestSettingsSaveFallsBackToFileWhenKeyringFails(t *testing.T) {
	secrets := &fakeSecretStore{setErr: errors.New("keyring locked"), getErr: errors.New("keyring locked")}
	st := newTestSettingsStore(t, secrets)

	settings := &Settings{LocalPath: "/backups", MaxRevisions: 5, DropboxToken: "secret-token"}
	require.NoError(t, st.Save(settings))
	assert.True(t, settings.TokenFromFallback)

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", loaded.DropboxToken)
	assert.True(t, loaded.TokenFromFallback)
}

func TestSettingsKeyringWinsOverFileToken(t *testing.T) {
	secrets := &fakeSecretStore{token: "keyring-token"}
	st := newTestSettingsStore(t, secrets)

	raw, err := json.Marshal(map[string]interface{}{
		"local_path":    "/backups",
		"max_revisions": 5,
		"dropbox_token": "stale-file-token",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.path, raw, 0o600))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "keyring-token", loaded.DropboxToken)
	assert.False(t, loaded.TokenFromFallback)
}

func TestSettingsSaveClearsKeyringWhenTokenRemoved(t *testing.T) {
	secrets := &fakeSecretStore{token: "old-token"}
	st := newTestSettingsStore(t, secrets)

	require.NoError(t, st.Save(&Settings{LocalPath: "/backups", MaxRevisions: 5}))

	assert.True(t, secrets.deleted)
}

func TestSettingsRevisionsClamped(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, defaultMaxRevisions},
		{-3, defaultMaxRevisions},
		{1, 1},
		{20, 20},
		{50, maxRevisions},
	}
	for _, tc := range cases {
		s := Settings{MaxRevisions: tc.in}
		assert.Equal(t, tc.want, s.Revisions(), "MaxRevisions=%d", tc.in)
	}
}
