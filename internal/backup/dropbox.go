package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Typed failures a caller can distinguish from generic API errors.
var (
	ErrAuthFailed   = errors.New("dropbox authentication failed")
	ErrMissingScope = errors.New("dropbox token missing required scopes")
)

const dropboxFolder = "/InstituteBackups"

// DropboxClient implements BlobStore against the Dropbox HTTP API, keeping
// all snapshots under a dedicated app folder.
type DropboxClient struct {
	api     *resty.Client
	content *resty.Client
	folder  string
}

// NewDropboxClient constructs a client for the given access token.
func NewDropboxClient(token string) *DropboxClient {
	return &DropboxClient{
		api: resty.New().
			SetBaseURL("https://api.dropboxapi.com/2").
			SetAuthToken(token).
			SetTimeout(60 * time.Second),
		content: resty.New().
			SetBaseURL("https://content.dropboxapi.com/2").
			SetAuthToken(token).
			SetTimeout(5 * time.Minute),
		folder: dropboxFolder,
	}
}

type dropboxEntry struct {
	Tag            string    `json:".tag"`
	Name           string    `json:"name"`
	ServerModified time.Time `json:"server_modified"`
}

type dropboxListResponse struct {
	Entries []dropboxEntry `json:"entries"`
	Cursor  string         `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

// List returns the file objects in the backup folder.
func (c *DropboxClient) List(ctx context.Context) ([]BlobEntry, error) {
	var out dropboxListResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"path": c.folder}).
		SetResult(&out).
		Post("/files/list_folder")
	if err != nil {
		return nil, fmt.Errorf("list dropbox folder: %w", err)
	}
	if resp.IsError() {
		// A missing folder just means no backups exist yet.
		if resp.StatusCode() == 409 && strings.Contains(string(resp.Body()), "not_found") {
			return nil, nil
		}
		return nil, classifyDropboxError(resp)
	}

	entries := make([]BlobEntry, 0, len(out.Entries))
	for _, entry := range out.Entries {
		if entry.Tag != "file" {
			continue
		}
		entries = append(entries, BlobEntry{Name: entry.Name, ServerModified: entry.ServerModified})
	}
	return entries, nil
}

// Put uploads data under the backup folder, overwriting any existing object.
func (c *DropboxClient) Put(ctx context.Context, name string, data []byte) error {
	arg, err := json.Marshal(map[string]interface{}{
		"path": c.folder + "/" + name,
		"mode": "overwrite",
	})
	if err != nil {
		return err
	}
	resp, err := c.content.R().
		SetContext(ctx).
		SetHeader("Dropbox-API-Arg", string(arg)).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Post("/files/upload")
	if err != nil {
		return fmt.Errorf("upload to dropbox: %w", err)
	}
	if resp.IsError() {
		return classifyDropboxError(resp)
	}
	return nil
}

// Get downloads an object's bytes from the backup folder.
func (c *DropboxClient) Get(ctx context.Context, name string) ([]byte, error) {
	arg, err := json.Marshal(map[string]interface{}{"path": c.folder + "/" + name})
	if err != nil {
		return nil, err
	}
	resp, err := c.content.R().
		SetContext(ctx).
		SetHeader("Dropbox-API-Arg", string(arg)).
		Post("/files/download")
	if err != nil {
		return nil, fmt.Errorf("download from dropbox: %w", err)
	}
	if resp.IsError() {
		return nil, classifyDropboxError(resp)
	}
	return resp.Body(), nil
}

// Delete removes an object from the backup folder.
func (c *DropboxClient) Delete(ctx context.Context, name string) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"path": c.folder + "/" + name}).
		Post("/files/delete_v2")
	if err != nil {
		return fmt.Errorf("delete dropbox object: %w", err)
	}
	if resp.IsError() {
		return classifyDropboxError(resp)
	}
	return nil
}

// classifyDropboxError distinguishes auth failures and missing scopes from
// generic API errors so destination messages can say which it was.
func classifyDropboxError(resp *resty.Response) error {
	body := string(resp.Body())
	switch {
	case resp.StatusCode() == 401:
		return fmt.Errorf("%w: %s", ErrAuthFailed, strings.TrimSpace(body))
	case strings.Contains(strings.ToLower(body), "scope") || strings.Contains(strings.ToLower(body), "permitted"):
		return fmt.Errorf("%w: %s", ErrMissingScope, strings.TrimSpace(body))
	default:
		return fmt.Errorf("dropbox API error (status %d): %s", resp.StatusCode(), strings.TrimSpace(body))
	}
}
