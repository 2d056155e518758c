package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Folder identifies a remote folder together with the keys needed to
// add content to it. Immutable once created.
type Folder struct {
	Hash    string
	AddKey  string
	EditKey string
}

// Key returns the key uploads into the folder must present: the add
// key when the service granted one, otherwise the edit key.
func (f Folder) Key() string {
	if f.AddKey != "" {
		return f.AddKey
	}
	return f.EditKey
}

// folderResponse is the create_folder wire shape.
type folderResponse struct {
	Hash    string `json:"hash"`
	AddKey  string `json:"add_key"`
	EditKey string `json:"edit_key"`
	Error   string `json:"error"`
}

// CreateFolder creates a folder named name under parentHash and
// returns its identity. The call is not idempotent: the service
// happily creates duplicates, so callers cache what they created.
func (c *Client) CreateFolder(ctx context.Context, name, parentHash string, creds Credentials) (Folder, error) {
	form := url.Values{
		"user":        {creds.Username},
		"pass":        {creds.Password},
		"name":        {name},
		"parent_hash": {parentHash},
		"access":      {string(c.access)},
	}

	status, body, err := c.postForm(ctx, "/api/create_folder.php", form)
	if err != nil {
		return Folder{}, &FolderCreateError{Name: name, Parent: parentHash, Reason: "request failed", Err: err}
	}
	if status < 200 || status >= 300 {
		return Folder{}, &FolderCreateError{Name: name, Parent: parentHash, Status: status,
			Reason: fmt.Sprintf("service returned HTTP %d", status)}
	}

	var wire folderResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return Folder{}, &FolderCreateError{Name: name, Parent: parentHash, Status: status,
			Reason: fmt.Sprintf("malformed response %q", truncate(string(body), 120)), Err: err}
	}
	if wire.Error != "" {
		return Folder{}, &FolderCreateError{Name: name, Parent: parentHash, Status: status, Reason: wire.Error}
	}
	// A usable folder needs a hash and at least one key.
	if wire.Hash == "" || (wire.AddKey == "" && wire.EditKey == "") {
		return Folder{}, &FolderCreateError{Name: name, Parent: parentHash, Status: status,
			Reason: fmt.Sprintf("response missing folder identity: %q", truncate(string(body), 120))}
	}

	return Folder{Hash: wire.Hash, AddKey: wire.AddKey, EditKey: wire.EditKey}, nil
}

// Entry is one item in a folder listing.
type Entry struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// IsDir reports whether the entry is a subfolder.
func (e Entry) IsDir() bool { return e.Type == "dir" }

// ListFolder returns the contents of a remote folder. With
// withSubfolders the service flattens the whole subtree into one list.
func (c *Client) ListFolder(ctx context.Context, hash string, withSubfolders bool) ([]Entry, error) {
	query := url.Values{"hash": {hash}}
	if withSubfolders {
		query.Set("subfolders", "1")
	}

	status, body, err := c.get(ctx, "/api/folder_content.php", query)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", hash, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("list folder %s: service returned HTTP %d", hash, status)
	}

	// Errors come back as a JSON object instead of the array.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wire struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &wire); err == nil && wire.Error != "" {
			return nil, fmt.Errorf("list folder %s: %s", hash, wire.Error)
		}
		return nil, fmt.Errorf("list folder %s: unrecognized response %q", hash, truncate(string(body), 120))
	}

	var entries []Entry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("list folder %s: malformed response: %w", hash, err)
	}
	return entries, nil
}
