package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"airlift/internal/remote"
)

// createUploadTree builds a standard source tree under a fresh temp
// directory and returns its root (named "album" so the remote folder
// name is predictable):
//
//	album/a.txt             (7 bytes)
//	album/z.txt             (9 bytes)
//	album/docs/guide.md     (13 bytes)
//	album/docs/img/logo.png (11 bytes)
//	album/music/track.mp3   (12 bytes)
func createUploadTree(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "album")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "img"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "music"), 0o755))

	write := func(rel, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644))
	}
	write("a.txt", "alpha 1")
	write("z.txt", "zulu 2345")
	write(filepath.Join("docs", "guide.md"), "# user guide\n")
	write(filepath.Join("docs", "img", "logo.png"), "not-a-png!\n")
	write(filepath.Join("music", "track.mp3"), "ID3 jingle!\n")

	return root
}

type folderCall struct {
	Creds  remote.Credentials
	Name   string
	Parent string
}

type uploadCall struct {
	LocalPath  string
	FolderHash string
	Key        string
	WantHash   bool
}

// fakeClient is a scripted RemoteClient recording every call. Folder
// hashes are "hash-<name>-<seq>"; keys are "add-<name>"/"edit-<name>".
type fakeClient struct {
	mu      sync.Mutex
	folders []folderCall
	uploads []uploadCall
	ops     []string // interleaved call order: "folder:name", "upload:base"

	failFolders map[string]error // folder name -> error to return
	failUploads map[string]error // file base name -> error to return
	editOnly    map[string]bool  // folder name -> grant only an edit key

	afterUpload func(n int) // runs after the n-th recorded upload
	seq         int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		failFolders: map[string]error{},
		failUploads: map[string]error{},
		editOnly:    map[string]bool{},
	}
}

func (f *fakeClient) CreateFolder(_ context.Context, name, parentHash string, creds remote.Credentials) (remote.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.folders = append(f.folders, folderCall{Name: name, Parent: parentHash, Creds: creds})
	f.ops = append(f.ops, "folder:"+name)

	if err := f.failFolders[name]; err != nil {
		return remote.Folder{}, err
	}

	f.seq++
	folder := remote.Folder{Hash: fmt.Sprintf("hash-%s-%d", name, f.seq)}
	folder.EditKey = "edit-" + name
	if !f.editOnly[name] {
		folder.AddKey = "add-" + name
	}
	return folder, nil
}

func (f *fakeClient) UploadFile(_ context.Context, localPath, folderHash, key string, wantHash bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads = append(f.uploads, uploadCall{
		LocalPath: localPath, FolderHash: folderHash, Key: key, WantHash: wantHash,
	})
	base := filepath.Base(localPath)
	f.ops = append(f.ops, "upload:"+base)

	if f.afterUpload != nil {
		defer f.afterUpload(len(f.uploads))
	}

	if err := f.failUploads[base]; err != nil {
		return "", err
	}
	if wantHash {
		f.seq++
		return fmt.Sprintf("hash%06d", f.seq), nil
	}
	return "d", nil
}

// opIndex returns the position of op in the recorded call order, or -1.
func (f *fakeClient) opIndex(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, o := range f.ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (f *fakeClient) folderNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.folders))
	for _, c := range f.folders {
		names = append(names, c.Name)
	}
	return names
}

func (f *fakeClient) uploadedBases() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	bases := make([]string, 0, len(f.uploads))
	for _, c := range f.uploads {
		bases = append(bases, filepath.Base(c.LocalPath))
	}
	return bases
}

var (
	testBase  = remote.Folder{Hash: "base-hash", AddKey: "base-add-key"}
	testCreds = remote.Credentials{Username: "tester", Password: "hunter2"}
)

func testConfig(source string, client *fakeClient) Config {
	return Config{
		Client:      client,
		Source:      source,
		Credentials: testCreds,
		Base:        testBase,
	}
}
