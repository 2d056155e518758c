package remote

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUploadResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		wantKind OutcomeKind
		wantHash string
	}{
		{name: "acknowledged", status: 200, body: "d", wantKind: Acknowledged},
		{name: "acknowledged with newline", status: 200, body: "d\n", wantKind: Acknowledged},
		{name: "hash returned", status: 200, body: "a1B2c3D4", wantKind: HashReturned, wantHash: "a1B2c3D4"},
		{name: "hash exactly six chars", status: 200, body: "abc123", wantKind: HashReturned, wantHash: "abc123"},
		{name: "too short for a hash", status: 200, body: "abc12", wantKind: Malformed},
		{name: "hyphen breaks the hash shape", status: 200, body: "abc-123456", wantKind: Malformed},
		{name: "empty body", status: 200, body: "", wantKind: Malformed},
		{name: "html error page", status: 200, body: "<html>oops</html>", wantKind: Malformed},
		{name: "json error object", status: 200, body: `{"error":"full"}`, wantKind: Malformed},
		{name: "server error", status: 500, body: "boom", wantKind: HTTPError},
		{name: "not found", status: 404, body: "", wantKind: HTTPError},
		{name: "looks like a hash but non-2xx", status: 503, body: "a1B2c3D4", wantKind: HTTPError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyUploadResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantHash, got.FileHash)
		})
	}
}

func writeUploadFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// readMultipartFile reads the whole request body, checks the declared
// Content-Length was exact, and returns the single file part.
func readMultipartFile(t *testing.T, r *http.Request) (header textproto.MIMEHeader, fileName string, content []byte) {
	t.Helper()

	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Positive(t, r.ContentLength, "upload must declare its length")
	assert.Equal(t, int64(len(raw)), r.ContentLength)

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(bytes.NewReader(raw), params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, uploadFieldName, part.FormName())

	content, err = io.ReadAll(part)
	require.NoError(t, err)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF, "exactly one part expected")

	return part.Header, part.FileName(), content
}

func TestUploadFileAcknowledged(t *testing.T) {
	path := writeUploadFixture(t, "notes.txt", "hello world")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/save_file.php", r.URL.Path)
		assert.Equal(t, "folderH", r.URL.Query().Get("folder_hash"))
		assert.Equal(t, "addK", r.URL.Query().Get("key"))
		assert.Empty(t, r.URL.Query().Get("return_hash"))

		header, fileName, content := readMultipartFile(t, r)
		assert.Equal(t, "notes.txt", fileName)
		assert.Equal(t, "hello world", string(content))
		assert.Contains(t, header.Get("Content-Type"), "text/plain")

		w.Write([]byte("d"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, Options{})
	id, err := c.UploadFile(context.Background(), path, "folderH", "addK", false)
	require.NoError(t, err)
	assert.Equal(t, "d", id)
}

func TestUploadFileHashReturned(t *testing.T) {
	path := writeUploadFixture(t, "img.bin", "binary-ish content")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("return_hash"))
		readMultipartFile(t, r)
		w.Write([]byte("f8A3k2Zq"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, Options{})
	id, err := c.UploadFile(context.Background(), path, "h", "k", true)
	require.NoError(t, err)
	assert.Equal(t, "f8A3k2Zq", id)
}

func TestUploadFileHTTPError(t *testing.T) {
	path := writeUploadFixture(t, "f.txt", "x")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("storage backend down"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, Options{})
	_, err := c.UploadFile(context.Background(), path, "h", "k", false)

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, path, uerr.Path)
	assert.Equal(t, http.StatusInternalServerError, uerr.Status)
	assert.Contains(t, uerr.Reason, "storage backend down")
}

func TestUploadFileMalformedResponse(t *testing.T) {
	path := writeUploadFixture(t, "f.txt", "x")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte("<html>session expired</html>"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, Options{})
	_, err := c.UploadFile(context.Background(), path, "h", "k", false)

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, uerr.Reason, "unrecognized response")
}

func TestUploadFileMissingLocal(t *testing.T) {
	c, err := New(Options{BaseURL: "http://example.invalid"})
	require.NoError(t, err)

	_, err = c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), "h", "k", false)

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestUploadFileProgress(t *testing.T) {
	content := bytes.Repeat([]byte("abcdefgh"), 1024) // 8 KiB
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte("d"))
	}))
	defer ts.Close()

	var streamed int64
	c := newTestClient(t, ts, Options{Progress: func(n int64) { streamed += n }})

	_, err := c.UploadFile(context.Background(), path, "h", "k", false)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), streamed)
}

func TestUploadFileCanceled(t *testing.T) {
	path := writeUploadFixture(t, "f.txt", "x")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("d"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, ts, Options{})
	_, err := c.UploadFile(ctx, path, "h", "k", false)

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.ErrorIs(t, err, context.Canceled)
}
