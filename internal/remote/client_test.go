package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, ts *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.BaseURL = ts.URL
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, c.api.Timeout)
	assert.Equal(t, DefaultUploadTimeout, c.uploads.Timeout)
	assert.Equal(t, AccessLink, c.access)
	assert.Equal(t, "https://files.fm/u/abc123", c.ShareURL("abc123"))
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c, err := New(Options{BaseURL: "https://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/u/h1", c.ShareURL("h1"))
}

func TestNewRejectsBadScheme(t *testing.T) {
	_, err := New(Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}

func TestClientsShareCookieJar(t *testing.T) {
	c, err := New(Options{BaseURL: "http://example.com"})
	require.NoError(t, err)
	assert.Same(t, c.api.Jar, c.uploads.Jar)
}

func TestUserAgentSent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte("[]"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts, Options{UserAgent: "airlift/test"})
	_, err := c.ListFolder(context.Background(), "h", false)
	require.NoError(t, err)
	assert.Equal(t, "airlift/test", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
