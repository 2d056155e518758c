// Package remote implements the HTTP client for the file hosting
// service: session login, folder creation, folder listings and
// streaming multipart file uploads.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the production service endpoint.
const DefaultBaseURL = "https://files.fm"

// API calls answer quickly; uploads may take minutes on large files,
// so they run on a separate client with a generous timeout.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 30 * time.Minute
)

// maxResponseBytes caps how much of an API response body is read; the
// service's answers are tiny.
const maxResponseBytes = 1 << 20

// defaultUserAgent identifies the client to the service.
const defaultUserAgent = "airlift"

// Access controls who can see folders created by the client.
type Access string

const (
	AccessLink    Access = "LINK"    // anyone with the link
	AccessPrivate Access = "PRIVATE" // owner only
)

// Options configures a Client.
type Options struct {
	// Progress, when set, receives byte deltas while upload bodies
	// stream. Called from the upload's streaming goroutine.
	Progress func(int64)

	// BaseURL is the service root. Empty selects DefaultBaseURL.
	BaseURL string

	// UserAgent overrides the default request User-Agent.
	UserAgent string

	// Access is applied to created folders. Empty selects AccessLink.
	Access Access

	// Timeout bounds API calls (login, folder creation, listings).
	Timeout time.Duration

	// UploadTimeout bounds file uploads.
	UploadTimeout time.Duration
}

// Client talks to the file hosting HTTP API. It owns the session
// cookie jar, so use one Client per account session.
type Client struct {
	api       *http.Client
	uploads   *http.Client
	progress  func(int64)
	base      *url.URL
	userAgent string
	access    Access
}

// New returns a Client ready to log in.
func New(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported service url scheme %q", base.Scheme)
	}

	// One jar shared by both clients: the session cookie from login
	// must accompany uploads too.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	uploadTimeout := opts.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	access := opts.Access
	if access == "" {
		access = AccessLink
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		api:       &http.Client{Jar: jar, Timeout: timeout},
		uploads:   &http.Client{Jar: jar, Timeout: uploadTimeout},
		progress:  opts.Progress,
		base:      base,
		userAgent: userAgent,
		access:    access,
	}, nil
}

// ShareURL returns the public link for a folder or file hash.
func (c *Client) ShareURL(hash string) string {
	return c.base.String() + "/u/" + hash
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// postForm issues a form-encoded API POST and returns the status code
// and body. Status classification is the caller's job; several
// endpoints carry error detail in 200 bodies.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.api.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	u := c.endpoint(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.api.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// truncate caps s for inclusion in error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
