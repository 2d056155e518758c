package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// uploadFieldName is the form field the service reads the file from.
const uploadFieldName = "file"

// OutcomeKind classifies the service's response to a file upload.
type OutcomeKind int

const (
	// Acknowledged means the service accepted the file without
	// returning an identifier (body is the literal "d").
	Acknowledged OutcomeKind = iota + 1
	// HashReturned means the service accepted the file and returned
	// its content hash.
	HashReturned
	// HTTPError means the service answered with a non-2xx status.
	HTTPError
	// Malformed means a 2xx response whose body matches no known
	// shape (HTML error pages, empty bodies, JSON error objects).
	Malformed
)

// UploadOutcome is the classified upload response.
type UploadOutcome struct {
	Kind     OutcomeKind
	Status   int
	FileHash string // set for HashReturned
	Body     string // truncated raw body, for diagnostics
}

var hashPattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,}$`)

// classifyUploadResponse maps a raw upload response onto an
// UploadOutcome. Parsing is strict: anything not positively recognized
// is Malformed, never assumed successful.
func classifyUploadResponse(status int, body []byte) UploadOutcome {
	if status < 200 || status >= 300 {
		return UploadOutcome{Kind: HTTPError, Status: status, Body: truncate(string(body), 120)}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "d" {
		return UploadOutcome{Kind: Acknowledged, Status: status}
	}
	if hashPattern.MatchString(trimmed) {
		return UploadOutcome{Kind: HashReturned, Status: status, FileHash: trimmed}
	}
	return UploadOutcome{Kind: Malformed, Status: status, Body: truncate(string(body), 120)}
}

// UploadFile streams one local file into the folder identified by
// folderHash, presenting key. With wantHash the service is asked for
// the stored file's content hash; otherwise a bare acknowledgement is
// expected. Returns the content hash, or "d" for acknowledgements.
func (c *Client) UploadFile(ctx context.Context, localPath, folderHash, key string, wantHash bool) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", &UploadError{Path: localPath, Reason: "open file", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &UploadError{Path: localPath, Reason: "stat file", Err: err}
	}

	query := url.Values{
		"folder_hash": {folderHash},
		"key":         {key},
	}
	if wantHash {
		query.Set("return_hash", "1")
	}

	body, contentType, contentLength, err := c.multipartBody(f, info.Size(), filepath.Base(localPath))
	if err != nil {
		return "", &UploadError{Path: localPath, Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/save_file.php")+"?"+query.Encode(), body)
	if err != nil {
		body.Close()
		return "", &UploadError{Path: localPath, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	// The pipe hides the length from net/http; set it so the service
	// sees a plain sized body instead of chunked encoding.
	req.ContentLength = contentLength

	resp, err := c.uploads.Do(req)
	if err != nil {
		return "", &UploadError{Path: localPath, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &UploadError{Path: localPath, Reason: "read response", Err: err}
	}

	outcome := classifyUploadResponse(resp.StatusCode, raw)
	switch outcome.Kind {
	case Acknowledged:
		return "d", nil
	case HashReturned:
		return outcome.FileHash, nil
	case HTTPError:
		reason := fmt.Sprintf("service returned HTTP %d", outcome.Status)
		if outcome.Body != "" {
			reason += ": " + outcome.Body
		}
		return "", &UploadError{Path: localPath, Status: outcome.Status, Reason: reason}
	default:
		return "", &UploadError{Path: localPath, Status: outcome.Status,
			Reason: fmt.Sprintf("unrecognized response %q", outcome.Body)}
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody builds the streaming request body for one file and its
// exact content length. The framing is replayed into a scratch buffer
// first to learn the multipart overhead, so Content-Length can be set
// without buffering the file itself.
func (c *Client) multipartBody(f *os.File, size int64, fileName string) (io.ReadCloser, string, int64, error) {
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			uploadFieldName, quoteEscaper.Replace(fileName)))
	partHeader.Set("Content-Type", detectContentType(f.Name()))

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	var scratch bytes.Buffer
	dummy := multipart.NewWriter(&scratch)
	if err := dummy.SetBoundary(writer.Boundary()); err != nil {
		return nil, "", 0, err
	}
	if _, err := dummy.CreatePart(partHeader); err != nil {
		return nil, "", 0, err
	}
	if err := dummy.Close(); err != nil {
		return nil, "", 0, err
	}
	contentLength := int64(scratch.Len()) + size

	var src io.Reader = f
	if c.progress != nil {
		src = &progressReader{r: f, fn: c.progress}
	}

	go func() {
		part, err := writer.CreatePart(partHeader)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("create form part: %w", err))
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(fmt.Errorf("stream file: %w", err))
			return
		}
		if err := writer.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("close form: %w", err))
			return
		}
		pw.Close()
	}()

	return pr, writer.FormDataContentType(), contentLength, nil
}

// detectContentType sniffs the file's content type from disk, falling
// back to application/octet-stream.
func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

// progressReader reports bytes to fn as they are read.
type progressReader struct {
	r  io.Reader
	fn func(int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.fn(int64(n))
	}
	return n, err
}
