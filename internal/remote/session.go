package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Credentials authenticate API calls that the session cookie alone
// does not cover.
type Credentials struct {
	Username string
	Password string
}

// Session identifies the account's root folder after login.
type Session struct {
	FolderHash string
	FolderKey  string
}

// Login authenticates against the service. The session cookie lands
// in the client's jar; the returned Session carries the account root
// folder identity reported in the response body.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	form := url.Values{
		"user": {creds.Username},
		"pass": {creds.Password},
	}

	status, body, err := c.postForm(ctx, "/api/login.php", form)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if status < 200 || status >= 300 {
		return Session{}, fmt.Errorf("login: service returned HTTP %d", status)
	}

	fields := parseKeyValues(string(body))
	if fields["status"] != "ok" {
		if msg := fields["error"]; msg != "" {
			return Session{}, fmt.Errorf("login rejected: %s", msg)
		}
		return Session{}, fmt.Errorf("login: unrecognized response %q", truncate(string(body), 120))
	}

	sess := Session{
		FolderHash: fields["folder_hash"],
		FolderKey:  fields["folder_key"],
	}
	if sess.FolderHash == "" || sess.FolderKey == "" {
		return Session{}, fmt.Errorf("login response missing folder identity: %q", truncate(string(body), 120))
	}
	return sess, nil
}

// parseKeyValues splits a semicolon-delimited key=value response body.
// Values may contain '='; only the first split counts. Unparseable
// fragments are skipped.
func parseKeyValues(s string) map[string]string {
	fields := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return fields
}
