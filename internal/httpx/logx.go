package httpx

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jfk9w/maxbot/internal/logx"
)

const maxLoggedBody = 4 << 10

// SecretParams are query parameters which are never logged as is.
var SecretParams = []string{"access_token"}

// Logx logs requests and responses with debug level and transport failures with warn level.
type Logx struct {
	http.RoundTripper
	Log logx.Ptr
}

func (t *Logx) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		id        = t.onRequest(req)
		start     = time.Now()
		resp, err = t.RoundTripper.RoundTrip(req)
		duration  = time.Since(start)
	)

	if err != nil {
		t.onError(id, req, duration, err)
	} else {
		t.onResponse(id, req, resp, duration)
	}

	return resp, err
}

func (t *Logx) onRequest(req *http.Request) string {
	id := requestID()
	if !t.Log.IsLevelEnabled(logrus.DebugLevel) {
		return id
	}

	var body string
	if req.Body != nil && req.GetBody != nil {
		if copied, err := req.GetBody(); err == nil {
			body = "\nBody: " + readSnippet(copied)
			_ = copied.Close()
		}
	}

	t.Log.Debugf("%s %s > %s%s%s", id, req.Method, Redact(req.URL),
		headers(req.Header), body)
	return id
}

func (t *Logx) onResponse(id string, req *http.Request, resp *http.Response, duration time.Duration) {
	if !t.Log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	var body string
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var data []byte
		data, resp.Body = scan(resp.Body)
		body = "\nBody: " + snippet(data)
	}

	t.Log.Debugf("%s %s < %s %d\nDuration: %d ms.%s%s",
		id, req.Method, Redact(req.URL), resp.StatusCode, duration.Milliseconds(),
		headers(resp.Header), body)
}

func (t *Logx) onError(id string, req *http.Request, duration time.Duration, err error) {
	t.Log.Warnf("%s %s < %s\nDuration: %d ms.\nError: %s", id, req.Method, Redact(req.URL), duration.Milliseconds(), err)
}

// Redact returns the URL string with secret query parameters masked.
func Redact(u *url.URL) string {
	if u == nil {
		return ""
	}

	query := u.Query()
	redacted := false
	for _, key := range SecretParams {
		if query.Has(key) {
			query.Set(key, "***")
			redacted = true
		}
	}

	if !redacted {
		return u.String()
	}

	copied := *u
	copied.RawQuery = query.Encode()
	return copied.String()
}

func requestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "-"
	}

	return id.String()[:8]
}

func headers(header http.Header) string {
	if len(header) == 0 {
		return ""
	}

	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("\nHeaders:")
	for _, key := range keys {
		b.WriteString("\n  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strings.Join(header[key], ", "))
	}

	return b.String()
}

func scan(body io.ReadCloser) ([]byte, io.ReadCloser) {
	if body == nil {
		return nil, nil
	}

	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return data, io.NopCloser(io.MultiReader(bytes.NewReader(data), errReader{err}))
	}

	return data, io.NopCloser(bytes.NewReader(data))
}

func readSnippet(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxLoggedBody+1))
	return snippet(data)
}

func snippet(data []byte) string {
	if len(data) > maxLoggedBody {
		return string(data[:maxLoggedBody]) + "..."
	}

	return string(data)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
