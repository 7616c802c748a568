package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Request describes one API call.
type Request struct {
	Method string
	// Path is the concrete path, e.g. "/posts/7/like".
	Path string
	// Route is the path template used for metrics and span names, e.g.
	// "/posts/{id}/like". Defaults to Path.
	Route string
	Query url.Values
	// Body is encoded as JSON when non-nil. Ignored when Multipart is set.
	Body      any
	Multipart *Multipart
	Header    http.Header
	// Credential, when set, is sent instead of the session's credential and
	// never triggers a session teardown.
	Credential string
	// Anonymous sends the request without any credential. Ignored when
	// Credential is set.
	Anonymous bool
}

func (r Request) route() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Path
}

func (r Request) op() string {
	return r.Method + " " + r.route()
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields url.Values
	Files  []FilePart
}

type FilePart struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, values := range m.Fields {
		for _, v := range values {
			if err := w.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range m.Files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func encodeBody(r Request) (io.Reader, string, error) {
	if r.Multipart != nil {
		return r.Multipart.encode()
	}
	if r.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}

func joinURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// detailMessage extracts the human-readable message from an error body.
// The API answers {"detail": "..."} or {"detail": [{"msg": "..."}, ...]}.
func detailMessage(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
