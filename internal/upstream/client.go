// Package upstream holds the HTTP clients of the school backend services.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
)

const maxResponseBytes = 10 << 20

// Observer receives one observation per backend call.
type Observer interface {
	ObserveUpstream(backend, method string, status int, duration time.Duration)
}

// StatusError is returned when a backend answers with a non-2xx status.
type StatusError struct {
	Backend string
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Backend, e.Method, e.Path, e.Status, msg)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Client performs calls against one backend base URL.
type Client struct {
	name     string
	baseURL  string
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// NewClient constructs a backend client. A nil httpClient gets a 10s timeout.
func NewClient(name, baseURL string, httpClient *http.Client, observer Observer, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		observer: observer,
		logger:   logger,
	}
}

// Name returns the backend label used in logs and metrics.
func (c *Client) Name() string { return c.name }

// FilePart is one file attached to a multipart request.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey(), id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		return nil, fmt.Errorf("%s %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()
	c.observe(method, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: read body: %w", c.name, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Backend: c.name, Method: method, Path: path, Status: resp.StatusCode, Body: raw, Message: envelopeMessage(raw)}
		c.logger.Debug("backend returned error status", zap.String("backend", c.name), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, se
	}
	return raw, nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(c.name, method, status, time.Since(start))
	}
}

// Get fetches path and returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// PostJSON sends payload as JSON and returns the raw body.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal payload: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
}

// PostMultipart sends form fields and files as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files ...FilePart) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("%s: write field %s: %w", c.name, key, err)
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("%s: create form file %s: %w", c.name, f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("%s: write form file %s: %w", c.name, f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: close multipart: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// GetList fetches a list endpoint. A 404 yields an empty result. keys name
// object fields that may hold the list when it is not under data.
func (c *Client) GetList(ctx context.Context, path string, dest interface{}, keys ...string) error {
	raw, err := c.Get(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	return DecodeList(raw, dest, keys...)
}

type envelope struct {
	Success *bool           `json:"success"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// DecodeData unwraps {success,data}, {status,data} or a bare value into dest.
// Objects without a data field are decoded as they are.
func DecodeData(raw []byte, dest interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && present(env.Data) {
			trimmed = env.Data
		}
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode backend payload: %w", err)
	}
	return nil
}

// DecodeList decodes a list that may be bare, under data, or under one of
// keys (also looked up inside data). An object with none of them, such as
// {"success":false,"message":"..."}, is an empty list.
func DecodeList(raw []byte, dest interface{}, keys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	for depth := 0; depth < 2 && trimmed[0] == '{'; depth++ {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return fmt.Errorf("decode backend payload: %w", err)
		}
		next, found := json.RawMessage(nil), false
		for _, key := range keys {
			if v, ok := fields[key]; ok && present(v) {
				next, found = v, true
				break
			}
		}
		if !found {
			if v, ok := fields["data"]; ok && present(v) {
				next, found = v, true
			}
		}
		if !found {
			return nil
		}
		trimmed = bytes.TrimSpace(next)
	}
	if trimmed[0] != '[' {
		return nil
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode backend list: %w", err)
	}
	return nil
}

func envelopeMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// flexString accepts JSON strings and numbers, since backends mix id types.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(data))
	return nil
}

func (f flexString) String() string { return string(f) }

// flexFloat accepts JSON numbers and numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &v); err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
