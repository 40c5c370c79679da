package pkgrouter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// maxLoggedBodyBytes caps how much of a request or response body is kept for
// the log line.
const maxLoggedBodyBytes = 16 * 1024

//nolint:gochecknoglobals // read-only lookup table
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"access_token":  {},
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"access_key":    {},
	"secret_key":    {},
}

func sensitive(key string) bool {
	_, found := sensitiveKeys[strings.ToLower(key)]
	return found
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if sensitive(key) {
			result.Set(key, "***")
		}
	}
	return result
}

func maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for k, v2 := range val {
			if sensitive(k) {
				masked[k] = "***"
				continue
			}
			masked[k] = maskData(v2)
		}
		return masked
	case []any:
		res := make([]any, len(val))
		for i, v2 := range val {
			res[i] = maskData(v2)
		}
		return res
	default:
		return v
	}
}

// loggedMediaType returns the media type of bodies worth logging: JSON and
// forms. CSV uploads and multipart bodies are counted, not logged.
func loggedMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if mt != "application/json" && mt != "application/x-www-form-urlencoded" {
		return ""
	}
	return mt
}

// describeBody turns a captured request body into a log value. A body that
// does not parse is replaced by a marker so a truncated body never leaks
// unmasked secrets.
func describeBody(mediaType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}

	switch mediaType {
	case "application/json":
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return "<unparsed body>"
		}
		return maskData(v)
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "<unparsed body>"
		}
		masked := make(map[string]any, len(values))
		for k, v := range values {
			switch {
			case sensitive(k):
				masked[k] = "***"
			case len(v) == 1:
				masked[k] = v[0]
			default:
				masked[k] = v
			}
		}
		return masked
	default:
		return nil
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// peekBody reads at most maxLoggedBodyBytes of the request body and puts them
// back in front of the unread rest, so handlers still see the whole body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	prefix, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(prefix), r.Body),
		Closer: r.Body,
	}

	return prefix
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	// only JSON envelopes are kept; streamed files are counted
	isJSON := strings.HasPrefix(w.Header().Get("Content-Type"), "application/json")
	if room := maxLoggedBodyBytes - w.body.Len(); isJSON && room > 0 {
		w.body.Write(p[:min(len(p), room)])
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) loggedBody() any {
	if w.body.Len() == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(w.body.Bytes(), &v); err == nil {
		return maskData(v)
	}
	if w.bytes > w.body.Len() {
		return map[string]any{"truncated": true, "bytes": w.bytes}
	}
	if utf8.Valid(w.body.Bytes()) {
		return w.body.String()
	}
	return "<binary body omitted>"
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		contentType := r.Header.Get("Content-Type")

		var body any
		if mt := loggedMediaType(contentType); mt != "" {
			body = describeBody(mt, peekBody(r))
		}

		slog.InfoContext(
			r.Context(),
			"request received",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"content_type", contentType,
			"content_length", r.ContentLength,
			"headers", maskHeaders(r.Header),
			"body", body,
		)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		slog.InfoContext(
			r.Context(),
			"response sent",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", rec.loggedBody(),
		)
	})
}
