package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxCapturedBody is enough of a response to read the envelope message;
// chart and table payloads are never logged in full.
const maxCapturedBody = 4 * 1024

//nolint:gochecknoglobals // read-only lookup
var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"x-api-key":     {},
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if _, found := sensitiveHeaders[strings.ToLower(key)]; found {
			result.Set(key, "***")
		}
	}
	return result
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	head   bytes.Buffer
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxCapturedBody - w.head.Len(); room > 0 {
		w.head.Write(p[:min(room, len(p))])
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func matchedRoutePath(r *http.Request) string {
	if pattern := routePattern(r.Context()); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// requestBodySummary describes the request body without reading it; bodies
// here are uploaded files.
func requestBodySummary(r *http.Request) string {
	switch {
	case r.ContentLength == 0:
		return ""
	case r.ContentLength < 0:
		return fmt.Sprintf("<%s body, streamed>", r.Header.Get("Content-Type"))
	default:
		return fmt.Sprintf("<%s body, %d bytes>", r.Header.Get("Content-Type"), r.ContentLength)
	}
}

// envelopeSummary returns the message and error code of a JSON envelope, or
// nil when head is not one.
func envelopeSummary(contentType string, head []byte) []any {
	if !strings.Contains(contentType, "json") {
		return nil
	}

	var env struct {
		Message string            `json:"message"`
		Error   map[string]string `json:"error"`
	}
	if err := json.Unmarshal(head, &env); err != nil {
		return nil
	}

	attrs := []any{"message", env.Message}
	if code := env.Error["code"]; code != "" {
		attrs = append(attrs, "error_code", code)
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		slog.InfoContext(
			r.Context(),
			"request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"headers", maskHeaders(r.Header),
			"body", requestBodySummary(r),
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		contentType := rec.Header().Get("Content-Type")

		attrs := []any{
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", rec.bytes,
			"content_type", contentType,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		attrs = append(attrs, envelopeSummary(contentType, rec.head.Bytes())...)

		slog.Log(r.Context(), levelForStatus(status), "response sent", attrs...)
	})
}
