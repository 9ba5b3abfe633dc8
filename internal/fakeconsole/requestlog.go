package fakeconsole

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/networkteam/crmsuite/diagnostics"
)

// Request is a request served by the console.
type Request struct {
	ID           uuid.UUID
	Method       string
	Path         string
	URL          string
	RequestTime  time.Time
	ResponseTime time.Time
	StatusCode   int
	ResponseSize int64
}

// Duration returns the duration of the request
func (r Request) Duration() time.Duration {
	return r.ResponseTime.Sub(r.RequestTime)
}

// RequestLog keeps the most recent requests served by the console.
type RequestLog struct {
	buffer    *diagnostics.RingBuffer[Request]
	skipPaths []string
	logger    *slog.Logger
}

// NewRequestLog keeps up to capacity requests. Requests whose path starts with
// one of skipPaths are served but neither kept nor logged.
func NewRequestLog(capacity uint64, logger *slog.Logger, skipPaths ...string) *RequestLog {
	return &RequestLog{
		buffer:    diagnostics.NewRingBuffer[Request](capacity),
		skipPaths: skipPaths,
		logger:    logger,
	}
}

// Requests returns the logged requests, oldest first.
func (l *RequestLog) Requests() []Request {
	return l.buffer.All()
}

// Count returns how many logged requests hit path.
func (l *RequestLog) Count(method, path string) int {
	n := 0
	for _, r := range l.buffer.All() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Middleware records every request not matching a skipped path prefix.
func (l *RequestLog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range l.skipPaths {
			if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		req := Request{
			ID:          uuid.Must(uuid.NewV4()),
			Method:      r.Method,
			Path:        r.URL.Path,
			URL:         r.URL.String(),
			RequestTime: time.Now(),
		}

		crw := &captureResponseWriter{ResponseWriter: w}
		next.ServeHTTP(crw, r)

		req.ResponseTime = time.Now()
		req.StatusCode = crw.statusCode
		if req.StatusCode == 0 {
			req.StatusCode = http.StatusOK
		}
		req.ResponseSize = crw.size
		l.buffer.Add(req)

		l.logger.Debug("Served request",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
			slog.Int("status", req.StatusCode),
			slog.Duration("duration", req.Duration()),
		)
	})
}

type captureResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (crw *captureResponseWriter) WriteHeader(statusCode int) {
	if crw.wroteHeader {
		return
	}
	crw.wroteHeader = true
	crw.statusCode = statusCode
	crw.ResponseWriter.WriteHeader(statusCode)
}

func (crw *captureResponseWriter) Write(b []byte) (int, error) {
	if !crw.wroteHeader {
		crw.WriteHeader(http.StatusOK)
	}
	n, err := crw.ResponseWriter.Write(b)
	crw.size += int64(n)
	return n, err
}

// Flush implements http.Flusher if the original response writer implements it
func (crw *captureResponseWriter) Flush() {
	if flusher, ok := crw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
