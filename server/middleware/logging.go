package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/eurekaclient/logger"
)

// RequestLogger logs every request with method, path, status, size and
// duration. Probe paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			reqLog := log
			if id := r.Header.Get(RequestIDHeader); id != "" {
				reqLog = log.WithFields(logger.Fields(logger.FieldRequestID, id))
			}
			logByStatus(reqLog, rec.Status(), logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.Status(),
				"bytes", rec.bytes,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			))
		})
	}
}

func isProbe(path string) bool {
	switch path {
	case "/health", "/alive", "/ready":
		return true
	}
	return false
}

func logByStatus(log *logger.Logger, status int, fields map[string]interface{}) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
