package logging

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Init configures the standard logrus logger. Unknown levels fall back to
// info.
func Init(level string) {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("invalid log level %q, defaulting to info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// FromContext returns the request-scoped logger, or the standard logger
// when ctx carries none.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.StandardLogger()
}

// WithLogger stores entry in ctx.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// Middleware tags every request with an id, exposes a request-scoped logger
// through the context and logs the outcome once the handler returns.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		entry := logrus.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(WithLogger(r.Context(), entry)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := logrus.Fields{
			"status":   status,
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).Round(time.Microsecond).String(),
		}
		if status >= http.StatusInternalServerError {
			entry.WithFields(fields).Warn("request completed")
			return
		}
		entry.WithFields(fields).Info("request completed")
	})
}
