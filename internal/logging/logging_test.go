package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.InfoLevel)
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})
	return &buf
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	buf := captureLogs(t)

	var scoped logrus.FieldLogger
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = FromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/medicines", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	entry, ok := scoped.(*logrus.Entry)
	require.True(t, ok)
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Contains(t, buf.String(), "status=201")
	assert.Contains(t, buf.String(), id)
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	captureLogs(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestFromContextFallsBackToStandardLogger(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), FromContext(context.Background()))
}

func TestInitParsesLevel(t *testing.T) {
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})

	Init("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	Init("loud")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
