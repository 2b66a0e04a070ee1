package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"calculator-api/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	old := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = old })
	return logs
}

func TestRequestIDMiddleware(t *testing.T) {
	incoming := uuid.New().String()

	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "minted when absent"},
		{name: "reused when valid", header: incoming, reuse: true},
		{name: "replaced when malformed", header: "not-a-uuid"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var fromCtx string
			h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = RequestIDFromContext(r.Context())
			}))

			r := httptest.NewRequest(http.MethodPost, "/calculate", nil)
			if tc.header != "" {
				r.Header.Set(RequestIDHeader, tc.header)
			}
			w := testutil.ExecuteRequest(r, h)

			got := w.Result().Header.Get(RequestIDHeader)
			_, err := uuid.Parse(got)
			require.NoError(t, err, "header %q", got)
			assert.Equal(t, got, fromCtx)
			if tc.reuse {
				assert.Equal(t, incoming, got)
			} else {
				assert.NotEqual(t, tc.header, got)
			}
		})
	}
}

func TestShouldTraceRequest(t *testing.T) {
	for path, want := range map[string]bool{
		"/health":        false,
		"/metrics":       false,
		"/calculate":     true,
		"/login":         true,
		"/users/current": true,
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, want, shouldTraceRequest(r), path)
	}
}

func TestSpanName(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/history", nil)
	assert.Equal(t, "DELETE /history", spanName("http_request", r))
}

func TestLoggingMiddlewareWritesCompletionLog(t *testing.T) {
	logs := observeLogs(t)

	router := chi.NewRouter()
	router.Use(LoggingMiddleware)
	router.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-123"))
	testutil.ExecuteRequest(r, router)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "/logout", fields["path"])
	assert.Equal(t, "/logout", fields["route"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.Equal(t, "req-123", fields["request_id"])
}

func TestLoggingMiddlewareLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{status: http.StatusOK, want: zapcore.InfoLevel},
		{status: http.StatusNoContent, want: zapcore.InfoLevel},
		{status: http.StatusConflict, want: zapcore.WarnLevel},
		{status: http.StatusUnprocessableEntity, want: zapcore.WarnLevel},
		{status: http.StatusInternalServerError, want: zapcore.ErrorLevel},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			logs := observeLogs(t)

			h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculate", nil), h)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.want, entries[0].Level)
		})
	}
}
