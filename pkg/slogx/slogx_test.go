package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewWithoutDefault_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slogx.NewWithoutDefault(slogx.Config{Service: "accounts", Level: "warn", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "shown", lines[0]["msg"])
	require.Equal(t, "accounts", lines[0]["service"])
}

func TestNewWithoutDefault_OmitsEmptyBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	slogx.NewWithoutDefault(slogx.Config{Service: "accounts", Output: &buf}).Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "accounts", lines[0]["service"])
	require.NotContains(t, lines[0], "version")
	require.NotContains(t, lines[0], "env")
}

func TestNewWithoutDefault_Redacts(t *testing.T) {
	var buf bytes.Buffer
	log := slogx.NewWithoutDefault(slogx.Config{Output: &buf}).With("Authorization", "Bearer abc")

	log.Info("signup",
		"email", "ada@example.com",
		"password", "hunter22",
		slog.Group("body", slog.String("newPassword", "s3cret")),
	)

	require.NotContains(t, buf.String(), "hunter22")
	require.NotContains(t, buf.String(), "s3cret")
	require.NotContains(t, buf.String(), "Bearer abc")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "ada@example.com", lines[0]["email"])
	require.Equal(t, slogx.Redacted, lines[0]["password"])
	require.Equal(t, slogx.Redacted, lines[0]["Authorization"])
	require.Equal(t, slogx.Redacted, lines[0]["body"].(map[string]any)["newPassword"])
}

func TestNewWithoutDefault_CustomRedactKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slogx.NewWithoutDefault(slogx.Config{Output: &buf, RedactKeys: []string{"email"}})
	log.Info("x", "email", "ada@example.com", "password", "kept")

	lines := decodeLines(t, &buf)
	require.Equal(t, slogx.Redacted, lines[0]["email"])
	require.Equal(t, "kept", lines[0]["password"])
}

func TestNewWithoutDefault_DevDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	slogx.NewWithoutDefault(slogx.Config{Env: "dev", Output: &buf}).Info("hello")
	require.True(t, strings.HasPrefix(buf.String(), "time="), buf.String())

	buf.Reset()
	slogx.NewWithoutDefault(slogx.Config{Env: "dev", Format: "json", Output: &buf}).Info("hello")
	require.Len(t, decodeLines(t, &buf), 1)
}

func TestFromContextFallsBack(t *testing.T) {
	require.NotNil(t, slogx.FromContext(context.Background()))
}

func TestWithUser(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slogx.NewWithoutDefault(slogx.Config{Output: &buf}))

	slogx.FromContext(slogx.WithUser(ctx, "01JUSER", "admin")).Info("acted")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "01JUSER", lines[0]["user_id"])
	require.Equal(t, "admin", lines[0]["role"])
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.NewWithoutDefault(slogx.Config{Output: &buf})

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusInternalServerError)
	}))

	t.Run("propagates incoming request id", func(t *testing.T) {
		buf.Reset()
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		r.Header.Set(slogx.RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		require.Equal(t, "req-123", rec.Header().Get(slogx.RequestIDHeader))

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 2)
		require.Equal(t, "req-123", lines[0]["req_id"])
		require.Equal(t, "http_request", lines[1]["msg"])
		require.Equal(t, "ERROR", lines[1]["level"])
		require.EqualValues(t, http.StatusInternalServerError, lines[1]["status"])
	})

	t.Run("mints request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Len(t, rec.Header().Get(slogx.RequestIDHeader), 26)
	})
}
