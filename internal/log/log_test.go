package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf, Component: ComponentLedger})

	l.Info("Transaction added", NewFields().
		WithTransaction("t1", "Food", "expense", decimal.RequireFromString("12.5")).
		ToSlice()...)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Transaction added", rec["msg"])
	assert.Equal(t, ComponentLedger, rec[FieldComponent])
	assert.Equal(t, "12.50", rec[FieldAmount])
	assert.Equal(t, "t1", rec[FieldTransactionID])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})

	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestMiddlewareStoresLogger(t *testing.T) {
	l := Discard().WithComponent(ComponentHTTP)
	var got *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.Equal(t, ComponentHTTP, got.Component())

	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf, Level: slog.LevelDebug}))
	r := httptest.NewRequest(http.MethodGet, "/api/ledger", nil)

	sl.LogHTTPEnd(context.Background(), r, 503, 12, "127.0.0.1")
	assert.True(t, strings.Contains(buf.String(), "level=ERROR"), buf.String())

	buf.Reset()
	sl.LogError(context.Background(), "Save failed", errors.New("disk full"), ComponentBridge, OpUpdate, nil)
	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), "component=bridge")
}
