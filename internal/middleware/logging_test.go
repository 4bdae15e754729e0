package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/authcore/internal/metrics"
)

// statusCollector はRecordHTTPStatus/RecordRequestLatencyの呼び出しを記録する。
type statusCollector struct {
	metrics.Nop
	statuses  []int
	latencies []time.Duration
}

func (c *statusCollector) RecordHTTPStatus(statusCode int) {
	c.statuses = append(c.statuses, statusCode)
}

func (c *statusCollector) RecordRequestLatency(d time.Duration) {
	c.latencies = append(c.latencies, d)
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mw := NewLoggingMiddleware(logger, metrics.Nop{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/user", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	if entry["method"] != "POST" {
		t.Errorf("method = %v, want POST", entry["method"])
	}
	if entry["path"] != "/user" {
		t.Errorf("path = %v, want /user", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusCreated)
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected duration_ms field")
	}
}

func TestLoggingMiddleware_ErrorStatusLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mw := NewLoggingMiddleware(logger, metrics.Nop{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteInternalServerError(w)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
}

func TestLoggingMiddleware_RecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	collector := &statusCollector{}

	mw := NewLoggingMiddleware(logger, collector)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/user/123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(collector.statuses) != 1 || collector.statuses[0] != http.StatusNoContent {
		t.Errorf("recorded statuses = %v, want [204]", collector.statuses)
	}
	if len(collector.latencies) != 1 {
		t.Errorf("recorded latencies = %d entries, want 1", len(collector.latencies))
	}
}

func TestStatusRecorder_DefaultsTo200OnWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if rec.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d", rec.statusCode, http.StatusOK)
	}
}
