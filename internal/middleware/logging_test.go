package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// decodeLines はJSON Lines形式のログ出力をレコード単位でデコードする。
func decodeLines(t *testing.T, raw []byte) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, sc.Text())
		}
		entries = append(entries, entry)
	}
	return entries
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// TestLoggingMiddleware_EmitsIncomingAndOutgoing は1リクエストにつき2レコードが順に出力されることを検証する。
func TestLoggingMiddleware_EmitsIncomingAndOutgoing(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ハンドラー実行時点でIncomingのみ出力済みであること
		if n := strings.Count(buf.String(), "\n"); n != 1 {
			t.Errorf("log lines before handler = %d, want 1", n)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/address?x=1", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2\nraw: %s", len(entries), buf.String())
	}

	in, out := entries[0], entries[1]
	if in["msg"] != "Incoming request: GET http://example.com/address?x=1" {
		t.Errorf("incoming msg = %q", in["msg"])
	}
	if in["method"] != "GET" {
		t.Errorf("method = %q, want %q", in["method"], "GET")
	}
	if in["url"] != "http://example.com/address?x=1" {
		t.Errorf("url = %q, want %q", in["url"], "http://example.com/address?x=1")
	}
	if out["msg"] != "Outgoing response: 200" {
		t.Errorf("outgoing msg = %q", out["msg"])
	}
	if status, ok := out["status"].(float64); !ok || status != 200 {
		t.Errorf("status = %v, want 200", out["status"])
	}
	if _, ok := out["duration_ms"]; !ok {
		t.Error("expected 'duration_ms' field in outgoing entry")
	}
	if in["request_id"] == "" || in["request_id"] != out["request_id"] {
		t.Errorf("request_id mismatch: incoming %v, outgoing %v", in["request_id"], out["request_id"])
	}
}

// TestLoggingMiddleware_CapturesStatusCode はステータスコードとログレベルが正しく記録されることを検証する。
func TestLoggingMiddleware_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"200 OK", http.StatusOK, "INFO"},
		{"404 Not Found", http.StatusNotFound, "WARN"},
		{"405 Method Not Allowed", http.StatusMethodNotAllowed, "WARN"},
		{"422 Unprocessable Entity", http.StatusUnprocessableEntity, "WARN"},
		{"500 Internal Server Error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newTestLogger(&buf)

			handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			entries := decodeLines(t, buf.Bytes())
			if len(entries) != 2 {
				t.Fatalf("log entries = %d, want 2", len(entries))
			}
			out := entries[1]
			if status := int(out["status"].(float64)); status != tt.statusCode {
				t.Errorf("status = %d, want %d", status, tt.statusCode)
			}
			if out["level"] != tt.wantLevel {
				t.Errorf("level = %q, want %q", out["level"], tt.wantLevel)
			}
			if w.Code != tt.statusCode {
				t.Errorf("response status = %d, want %d", w.Code, tt.statusCode)
			}
		})
	}
}

// TestLoggingMiddleware_BodyWriteCapture はWriteHeaderなしの書き込みでも200が記録されることを検証する。
func TestLoggingMiddleware_BodyWriteCapture(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if status := int(entries[1]["status"].(float64)); status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
	if w.Body.String() != "hello" {
		t.Errorf("body = %q, want %q", w.Body.String(), "hello")
	}
}

// TestLoggingMiddleware_SpecialCharactersInHeaders は特殊文字を含むヘッダーでもログが出力されることを検証する。
func TestLoggingMiddleware_SpecialCharactersInHeaders(t *testing.T) {
	agents := []string{
		"test-client!@#$%",
		"クライアント/1.0 (日本語)",
		"emoji 🚀 \"quoted\" \\ backslash",
		"ctrl\x01\x7fbytes\xff",
	}

	for _, ua := range agents {
		t.Run(ua, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newTestLogger(&buf)

			handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("User-Agent", ua)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			entries := decodeLines(t, buf.Bytes())
			if len(entries) != 2 {
				t.Fatalf("log entries = %d, want 2\nraw: %s", len(entries), buf.String())
			}
		})
	}
}

// TestLoggingMiddleware_SetsRequestIDInContext はハンドラーからリクエストIDを参照できることを検証する。
func TestLoggingMiddleware_SetsRequestIDInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	var captured string
	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Fatal("expected request id in context")
	}
	entries := decodeLines(t, buf.Bytes())
	if entries[0]["request_id"] != captured {
		t.Errorf("request_id = %v, want %q", entries[0]["request_id"], captured)
	}
}

// TestLoggingMiddleware_ConcurrentRequests は並行リクエストでも各リクエストのIncomingがOutgoingより先に出力されることを検証する。
func TestLoggingMiddleware_ConcurrentRequests(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/users/%d", i), nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}(i)
	}
	wg.Wait()

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 2*n {
		t.Fatalf("log entries = %d, want %d", len(entries), 2*n)
	}

	seen := make(map[string]string)
	for _, e := range entries {
		id := e["request_id"].(string)
		msg := e["msg"].(string)
		switch {
		case strings.HasPrefix(msg, "Incoming request"):
			if _, ok := seen[id]; ok {
				t.Errorf("duplicate incoming record for %s", id)
			}
			seen[id] = "incoming"
		case strings.HasPrefix(msg, "Outgoing response"):
			if seen[id] != "incoming" {
				t.Errorf("outgoing record for %s emitted before incoming", id)
			}
			seen[id] = "outgoing"
		default:
			t.Errorf("unexpected message %q", msg)
		}
	}
}

// syncBuffer はテスト用のゴルーチンセーフなbytes.Buffer。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}
