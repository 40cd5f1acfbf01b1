package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.DebugLevel)
	t.Cleanup(func() { Init("info") })
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	return entry
}

func TestGinLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		buf := captureLogs(t)
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(RequestIDKey, "req-1")
			c.Next()
		}, GinLogger())
		router.GET("/reviews", func(c *gin.Context) { c.Status(tt.status) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/reviews?page=2", nil)
		router.ServeHTTP(w, req)

		entry := lastEntry(t, buf)
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, expected %s", tt.status, entry["level"], tt.level)
		}
		if entry["request_id"] != "req-1" {
			t.Errorf("request_id = %v, expected req-1", entry["request_id"])
		}
		if entry["query"] != "page=2" {
			t.Errorf("query = %v, expected page=2", entry["query"])
		}
	}
}

func TestGinRecovery_ReturnsEnvelope(t *testing.T) {
	buf := captureLogs(t)
	router := gin.New()
	router.Use(GinRecovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["success"] != false {
		t.Errorf("expected success false, got %v", body["success"])
	}
	if lastEntry(t, buf)["message"] != "panic recovered" {
		t.Error("panic should be logged")
	}
}
