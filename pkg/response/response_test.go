package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"name": "test"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
	if _, ok := resp["error"]; ok {
		t.Error("error field should be omitted on success")
	}
	data, ok := resp["data"].(map[string]interface{})
	if !ok || data["name"] != "test" {
		t.Errorf("unexpected data: %v", resp["data"])
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]string{"id": "abc"})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	resp := parseResponse(t, w)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
}

func TestFailureHelpers(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		status  int
		message string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "invalid input") }, http.StatusBadRequest, "invalid input"},
		{"not found", func(c *gin.Context) { NotFound(c, "Review not found") }, http.StatusNotFound, "Review not found"},
		{"server error", func(c *gin.Context) { ServerError(c, "boom") }, http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(tt.handler)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := parseResponse(t, w)
			if resp["success"] != false {
				t.Errorf("expected success false, got %v", resp["success"])
			}
			if resp["error"] != tt.message {
				t.Errorf("expected error %q, got %v", tt.message, resp["error"])
			}
			if _, ok := resp["data"]; ok {
				t.Error("data field should be omitted on failure")
			}
		})
	}
}

func TestError_WithAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, NewBadRequest("Review text cannot be empty"))
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	resp := parseResponse(t, w)
	if resp["error"] != "Review text cannot be empty" {
		t.Errorf("unexpected error message %v", resp["error"])
	}
}

func TestError_WithWrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, fmt.Errorf("lookup: %w", NewNotFound("Review not found")))
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestError_WithGenericErrorHidesDetails(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	resp := parseResponse(t, w)
	if resp["error"] != "Internal server error" {
		t.Errorf("expected generic message, got %v", resp["error"])
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewTooManyRequests("slow down")
	if err.Error() != "slow down" {
		t.Errorf("expected 'slow down', got %q", err.Error())
	}
	if err.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", err.HTTPStatus)
	}
}
