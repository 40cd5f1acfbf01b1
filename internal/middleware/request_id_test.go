package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/huangang/feedbacklens/pkg/logger"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		keepSame bool
	}{
		{name: "generated when absent", inbound: "", keepSame: false},
		{name: "inbound reused", inbound: "edge-7f3a", keepSame: true},
		{name: "too long replaced", inbound: strings.Repeat("a", 65), keepSame: false},
		{name: "spaces replaced", inbound: "bad id", keepSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			router := gin.New()
			router.Use(RequestID())
			router.GET("/health", func(c *gin.Context) {
				seen = c.GetString(logger.RequestIDKey)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/health", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			router.ServeHTTP(w, req)

			header := w.Header().Get(RequestIDHeader)
			if header != seen {
				t.Errorf("header %q and context %q differ", header, seen)
			}
			if tt.keepSame {
				if seen != tt.inbound {
					t.Errorf("request id = %q, expected %q", seen, tt.inbound)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("request id %q should be a generated UUID", seen)
			}
		})
	}
}
