package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/server/respond"
)

func TestRecoveryReturnsInternalEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/api/v1/resumes/:id", func(c *gin.Context) {
		c.Set(ResumeIDKey, int64(5))
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/5", nil)
	req.Header.Set("X-Request-Id", "req-panic")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body respond.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != respond.CodeInternal || body.Error.RequestID != "req-panic" {
		t.Fatalf("unexpected envelope %+v", body.Error)
	}
	if strings.Contains(resp.Body.String(), "boom") {
		t.Fatalf("panic value leaked: %s", resp.Body.String())
	}
}

func TestRecoveryKeepsStartedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/stream", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream", nil))

	if resp.Code != http.StatusOK || resp.Body.String() != "partial" {
		t.Fatalf("expected untouched response, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFromContext(c)) })

	cases := map[string]bool{
		"req-123":                true,
		"has space":              false,
		"line\nbreak":            false,
		strings.Repeat("x", 129): false,
	}
	for in, kept := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", in)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		got := resp.Header().Get("X-Request-Id")
		if got != resp.Body.String() {
			t.Fatalf("header %q and context %q differ", got, resp.Body.String())
		}
		if (got == in) != kept {
			t.Fatalf("request id %q: kept=%v, want %v", in, got == in, kept)
		}
	}
}
