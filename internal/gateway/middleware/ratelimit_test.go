package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/ratelimit"
)

func testRouter(t *testing.T, category ratelimit.Category) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	limiter := ratelimit.New(ratelimit.NewMemoryStore(0))
	r := gin.New()
	r.GET("/ping", RateLimit(limiter, category, log), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitHeadersAndRejection(t *testing.T) {
	r := testRouter(t, ratelimit.CategoryImport) // 5 per hour

	for i := 1; i <= 5; i++ {
		w := doRequest(r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, w.Code)
		}
		remaining, err := strconv.Atoi(w.Header().Get("X-RateLimit-Remaining"))
		if err != nil {
			t.Fatalf("request %d: bad X-RateLimit-Remaining header: %v", i, err)
		}
		if remaining != 5-i {
			t.Fatalf("request %d: remaining %d, want %d", i, remaining, 5-i)
		}
	}

	w := doRequest(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request: status %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), ratelimit.ErrLimitExceeded.Error()) {
		t.Fatalf("rejection body %q should carry the limit error", w.Body.String())
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("rejected request remaining header = %q, want 0", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("limit header = %q, want 5", got)
	}
	reset := w.Header().Get("X-RateLimit-Reset")
	if _, err := time.Parse(time.RFC3339, reset); err != nil {
		t.Fatalf("reset header %q is not RFC3339: %v", reset, err)
	}
}

func TestRateLimitSeparateIdentities(t *testing.T) {
	r := testRouter(t, ratelimit.CategoryImport)

	// Exhaust one caller.
	for i := 0; i < 6; i++ {
		doRequest(r)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "198.51.100.9:40000"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("different caller should not share the window: status %d", w.Code)
	}
}
