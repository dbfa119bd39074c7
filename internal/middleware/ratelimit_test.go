package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllowPerKey(t *testing.T) {
	rl := NewRateLimiter(3)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d rejected", i)
		}
	}
	if rl.Allow("a") {
		t.Error("fourth request allowed")
	}
	if !rl.Allow("b") {
		t.Error("other key throttled")
	}

	fixed = fixed.Add(20 * time.Second)
	if !rl.Allow("a") {
		t.Error("token not refilled after 20s")
	}
}

func TestSweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(2 * time.Hour)
	rl.Allow("new")

	if _, ok := rl.limiters["old"]; ok {
		t.Error("idle entry kept")
	}
	if len(rl.limiters) != 1 {
		t.Errorf("limiters = %d, want 1", len(rl.limiters))
	}
}

func TestMiddlewareRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1)
	rejected := 0
	r := gin.New()
	r.Use(rl.Middleware(func(*gin.Context) { rejected++ }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if rejected != 1 {
		t.Errorf("onReject called %d times", rejected)
	}
}
