package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/pkg/ratelimit"
)

func newRateLimitedRouter(limiter *ratelimit.Limiter) *echo.Echo {
	e := echo.New()
	e.Use(CorrelationMiddleware)
	e.Use(TenantMiddleware(knownTenants()))
	e.GET("/bulk", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, RateLimitMiddleware(limiter))
	e.GET("/cheap", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	return e
}

func doGet(router *echo.Echo, path, tenant, ip string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(TenantHeader, tenant)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.Config{
		Requests: 3,
		Window:   60 * time.Second,
		Now:      func() time.Time { return now },
	})
	router := newRateLimitedRouter(limiter)

	t.Run("quota scenario", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if code := doGet(router, "/bulk", "acme", "10.1.1.1"); code != http.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i+1, code)
			}
		}
		if code := doGet(router, "/bulk", "acme", "10.1.1.1"); code != http.StatusTooManyRequests {
			t.Fatalf("4th request within window: expected 429, got %d", code)
		}

		now = now.Add(61 * time.Second)
		if code := doGet(router, "/bulk", "acme", "10.1.1.1"); code != http.StatusOK {
			t.Fatalf("request after window expiry: expected 200, got %d", code)
		}
	})

	t.Run("keyed by tenant and origin", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			doGet(router, "/bulk", "acme", "10.2.2.2")
		}
		if code := doGet(router, "/bulk", "acme", "10.2.2.2"); code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for exhausted key, got %d", code)
		}
		if code := doGet(router, "/bulk", "techstart", "10.2.2.2"); code != http.StatusOK {
			t.Errorf("other tenant from same origin should be admitted, got %d", code)
		}
		if code := doGet(router, "/bulk", "acme", "10.3.3.3"); code != http.StatusOK {
			t.Errorf("same tenant from other origin should be admitted, got %d", code)
		}
	})

	t.Run("unmarked routes bypass the limiter", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			if code := doGet(router, "/cheap", "acme", "10.2.2.2"); code != http.StatusOK {
				t.Fatalf("unmarked route should never be limited, got %d", code)
			}
		}
	})
}
