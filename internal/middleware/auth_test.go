package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/saasbase/pkg/config"
	"github.com/suteetoe/saasbase/pkg/jwtutil"
)

func newTestJWTUtil() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "middleware-test-key",
		ExpirationHours: 1,
	})
}

// newAdmissionRouter wires the full authenticated chain: correlation, tenant
// resolution, credential verification, tenant binding.
func newAdmissionRouter(jwtUtil *jwtutil.JWTUtil) *echo.Echo {
	e := echo.New()
	e.Pre(TenantPathRewrite())
	e.Use(CorrelationMiddleware)
	e.Use(TenantMiddleware(knownTenants()))
	e.Use(AuthMiddleware(jwtUtil))
	e.Use(TenantBindingMiddleware)
	e.GET("/secure", func(c echo.Context) error {
		claims, _ := GetClaims(c)
		return c.JSON(http.StatusOK, echo.Map{
			"tenant": GetTenantSlug(c),
			"email":  claims.Email,
		})
	})
	e.PUT("/admin", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, RequireRole("admin"))
	return e
}

func TestAuthMiddleware(t *testing.T) {
	jwtUtil := newTestJWTUtil()
	router := newAdmissionRouter(jwtUtil)

	t.Run("valid token for resolved tenant is admitted", func(t *testing.T) {
		token, err := jwtUtil.GenerateToken("owner@acme.test", 1, "acme", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "owner@acme.test")
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer ")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "not-the-key", ExpirationHours: 1})
		token, err := other.GenerateToken("owner@acme.test", 1, "acme", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: -1})
		token, err := expired.GenerateToken("owner@acme.test", 1, "acme", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("auth runs after tenant resolution", func(t *testing.T) {
		// No tenant candidate at all: the resolver rejects first, the
		// verifier never sees the request
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Host = "localhost"
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenantBinding(t *testing.T) {
	jwtUtil := newTestJWTUtil()
	router := newAdmissionRouter(jwtUtil)

	t.Run("acme token replayed against techstart is rejected", func(t *testing.T) {
		token, err := jwtUtil.GenerateToken("owner@acme.test", 1, "acme", "admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set(TenantHeader, "techstart")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("mismatch rejected regardless of resolution source", func(t *testing.T) {
		token, err := jwtUtil.GenerateToken("owner@acme.test", 1, "acme", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "http://techstart.example.com/secure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwtUtil := newTestJWTUtil()
	router := newAdmissionRouter(jwtUtil)

	t.Run("admin allowed", func(t *testing.T) {
		token, err := jwtUtil.GenerateToken("owner@acme.test", 1, "acme", "admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/admin", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		token, err := jwtUtil.GenerateToken("member@acme.test", 2, "acme", "user")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/admin", nil)
		req.Header.Set(TenantHeader, "acme")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
