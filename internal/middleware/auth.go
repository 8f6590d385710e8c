package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/pkg/jwtutil"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

// UserKey is the echo context key holding the verified claims
const UserKey = "user"

// AuthMiddleware validates the bearer token from the Authorization header.
// The signature is the sole source of truth for the claims; this stage never
// touches the store. The specific verification failure is logged but not
// returned to the caller.
func AuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header", zap.String("kind", "missing_token"))
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				log.Warn("Invalid Authorization header format", zap.String("kind", "invalid_auth_format"))
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.String("kind", "invalid_token"), zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(UserKey, claims)
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("user_role", claims.Role)

			log.Debug("Request authenticated",
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email),
				zap.String("token_tenant", claims.TenantID))

			return next(c)
		}
	}
}

// TenantBindingMiddleware cross-checks the token's tenant claim against the
// tenant resolved for the request. This is the control that stops a valid
// credential for tenant A being replayed against tenant B's context, so it
// runs on every authenticated route after both resolution and verification.
func TenantBindingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims, ok := c.Get(UserKey).(*jwtutil.UserClaims)
		if !ok {
			log.Error("Tenant binding check before authentication", zap.String("kind", "missing_token"))
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		slug := GetTenantSlug(c)
		if slug == "" {
			log.Error("Tenant binding check before tenant resolution", zap.String("kind", "missing_tenant"))
			prometheus.RecordAuthError("missing_tenant")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant could not be determined"})
		}

		if claims.TenantID != slug {
			// Logged distinctly from generic auth failures
			log.Warn("Token tenant does not match resolved tenant",
				zap.String("kind", "tenant_mismatch"),
				zap.String("token_tenant", claims.TenantID),
				zap.String("resolved_tenant", slug))
			prometheus.RecordAuthError("tenant_mismatch")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "token is not valid for this tenant"})
		}

		return next(c)
	}
}

// RequireRole rejects authenticated requests whose role claim differs from
// the required role
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			claims, ok := c.Get(UserKey).(*jwtutil.UserClaims)
			if !ok {
				log.Error("Role check before authentication", zap.String("kind", "missing_token"))
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if claims.Role != role {
				log.Warn("Insufficient role",
					zap.String("kind", "forbidden"),
					zap.String("required", role),
					zap.String("actual", claims.Role))
				prometheus.RecordAuthError("forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}

			return next(c)
		}
	}
}

// GetClaims retrieves the verified claims from the echo context
func GetClaims(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get(UserKey).(*jwtutil.UserClaims)
	return claims, ok
}
