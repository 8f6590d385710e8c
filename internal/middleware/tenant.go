package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/internal/model"
	"github.com/suteetoe/saasbase/internal/repository"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

// TenantHeader is the explicit, highest-precedence tenant candidate
const TenantHeader = "X-Tenant-ID"

// Context keys set by TenantMiddleware for downstream stages and handlers
const (
	TenantSlugKey = "tenant_slug"
	TenantKey     = "tenant"

	tenantPathSlugKey = "tenant_path_slug"
)

// TenantPathRewrite recognizes the /t/<slug>/... path form. It must be
// registered with e.Pre so it runs before routing: the slug is stashed in the
// context and the prefix stripped, letting the remaining path match the normal
// route table.
func TenantPathRewrite() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if rest, ok := strings.CutPrefix(path, "/t/"); ok {
				if i := strings.Index(rest, "/"); i > 0 {
					c.Set(tenantPathSlugKey, rest[:i])
					c.Request().URL.Path = rest[i:]
				}
			}
			return next(c)
		}
	}
}

// TenantMiddleware resolves the tenant for the request and loads its record.
// Candidates are checked in strict precedence order: explicit header, path
// prefix, host subdomain. First non-empty candidate wins; explicit signals
// override ambient ones so the same deployment can serve tenants by header in
// tests and by subdomain in production.
func TenantMiddleware(tenants repository.TenantRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			slug := resolveSlug(c)
			if slug == "" {
				log.Warn("No tenant candidate on request", zap.String("kind", "missing_tenant"))
				prometheus.RecordAuthError("missing_tenant")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant could not be determined"})
			}

			tenant, err := tenants.GetBySlug(c.Request().Context(), slug)
			if err != nil {
				if errors.Is(err, repository.ErrTenantNotFound) {
					log.Warn("Unknown tenant", zap.String("kind", "unknown_tenant"), zap.String("slug", slug))
					prometheus.RecordAuthError("unknown_tenant")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown tenant"})
				}
				log.Error("Tenant lookup failed", zap.String("kind", "store_unavailable"), zap.Error(err))
				prometheus.RecordAuthError("store_unavailable")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			c.Set(TenantSlugKey, tenant.Slug)
			c.Set(TenantKey, tenant)
			prometheus.RecordTenantOperation("resolve")

			// Downstream log lines carry the tenant
			logger.WithContext(c, log.With(zap.String("tenant", tenant.Slug)))

			return next(c)
		}
	}
}

// resolveSlug returns the first non-empty tenant candidate. No merging across
// sources: a bogus header loses to nothing, even when the path names a valid
// tenant.
func resolveSlug(c echo.Context) string {
	if slug := c.Request().Header.Get(TenantHeader); slug != "" {
		return slug
	}

	if slug, ok := c.Get(tenantPathSlugKey).(string); ok && slug != "" {
		return slug
	}

	host := c.Request().Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}

	return ""
}

// GetTenant retrieves the resolved tenant record from the echo context
func GetTenant(c echo.Context) (*model.Tenant, bool) {
	tenant, ok := c.Get(TenantKey).(*model.Tenant)
	return tenant, ok
}

// GetTenantSlug retrieves the resolved tenant slug from the echo context
func GetTenantSlug(c echo.Context) string {
	if slug, ok := c.Get(TenantSlugKey).(string); ok {
		return slug
	}
	return ""
}
