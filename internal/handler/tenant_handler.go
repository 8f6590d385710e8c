package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/internal/middleware"
	"github.com/suteetoe/saasbase/internal/model"
	"github.com/suteetoe/saasbase/pkg/database"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

// GetTenantConfig returns the resolved tenant's branding configuration
func GetTenantConfig(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("config_read")

	tenant, ok := middleware.GetTenant(c)
	if !ok {
		log.Error("Tenant config read without resolved tenant")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"slug":     tenant.Slug,
		"name":     tenant.Name,
		"branding": tenant.Branding,
	})
}

// UpdateTenantConfig persists new branding for the resolved tenant and echoes
// the stored configuration. Routed behind the admin role guard.
func UpdateTenantConfig(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("config_update")

	tenant, ok := middleware.GetTenant(c)
	if !ok {
		log.Error("Tenant config update without resolved tenant")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	var req struct {
		Name     *string         `json:"name"`
		Branding *model.Branding `json:"branding"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant config update", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Branding != nil {
		updates["branding_logo_glyph"] = req.Branding.LogoGlyph
		updates["branding_primary_color"] = req.Branding.PrimaryColor
		updates["branding_secondary_color"] = req.Branding.SecondaryColor
		updates["branding_accent_color"] = req.Branding.AccentColor
		updates["branding_font_family"] = req.Branding.FontFamily
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no configuration fields provided"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&model.Tenant{}).Where("id = ?", tenant.ID).Updates(updates).Error; err != nil {
		log.Error("Failed to update tenant config", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tenant configuration"})
	}

	// Re-read so the response reflects exactly what was stored
	var updated model.Tenant
	if err := database.GetDB().First(&updated, tenant.ID).Error; err != nil {
		log.Error("Failed to reload tenant after update", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	log.Info("Tenant config updated", zap.String("slug", updated.Slug))

	return c.JSON(http.StatusOK, echo.Map{
		"slug":     updated.Slug,
		"name":     updated.Name,
		"branding": updated.Branding,
	})
}
