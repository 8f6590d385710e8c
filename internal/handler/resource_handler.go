package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/internal/middleware"
	"github.com/suteetoe/saasbase/internal/model"
	"github.com/suteetoe/saasbase/pkg/database"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListResources returns the resolved tenant's resources, paginated. Every
// query is scoped by the tenant id set during resolution; rows belonging to
// other tenants are unreachable from here for any page/limit combination.
func ListResources(c echo.Context) error {
	log := logger.FromContext(c)

	tenant, ok := middleware.GetTenant(c)
	if !ok {
		log.Error("Resource listing without resolved tenant")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	db := database.GetDB()

	var total int64
	if err := db.Model(&model.Resource{}).Where("tenant_id = ?", tenant.ID).Count(&total).Error; err != nil {
		log.Error("Failed to count resources", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve resources"})
	}

	var resources []model.Resource
	if err := db.Where("tenant_id = ?", tenant.ID).Order("id").Offset((page - 1) * limit).Limit(limit).Find(&resources).Error; err != nil {
		log.Error("Failed to list resources", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve resources"})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	log.Info("Resources listed",
		zap.Int("count", len(resources)),
		zap.Int("page", page),
		zap.Int64("total", total))

	return c.JSON(http.StatusOK, echo.Map{
		"resources": resources,
		"meta": echo.Map{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// CreateResource creates a resource under the resolved tenant
func CreateResource(c echo.Context) error {
	log := logger.FromContext(c)

	tenant, ok := middleware.GetTenant(c)
	if !ok {
		log.Error("Resource creation without resolved tenant")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse resource creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	resource := model.Resource{
		TenantID:    tenant.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if claims, ok := middleware.GetClaims(c); ok {
		resource.CreatedBy = claims.UserID
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&resource).Error; err != nil {
		log.Error("Failed to create resource", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create resource"})
	}

	log.Info("Resource created",
		zap.Uint("id", resource.ID),
		zap.String("name", resource.Name))

	return c.JSON(http.StatusCreated, echo.Map{"resource": resource})
}
