package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/internal/middleware"
	"github.com/suteetoe/saasbase/internal/model"
	"github.com/suteetoe/saasbase/pkg/database"
	"github.com/suteetoe/saasbase/pkg/jwtutil"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var jwtUtil *jwtutil.JWTUtil

// Init wires the handler package with its token utility
func Init(j *jwtutil.JWTUtil) {
	jwtUtil = j
}

// Login authenticates tenant-scoped credentials and issues a session token.
// The tenant is already resolved by the pipeline; the email is only looked up
// within that tenant, so the same address under another tenant cannot collide.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	tenant, ok := middleware.GetTenant(c)
	if !ok {
		log.Error("Login reached without resolved tenant")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("tenant_id = ? AND email = ?", tenant.ID, req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtUtil.GenerateToken(user.Email, user.ID, tenant.Slug, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
		"tenant": echo.Map{
			"slug":     tenant.Slug,
			"name":     tenant.Name,
			"branding": tenant.Branding,
		},
	})
}

// Me returns the authenticated identity from the verified claims
func Me(c echo.Context) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   claims.UserID,
		"email":     claims.Email,
		"tenant_id": claims.TenantID,
		"role":      claims.Role,
	})
}
