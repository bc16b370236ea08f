package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"carwash-kiosk-backend/internal/auth"
	"carwash-kiosk-backend/internal/model"
	"carwash-kiosk-backend/internal/store"
)

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles POST /api/admin/login.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.verifier.Login(req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrLocked) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RequireAdmin is the middleware gating the admin endpoints.
func (h *Handler) RequireAdmin(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" || h.verifier.Verify(token) != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// AdminListServices handles GET /api/admin/services: the full catalog,
// including disabled entries.
func (h *Handler) AdminListServices(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Services())
}

type serviceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
	Type        string  `json:"type"`
	Enabled     *bool   `json:"enabled"`
}

func (r *serviceRequest) toService() store.Service {
	svc := store.Service{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Duration:    r.Duration,
		Status:      store.StatusAvailable,
		Type:        store.ServiceType(r.Type),
		Enabled:     true,
	}
	if svc.Type == "" {
		svc.Type = store.TypeOther
	}
	if r.Enabled != nil {
		svc.Enabled = *r.Enabled
	}
	return svc
}

// AdminCreateService handles POST /api/admin/services.
func (h *Handler) AdminCreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	added, err := h.store.AddService(c.Request.Context(), req.toService())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, added)
}

// AdminUpdateService handles PUT /api/admin/services/:id.
func (h *Handler) AdminUpdateService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}
	existing, ok := h.store.Service(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	svc := req.toService()
	svc.ID = id
	svc.Status = existing.Status
	h.store.UpdateService(c.Request.Context(), svc)
	c.JSON(http.StatusOK, svc)
}

// AdminDeleteService handles DELETE /api/admin/services/:id.
func (h *Handler) AdminDeleteService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}
	h.store.RemoveService(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// AdminToggleService handles POST /api/admin/services/:id/toggle.
func (h *Handler) AdminToggleService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}
	h.store.ToggleServiceEnabled(c.Request.Context(), id)
	svc, ok := h.store.Service(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// AdminToggleMaintenance handles POST /api/admin/maintenance.
func (h *Handler) AdminToggleMaintenance(c *gin.Context) {
	mode := h.store.ToggleMaintenanceMode(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"maintenance_mode": mode})
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

// AdminUpdatePassword handles PUT /api/admin/password. The non-empty check
// lives here, not in the store.
func (h *Handler) AdminUpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password cannot be empty"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}
	h.store.UpdateAdminPasswordHash(c.Request.Context(), hash)
	c.Status(http.StatusNoContent)
}

// AdminUpdateHeader handles PUT /api/admin/header.
func (h *Handler) AdminUpdateHeader(c *gin.Context) {
	var cfg store.HeaderConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.SetHeaderConfig(c.Request.Context(), cfg)
	c.JSON(http.StatusOK, cfg)
}

// AdminGetLogs handles GET /api/admin/logs?limit=.
func (h *Handler) AdminGetLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	var logs []model.SessionLog
	if err := h.db.WithContext(c.Request.Context()).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
