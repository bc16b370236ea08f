package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash-kiosk-backend/internal/store"
)

// serviceResponse is one catalog entry with its derived countdown state.
type serviceResponse struct {
	store.Service
	TimeRemaining int `json:"timeRemaining"`
}

// GetServices handles GET /api/services: the enabled services shown on the
// selection grid, with remaining time taken from the running timer map.
func (h *Handler) GetServices(c *gin.Context) {
	services := h.store.EnabledServices()

	response := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		remaining := svc.Duration
		if secs, ok := h.store.ServiceTimer(svc.ID); ok {
			remaining = secs
		}
		response = append(response, serviceResponse{Service: svc, TimeRemaining: remaining})
	}
	c.JSON(http.StatusOK, response)
}

// GetStatus handles GET /api/status: device link state, maintenance flag
// and header config for the kiosk shell.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connection_status": h.link.Status(),
		"error":             h.link.LastError(),
		"maintenance_mode":  h.store.MaintenanceMode(),
		"header_config":     h.store.HeaderConfig(),
	})
}
