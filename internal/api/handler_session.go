package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash-kiosk-backend/internal/devicelink"
	"carwash-kiosk-backend/internal/session"
)

type selectServiceRequest struct {
	ServiceID int `json:"service_id" binding:"required"`
}

// SelectService handles POST /api/session/select: opens the payment flow.
func (h *Handler) SelectService(c *gin.Context) {
	var req selectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Select(c.Request.Context(), req.ServiceID); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, session.ErrMaintenanceMode), errors.Is(err, session.ErrServiceUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, h.sessions.Snapshot())
}

// ConfirmSession handles POST /api/session/confirm: the user pressed START.
func (h *Handler) ConfirmSession(c *gin.Context) {
	if err := h.sessions.ConfirmStart(c.Request.Context()); err != nil {
		var cmdErr *devicelink.CommandError
		switch {
		case errors.Is(err, session.ErrNoSelection), errors.Is(err, session.ErrPaymentNotReceived):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &cmdErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": cmdErr.Message})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, h.sessions.Snapshot())
}

// CancelSession handles POST /api/session/cancel.
func (h *Handler) CancelSession(c *gin.Context) {
	h.sessions.Cancel(c.Request.Context())
	c.JSON(http.StatusOK, h.sessions.Snapshot())
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Snapshot())
}
