package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash-kiosk-backend/internal/devicelink"
)

type sendCommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// AdminSendCommand handles POST /api/admin/device/command: test-mode
// command injection. The command string is relayed without validation.
func (h *Handler) AdminSendCommand(c *gin.Context) {
	var req sendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.link.SendCommand(c.Request.Context(), req.Command); err != nil {
		var cmdErr *devicelink.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Kind == devicelink.KindRejected {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cmdErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send command"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": h.link.Messages()})
}

// AdminReconnect handles POST /api/admin/device/reconnect.
func (h *Handler) AdminReconnect(c *gin.Context) {
	if err := h.link.Reconnect(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"connection_status": h.link.Status(),
			"error":             h.link.LastError(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection_status": h.link.Status()})
}
