package handler

import (
	"net/http"

	"campusguide/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles data administration HTTP requests
type AdminHandler struct {
	recommendService *service.RecommendService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(recommendService *service.RecommendService) *AdminHandler {
	return &AdminHandler{recommendService: recommendService}
}

// ClearData handles DELETE /api/v1/data
func (h *AdminHandler) ClearData(c *gin.Context) {
	if err := h.recommendService.ClearData(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear data: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All college data cleared"})
}
