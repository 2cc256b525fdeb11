package handler

import (
	"net/http"

	"internship_portal/internal/middleware"
	"internship_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard: user listing and stats
type AdminHandler struct {
	users service.UserService
	stats service.StatsService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(users service.UserService, stats service.StatsService) *AdminHandler {
	return &AdminHandler{users: users, stats: stats}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RegisterAdminRoutes registers the admin dashboard routes
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, sessionMW, adminMW gin.HandlerFunc) {
	adminGroup := rg.Group("/admin", sessionMW, adminMW)
	{
		adminGroup.GET("/users", h.ListUsers)
		adminGroup.GET("/stats", h.GetStats)
	}
}
