package handler

import (
	"net/http"

	"internship_portal/internal/middleware"
	"internship_portal/internal/model"
	"internship_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles the caller's own profile
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterUserRoutes registers profile routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	userGroup := rg.Group("/users", sessionMW)
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateMe)
	}
}
