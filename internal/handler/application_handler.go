package handler

import (
	"fmt"
	"net/http"
	"time"

	"internship_portal/internal/middleware"
	"internship_portal/internal/model"
	"internship_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler handles application requests for students and admins
type ApplicationHandler struct {
	service service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(s service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: s}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req model.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	app, err := h.service.Apply(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	apps, err := h.service.ListApplications(c.Request.Context(), middleware.GetSession(c), model.ScopeOwn, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListAllApplications(c *gin.Context) {
	apps, err := h.service.ListApplications(c.Request.Context(), middleware.GetSession(c), model.ScopeAll, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	app, err := h.service.SetApplicationStatus(c.Request.Context(), middleware.GetSession(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) UpdateNotes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req model.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	app, err := h.service.UpdateApplicationNotes(c.Request.Context(), middleware.GetSession(c), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteApplication(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}

// ExportApplicationsCSV streams the admin listing as a CSV attachment
func (h *ApplicationHandler) ExportApplicationsCSV(c *gin.Context) {
	csvBuffer, err := h.service.ExportApplicationsCSV(c.Request.Context(), middleware.GetSession(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	fileName := fmt.Sprintf("applications_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterApplicationRoutes registers the student and admin application routes
func (h *ApplicationHandler) RegisterApplicationRoutes(rg *gin.RouterGroup, sessionMW, studentMW, adminMW gin.HandlerFunc) {
	appGroup := rg.Group("/applications", sessionMW)
	{
		appGroup.POST("", studentMW, h.Apply)
		appGroup.GET("", h.ListMyApplications)
	}

	adminGroup := rg.Group("/admin/applications", sessionMW, adminMW)
	{
		adminGroup.GET("", h.ListAllApplications)
		adminGroup.GET("/export/csv", h.ExportApplicationsCSV)
		adminGroup.PUT("/:id/status", h.SetStatus)
		adminGroup.PUT("/:id/notes", h.UpdateNotes)
		adminGroup.DELETE("/:id", h.DeleteApplication)
	}
}
