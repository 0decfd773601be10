package api

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ssbops/ssb-build-server/pkg/terraform"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Database  string    `json:"database"`
}

// healthHandler handles health check requests
func (s *Server) healthHandler(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := s.db.DB.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error"
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Database:  dbStatus,
	}

	if dbStatus != "ok" {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool              `json:"ready"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// readinessHandler handles readiness check requests
func (s *Server) readinessHandler(c *gin.Context) {
	services := make(map[string]string)
	allReady := true

	if sqlDB, err := s.db.DB.DB(); err != nil {
		services["database"] = "not ready"
		allReady = false
	} else if err := sqlDB.Ping(); err != nil {
		services["database"] = "not ready"
		allReady = false
	} else {
		services["database"] = "ready"
	}

	if err := s.catalogSvc.Ping(c.Request.Context()); err != nil {
		services["redis"] = "not ready"
		allReady = false
	} else {
		services["redis"] = "ready"
	}

	response := ReadinessResponse{
		Ready:     allReady,
		Timestamp: time.Now(),
		Services:  services,
	}

	statusCode := http.StatusOK
	if !allReady {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// VersionResponse represents the version information response
type VersionResponse struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

// versionHandler handles version information requests
func (s *Server) versionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
	})
}

// LoginRequest represents the session creation request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginHandler handles POST /api/v1/sessions
func (s *Server) loginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Username and password are required"))
		return
	}

	token, err := s.authSvc.Authenticate(req.Username, req.Password)
	if err != nil {
		SendError(c, NewAPIError(http.StatusUnauthorized, "Unauthorized", "Invalid username or password"))
		return
	}

	SendSuccess(c, http.StatusOK, gin.H{"token": token})
}

// listConfigsHandler handles GET /api/v1/configs
func (s *Server) listConfigsHandler(c *gin.Context) {
	names, err := s.store.List()
	if err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to list configs"))
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"configs": names, "total": len(names)})
}

// CopyConfigRequest represents the config copy request body
type CopyConfigRequest struct {
	Destination string `json:"destination" binding:"required"`
}

// copyConfigHandler handles POST /api/v1/configs/{name}/copy
func (s *Server) copyConfigHandler(c *gin.Context) {
	var req CopyConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Destination name is required"))
		return
	}

	src := c.Param("name")
	if err := s.store.Copy(src, req.Destination); err != nil {
		if errors.Is(err, terraform.ErrNotFound) {
			SendError(c, NewAPIError(http.StatusNotFound, "Not Found", "Config not found"))
			return
		}
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to copy config"))
		return
	}

	SendSuccess(c, http.StatusCreated, gin.H{"source": src, "destination": req.Destination})
}
