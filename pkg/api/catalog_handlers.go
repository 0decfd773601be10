package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/validator"
)

// catalogHandler handles GET /api/v1/catalog
func (s *Server) catalogHandler(c *gin.Context) {
	cat, err := s.catalogSvc.Snapshot(c.Request.Context())
	if err != nil {
		SendError(c, NewAPIError(http.StatusServiceUnavailable, "Service Unavailable", "Failed to load resource catalog"))
		return
	}
	if cat == nil {
		SendError(c, NewAPIError(http.StatusServiceUnavailable, "Service Unavailable", "No catalog snapshot available"))
		return
	}
	SendSuccess(c, http.StatusOK, cat)
}

// ValidateResponse reports the outcome of every check run against a request.
type ValidateResponse struct {
	Valid    bool              `json:"valid"`
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
}

// validateHandler handles POST /api/v1/validate: run the existence,
// default-pool, and capacity checks without creating anything.
func (s *Server) validateHandler(c *gin.Context) {
	var req catalog.VMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Invalid request body"))
		return
	}

	cat, err := s.catalogSvc.Snapshot(c.Request.Context())
	if err != nil {
		SendError(c, NewAPIError(http.StatusServiceUnavailable, "Service Unavailable", "Failed to load resource catalog"))
		return
	}
	if cat == nil {
		SendError(c, NewAPIError(http.StatusServiceUnavailable, "Service Unavailable", "No catalog snapshot available"))
		return
	}

	valid, errs := validator.VerifyResourcesExist(cat, &req)
	_, warnings := validator.CheckCapacity(cat, &req)
	if sel := req.Selection; sel != nil && sel.ResourcePoolID != "" {
		if isDefault, msg := validator.IsDefaultPool(cat, sel.ResourcePoolID); !isDefault && msg != "" {
			warnings["default_pool"] = msg
		}
	}

	SendSuccess(c, http.StatusOK, ValidateResponse{
		Valid:    valid,
		Errors:   errs,
		Warnings: warnings,
	})
}
