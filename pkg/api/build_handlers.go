package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ssbops/ssb-build-server/pkg/atlantis"
	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/database/models"
	"github.com/ssbops/ssb-build-server/pkg/validator"
)

// BuildResponse wraps a build record with any capacity warnings raised
// while it was created.
type BuildResponse struct {
	Build    *models.Build     `json:"build"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

// createBuildHandler handles POST /api/v1/builds: validate the request,
// generate the Terraform config, persist the build, and trigger a plan.
func (s *Server) createBuildHandler(c *gin.Context) {
	var req catalog.VMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Invalid build request body"))
		return
	}

	ctx := c.Request.Context()
	cat, err := s.catalogSvc.Snapshot(ctx)
	if err != nil {
		SendError(c, NewAPIError(http.StatusServiceUnavailable, "Service Unavailable", "Failed to load resource catalog"))
		return
	}

	cfg, err := s.generator.Generate(cat, &req)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			apiErr := NewAPIError(http.StatusUnprocessableEntity, "Validation Failed", valErr.Error())
			apiErr.Checks = valErr.Errors
			SendError(c, apiErr)
			return
		}
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", err.Error()))
		return
	}

	// Capacity problems are advisory; the build proceeds.
	var warnings map[string]string
	if cat != nil {
		if ok, w := validator.CheckCapacity(cat, &req); !ok {
			warnings = w
			s.logger.Warn("capacity warnings for build request",
				zap.String("vm", req.Name),
				zap.Any("warnings", w))
		}
		if sel := req.Selection; sel != nil {
			if isDefault, msg := validator.IsDefaultPool(cat, sel.ResourcePoolID); !isDefault && msg != "" {
				if warnings == nil {
					warnings = make(map[string]string)
				}
				warnings["default_pool"] = msg
			}
		}
	}

	path, err := s.store.Write(cfg)
	if err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to write VM config"))
		return
	}

	build := &models.Build{
		VMName:         req.Name,
		Branch:         s.config.Atlantis.Ref,
		Status:         models.StatusPlanning,
		NumCPUs:        req.NumCPUs,
		MemoryMB:       req.MemoryMB,
		DiskSizeGB:     req.TotalDiskGB(),
		ResourcePoolID: req.Selection.ResourcePoolID,
		DatastoreID:    req.Selection.DatastoreID,
		NetworkID:      req.Selection.NetworkID,
		TemplateUUID:   req.Selection.TemplateUUID,
		ConfigPath:     path,
	}
	if err := s.buildRepo.Create(build); err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to create build record"))
		return
	}

	output, err := s.atlantis.Plan(ctx, s.atlantisRequest())
	if err != nil {
		s.logger.Error("plan request failed", zap.String("build", build.ID.String()), zap.Error(err))
		if updateErr := s.buildRepo.SetPlanOutput(build.ID, models.StatusFailed, err.Error()); updateErr != nil {
			s.logger.Error("failed to record plan failure", zap.Error(updateErr))
		}
		SendError(c, NewAPIError(http.StatusBadGateway, "Bad Gateway", "Atlantis plan request failed"))
		return
	}

	if err := s.buildRepo.SetPlanOutput(build.ID, models.StatusPlanned, string(output)); err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to update build record"))
		return
	}

	build.Status = models.StatusPlanned
	build.PlanOutput = string(output)
	SendSuccess(c, http.StatusCreated, BuildResponse{Build: build, Warnings: warnings})
}

// applyBuildHandler handles POST /api/v1/builds/{build-id}/apply
func (s *Server) applyBuildHandler(c *gin.Context) {
	buildID, err := uuid.Parse(c.Param("build-id"))
	if err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Invalid build ID format"))
		return
	}

	build, err := s.buildRepo.GetByID(buildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			SendError(c, NewAPIError(http.StatusNotFound, "Not Found", "Build not found"))
		} else {
			SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve build"))
		}
		return
	}

	if build.Status != models.StatusPlanned {
		SendError(c, NewAPIError(http.StatusConflict, "Conflict", "Build must be planned before it can be applied"))
		return
	}

	if err := s.buildRepo.UpdateStatus(build.ID, models.StatusApplying); err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to update build record"))
		return
	}

	output, err := s.atlantis.Apply(c.Request.Context(), s.atlantisRequest())
	if err != nil {
		s.logger.Error("apply request failed", zap.String("build", build.ID.String()), zap.Error(err))
		if updateErr := s.buildRepo.SetApplyOutput(build.ID, models.StatusFailed, err.Error()); updateErr != nil {
			s.logger.Error("failed to record apply failure", zap.Error(updateErr))
		}
		SendError(c, NewAPIError(http.StatusBadGateway, "Bad Gateway", "Atlantis apply request failed"))
		return
	}

	if err := s.buildRepo.SetApplyOutput(build.ID, models.StatusApplied, string(output)); err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to update build record"))
		return
	}

	build.Status = models.StatusApplied
	build.ApplyOutput = string(output)
	SendSuccess(c, http.StatusOK, BuildResponse{Build: build})
}

// listBuildsHandler handles GET /api/v1/builds with page/page_size/sort
// query parameters.
func (s *Server) listBuildsHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("page_size", "25"))
	if err != nil || limit < 1 {
		limit = 25
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	total, err := s.buildRepo.Count()
	if err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to count builds"))
		return
	}

	builds, err := s.buildRepo.ListPage(limit, offset, c.Query("sort"))
	if err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to list builds"))
		return
	}

	SendSuccess(c, http.StatusOK, gin.H{
		"builds":    builds,
		"total":     total,
		"page":      page,
		"page_size": limit,
	})
}

// getBuildHandler handles GET /api/v1/builds/{build-id}
func (s *Server) getBuildHandler(c *gin.Context) {
	buildID, err := uuid.Parse(c.Param("build-id"))
	if err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Invalid build ID format"))
		return
	}

	build, err := s.buildRepo.GetByID(buildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			SendError(c, NewAPIError(http.StatusNotFound, "Not Found", "Build not found"))
		} else {
			SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve build"))
		}
		return
	}

	SendSuccess(c, http.StatusOK, BuildResponse{Build: build})
}

// atlantisRequest builds the plan/apply payload from the configured
// repository settings.
func (s *Server) atlantisRequest() *atlantis.Request {
	return &atlantis.Request{
		Repository: s.config.Atlantis.Repository,
		Ref:        s.config.Atlantis.Ref,
		Type:       s.config.Atlantis.Type,
		Paths: []atlantis.Path{{
			Directory: s.config.Atlantis.Directory,
			Workspace: s.config.Atlantis.Workspace,
		}},
	}
}
