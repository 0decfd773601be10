package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/database/models"
)

// WebhookTokenHeader carries the shared secret on webhook deliveries.
const WebhookTokenHeader = "X-Webhook-Token"

// WebhookEvent is the push event payload the VCS (or the ssb-tool
// simulator) delivers.
type WebhookEvent struct {
	Repository string `json:"repository"`
	Ref        string `json:"ref"`
	Commit     string `json:"commit,omitempty"`
	Pusher     string `json:"pusher,omitempty"`
}

// webhookHandler handles POST /api/v1/webhook: a push to a branch with
// planned builds re-plans them so their plan output reflects the new HEAD.
func (s *Server) webhookHandler(c *gin.Context) {
	if secret := s.config.Webhook.Secret; secret != "" {
		if c.GetHeader(WebhookTokenHeader) != secret {
			SendError(c, NewAPIError(http.StatusUnauthorized, "Unauthorized", "Invalid webhook token"))
			return
		}
	}

	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "Invalid webhook payload"))
		return
	}

	branch := strings.TrimPrefix(event.Ref, "refs/heads/")
	s.logger.Info("webhook received",
		zap.String("repository", event.Repository),
		zap.String("branch", branch),
		zap.String("commit", event.Commit))

	builds, err := s.buildRepo.GetByBranch(branch)
	if err != nil {
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to look up builds"))
		return
	}

	replanned := 0
	for i := range builds {
		build := &builds[i]
		if build.Status != models.StatusPlanned {
			continue
		}

		output, err := s.atlantis.Plan(c.Request.Context(), s.atlantisRequest())
		status := models.StatusPlanned
		result := string(output)
		if err != nil {
			s.logger.Error("replan failed", zap.String("build", build.ID.String()), zap.Error(err))
			status = models.StatusFailed
			result = err.Error()
		}
		if err := s.buildRepo.SetPlanOutput(build.ID, status, result); err != nil {
			s.logger.Error("failed to record replan result", zap.String("build", build.ID.String()), zap.Error(err))
			continue
		}
		if status == models.StatusPlanned {
			replanned++
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"branch":    branch,
		"replanned": replanned,
	})
}
