package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type settingsRequest struct {
	DefaultTags *[]string `json:"default_tags"`
	UserPersona *string   `json:"user_persona"`
	Schedule    *string   `json:"schedule"`
}

// GetSettings
// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, s)
}

// UpdateSettings applies only the fields present in the body
// PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalid("invalid request body: %v", err))
		return
	}

	ctx := c.Request.Context()
	s, err := h.store.GetSettings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.DefaultTags != nil {
		s.DefaultTags = cleanTags(*req.DefaultTags)
	}
	if req.UserPersona != nil {
		s.UserPersona = strings.TrimSpace(*req.UserPersona)
	}
	if req.Schedule != nil {
		spec := strings.TrimSpace(*req.Schedule)
		if _, err := cron.ParseStandard(spec); err != nil {
			respondError(c, invalid("invalid schedule %q: %v", spec, err))
			return
		}
		s.Schedule = spec
	}

	if err := h.store.UpdateSettings(ctx, s); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, s)
}
