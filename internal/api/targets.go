package api

import (
	"context"
	"net/http"
	"strings"

	"go-career-hunter/internal/database"
	"go-career-hunter/internal/models"
	"go-career-hunter/utils"

	"github.com/gin-gonic/gin"
)

type targetResponse struct {
	models.Target
	NewJobsCount int `json:"new_jobs_count"`
}

type targetRequest struct {
	Name          *string   `json:"name"`
	URLs          *[]string `json:"urls"`
	CustomTags    *[]string `json:"custom_tags"`
	CustomPersona *string   `json:"custom_persona"`
	LogoURL       *string   `json:"logo_url"`
	IsActive      *bool     `json:"is_active"`
}

// apply copies the set fields onto t and validates the result
func (r targetRequest) apply(t *models.Target) error {
	if r.Name != nil {
		t.Name = strings.TrimSpace(*r.Name)
	}
	if r.URLs != nil {
		urls, err := normalizeURLs(*r.URLs)
		if err != nil {
			return err
		}
		t.URLs = urls
	}
	if r.CustomTags != nil {
		t.CustomTags = cleanTags(*r.CustomTags)
	}
	if r.CustomPersona != nil {
		t.CustomPersona = strings.TrimSpace(*r.CustomPersona)
	}
	if r.LogoURL != nil {
		t.LogoURL = strings.TrimSpace(*r.LogoURL)
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}

	if t.Name == "" {
		return invalid("name is required")
	}
	if len(t.URLs) == 0 {
		return invalid("at least one url is required")
	}
	return nil
}

func normalizeURLs(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string
	for _, u := range raw {
		if strings.TrimSpace(u) == "" {
			continue
		}
		normalized, err := utils.NormalizeURL(u)
		if err != nil {
			return nil, invalid("%v", err)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
	}
	return urls, nil
}

func cleanTags(raw []string) []string {
	tags := []string{}
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ListTargets returns every target with its count of fresh postings
// GET /api/targets
func (h *Handler) ListTargets(c *gin.Context) {
	ctx := c.Request.Context()
	targets, err := h.store.ListTargets(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		count, err := h.freshCount(ctx, t.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, targetResponse{Target: t, NewJobsCount: count})
	}
	respondOK(c, out)
}

func (h *Handler) freshCount(ctx context.Context, targetID string) (int, error) {
	_, total, err := h.store.ListJobs(ctx, database.JobFilter{TargetID: targetID, FreshOnly: true, Limit: 1})
	return total, err
}

// GetTarget
// GET /api/targets/:id
func (h *Handler) GetTarget(c *gin.Context) {
	t, err := h.store.GetTarget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, t)
}

// CreateTarget
// POST /api/targets
func (h *Handler) CreateTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalid("invalid request body: %v", err))
		return
	}

	t := &models.Target{IsActive: true, CustomTags: []string{}}
	if err := req.apply(t); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.CreateTarget(c.Request.Context(), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": t})
}

// UpdateTarget applies only the fields present in the body
// PUT /api/targets/:id
func (h *Handler) UpdateTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalid("invalid request body: %v", err))
		return
	}

	ctx := c.Request.Context()
	t, err := h.store.GetTarget(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := req.apply(t); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.UpdateTarget(ctx, t); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, t)
}

// DeleteTarget removes the target; its postings are kept as orphans
// DELETE /api/targets/:id
func (h *Handler) DeleteTarget(c *gin.Context) {
	if err := h.store.DeleteTarget(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Target deleted"})
}
