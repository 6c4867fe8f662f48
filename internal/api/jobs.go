package api

import (
	"fmt"
	"net/http"
	"time"

	"go-career-hunter/internal/database"
	"go-career-hunter/internal/models"

	"github.com/gin-gonic/gin"
)

// MorningBriefWindow is how far back the morning brief looks
const MorningBriefWindow = 12 * time.Hour

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListJobs
// GET /api/jobs?page=&limit=&target_id=&company=&fresh=true
func (h *Handler) ListJobs(c *gin.Context) {
	filter := database.JobFilter{
		TargetID:  c.Query("target_id"),
		Company:   c.Query("company"),
		FreshOnly: c.Query("fresh") == "true",
		Page:      parseIntQuery(c, "page", 1),
		Limit:     parseIntQuery(c, "limit", database.DefaultPageSize),
	}.Normalize()

	jobs, total, err := h.store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	respondOK(c, gin.H{
		"jobs": jobs,
		"pagination": pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: (total + filter.Limit - 1) / filter.Limit,
		},
	})
}

// MorningBrief lists postings detected in the last 12 hours grouped by company
// GET /api/jobs/morning-brief
func (h *Handler) MorningBrief(c *gin.Context) {
	jobs, err := h.store.JobsSince(c.Request.Context(), h.now().Add(-MorningBriefWindow))
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	byCompany := make(map[string][]models.Job)
	for _, job := range jobs {
		byCompany[job.CompanyName] = append(byCompany[job.CompanyName], job)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("☀️ Good morning! Found %d new jobs while you slept.", len(jobs)),
		"data": gin.H{
			"total_jobs": len(jobs),
			"companies":  len(byCompany),
			"jobs":       jobs,
			"by_company": byCompany,
		},
	})
}

// GetJob
// GET /api/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, job)
}

// MarkJobViewed clears the fresh flag
// PATCH /api/jobs/:id/mark-viewed
func (h *Handler) MarkJobViewed(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.MarkJobViewed(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.respondJob(c, id)
}

type starRequest struct {
	IsStarred *bool `json:"is_starred" binding:"required"`
}

// StarJob
// PATCH /api/jobs/:id/star
func (h *Handler) StarJob(c *gin.Context) {
	var req starRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalid("is_starred is required"))
		return
	}

	id := c.Param("id")
	if err := h.store.SetJobStarred(c.Request.Context(), id, *req.IsStarred); err != nil {
		respondError(c, err)
		return
	}
	h.respondJob(c, id)
}

// DeleteJob
// DELETE /api/jobs/:id
func (h *Handler) DeleteJob(c *gin.Context) {
	if err := h.store.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job deleted"})
}

func (h *Handler) respondJob(c *gin.Context, id string) {
	job, err := h.store.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, job)
}
