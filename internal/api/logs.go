package api

import (
	"time"

	"go-career-hunter/internal/models"

	"github.com/gin-gonic/gin"
)

type logsSummary struct {
	TotalBatches     int `json:"total_batches"`
	TotalJobsFound   int `json:"total_jobs_found"`
	TotalErrors      int `json:"total_errors"`
	TotalURLsScanned int `json:"total_urls_scanned"`
}

func summarize(logs []models.RunLog) logsSummary {
	s := logsSummary{TotalBatches: len(logs)}
	for _, l := range logs {
		s.TotalJobsFound += l.JobsFound
		s.TotalErrors += len(l.Errors)
		s.TotalURLsScanned += l.URLsScanned
	}
	return s
}

// ListLogs returns the most recent run logs
// GET /api/logs?limit=10
func (h *Handler) ListLogs(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)
	if limit < 1 || limit > 100 {
		respondError(c, invalid("limit must be between 1 and 100"))
		return
	}
	logs, err := h.store.LatestRunLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.RunLog{}
	}
	respondOK(c, gin.H{"logs": logs})
}

// TodayLogs returns logs since local midnight with totals
// GET /api/logs/today
func (h *Handler) TodayLogs(c *gin.Context) {
	now := h.now().In(h.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)

	logs, err := h.store.RunLogsSince(c.Request.Context(), midnight)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.RunLog{}
	}
	respondOK(c, gin.H{"summary": summarize(logs), "logs": logs})
}
