package api

import (
	"net/http"
	"strconv"
	"time"

	"go-career-hunter/internal/database"
	"go-career-hunter/internal/scheduler"
	"go-career-hunter/utils"

	"github.com/gin-gonic/gin"
)

// Hunter is the scheduler surface the API drives
type Hunter interface {
	Trigger() error
	Status() scheduler.Status
	TimeUntilNext() (time.Duration, bool)
	Stop()
	Start()
}

type Handler struct {
	store  database.Store
	hunter Hunter
	loc    *time.Location
	now    func() time.Time
}

func NewHandler(store database.Store, hunter Hunter, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{store: store, hunter: hunter, loc: loc, now: time.Now}
}

// HealthCheck
// GET /api/health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "healthy",
		"timestamp": h.now(),
	})
}

// StartHunt activates scheduled crawling
// POST /api/hunt/start
func (h *Handler) StartHunt(c *gin.Context) {
	state, err := h.store.SetHuntActive(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "🌙 Night Hunt activated!",
		"data": gin.H{
			"is_active":   state.IsActive,
			"next_run_in": h.nextRunIn(state.IsActive),
		},
	})
}

// StopHunt deactivates scheduled crawling; fire-times stay registered
// POST /api/hunt/stop
func (h *Handler) StopHunt(c *gin.Context) {
	state, err := h.store.SetHuntActive(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "💤 Night Hunt deactivated.",
		"data":    gin.H{"is_active": state.IsActive},
	})
}

// TriggerHunt starts a manual batch in the background
// POST /api/hunt/trigger
func (h *Handler) TriggerHunt(c *gin.Context) {
	if err := h.hunter.Trigger(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "🚀 Manual crawl triggered! Check logs for progress.",
	})
}

// HuntStatus
// GET /api/hunt/status
func (h *Handler) HuntStatus(c *gin.Context) {
	state, err := h.store.GetHuntState(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	targets, err := h.store.ListActiveTargets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"is_active":            state.IsActive,
		"is_currently_running": h.hunter.Status().Running,
		"last_run_at":          state.LastRunAt,
		"active_targets":       len(targets),
		"next_run_in":          h.nextRunIn(state.IsActive),
		"scheduler":            h.hunter.Status(),
	})
}

// PauseScheduler stops fire-times without touching the hunt flag
// POST /api/scheduler/pause
func (h *Handler) PauseScheduler(c *gin.Context) {
	h.hunter.Stop()
	respondOK(c, h.hunter.Status())
}

// ResumeScheduler
// POST /api/scheduler/resume
func (h *Handler) ResumeScheduler(c *gin.Context) {
	h.hunter.Start()
	respondOK(c, h.hunter.Status())
}

func (h *Handler) nextRunIn(active bool) string {
	if !active {
		return "N/A (hunt not active)"
	}
	d, ok := h.hunter.TimeUntilNext()
	if !ok {
		return "N/A (scheduler paused)"
	}
	return utils.FormatDuration(d)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
