package database

import (
	"context"
	"time"

	"go-career-hunter/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// JobFilter narrows ListJobs. Company is a case-insensitive substring.
type JobFilter struct {
	TargetID  string
	Company   string
	FreshOnly bool
	Page      int
	Limit     int
}

// Normalize clamps paging to sane values
func (f JobFilter) Normalize() JobFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f JobFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Store is everything the service persists. Repository (Postgres) and
// MemoryStore both implement it.
type Store interface {
	FindJobByLink(ctx context.Context, link string) (*models.Job, error)
	InsertJob(ctx context.Context, job *models.Job) error
	ReassignJob(ctx context.Context, id, targetID, companyName string) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, int, error)
	JobsSince(ctx context.Context, since time.Time) ([]models.Job, error)
	MarkJobViewed(ctx context.Context, id string) error
	SetJobStarred(ctx context.Context, id string, starred bool) error
	DeleteJob(ctx context.Context, id string) error

	ListTargets(ctx context.Context) ([]models.Target, error)
	ListActiveTargets(ctx context.Context) ([]models.Target, error)
	GetTarget(ctx context.Context, id string) (*models.Target, error)
	CreateTarget(ctx context.Context, t *models.Target) error
	UpdateTarget(ctx context.Context, t *models.Target) error
	DeleteTarget(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, s *models.Settings) error

	GetHuntState(ctx context.Context) (*models.HuntState, error)
	SetHuntActive(ctx context.Context, active bool) (*models.HuntState, error)
	MarkHuntRun(ctx context.Context, at time.Time) error

	CreateRunLog(ctx context.Context, l *models.RunLog) error
	UpdateRunLog(ctx context.Context, l *models.RunLog) error
	LatestRunLogs(ctx context.Context, limit int) ([]models.RunLog, error)
	RunLogsSince(ctx context.Context, since time.Time) ([]models.RunLog, error)
}
