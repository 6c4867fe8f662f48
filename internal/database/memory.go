package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-career-hunter/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and the --memory dev mode.
// It copies values in and out so callers never share state with it.
type MemoryStore struct {
	mu       sync.Mutex
	jobs     map[string]*models.Job
	byLink   map[string]string
	targets  map[string]*models.Target
	settings *models.Settings
	hunt     models.HuntState
	logs     []*models.RunLog

	// Now is the clock used for timestamps; tests may replace it
	Now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*models.Job),
		byLink:  make(map[string]string),
		targets: make(map[string]*models.Target),
		Now:     time.Now,
	}
}

// ---------------- JOB OPERATIONS ----------------

func (m *MemoryStore) FindJobByLink(ctx context.Context, link string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLink[link]
	if !ok {
		return nil, models.ErrNotFound
	}
	job := *m.jobs[id]
	return &job, nil
}

func (m *MemoryStore) InsertJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byLink[job.Link]; exists {
		return models.ErrDuplicateLink
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.DetectedAt.IsZero() {
		job.DetectedAt = m.Now()
	}
	stored := *job
	m.jobs[job.ID] = &stored
	m.byLink[job.Link] = job.ID
	return nil
}

func (m *MemoryStore) ReassignJob(ctx context.Context, id, targetID, companyName string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	job.TargetID = targetID
	job.CompanyName = companyName
	job.IsFresh = true
	job.DetectedAt = m.Now()
	out := *job
	return &out, nil
}

func (m *MemoryStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *job
	return &out, nil
}

func (m *MemoryStore) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, int, error) {
	filter = filter.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Job
	company := strings.ToLower(filter.Company)
	for _, job := range m.jobs {
		if filter.TargetID != "" && job.TargetID != filter.TargetID {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(job.CompanyName), company) {
			continue
		}
		if filter.FreshOnly && !job.IsFresh {
			continue
		}
		matched = append(matched, *job)
	}
	sortJobs(matched)

	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (m *MemoryStore) JobsSince(ctx context.Context, since time.Time) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, job := range m.jobs {
		if !job.DetectedAt.Before(since) {
			out = append(out, *job)
		}
	}
	sortJobs(out)
	return out, nil
}

func (m *MemoryStore) MarkJobViewed(ctx context.Context, id string) error {
	return m.updateJob(id, func(j *models.Job) { j.IsFresh = false })
}

func (m *MemoryStore) SetJobStarred(ctx context.Context, id string, starred bool) error {
	return m.updateJob(id, func(j *models.Job) { j.IsStarred = starred })
}

func (m *MemoryStore) DeleteJob(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(m.byLink, job.Link)
	delete(m.jobs, id)
	return nil
}

func (m *MemoryStore) updateJob(id string, fn func(*models.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return models.ErrNotFound
	}
	fn(job)
	return nil
}

func sortJobs(jobs []models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].DetectedAt.Equal(jobs[j].DetectedAt) {
			return jobs[i].Link < jobs[j].Link
		}
		return jobs[i].DetectedAt.After(jobs[j].DetectedAt)
	})
}

// ---------------- TARGET OPERATIONS ----------------

func (m *MemoryStore) ListTargets(ctx context.Context) ([]models.Target, error) {
	return m.listTargets(false), nil
}

func (m *MemoryStore) ListActiveTargets(ctx context.Context) ([]models.Target, error) {
	return m.listTargets(true), nil
}

func (m *MemoryStore) listTargets(activeOnly bool) []models.Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Target
	for _, t := range m.targets {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, copyTarget(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *MemoryStore) GetTarget(ctx context.Context, id string) (*models.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := copyTarget(t)
	return &out, nil
}

func (m *MemoryStore) CreateTarget(ctx context.Context, t *models.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(t.Name, "") {
		return models.ErrDuplicateName
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := m.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	stored := copyTarget(t)
	m.targets[t.ID] = &stored
	return nil
}

func (m *MemoryStore) UpdateTarget(ctx context.Context, t *models.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.targets[t.ID]
	if !ok {
		return models.ErrNotFound
	}
	if m.nameTaken(t.Name, t.ID) {
		return models.ErrDuplicateName
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = m.Now()
	stored := copyTarget(t)
	m.targets[t.ID] = &stored
	return nil
}

// DeleteTarget removes the target and orphans its jobs
func (m *MemoryStore) DeleteTarget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.targets, id)
	for _, job := range m.jobs {
		if job.TargetID == id {
			job.TargetID = ""
		}
	}
	return nil
}

func (m *MemoryStore) nameTaken(name, exceptID string) bool {
	for id, t := range m.targets {
		if id != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func copyTarget(t *models.Target) models.Target {
	out := *t
	out.URLs = append([]string(nil), t.URLs...)
	out.CustomTags = append([]string(nil), t.CustomTags...)
	return out
}

// ---------------- SETTINGS / HUNT STATE ----------------

func (m *MemoryStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		s := models.DefaultSettings()
		s.UpdatedAt = m.Now()
		m.settings = &s
	}
	out := *m.settings
	out.DefaultTags = append([]string(nil), m.settings.DefaultTags...)
	return &out, nil
}

func (m *MemoryStore) UpdateSettings(ctx context.Context, s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = m.Now()
	stored := *s
	stored.DefaultTags = append([]string(nil), s.DefaultTags...)
	m.settings = &stored
	return nil
}

func (m *MemoryStore) GetHuntState(ctx context.Context) (*models.HuntState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.hunt
	return &out, nil
}

func (m *MemoryStore) SetHuntActive(ctx context.Context, active bool) (*models.HuntState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hunt.IsActive = active
	out := m.hunt
	return &out, nil
}

func (m *MemoryStore) MarkHuntRun(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hunt.LastRunAt = &at
	return nil
}

// ---------------- RUN LOG OPERATIONS ----------------

func (m *MemoryStore) CreateRunLog(ctx context.Context, l *models.RunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	m.logs = append(m.logs, copyLog(l))
	return nil
}

func (m *MemoryStore) UpdateRunLog(ctx context.Context, l *models.RunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.logs {
		if existing.ID == l.ID {
			m.logs[i] = copyLog(l)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *MemoryStore) LatestRunLogs(ctx context.Context, limit int) ([]models.RunLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sortedLogs()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) RunLogsSince(ctx context.Context, since time.Time) ([]models.RunLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RunLog
	for _, l := range m.sortedLogs() {
		if !l.BatchTime.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

// sortedLogs returns newest first; caller holds mu
func (m *MemoryStore) sortedLogs() []models.RunLog {
	out := make([]models.RunLog, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0; i-- {
		out = append(out, *copyLog(m.logs[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BatchTime.After(out[j].BatchTime) })
	return out
}

func copyLog(l *models.RunLog) *models.RunLog {
	out := *l
	out.Errors = append([]models.CrawlError(nil), l.Errors...)
	return &out
}
