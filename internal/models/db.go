package models

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by stores when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateLink is returned on insert when another job already owns the link
	ErrDuplicateLink = errors.New("job link already exists")

	// ErrDuplicateName is returned when a target name is already taken
	ErrDuplicateName = errors.New("target name already exists")
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

type TriggerType string

const (
	TriggerScheduled TriggerType = "scheduled"
	TriggerManual    TriggerType = "manual"
)

// Target is a company whose career pages get crawled
type Target struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	URLs          []string  `json:"urls"`
	CustomTags    []string  `json:"custom_tags"`
	CustomPersona string    `json:"custom_persona"`
	LogoURL       string    `json:"logo_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Job is a stored posting. Link is unique across all targets.
// TargetID is empty when the owning target was deleted (orphan).
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name"`
	TargetID    string    `json:"target_id,omitempty"`
	Link        string    `json:"link"`
	Location    string    `json:"location"`
	SourceURL   string    `json:"source_url"`
	DetectedAt  time.Time `json:"detected_at"`
	IsFresh     bool      `json:"is_fresh"`
	IsStarred   bool      `json:"is_starred"`
}

type CrawlError struct {
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RunLog records one batch attempt
type RunLog struct {
	ID          string        `json:"id"`
	BatchTime   time.Time     `json:"batch_time"`
	Status      RunStatus     `json:"status"`
	TriggerType TriggerType   `json:"trigger_type"`
	URLsScanned int           `json:"urls_scanned"`
	JobsFound   int           `json:"jobs_found"`
	Duration    time.Duration `json:"duration"`
	Errors      []CrawlError  `json:"errors"`
}

// AddError appends a crawl error stamped with the current time
func (l *RunLog) AddError(url, message string) {
	l.Errors = append(l.Errors, CrawlError{URL: url, Message: message, Timestamp: time.Now()})
}

// Settings holds the global crawl preferences
type Settings struct {
	DefaultTags []string  `json:"default_tags"`
	UserPersona string    `json:"user_persona"`
	Schedule    string    `json:"schedule"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HuntState is the persisted "hunting active" switch read by the scheduler
type HuntState struct {
	IsActive  bool       `json:"is_active"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

var (
	DefaultTags    = []string{"SDE", "Fresher", "Intern"}
	DefaultPersona = "I am a software engineer looking for backend or fullstack roles."
)

// DefaultSettings is what a fresh store returns before anything is saved
func DefaultSettings() Settings {
	tags := make([]string, len(DefaultTags))
	copy(tags, DefaultTags)
	return Settings{
		DefaultTags: tags,
		UserPersona: DefaultPersona,
		Schedule:    "0 2 * * *",
	}
}

// PersonaFor picks the target persona when set, else the global one
func PersonaFor(t Target, s Settings) string {
	if strings.TrimSpace(t.CustomPersona) != "" {
		return t.CustomPersona
	}
	return s.UserPersona
}

// TagsFor picks the target tags when set, else the global defaults
func TagsFor(t Target, s Settings) []string {
	if len(t.CustomTags) > 0 {
		return t.CustomTags
	}
	return s.DefaultTags
}
