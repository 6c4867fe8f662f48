package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-career-hunter/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Repository struct {
	db *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode can't hold prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ServerVersion reports the Postgres version and database size, for diagnostics
func (r *Repository) ServerVersion(ctx context.Context) (version, size string, err error) {
	err = r.db.QueryRow(ctx, `SELECT version(), pg_size_pretty(pg_database_size(current_database()))`).Scan(&version, &size)
	return version, size, err
}

const schema = `
CREATE TABLE IF NOT EXISTS targets (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	urls           TEXT[] NOT NULL DEFAULT '{}',
	custom_tags    TEXT[] NOT NULL DEFAULT '{}',
	custom_persona TEXT NOT NULL DEFAULT '',
	logo_url       TEXT NOT NULL DEFAULT '',
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS targets_name_key ON targets (LOWER(name));

CREATE TABLE IF NOT EXISTS jobs (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	company_name TEXT NOT NULL,
	target_id    UUID REFERENCES targets(id) ON DELETE SET NULL,
	link         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL DEFAULT '',
	detected_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_fresh     BOOLEAN NOT NULL DEFAULT TRUE,
	is_starred   BOOLEAN NOT NULL DEFAULT FALSE,
	CONSTRAINT jobs_link_key UNIQUE (link)
);
CREATE INDEX IF NOT EXISTS jobs_target_detected_idx ON jobs (target_id, detected_at DESC);
CREATE INDEX IF NOT EXISTS jobs_fresh_detected_idx ON jobs (is_fresh, detected_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	id           SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	default_tags TEXT[] NOT NULL,
	user_persona TEXT NOT NULL,
	schedule     TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS hunt_state (
	id          SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	is_active   BOOLEAN NOT NULL DEFAULT FALSE,
	last_run_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS run_logs (
	id           UUID PRIMARY KEY,
	batch_time   TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	urls_scanned INTEGER NOT NULL DEFAULT 0,
	jobs_found   INTEGER NOT NULL DEFAULT 0,
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	errors       JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS run_logs_batch_time_idx ON run_logs (batch_time DESC);
`

// EnsureSchema creates tables and indexes when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// ---------------- JOB OPERATIONS ----------------

const jobColumns = `id::text, title, company_name, COALESCE(target_id::text, ''), link, location, source_url, detected_at, is_fresh, is_starred`

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(&job.ID, &job.Title, &job.CompanyName, &job.TargetID, &job.Link,
		&job.Location, &job.SourceURL, &job.DetectedAt, &job.IsFresh, &job.IsStarred)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func collectJobs(rows pgx.Rows) ([]models.Job, error) {
	defer rows.Close()
	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func nullable(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func (r *Repository) FindJobByLink(ctx context.Context, link string) (*models.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE link = $1`, link))
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (r *Repository) InsertJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.DetectedAt.IsZero() {
		job.DetectedAt = time.Now()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (id, title, company_name, target_id, link, location, source_url, detected_at, is_fresh, is_starred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.Title, job.CompanyName, nullable(job.TargetID), job.Link, job.Location,
		job.SourceURL, job.DetectedAt, job.IsFresh, job.IsStarred)
	if isUniqueViolation(err) {
		return models.ErrDuplicateLink
	}
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (r *Repository) ReassignJob(ctx context.Context, id, targetID, companyName string) (*models.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `
		UPDATE jobs SET target_id = $2, company_name = $3, is_fresh = TRUE, detected_at = NOW()
		WHERE id = $1
		RETURNING `+jobColumns, id, nullable(targetID), companyName))
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (r *Repository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (r *Repository) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, int, error) {
	filter = filter.Normalize()

	var where []string
	var args []any
	if filter.TargetID != "" {
		args = append(args, filter.TargetID)
		where = append(where, fmt.Sprintf("target_id = $%d", len(args)))
	}
	if filter.Company != "" {
		args = append(args, "%"+filter.Company+"%")
		where = append(where, fmt.Sprintf("company_name ILIKE $%d", len(args)))
	}
	if filter.FreshOnly {
		where = append(where, "is_fresh")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY detected_at DESC, link LIMIT $%d OFFSET $%d`,
		jobColumns, clause, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

func (r *Repository) JobsSince(ctx context.Context, since time.Time) ([]models.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE detected_at >= $1 ORDER BY detected_at DESC, link`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent jobs: %w", err)
	}
	return collectJobs(rows)
}

func (r *Repository) MarkJobViewed(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE jobs SET is_fresh = FALSE WHERE id = $1`, id)
}

func (r *Repository) SetJobStarred(ctx context.Context, id string, starred bool) error {
	return r.execOne(ctx, `UPDATE jobs SET is_starred = $2 WHERE id = $1`, id, starred)
}

func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM jobs WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row
func (r *Repository) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ---------------- TARGET OPERATIONS ----------------

const targetColumns = `id::text, name, urls, custom_tags, custom_persona, logo_url, is_active, created_at, updated_at`

func scanTarget(row pgx.Row) (*models.Target, error) {
	var t models.Target
	err := row.Scan(&t.ID, &t.Name, &t.URLs, &t.CustomTags, &t.CustomPersona, &t.LogoURL,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) queryTargets(ctx context.Context, sql string) ([]models.Target, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []models.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

func (r *Repository) ListTargets(ctx context.Context) ([]models.Target, error) {
	return r.queryTargets(ctx, `SELECT `+targetColumns+` FROM targets ORDER BY created_at, name`)
}

func (r *Repository) ListActiveTargets(ctx context.Context) ([]models.Target, error) {
	return r.queryTargets(ctx, `SELECT `+targetColumns+` FROM targets WHERE is_active ORDER BY created_at, name`)
}

func (r *Repository) GetTarget(ctx context.Context, id string) (*models.Target, error) {
	t, err := scanTarget(r.db.QueryRow(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *Repository) CreateTarget(ctx context.Context, t *models.Target) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO targets (id, name, urls, custom_tags, custom_persona, logo_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, nonNil(t.URLs), nonNil(t.CustomTags), t.CustomPersona, t.LogoURL, t.IsActive).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}
	return nil
}

func (r *Repository) UpdateTarget(ctx context.Context, t *models.Target) error {
	err := r.db.QueryRow(ctx, `
		UPDATE targets SET name = $2, urls = $3, custom_tags = $4, custom_persona = $5,
			logo_url = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		t.ID, t.Name, nonNil(t.URLs), nonNil(t.CustomTags), t.CustomPersona, t.LogoURL, t.IsActive).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateName
	}
	if err != nil {
		return notFound(err)
	}
	return nil
}

// DeleteTarget removes the target; its jobs become orphans via ON DELETE SET NULL
func (r *Repository) DeleteTarget(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM targets WHERE id = $1`, id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ---------------- SETTINGS / HUNT STATE ----------------

func (r *Repository) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.QueryRow(ctx, `SELECT default_tags, user_persona, schedule, updated_at FROM settings WHERE id = 1`).
		Scan(&s.DefaultTags, &s.UserPersona, &s.Schedule, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := models.DefaultSettings()
		if err := r.UpdateSettings(ctx, &defaults); err != nil {
			return nil, err
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, s *models.Settings) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO settings (id, default_tags, user_persona, schedule, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET default_tags = EXCLUDED.default_tags, user_persona = EXCLUDED.user_persona,
			schedule = EXCLUDED.schedule, updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		nonNil(s.DefaultTags), s.UserPersona, s.Schedule).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *Repository) GetHuntState(ctx context.Context) (*models.HuntState, error) {
	var st models.HuntState
	err := r.db.QueryRow(ctx, `SELECT is_active, last_run_at FROM hunt_state WHERE id = 1`).
		Scan(&st.IsActive, &st.LastRunAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.HuntState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hunt state: %w", err)
	}
	return &st, nil
}

func (r *Repository) SetHuntActive(ctx context.Context, active bool) (*models.HuntState, error) {
	var st models.HuntState
	err := r.db.QueryRow(ctx, `
		INSERT INTO hunt_state (id, is_active) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active
		RETURNING is_active, last_run_at`, active).
		Scan(&st.IsActive, &st.LastRunAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set hunt state: %w", err)
	}
	return &st, nil
}

func (r *Repository) MarkHuntRun(ctx context.Context, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO hunt_state (id, last_run_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_run_at = EXCLUDED.last_run_at`, at)
	return err
}

// ---------------- RUN LOG OPERATIONS ----------------

const runLogColumns = `id::text, batch_time, status, trigger_type, urls_scanned, jobs_found, duration_ms, errors`

func (r *Repository) CreateRunLog(ctx context.Context, l *models.RunLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO run_logs (id, batch_time, status, trigger_type, urls_scanned, jobs_found, duration_ms, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.BatchTime, l.Status, l.TriggerType, l.URLsScanned, l.JobsFound,
		l.Duration.Milliseconds(), crawlErrors(l.Errors))
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRunLog(ctx context.Context, l *models.RunLog) error {
	return r.execOne(ctx, `
		UPDATE run_logs SET status = $2, urls_scanned = $3, jobs_found = $4, duration_ms = $5, errors = $6
		WHERE id = $1`,
		l.ID, l.Status, l.URLsScanned, l.JobsFound, l.Duration.Milliseconds(), crawlErrors(l.Errors))
}

func (r *Repository) LatestRunLogs(ctx context.Context, limit int) ([]models.RunLog, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	return r.queryRunLogs(ctx, `SELECT `+runLogColumns+` FROM run_logs ORDER BY batch_time DESC LIMIT $1`, limit)
}

func (r *Repository) RunLogsSince(ctx context.Context, since time.Time) ([]models.RunLog, error) {
	return r.queryRunLogs(ctx, `SELECT `+runLogColumns+` FROM run_logs WHERE batch_time >= $1 ORDER BY batch_time DESC`, since)
}

func (r *Repository) queryRunLogs(ctx context.Context, sql string, args ...any) ([]models.RunLog, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run logs: %w", err)
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var l models.RunLog
		var durationMs int64
		if err := rows.Scan(&l.ID, &l.BatchTime, &l.Status, &l.TriggerType, &l.URLsScanned,
			&l.JobsFound, &durationMs, &l.Errors); err != nil {
			return nil, err
		}
		l.Duration = time.Duration(durationMs) * time.Millisecond
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func crawlErrors(errs []models.CrawlError) []models.CrawlError {
	if errs == nil {
		return []models.CrawlError{}
	}
	return errs
}
