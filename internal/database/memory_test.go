package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-career-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_DeleteTargetOrphansJobs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	acme := &models.Target{Name: "Acme", IsActive: true}
	require.NoError(t, store.CreateTarget(ctx, acme))
	require.NoError(t, store.InsertJob(ctx, &models.Job{Title: "Dev", CompanyName: "Acme", TargetID: acme.ID, Link: "L1"}))

	require.NoError(t, store.DeleteTarget(ctx, acme.ID))

	job, err := store.FindJobByLink(ctx, "L1")
	require.NoError(t, err)
	assert.Empty(t, job.TargetID)
	assert.ErrorIs(t, store.DeleteTarget(ctx, acme.ID), models.ErrNotFound)
}

func TestMemoryStore_UniqueConstraints(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateTarget(ctx, &models.Target{Name: "Acme"}))
	assert.ErrorIs(t, store.CreateTarget(ctx, &models.Target{Name: "ACME"}), models.ErrDuplicateName)

	require.NoError(t, store.InsertJob(ctx, &models.Job{Link: "L1"}))
	assert.ErrorIs(t, store.InsertJob(ctx, &models.Job{Link: "L1"}), models.ErrDuplicateLink)
}

func TestMemoryStore_ListJobsFilterAndPaging(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.InsertJob(ctx, &models.Job{
			Title:       fmt.Sprintf("Role %d", i),
			CompanyName: "Acme Corp",
			TargetID:    "t1",
			Link:        fmt.Sprintf("L%d", i),
			DetectedAt:  base.Add(time.Duration(i) * time.Hour),
			IsFresh:     i%2 == 0,
		}))
	}
	require.NoError(t, store.InsertJob(ctx, &models.Job{CompanyName: "Beta", TargetID: "t2", Link: "B", DetectedAt: base}))

	jobs, total, err := store.ListJobs(ctx, JobFilter{Company: "acme", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "L2", jobs[0].Link)
	assert.Equal(t, "L1", jobs[1].Link)

	fresh, total, err := store.ListJobs(ctx, JobFilter{TargetID: "t1", FreshOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "L4", fresh[0].Link)

	recent, err := store.JobsSince(ctx, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestMemoryStore_SettingsDefaultAndCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPersona, s.UserPersona)

	s.DefaultTags[0] = "mutated"
	again, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SDE", again.DefaultTags[0])
}

func TestMemoryStore_RunLogsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateRunLog(ctx, &models.RunLog{BatchTime: base.Add(time.Duration(i) * time.Hour), Status: models.RunCompleted}))
	}

	logs, err := store.LatestRunLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, base.Add(2*time.Hour), logs[0].BatchTime)

	since, err := store.RunLogsSince(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, since, 2)

	assert.ErrorIs(t, store.UpdateRunLog(ctx, &models.RunLog{ID: "missing"}), models.ErrNotFound)
}
