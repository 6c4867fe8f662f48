package reporter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-career-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	summaries []string
	jobs      []models.Job
	jobErr    error
}

func (f *fakeMessenger) SendMarkdown(text string) error {
	f.summaries = append(f.summaries, text)
	return nil
}

func (f *fakeMessenger) SendJob(job models.Job) error {
	f.jobs = append(f.jobs, job)
	return f.jobErr
}

func sampleLog() *models.RunLog {
	return &models.RunLog{
		Status:      models.RunCompleted,
		TriggerType: models.TriggerScheduled,
		URLsScanned: 3,
		JobsFound:   12,
		Duration:    2*time.Minute + 5*time.Second,
		Errors:      []models.CrawlError{{URL: "u", Message: "Acme: timeout"}},
	}
}

func TestBatchSummary(t *testing.T) {
	text := BatchSummary(sampleLog(), 12)
	assert.Contains(t, text, "✅ *Night Hunt completed*")
	assert.Contains(t, text, "URLs scanned: 3")
	assert.Contains(t, text, "New jobs: 12")
	assert.Contains(t, text, "Duration: 2m 5s")
	assert.Contains(t, text, "Errors: 1")
	assert.Contains(t, text, "showing the first 10")

	failed := sampleLog()
	failed.Status = models.RunFailed
	assert.Contains(t, BatchSummary(failed, 0), "❌")
}

func TestTelegramReporter_CapsJobCards(t *testing.T) {
	var fresh []models.Job
	for i := 0; i < 12; i++ {
		fresh = append(fresh, models.Job{Title: fmt.Sprintf("Role %d", i), Link: fmt.Sprintf("L%d", i)})
	}
	m := &fakeMessenger{}

	require.NoError(t, NewTelegramReporter(m).ReportBatch(context.Background(), sampleLog(), fresh))
	assert.Len(t, m.summaries, 1)
	assert.Len(t, m.jobs, MaxJobCards)
}

func TestTelegramReporter_JoinsJobErrors(t *testing.T) {
	m := &fakeMessenger{jobErr: errors.New("429")}
	err := NewTelegramReporter(m).ReportBatch(context.Background(), sampleLog(), []models.Job{{Link: "L1"}, {Link: "L2"}})
	assert.Error(t, err)
	assert.Len(t, m.jobs, 2)
}

type countingReporter struct {
	calls int
	err   error
}

func (c *countingReporter) ReportBatch(ctx context.Context, l *models.RunLog, fresh []models.Job) error {
	c.calls++
	return c.err
}

func TestMulti(t *testing.T) {
	a := &countingReporter{err: errors.New("a failed")}
	b := &countingReporter{}

	err := Multi{a, LogReporter{}, b}.ReportBatch(context.Background(), sampleLog(), nil)
	assert.ErrorContains(t, err, "a failed")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
