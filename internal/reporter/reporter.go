// Package reporter tells humans about finished batches.
package reporter

import (
	"context"
	"errors"
	"log"

	"go-career-hunter/internal/models"
	"go-career-hunter/utils"
)

type Reporter interface {
	ReportBatch(ctx context.Context, runLog *models.RunLog, fresh []models.Job) error
}

// LogReporter writes the batch outcome to the process log
type LogReporter struct{}

func (LogReporter) ReportBatch(ctx context.Context, runLog *models.RunLog, fresh []models.Job) error {
	log.Printf("📊 Batch %s (%s) in %s", runLog.Status, runLog.TriggerType, utils.FormatDuration(runLog.Duration))
	for _, job := range fresh {
		log.Printf("   🔥 %s @ %s -> %s", job.Title, job.CompanyName, job.Link)
	}
	for _, e := range runLog.Errors {
		log.Printf("   ⚠️ %s: %s", e.URL, e.Message)
	}
	return nil
}

// Multi fans a report out to every reporter and joins their errors
type Multi []Reporter

func (m Multi) ReportBatch(ctx context.Context, runLog *models.RunLog, fresh []models.Job) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportBatch(ctx, runLog, fresh); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
