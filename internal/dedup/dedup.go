// Package dedup persists accepted postings with link-level deduplication
// and orphan adoption.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-career-hunter/internal/models"
	"go-career-hunter/internal/scraper"
)

// JobStore is the slice of persistence the saver needs
type JobStore interface {
	// FindJobByLink returns models.ErrNotFound when no job owns link
	FindJobByLink(ctx context.Context, link string) (*models.Job, error)
	// InsertJob returns models.ErrDuplicateLink on a unique violation
	InsertJob(ctx context.Context, job *models.Job) error
	// ReassignJob moves a job to a target, marks it fresh and bumps DetectedAt
	ReassignJob(ctx context.Context, id, targetID, companyName string) (*models.Job, error)
}

// Outcome of saving a single posting
type Outcome int

const (
	Skipped Outcome = iota
	Inserted
	Adopted
)

// Saver upserts postings one at a time; each write stands alone
type Saver struct {
	store JobStore
}

func NewSaver(store JobStore) *Saver {
	return &Saver{store: store}
}

// Save stores every posting and returns the jobs that are new or were
// adopted, i.e. the ones that should surface as fresh. A failure on one
// posting is logged and does not stop the rest; only ctx cancellation aborts.
func (s *Saver) Save(ctx context.Context, postings []scraper.RawPosting, companyName string) ([]models.Job, error) {
	var fresh []models.Job
	for _, p := range postings {
		if err := ctx.Err(); err != nil {
			return fresh, err
		}
		job, outcome, err := s.saveOne(ctx, p, companyName)
		if err != nil {
			log.Printf("⚠️ Error saving job %s: %v", p.Link, err)
			continue
		}
		switch outcome {
		case Inserted:
			log.Printf("💾 Saved new job - %s at %s", job.Title, companyName)
			fresh = append(fresh, *job)
		case Adopted:
			log.Printf("♻️ Adopting orphan job - %s to %s", job.Title, companyName)
			fresh = append(fresh, *job)
		}
	}
	return fresh, nil
}

func (s *Saver) saveOne(ctx context.Context, p scraper.RawPosting, companyName string) (*models.Job, Outcome, error) {
	existing, err := s.store.FindJobByLink(ctx, p.Link)
	switch {
	case errors.Is(err, models.ErrNotFound):
		job := &models.Job{
			Title:       p.Title,
			CompanyName: companyName,
			TargetID:    p.TargetID,
			Link:        p.Link,
			Location:    p.Location,
			SourceURL:   p.SourceURL,
			IsFresh:     true,
		}
		if err := s.store.InsertJob(ctx, job); err != nil {
			if errors.Is(err, models.ErrDuplicateLink) {
				//lost a race with another writer; same as already existing
				return nil, Skipped, nil
			}
			return nil, Skipped, fmt.Errorf("insert: %w", err)
		}
		return job, Inserted, nil
	case err != nil:
		return nil, Skipped, fmt.Errorf("find by link: %w", err)
	}

	if !NeedsAdoption(existing, p.TargetID) {
		return existing, Skipped, nil
	}
	adopted, err := s.store.ReassignJob(ctx, existing.ID, p.TargetID, companyName)
	if err != nil {
		return nil, Skipped, fmt.Errorf("reassign: %w", err)
	}
	return adopted, Adopted, nil
}

// NeedsAdoption is true when the stored job is orphaned or owned by another target
func NeedsAdoption(existing *models.Job, targetID string) bool {
	return existing.TargetID == "" || existing.TargetID != targetID
}
