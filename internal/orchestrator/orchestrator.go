// Package orchestrator runs one crawl batch over every active target:
// crawl, classify and save per URL, paced, under a single-flight guard.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-career-hunter/internal/filter"
	"go-career-hunter/internal/models"
	"go-career-hunter/internal/scraper"
	"go-career-hunter/utils"
)

// ErrAlreadyRunning is returned when a batch is requested while one is in flight
var ErrAlreadyRunning = errors.New("a batch is already running")

// BatchErrorURL marks run log errors that are not tied to a single URL
const BatchErrorURL = "BATCH"

type Store interface {
	ListActiveTargets(ctx context.Context) ([]models.Target, error)
	GetSettings(ctx context.Context) (*models.Settings, error)
	CreateRunLog(ctx context.Context, l *models.RunLog) error
	UpdateRunLog(ctx context.Context, l *models.RunLog) error
	MarkHuntRun(ctx context.Context, at time.Time) error
}

// Session is one page-automation session reused for the whole batch
type Session interface {
	Page() scraper.Page
	Close() error
}

type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
}

// SessionFactoryFunc adapts a plain function to SessionFactory
type SessionFactoryFunc func(ctx context.Context) (Session, error)

func (f SessionFactoryFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

type Crawler interface {
	Crawl(ctx context.Context, page scraper.Page, url, targetID string) ([]scraper.RawPosting, error)
}

type Classifier interface {
	Classify(ctx context.Context, req filter.Request) filter.Result
}

type Saver interface {
	Save(ctx context.Context, postings []scraper.RawPosting, companyName string) ([]models.Job, error)
}

// Reporter is told about every finished batch and the jobs it surfaced
type Reporter interface {
	ReportBatch(ctx context.Context, runLog *models.RunLog, fresh []models.Job) error
}

// Pacing bounds the randomized pauses between URLs of one target and between targets
type Pacing struct {
	URLMin, URLMax       time.Duration
	TargetMin, TargetMax time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		URLMin:    2 * time.Second,
		URLMax:    5 * time.Second,
		TargetMin: time.Minute,
		TargetMax: 3 * time.Minute,
	}
}

type Deps struct {
	Store      Store
	Sessions   SessionFactory
	Crawler    Crawler
	Classifier Classifier
	Saver      Saver
	Reporter   Reporter // optional
}

type Orchestrator struct {
	deps   Deps
	guard  Guard
	Pacing Pacing
	now    func() time.Time
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps, Pacing: DefaultPacing(), now: time.Now}
}

// Running reports whether a batch is in flight
func (o *Orchestrator) Running() bool {
	return o.guard.Held()
}

// BatchFunc runs a batch that already holds the guard and releases it on return
type BatchFunc func(ctx context.Context) (*models.RunLog, error)

// Start takes the guard synchronously and hands back the batch to run,
// so callers can reject a second request before going async. The
// returned func must be called exactly once.
func (o *Orchestrator) Start(trigger models.TriggerType) (BatchFunc, error) {
	if !o.guard.TryAcquire() {
		log.Println("⚠️ Batch already running, skipping.")
		return nil, ErrAlreadyRunning
	}
	return func(ctx context.Context) (*models.RunLog, error) {
		defer o.guard.Release()
		return o.run(ctx, trigger)
	}, nil
}

// RunBatch runs one full pass over all active targets. It returns
// ErrAlreadyRunning without creating a run log when another batch holds
// the guard. A batch-level failure is recorded on the returned log and
// also returned as the error.
func (o *Orchestrator) RunBatch(ctx context.Context, trigger models.TriggerType) (*models.RunLog, error) {
	run, err := o.Start(trigger)
	if err != nil {
		return nil, err
	}
	return run(ctx)
}

func (o *Orchestrator) run(ctx context.Context, trigger models.TriggerType) (*models.RunLog, error) {
	start := o.now()
	runLog := &models.RunLog{
		BatchTime:   start,
		Status:      models.RunRunning,
		TriggerType: trigger,
		Errors:      []models.CrawlError{},
	}
	if err := o.deps.Store.CreateRunLog(ctx, runLog); err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	log.Printf("🌙 Night Crawler batch started (%s)", trigger)

	fresh, batchErr := o.runTargets(ctx, runLog)

	runLog.Duration = o.now().Sub(start)
	if batchErr != nil {
		log.Printf("❌ Batch failed: %v", batchErr)
		runLog.Status = models.RunFailed
		runLog.AddError(BatchErrorURL, batchErr.Error())
	} else {
		runLog.Status = models.RunCompleted
	}

	// finish bookkeeping even when ctx was cancelled by shutdown
	finishCtx := context.WithoutCancel(ctx)
	if err := o.deps.Store.UpdateRunLog(finishCtx, runLog); err != nil {
		log.Printf("⚠️ Could not save run log: %v", err)
	}
	if err := o.deps.Store.MarkHuntRun(finishCtx, o.now()); err != nil {
		log.Printf("⚠️ Could not stamp last run: %v", err)
	}
	log.Printf("🏁 Batch %s: %d URLs scanned, %d jobs found, %d errors in %s",
		runLog.Status, runLog.URLsScanned, runLog.JobsFound, len(runLog.Errors), utils.FormatDuration(runLog.Duration))

	if o.deps.Reporter != nil {
		if err := o.deps.Reporter.ReportBatch(finishCtx, runLog, fresh); err != nil {
			log.Printf("⚠️ Failed to send batch report: %v", err)
		}
	}

	if batchErr != nil {
		return runLog, batchErr
	}
	return runLog, nil
}

// runTargets owns the session; it is closed before this returns, which is
// before the guard is released
func (o *Orchestrator) runTargets(ctx context.Context, runLog *models.RunLog) ([]models.Job, error) {
	targets, err := o.deps.Store.ListActiveTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	if len(targets) == 0 {
		log.Println("📭 No active targets found.")
		return nil, nil
	}

	settings, err := o.deps.Store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	session, err := o.deps.Sessions.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("start browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("⚠️ Session close: %v", err)
		}
	}()
	page := session.Page()

	var fresh []models.Job
	for i, target := range targets {
		if i > 0 {
			wait := utils.RandomDuration(o.Pacing.TargetMin, o.Pacing.TargetMax)
			log.Printf("⏳ Cooling down for %s before next company...", utils.FormatDuration(wait))
			if err := utils.Sleep(ctx, wait); err != nil {
				return fresh, err
			}
		}

		log.Printf("🏢 Hunting at %s (%d URLs)", target.Name, len(target.URLs))
		persona := models.PersonaFor(target, *settings)
		tags := models.TagsFor(target, *settings)

		for j, url := range target.URLs {
			if j > 0 {
				if err := utils.RandomDelay(ctx, o.Pacing.URLMin, o.Pacing.URLMax); err != nil {
					return fresh, err
				}
			}

			runLog.URLsScanned++
			saved, err := o.processURL(ctx, page, target, url, persona, tags)
			runLog.JobsFound += len(saved)
			fresh = append(fresh, saved...)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return fresh, ctxErr
				}
				log.Printf("❌ Error scanning %s: %v", url, err)
				runLog.AddError(url, fmt.Sprintf("%s: %v", target.Name, err))
			}
		}
	}
	return fresh, nil
}

func (o *Orchestrator) processURL(ctx context.Context, page scraper.Page, target models.Target, url, persona string, tags []string) ([]models.Job, error) {
	postings, err := o.deps.Crawler.Crawl(ctx, page, url, target.ID)
	if err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return nil, nil
	}

	res := o.deps.Classifier.Classify(ctx, filter.Request{
		Postings:     postings,
		Persona:      persona,
		CompanyName:  target.Name,
		FallbackTags: tags,
	})
	if len(res.Accepted) == 0 {
		return nil, nil
	}

	saved, err := o.deps.Saver.Save(ctx, res.Accepted, target.Name)
	if err != nil {
		return saved, fmt.Errorf("save postings: %w", err)
	}
	return saved, nil
}
