// Package scheduler fires crawl batches on cron fire-times or on demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"go-career-hunter/internal/models"
	"go-career-hunter/internal/orchestrator"

	"github.com/robfig/cron/v3"
)

// DefaultSchedules fire at 02:00, 04:00 and 06:00 in the scheduler's location
var DefaultSchedules = []string{"0 2 * * *", "0 4 * * *", "0 6 * * *"}

type Runner interface {
	RunBatch(ctx context.Context, trigger models.TriggerType) (*models.RunLog, error)
	Start(trigger models.TriggerType) (orchestrator.BatchFunc, error)
	Running() bool
}

type HuntStateReader interface {
	GetHuntState(ctx context.Context) (*models.HuntState, error)
}

type Entry struct {
	Spec string       `json:"spec"`
	ID   cron.EntryID `json:"-"`
}

type EntryStatus struct {
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"next_run"`
}

type Status struct {
	Live      bool          `json:"live"`
	Running   bool          `json:"running"`
	Schedules []EntryStatus `json:"schedules"`
	NextRun   *time.Time    `json:"next_run,omitempty"`
}

// Scheduler wraps robfig/cron. Registrations survive Stop/Start.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	state  HuntStateReader
	loc    *time.Location
	specs  []string

	mu      sync.Mutex
	ctx     context.Context
	entries []Entry
	live    bool
	wg      sync.WaitGroup
	now     func() time.Time
}

func New(runner Runner, state HuntStateReader, specs []string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if len(specs) == 0 {
		specs = DefaultSchedules
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		state:  state,
		loc:    loc,
		specs:  specs,
		ctx:    context.Background(),
		now:    time.Now,
	}
}

// Init registers every fire-time and starts the cron loop. Invalid
// expressions are logged and skipped; the rest still register. Batches
// started by the scheduler run under ctx.
func (s *Scheduler) Init(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx

	for _, spec := range s.specs {
		id, err := s.cron.AddFunc(spec, s.fire)
		if err != nil {
			log.Printf("❌ Invalid schedule %q: %v", spec, err)
			continue
		}
		s.entries = append(s.entries, Entry{Spec: spec, ID: id})
		log.Printf("📅 Scheduled crawl at %q (%s)", spec, s.loc)
	}

	s.cron.Start()
	s.live = true
	log.Printf("⏰ Scheduler initialized with %d job(s)", len(s.entries))
	return len(s.entries)
}

// fire is the cron callback; it is a no-op while hunting is deactivated
func (s *Scheduler) fire() {
	ctx := s.context()
	state, err := s.state.GetHuntState(ctx)
	if err != nil {
		log.Printf("⚠️ Could not read hunt state, skipping scheduled run: %v", err)
		return
	}
	if !state.IsActive {
		log.Println("💤 Hunt is not active, skipping scheduled run")
		return
	}

	log.Println("🌙 Scheduled crawl starting...")
	if _, err := s.runner.RunBatch(ctx, models.TriggerScheduled); err != nil {
		if errors.Is(err, orchestrator.ErrAlreadyRunning) {
			log.Println("⚠️ Previous batch still running, skipping this fire-time")
			return
		}
		log.Printf("❌ Scheduled crawl failed: %v", err)
	}
}

// Trigger starts a manual batch in the background and returns at once.
// It rejects with ErrAlreadyRunning when a batch is in flight.
func (s *Scheduler) Trigger() error {
	run, err := s.runner.Start(models.TriggerManual)
	if err != nil {
		return err
	}

	ctx := s.context()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Println("🚀 Manual crawl triggered")
		if _, err := run(ctx); err != nil {
			log.Printf("❌ Manual crawl error: %v", err)
		}
	}()
	return nil
}

// Stop pauses fire-times without dropping registrations
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	s.cron.Stop()
	s.live = false
	log.Println("⏹️ Scheduler stopped")
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		return
	}
	s.cron.Start()
	s.live = true
	log.Println("▶️ Scheduler started")
}

// Shutdown stops the cron loop and waits for in-flight batches it started
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	stopped := s.cron.Stop()
	s.live = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	live := s.live
	entries := append([]Entry(nil), s.entries...)
	s.mu.Unlock()

	now := s.now().In(s.loc)
	st := Status{Live: live, Running: s.runner.Running()}
	for _, e := range entries {
		entry := s.cron.Entry(e.ID)
		if !entry.Valid() {
			continue
		}
		st.Schedules = append(st.Schedules, EntryStatus{Spec: e.Spec, NextRun: entry.Schedule.Next(now)})
	}
	sort.Slice(st.Schedules, func(i, j int) bool { return st.Schedules[i].NextRun.Before(st.Schedules[j].NextRun) })
	if live && len(st.Schedules) > 0 {
		next := st.Schedules[0].NextRun
		st.NextRun = &next
	}
	return st
}

// TimeUntilNext is how long until the earliest fire-time, false when none is live
func (s *Scheduler) TimeUntilNext() (time.Duration, bool) {
	st := s.Status()
	if st.NextRun == nil {
		return 0, false
	}
	return st.NextRun.Sub(s.now()), true
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
