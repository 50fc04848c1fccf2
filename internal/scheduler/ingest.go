package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/robfig/cron/v3"
)

// scheduledBy is recorded as the creator of cron-triggered runs
const scheduledBy = "scheduler"

// Runner executes a detection run to completion
type Runner interface {
	RunSync(ctx context.Context, req service.StartRunRequest, createdBy string) (*models.DetectionRun, error)
}

// IngestScheduler periodically pulls FIRMS hotspots through a detection run
type IngestScheduler struct {
	cron   *cron.Cron
	runner Runner
	days   int

	// ctx is cancelled by Stop so an in-flight run is marked cancelled
	ctx    context.Context
	cancel context.CancelFunc
}

// NewIngestScheduler registers the ingestion job on spec (standard 5-field cron syntax).
// Overlapping ticks are skipped while a previous run is still in progress.
func NewIngestScheduler(spec string, runner Runner, days int) (*IngestScheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: nil runner")
	}
	if days <= 0 {
		days = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &IngestScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		runner: runner,
		days:   days,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule ingestion %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing the job in the background
func (s *IngestScheduler) Start() {
	log.Printf("[Scheduler] Ingestion scheduled, %d entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Tick runs one ingestion immediately
func (s *IngestScheduler) Tick() {
	if s.ctx.Err() != nil {
		return
	}

	started := time.Now()
	run, err := s.runner.RunSync(s.ctx, service.StartRunRequest{Days: s.days}, scheduledBy)
	if err != nil {
		log.Printf("[Scheduler] Ingestion failed: %v", err)
		return
	}
	log.Printf("[Scheduler] Run %s finished with status %s in %v", run.ID, run.Status, time.Since(started))
}

// Stop cancels an in-flight run and waits for the job to return or ctx to expire
func (s *IngestScheduler) Stop(ctx context.Context) error {
	s.cancel()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
