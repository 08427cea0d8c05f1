package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"AdapterScout/internal/collector"
	"AdapterScout/internal/coverage"
	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/model"
	"AdapterScout/internal/notifier"
	"AdapterScout/internal/recorder"

	"github.com/robfig/cron/v3"
)

const missingListLimit = 15

// Sender delivers a formatted message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// ReportOptions controls the daily digest of new listings without an adapter.
type ReportOptions struct {
	NewListingDays int
	MinTVL         float64
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Dashboard *dashboard.Service
	Notifier  Sender // nil disables notifications
	Recorder  recorder.Recorder
	Report    ReportOptions
	Ctx       context.Context

	// OnCycle is called with the outcome of every refresh, if set.
	OnCycle func(err error)

	now func() time.Time
}

// NewScheduler creates a new Scheduler and registers the cycle recorder hook.
func NewScheduler(ctx context.Context, svc *dashboard.Service, sender Sender, rec recorder.Recorder, report ReportOptions) *Scheduler {
	s := &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Dashboard: svc,
		Notifier:  sender,
		Recorder:  rec,
		Report:    report,
		Ctx:       ctx,
		now:       time.Now,
	}
	svc.OnRefresh(s.recordCycle)
	return s
}

// RegisterAll registers the refresh and report tasks.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Refresh runs one fetch cycle and records a failure if it did not commit.
// Superseded and cancelled cycles are not failures.
func (s *Scheduler) Refresh(ctx context.Context) (*dashboard.Snapshot, error) {
	snap, err := s.Dashboard.Refresh(ctx)
	if s.OnCycle != nil {
		s.OnCycle(err)
	}
	if isFailure(err) {
		s.recordFailure(err)
	}
	return snap, err
}

func isFailure(err error) bool {
	return err != nil &&
		!errors.Is(err, dashboard.ErrSuperseded) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// RunRefreshNow executes the refresh task immediately (for startup / manual trigger).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	if _, err := s.Refresh(s.Ctx); isFailure(err) {
		s.trySend(fmt.Sprintf("❌ Coverage refresh failed: %v", err))
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	s.trySend(s.coverageReport())
	s.trySend(s.missingReport())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/coverage", "coverage":
		return s.coverageReport()
	case "/missing", "missing":
		return s.missingReport()
	case "/refresh", "refresh":
		if _, err := s.Refresh(ctx); err != nil {
			return fmt.Sprintf("❌ Refresh failed: %v", err)
		}
		return s.coverageReport()
	default:
		return "Available commands:\n• /coverage - coverage summary\n• /missing - new listings without a yield adapter\n• /refresh - fetch fresh data now"
	}
}

func (s *Scheduler) coverageReport() string {
	v, err := s.Dashboard.View(model.FilterState{Sort: model.DefaultSort})
	if err != nil {
		return fmt.Sprintf("⚠️ Coverage unavailable: %v", err)
	}
	return notifier.FormatCoverageReport(v.Stats, v.FetchedAt, v.Warnings)
}

func (s *Scheduler) missingReport() string {
	days := s.Report.NewListingDays
	since := s.now().AddDate(0, 0, -days)
	missing, err := s.Dashboard.RecentlyMissing(since, s.Report.MinTVL)
	if err != nil {
		return fmt.Sprintf("⚠️ Coverage unavailable: %v", err)
	}
	title := fmt.Sprintf("Listed in the last %d days without a yield adapter", days)
	return notifier.FormatMissingList(title, missing, missingListLimit, s.now())
}

func (s *Scheduler) recordCycle(_ context.Context, snap *dashboard.Snapshot) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.RecordCycle(&recorder.CycleRecord{
		CycleID:      snap.CycleID,
		FetchedAt:    snap.FetchedAt,
		Protocols:    len(snap.Enriched),
		Pools:        len(snap.Pools),
		AdapterSlugs: len(snap.AdapterSlugs),
		Stats:        coverage.Aggregate(snap.Enriched, snap.Pools),
		Degraded:     snap.Degraded,
		Truncated:    snap.Truncated,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
}

func (s *Scheduler) recordFailure(err error) {
	if s.Recorder == nil {
		return
	}
	var source string
	var fe *collector.FetchError
	if errors.As(err, &fe) {
		source = fe.Source
	}
	if rerr := s.Recorder.RecordFailure(&recorder.FailureRecord{
		At:     s.now(),
		Source: source,
		Error:  err.Error(),
	}); rerr != nil {
		log.Printf("[ERROR] record failure: %v", rerr)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] notifications disabled, report:\n%s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
