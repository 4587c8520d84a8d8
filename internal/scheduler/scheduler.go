// Package scheduler runs the periodic jobs that drive applications through the pipeline
// once the initial screening call has been placed: submitting queued/callback calls,
// reconciling calls the webhook never heard back about, nudging candidates for their CV,
// and closing out applications nobody ever sent a CV for.
package scheduler

import (
	"context"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/redis"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	callservice "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/service"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	cvsports "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/ports"
	cvsservice "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/service"
	evalservice "github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/service"
	msgservice "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/service"
	posports "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	settingsservice "github.com/alexandruradulescu-neurony/recruitflow/modules/settings/service"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// job names double as their Redis lock keys, so every horizontally-scaled instance of
// the API contends for the same key and only one of them ever runs a given tick.
const (
	jobProcessCallQueue   = "scheduler:process_call_queue"
	jobSyncStuckCalls     = "scheduler:sync_stuck_calls"
	jobCheckCVFollowups   = "scheduler:check_cv_followups"
	jobCloseStaleRejected = "scheduler:close_stale_rejected"
	jobPollCVInbox        = "scheduler:poll_cv_inbox"
)

// Scheduler owns the five periodic jobs. It holds no state of its own — every job reads
// and writes through the same services the HTTP handlers use, so a manual operator
// action and a scheduled one can never disagree about what "qualified" or "stuck" means.
type Scheduler struct {
	cfg            config.SchedulerConfig
	batchChunkSize int
	lock           *redis.Client
	apps           *appservice.ApplicationService
	candidates     candports.CandidateRepository
	positions      posports.PositionRepository
	calls          *callservice.CallService
	evaluations    *evalservice.EvaluationService
	messaging      *msgservice.MessagingService
	cvs            *cvsservice.CVService
	mailbox        cvsports.InboundMailbox
	settings       *settingsservice.SettingService
	logger         *logger.Logger
	location       *time.Location
	group          *errgroup.Group
}

func New(
	cfg config.SchedulerConfig,
	batchChunkSize int,
	lock *redis.Client,
	apps *appservice.ApplicationService,
	candidates candports.CandidateRepository,
	positions posports.PositionRepository,
	calls *callservice.CallService,
	evaluations *evalservice.EvaluationService,
	messaging *msgservice.MessagingService,
	cvs *cvsservice.CVService,
	mailbox cvsports.InboundMailbox,
	settings *settingsservice.SettingService,
	log *logger.Logger,
) *Scheduler {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown scheduler timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}
	if batchChunkSize <= 0 {
		batchChunkSize = 50
	}
	return &Scheduler{
		cfg: cfg, batchChunkSize: batchChunkSize, lock: lock,
		apps: apps, candidates: candidates, positions: positions,
		calls: calls, evaluations: evaluations, messaging: messaging,
		cvs: cvs, mailbox: mailbox, settings: settings,
		logger: log, location: loc,
	}
}

// Start launches one ticking goroutine per job under a shared errgroup. Each goroutine
// returns only once ctx is cancelled; a panic inside a job is recovered and logged per
// tick (see runRecovered), so it neither stops that job nor cancels the others. Start
// itself returns immediately without waiting for them; call Wait to block until
// they've all exited.
func (s *Scheduler) Start(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	s.group = group
	s.runEvery(groupCtx, jobProcessCallQueue, 5*time.Minute, s.processCallQueue)
	s.runEvery(groupCtx, jobSyncStuckCalls, 10*time.Minute, s.syncStuckCalls)
	s.runEvery(groupCtx, jobCheckCVFollowups, 60*time.Minute, s.checkCVFollowups)
	s.runEvery(groupCtx, jobCloseStaleRejected, 24*time.Hour, s.closeStaleRejected)
	s.runEvery(groupCtx, jobPollCVInbox, 15*time.Minute, s.pollCVInbox)
}

// Wait blocks until every job goroutine launched by Start has exited, which happens once
// ctx is cancelled. The job goroutines always return nil, so the error is nil unless
// that changes. Callers doing graceful shutdown call this after cancelling ctx.
func (s *Scheduler) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// runEvery fires fn on every tick of interval, serialised across instances via a
// Redis lock held for the tick's duration (released as soon as fn returns, not held
// for the full interval — a slow run never blocks the next instance from trying).
// The first tick runs only after one full interval has elapsed, matching the original
// cron-style registration rather than firing immediately at startup.
func (s *Scheduler) runEvery(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context)) {
	s.group.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.runLocked(ctx, name, interval, fn)
			}
		}
	})
}

// runLocked acquires the named lock before invoking fn and releases it afterward. ttl
// caps how long a crashed holder can block the job — generously above the job's own
// expected runtime but below the next tick, via the configured misfire grace window.
func (s *Scheduler) runLocked(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context)) {
	ttl := interval - s.cfg.MisfireGraceTime
	if ttl <= 0 {
		ttl = interval
	}
	acquired, err := s.lock.TryLock(ctx, name, ttl)
	if err != nil {
		s.logger.Error("scheduler lock acquisition failed", zap.String("job", name), zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("scheduler job already running elsewhere, skipping tick", zap.String("job", name))
		return
	}
	defer func() {
		if err := s.lock.Unlock(ctx, name); err != nil {
			s.logger.Warn("scheduler lock release failed", zap.String("job", name), zap.Error(err))
		}
	}()

	start := time.Now()
	s.runRecovered(ctx, name, fn)
	s.logger.Debug("scheduler job finished", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
}

// runRecovered invokes fn, catching any panic so one misbehaving job can never take the
// whole scheduler down. The panic is reported to Sentry (a no-op if unconfigured) and
// logged with the recovered value, then swallowed — this tick is lost, but the next one
// still fires.
func (s *Scheduler) runRecovered(ctx context.Context, name string, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			s.logger.Error("scheduler job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()
	fn(ctx)
}

func (s *Scheduler) currentHour() int {
	return time.Now().In(s.location).Hour()
}
