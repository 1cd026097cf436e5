package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type SchedulerConfig struct {
	Interval          time.Duration
	ItemTimeout       time.Duration
	Workers           int
	MatchStartingLead time.Duration
	MatchMissedGrace  time.Duration
}

// dueChallengeSource lists challenges with a pending one-shot notification.
type dueChallengeSource interface {
	ListUnnotifiedExpiredClocks(ctx context.Context, now time.Time) ([]string, error)
	ListUnnotifiedStartingMatches(ctx context.Context, now time.Time, lead time.Duration) ([]string, error)
	ListUnnotifiedMissedMatches(ctx context.Context, now time.Time, grace time.Duration) ([]string, error)
}

type challengeNotifier interface {
	NotifyClockExpired(ctx context.Context, challengeID string) error
	NotifyMatchStarting(ctx context.Context, challengeID string) error
	NotifyMatchMissed(ctx context.Context, challengeID string) error
}

// NotifyReport summarizes one scheduler tick.
type NotifyReport struct {
	ExpiredClocks   int
	StartingMatches int
	MissedMatches   int
	Failed          int
}

type notifyJob struct {
	kind        string
	challengeID string
	run         func(ctx context.Context, challengeID string) error
}

// NotificationScheduler polls for due notifications and sends them on a
// bounded worker pool.
type NotificationScheduler struct {
	source   dueChallengeSource
	notifier challengeNotifier
	cfg      SchedulerConfig
	pool     *ants.Pool
	logger   *logging.Logger
	now      func() time.Time
}

func NewNotificationScheduler(
	source dueChallengeSource,
	notifier challengeNotifier,
	cfg SchedulerConfig,
	logger *logging.Logger,
) (*NotificationScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 30 * time.Second
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create notification worker pool")
	}

	return &NotificationScheduler{
		source:   source,
		notifier: notifier,
		cfg:      cfg,
		pool:     pool,
		logger:   logger.Named("scheduler"),
		now:      time.Now,
	}, nil
}

// Close releases the worker pool.
func (s *NotificationScheduler) Close() {
	s.pool.Release()
}

// Run ticks until ctx is cancelled. The first tick runs immediately.
func (s *NotificationScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "notification scheduler started", "interval", s.cfg.Interval.String(), "workers", s.cfg.Workers)
	for {
		s.Notify(ctx)

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "notification scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Notify runs a single tick. Failures are logged per challenge and never stop
// the other challenges of the tick.
func (s *NotificationScheduler) Notify(ctx context.Context) NotifyReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationScheduler.Notify")
	defer span.End()

	jobs, report := s.collect(ctx, s.now().UTC())
	if len(jobs) == 0 {
		return report
	}

	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, job := range jobs {
		job := job
		workers.Add(1)
		if err := s.pool.Submit(func() {
			defer workers.Done()

			if err := s.runJob(ctx, job); err != nil {
				failed.Add(1)
				s.logger.ErrorContext(ctx, "challenge notification failed",
					"kind", job.kind,
					"challenge_id", job.challengeID,
					"error", err,
				)
			}
		}); err != nil {
			workers.Done()
			failed.Add(1)
			s.logger.ErrorContext(ctx, "submit notification job failed", "kind", job.kind, "challenge_id", job.challengeID, "error", err)
		}
	}
	workers.Wait()

	report.Failed = int(failed.Load())
	s.logger.DebugContext(ctx, "notification tick finished",
		"expired_clocks", report.ExpiredClocks,
		"starting_matches", report.StartingMatches,
		"missed_matches", report.MissedMatches,
		"failed", report.Failed,
	)
	return report
}

// collect fetches the three due sets concurrently. A failed fetch only
// drops its own set.
func (s *NotificationScheduler) collect(ctx context.Context, now time.Time) ([]notifyJob, NotifyReport) {
	var (
		expired, starting, missed          []string
		expiredErr, startingErr, missedErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		expired, expiredErr = s.source.ListUnnotifiedExpiredClocks(ctx, now)
	})
	wg.Go(func() {
		starting, startingErr = s.source.ListUnnotifiedStartingMatches(ctx, now, s.cfg.MatchStartingLead)
	})
	wg.Go(func() {
		missed, missedErr = s.source.ListUnnotifiedMissedMatches(ctx, now, s.cfg.MatchMissedGrace)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "list due notifications panicked", "error", recovered.AsError())
	}

	expired = s.keepFetched(ctx, "expired_clock", expired, expiredErr)
	starting = s.keepFetched(ctx, "match_starting", starting, startingErr)
	missed = s.keepFetched(ctx, "match_missed", missed, missedErr)

	report := NotifyReport{
		ExpiredClocks:   len(expired),
		StartingMatches: len(starting),
		MissedMatches:   len(missed),
	}
	jobs := make([]notifyJob, 0, len(expired)+len(starting)+len(missed))
	for _, id := range expired {
		jobs = append(jobs, notifyJob{kind: "expired_clock", challengeID: id, run: s.notifier.NotifyClockExpired})
	}
	for _, id := range starting {
		jobs = append(jobs, notifyJob{kind: "match_starting", challengeID: id, run: s.notifier.NotifyMatchStarting})
	}
	for _, id := range missed {
		jobs = append(jobs, notifyJob{kind: "match_missed", challengeID: id, run: s.notifier.NotifyMatchMissed})
	}
	return jobs, report
}

// keepFetched discards whatever a failed fetch returned alongside its error.
func (s *NotificationScheduler) keepFetched(ctx context.Context, kind string, ids []string, err error) []string {
	if err != nil {
		s.logger.ErrorContext(ctx, "list due notifications failed", "kind", kind, "error", err)
		return nil
	}
	return ids
}

// runJob bounds one notification by the item timeout. A call that ignores
// its context is abandoned when the timeout fires so the worker is freed.
func (s *NotificationScheduler) runJob(ctx context.Context, job notifyJob) error {
	itemCtx, cancel := context.WithTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var err error
		var catcher panics.Catcher
		catcher.Try(func() {
			err = job.run(itemCtx, job.challengeID)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			err = recovered.AsError()
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-itemCtx.Done():
		return crerr.Wrapf(itemCtx.Err(), "notification for challenge=%s timed out", job.challengeID)
	}
}
