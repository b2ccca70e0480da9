package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/civitas/internal/taxes/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobTaxReminders = "tax_reminders"

var ErrInvalidConfig = errors.New("invalid scheduler configuration")

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	TaxSvc  taxdomain.Service
	Metrics *metrics.ReminderMetrics `optional:"true"`
	Config  Config                   `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	clock   clock.Clock
	cfg     Config
	taxSvc  taxdomain.Service
	metrics *metrics.ReminderMetrics
	cron    *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.TaxSvc == nil {
		return nil, ErrInvalidConfig
	}
	log := p.Log.Named("scheduler")
	s := &Scheduler{
		log:     log,
		clock:   p.Clock,
		cfg:     p.Config.withDefaults(),
		taxSvc:  p.TaxSvc,
		metrics: p.Metrics,
	}

	cronLog := cronLogger{log: log.Sugar()}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, func() {
		_ = s.RunReminders(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("%w: reminder spec %q: %v", ErrInvalidConfig, s.cfg.ReminderSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("reminder_spec", s.cfg.ReminderSpec))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunReminders runs one pass of the tax reminder job.
func (s *Scheduler) RunReminders(parent context.Context) error {
	return s.runJob(parent, jobTaxReminders, func(ctx context.Context) (int, error) {
		return s.taxSvc.RunReminders(ctx, s.clock.Now())
	})
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	started := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	processed, err := fn(ctx)
	duration := time.Since(started)

	if err == nil {
		s.metrics.ObserveRun(started, processed, "")
		log.Debug("job finished", zap.Int("processed", processed), zap.Duration("duration", duration))
		return nil
	}

	reason := "error"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reason = "timeout"
	}
	s.metrics.ObserveRun(started, processed, reason)
	log.Warn("job failed",
		zap.String("reason", reason),
		zap.Int("processed", processed),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
	return err
}

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
