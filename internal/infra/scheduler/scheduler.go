package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work, typically a full generation run.
type Job func(ctx context.Context) error

type RegenerationScheduler struct {
	cronEngine *cron.Cron
	job        Job
	spec       string
	timeout    time.Duration
	logger     *logrus.Entry

	// ctx is the parent of every job context; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegenerationScheduler runs job on the cron spec. A tick that fires while
// the previous run is still busy is skipped. A zero timeout means runs are
// not bounded.
func NewRegenerationScheduler(spec string, job Job, timeout time.Duration, logger *logrus.Entry) *RegenerationScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &RegenerationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		job:     job,
		spec:    spec,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start schedules the job. Runs are cancelled when ctx is done or Stop is
// called.
func (s *RegenerationScheduler) Start(ctx context.Context) error {
	s.logger.Infof("Starting regeneration scheduler with spec %q...", s.spec)

	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cronEngine.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("could not add regeneration cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Regeneration scheduler started.")
	return nil
}

func (s *RegenerationScheduler) run() {
	s.logger.Info("Cron job triggered for regeneration.")

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("Scheduled regeneration cancelled.")
			return
		}
		s.logger.WithError(err).Error("Scheduled regeneration failed.")
		return
	}
	s.logger.WithField("duration", time.Since(start).String()).Info("Scheduled regeneration finished.")
}

func (s *RegenerationScheduler) Stop() {
	s.logger.Info("Stopping regeneration scheduler...")
	// Abort the run in flight before waiting for it.
	s.cancel()
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Regeneration scheduler gracefully stopped.")
}
