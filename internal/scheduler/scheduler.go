package scheduler // import "github.com/Xunop/e-library/internal/scheduler"

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/worker"
)

// Scheduler enqueues an overdue scan on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	store *store.Store
	pool  worker.WorkPool
}

// New parses spec, a standard five field cron expression or a descriptor
// such as @daily, evaluated in loc.
func New(spec string, loc *time.Location, store *store.Store, pool worker.WorkPool) (*Scheduler, error) {
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		store: store,
		pool:  pool,
	}
	if _, err := s.cron.AddFunc(spec, s.enqueue); err != nil {
		return nil, errors.Wrapf(err, "invalid overdue scan schedule %q", spec)
	}
	return s, nil
}

func (s *Scheduler) enqueue() {
	job, err := worker.EnqueueOverdueScan(context.Background(), s.store, s.pool)
	if err != nil {
		log.Error("Failed to enqueue overdue scan", zap.Error(err))
		return
	}
	log.Info("Overdue scan enqueued", zap.Int("job_id", job.ID))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running enqueue to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger sends cron's own messages to the shared zap logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Logger.Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
