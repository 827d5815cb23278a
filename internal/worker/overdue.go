package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
)

// OverduePool scans for loans past their due date.
type OverduePool struct {
	*pool
}

func NewOverduePool(store *store.Store, size int, today model.Clock) *OverduePool {
	if size < 1 {
		size = 1
	}
	workers := make([]Worker, 0, size)
	for i := 0; i < size; i++ {
		workers = append(workers, &OverdueWorker{id: i, store: store, today: today})
	}
	return &OverduePool{pool: newPool(workers)}
}

type OverdueWorker struct {
	id    int
	store *store.Store
	today model.Clock
}

func (w *OverdueWorker) Run(ctx context.Context, c <-chan model.Job) {
	log.Debug("OverdueWorker is running", zap.Int("worker_id", w.id))

	for {
		select {
		case <-ctx.Done():
			log.Debug("OverdueWorker stopped", zap.Int("worker_id", w.id))
			return
		case job := <-c:
			log.Debug("Job received by worker", zap.Int("worker_id", w.id), zap.Int("job_id", job.ID))
			// A started scan is finished even when the pool is stopping.
			w.process(context.WithoutCancel(ctx), job)
		}
	}
}

func (w *OverdueWorker) process(ctx context.Context, job model.Job) {
	if _, err := w.store.UpdateJob(ctx, &model.UpdateJob{ID: job.ID, Status: model.JobStatusRunning}); err != nil {
		log.Error("Failed to mark job running", zap.Int("job_id", job.ID), zap.Error(err))
		return
	}

	result, err := w.scan(ctx)
	status := model.JobStatusDone
	if err != nil {
		log.Error("Overdue scan failed", zap.Int("job_id", job.ID), zap.Error(err))
		status, result = model.JobStatusFailed, err.Error()
	}
	if _, err := w.store.UpdateJob(ctx, &model.UpdateJob{ID: job.ID, Status: status, Result: &result}); err != nil {
		log.Error("Failed to finish job", zap.Int("job_id", job.ID), zap.Error(err))
	}
}

func (w *OverdueWorker) scan(ctx context.Context) (string, error) {
	today := w.today()
	onLoan := model.LoanStatusOnLoan
	overdue, err := w.store.ListBookInstances(ctx, &model.FindBookInstance{
		Status:    &onLoan,
		DueBefore: &today,
	})
	if err != nil {
		return "", err
	}
	for _, instance := range overdue {
		fields := []zap.Field{
			zap.String("instance_id", instance.ID),
			zap.String("book", instance.BookTitle),
			zap.Stringer("due_back", instance.DueBack),
		}
		if instance.BorrowerID != nil {
			fields = append(fields, zap.Int32("borrower_id", *instance.BorrowerID))
		}
		log.Warn("Loan is overdue", fields...)
	}
	return fmt.Sprintf("%d overdue", len(overdue)), nil
}

// EnqueueOverdueScan records a pending scan job and hands it to the pool.
func EnqueueOverdueScan(ctx context.Context, s *store.Store, p WorkPool) (*model.Job, error) {
	job, err := s.CreateJob(ctx, &model.Job{Type: model.JobTypeOverdueScan})
	if err != nil {
		return nil, err
	}
	if err := p.Push(*job); err != nil {
		result := err.Error()
		if _, uerr := s.UpdateJob(ctx, &model.UpdateJob{ID: job.ID, Status: model.JobStatusFailed, Result: &result}); uerr != nil {
			log.Error("Failed to mark job failed", zap.Int("job_id", job.ID), zap.Error(uerr))
		}
		return nil, err
	}
	return job, nil
}
