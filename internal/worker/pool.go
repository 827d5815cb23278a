package worker

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
)

var ErrPoolStopped = errors.New("worker pool is stopped")

type WorkPool interface {
	Push(job model.Job) error
}

// pool runs a fixed set of workers over one buffered queue.
type pool struct {
	queue  chan model.Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPool(workers []Worker) *pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pool{
		queue:  make(chan model.Job, len(workers)*4),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, w := range workers {
		p.wg.Add(1)
		go func(w Worker) {
			defer p.wg.Done()
			w.Run(p.ctx, p.queue)
		}(w)
	}
	return p
}

// Push queues a job, blocking while the queue is full.
func (p *pool) Push(job model.Job) error {
	if p.ctx.Err() != nil {
		return ErrPoolStopped
	}
	select {
	case p.queue <- job:
		return nil
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// Stop lets running jobs finish and waits for every worker to exit.
// Jobs still queued stay pending.
func (p *pool) Stop() {
	p.cancel()
	p.wg.Wait()
}
