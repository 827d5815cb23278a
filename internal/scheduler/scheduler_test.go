package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/store/db"
)

type recordingPool struct {
	mu   sync.Mutex
	jobs []model.Job
}

func (p *recordingPool) Push(job model.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPool) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "e-library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return store.NewStore(d.DB)
}

func TestInvalidSchedule(t *testing.T) {
	_, err := New("every full moon", time.UTC, nil, &recordingPool{})
	assert.Error(t, err)
}

func TestSchedulerEnqueuesScan(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })

	s := newTestStore(t)
	pool := &recordingPool{}
	sched, err := New("@every 1s", time.UTC, s, pool)
	require.NoError(t, err)

	sched.Start()
	assert.Eventually(t, func() bool { return pool.count() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sched.Stop(ctx))

	pending := model.JobStatusPending
	jobs, err := s.ListJobs(context.Background(), &model.FindJob{Status: &pending})
	require.NoError(t, err)
	assert.NotEmpty(t, jobs)
	assert.Equal(t, model.JobTypeOverdueScan, jobs[0].Type)
}
