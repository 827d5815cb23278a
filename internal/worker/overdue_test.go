package worker_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/store/db"
	"github.com/Xunop/e-library/internal/worker"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })

	d, err := db.NewDB(filepath.Join(t.TempDir(), "e-library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return store.NewStore(d.DB)
}

func fixedClock(day string) model.Clock {
	return func() model.Date {
		d, err := model.ParseDate(day)
		if err != nil {
			panic(err)
		}
		return d
	}
}

func lend(t *testing.T, s *store.Store, bookID int, borrowerID int32, due string) {
	t.Helper()
	d, err := model.ParseDate(due)
	require.NoError(t, err)
	_, err = s.CreateBookInstance(context.Background(), &model.BookInstance{
		BookID:     bookID,
		Imprint:    "Reprint",
		Status:     model.LoanStatusOnLoan,
		DueBack:    &d,
		BorrowerID: &borrowerID,
	})
	require.NoError(t, err)
}

func waitForJob(t *testing.T, s *store.Store, id int) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = s.GetJob(context.Background(), &model.FindJob{ID: &id})
		require.NoError(t, err)
		return job.Status == model.JobStatusDone || job.Status == model.JobStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestOverdueScanCountsLateLoans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.CreateUser(ctx, &model.User{Username: "reader", Role: model.RoleMember, PasswordHash: "hash"})
	require.NoError(t, err)
	book, err := s.CreateBook(ctx, &model.Book{Title: "Late Book", ISBN: "9780000000001"}, nil)
	require.NoError(t, err)

	lend(t, s, book.ID, user.ID, "2024-01-08")
	lend(t, s, book.ID, user.ID, "2024-01-09")
	// Due today is not late yet.
	lend(t, s, book.ID, user.ID, "2024-01-10")

	pool := worker.NewOverduePool(s, 2, fixedClock("2024-01-10"))
	defer pool.Stop()

	job, err := worker.EnqueueOverdueScan(ctx, s, pool)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeOverdueScan, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)

	done := waitForJob(t, s, job.ID)
	assert.Equal(t, model.JobStatusDone, done.Status)
	assert.Equal(t, "2 overdue", done.Result)
}

func TestPushAfterStop(t *testing.T) {
	s := newTestStore(t)

	pool := worker.NewOverduePool(s, 1, fixedClock("2024-01-10"))
	pool.Stop()

	assert.ErrorIs(t, pool.Push(model.Job{ID: 1}), worker.ErrPoolStopped)

	_, err := worker.EnqueueOverdueScan(context.Background(), s, pool)
	assert.ErrorIs(t, err, worker.ErrPoolStopped)

	failed := model.JobStatusFailed
	jobs, err := s.ListJobs(context.Background(), &model.FindJob{Status: &failed})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
