package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
)

const jobColumns = `id, type, status, result, created_ts, updated_ts`

func scanJob(row rowScanner) (*model.Job, error) {
	var job model.Job
	if err := row.Scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&job.Result,
		&job.CreatedTs,
		&job.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *Store) CreateJob(ctx context.Context, create *model.Job) (*model.Job, error) {
	if create.Status == "" {
		create.Status = model.JobStatusPending
	}
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	job, err := scanJob(s.db.QueryRowContext(ctx,
		`INSERT INTO job (type, status, result) VALUES (?, ?, ?) RETURNING `+jobColumns,
		string(create.Type), string(create.Status), create.Result,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create job")
	}
	return job, nil
}

func (s *Store) UpdateJob(ctx context.Context, update *model.UpdateJob) (*model.Job, error) {
	set, args := []string{"status = ?", "updated_ts = strftime('%s', 'now')"}, []any{string(update.Status)}
	if v := update.Result; v != nil {
		set, args = append(set, "result = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	job, err := scanJob(s.db.QueryRowContext(ctx, `UPDATE job SET `+strings.Join(set, ", ")+` WHERE id = ? RETURNING `+jobColumns, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update job")
	}
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, find *model.FindJob) (*model.Job, error) {
	list, err := s.ListJobs(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListJobs(ctx context.Context, find *model.FindJob) ([]*model.Job, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "type = ?"), append(args, string(*v))
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, string(*v))
	}

	query := `SELECT ` + jobColumns + ` FROM job WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC` + limitOffset(find.Limit, nil)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query jobs")
	}
	defer rows.Close()

	list := make([]*model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
