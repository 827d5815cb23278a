package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

const bookInstanceQuery = `
	SELECT
		book_instance.id,
		book_instance.book_id,
		book_instance.imprint,
		book_instance.due_back,
		book_instance.borrower_id,
		book_instance.status,
		book_instance.created_ts,
		book_instance.updated_ts,
		book.title,
		COALESCE(user.username, '')
	FROM book_instance
	JOIN book ON book.id = book_instance.book_id
	LEFT JOIN user ON user.id = book_instance.borrower_id
`

func scanBookInstance(row rowScanner) (*model.BookInstance, error) {
	var instance model.BookInstance
	var dueBack sql.NullString
	var borrowerID sql.NullInt32
	if err := row.Scan(
		&instance.ID,
		&instance.BookID,
		&instance.Imprint,
		&dueBack,
		&borrowerID,
		&instance.Status,
		&instance.CreatedTs,
		&instance.UpdatedTs,
		&instance.BookTitle,
		&instance.BorrowerUsername,
	); err != nil {
		return nil, err
	}
	var err error
	if instance.DueBack, err = scanDate(dueBack); err != nil {
		return nil, err
	}
	if borrowerID.Valid {
		v := borrowerID.Int32
		instance.BorrowerID = &v
	}
	return &instance, nil
}

func (s *Store) GetBookInstance(ctx context.Context, find *model.FindBookInstance) (*model.BookInstance, error) {
	list, err := s.ListBookInstances(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListBookInstances(ctx context.Context, find *model.FindBookInstance) ([]*model.BookInstance, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "book_instance.id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "book_instance.book_id = ?"), append(args, *v)
	}
	if v := find.BorrowerID; v != nil {
		where, args = append(where, "book_instance.borrower_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "book_instance.status = ?"), append(args, v.String())
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "book_instance.due_back < ?"), append(args, v.String())
	}
	if v := find.DueBack; v != nil {
		where, args = append(where, "book_instance.due_back = ?"), append(args, v.String())
	}

	orderBy := "book_instance.due_back, book_instance.id"
	if find.OrderBy == "book" {
		orderBy = "book.title, book_instance.id"
	}

	query := bookInstanceQuery + `WHERE ` + strings.Join(where, " AND ") + ` ORDER BY ` + orderBy + limitOffset(find.Limit, find.Offset)
	log.Debug("SQL query", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query book instances")
	}
	defer rows.Close()

	list := make([]*model.BookInstance, 0)
	for rows.Next() {
		instance, err := scanBookInstance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateBookInstance generates the id and defaults the status to maintenance.
func (s *Store) CreateBookInstance(ctx context.Context, create *model.BookInstance) (*model.BookInstance, error) {
	if create.ID == "" {
		create.ID = util.GenUUID()
	}
	if create.Status == "" {
		create.Status = model.LoanStatusMaintenance
	}

	s.dbLock.Lock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_instance (id, book_id, imprint, due_back, borrower_id, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		create.ID, create.BookID, create.Imprint, dateArg(create.DueBack), int32Arg(create.BorrowerID), create.Status.String(),
	)
	s.dbLock.Unlock()
	if err != nil {
		return nil, errors.Wrap(mapConstraintError(err), "failed to create book instance")
	}

	return s.GetBookInstance(ctx, &model.FindBookInstance{ID: &create.ID})
}

// UpdateBookInstance loads the copy, lets mutate change it and writes it
// back, all inside one transaction. An error from mutate aborts the write.
func (s *Store) UpdateBookInstance(ctx context.Context, id string, mutate func(*model.BookInstance) error) (*model.BookInstance, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	instance, err := scanBookInstance(tx.QueryRowContext(ctx, bookInstanceQuery+"WHERE book_instance.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load book instance")
	}

	if err := mutate(instance); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE book_instance
		SET book_id = ?, imprint = ?, due_back = ?, borrower_id = ?, status = ?, updated_ts = strftime('%s', 'now')
		WHERE id = ?`,
		instance.BookID, instance.Imprint, dateArg(instance.DueBack), int32Arg(instance.BorrowerID), instance.Status.String(), id,
	); err != nil {
		return nil, errors.Wrap(mapConstraintError(err), "failed to update book instance")
	}

	updated, err := scanBookInstance(tx.QueryRowContext(ctx, bookInstanceQuery+"WHERE book_instance.id = ?", id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload book instance")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Debug("Book instance updated", zap.String("id", id), zap.String("status", updated.Status.String()))
	return updated, nil
}

func (s *Store) DeleteBookInstance(ctx context.Context, id string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM book_instance WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(mapConstraintError(err), "failed to delete book instance")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
