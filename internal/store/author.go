package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row rowScanner) (*model.Author, error) {
	var author model.Author
	var dateOfBirth, dateOfDeath sql.NullString
	if err := row.Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&dateOfBirth,
		&dateOfDeath,
	); err != nil {
		return nil, err
	}
	var err error
	if author.DateOfBirth, err = scanDate(dateOfBirth); err != nil {
		return nil, err
	}
	if author.DateOfDeath, err = scanDate(dateOfDeath); err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *Store) CreateAuthor(ctx context.Context, create *model.Author) (*model.Author, error) {
	stmt := `
		INSERT INTO author (first_name, last_name, date_of_birth, date_of_death)
		VALUES (?, ?, ?, ?)
		RETURNING id, first_name, last_name, date_of_birth, date_of_death
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	author, err := scanAuthor(tx.QueryRowContext(ctx, stmt, create.FirstName, create.LastName, dateArg(create.DateOfBirth), dateArg(create.DateOfDeath)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create author")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *Store) GetAuthor(ctx context.Context, find *model.FindAuthor) (*model.Author, error) {
	list, err := s.ListAuthors(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListAuthors(ctx context.Context, find *model.FindAuthor) ([]*model.Author, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			first_name,
			last_name,
			date_of_birth,
			date_of_death
		FROM author
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY last_name, first_name, id` + limitOffset(find.Limit, find.Offset)

	log.Debug("SQL query", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query authors")
	}
	defer rows.Close()

	list := make([]*model.Author, 0)
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, author)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, update *model.Author) (*model.Author, error) {
	stmt := `
		UPDATE author
		SET first_name = ?, last_name = ?, date_of_birth = ?, date_of_death = ?
		WHERE id = ?
		RETURNING id, first_name, last_name, date_of_birth, date_of_death
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	author, err := scanAuthor(tx.QueryRowContext(ctx, stmt, update.FirstName, update.LastName, dateArg(update.DateOfBirth), dateArg(update.DateOfDeath), update.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update author")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.invalidateBooks()
	return author, nil
}

// DeleteAuthor removes the author, their books keep existing without one.
func (s *Store) DeleteAuthor(ctx context.Context, id int) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM author WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(mapConstraintError(err), "failed to delete author")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidateBooks()
	return nil
}
