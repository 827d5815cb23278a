package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

func (s *Store) CreateGenre(ctx context.Context, create *model.Genre) (*model.Genre, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var genre model.Genre
	if err := s.db.QueryRowContext(ctx, "INSERT INTO genre (name) VALUES (?) RETURNING id, name", create.Name).Scan(
		&genre.ID,
		&genre.Name,
	); err != nil {
		return nil, errors.Wrap(mapConstraintError(err), "failed to create genre")
	}
	return &genre, nil
}

func (s *Store) GetGenre(ctx context.Context, find *model.FindGenre) (*model.Genre, error) {
	list, err := s.ListGenres(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListGenres(ctx context.Context, find *model.FindGenre) ([]*model.Genre, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "name = ? COLLATE NOCASE"), append(args, *v)
	}
	if v := find.NameContains; v != nil {
		where, args = append(where, "instr(lower(name), lower(?)) > 0"), append(args, *v)
	}
	if len(find.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(find.IDs))+")")
		for _, id := range find.IDs {
			args = append(args, id)
		}
	}

	query := `SELECT id, name FROM genre WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name`
	log.Debug("SQL query", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query genres")
	}
	defer rows.Close()

	list := make([]*model.Genre, 0)
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, err
		}
		list = append(list, &genre)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ListBookGenres returns the genres of a book ordered by genre id, the
// order display_genre uses.
func (s *Store) ListBookGenres(ctx context.Context, bookID int) ([]*model.Genre, error) {
	query := `
		SELECT genre.id, genre.name
		FROM book_genre_link
		JOIN genre ON genre.id = book_genre_link.genre_id
		WHERE book_genre_link.book_id = ?
		ORDER BY genre.id
	`
	rows, err := s.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query book genres")
	}
	defer rows.Close()

	list := make([]*model.Genre, 0)
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, err
		}
		list = append(list, &genre)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
