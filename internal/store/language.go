package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
)

func (s *Store) CreateLanguage(ctx context.Context, create *model.Language) (*model.Language, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var language model.Language
	if err := s.db.QueryRowContext(ctx, "INSERT INTO language (name) VALUES (?) RETURNING id, name", create.Name).Scan(
		&language.ID,
		&language.Name,
	); err != nil {
		return nil, errors.Wrap(mapConstraintError(err), "failed to create language")
	}
	return &language, nil
}

func (s *Store) GetLanguage(ctx context.Context, find *model.FindLanguage) (*model.Language, error) {
	list, err := s.ListLanguages(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListLanguages(ctx context.Context, find *model.FindLanguage) ([]*model.Language, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "name = ? COLLATE NOCASE"), append(args, *v)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM language WHERE `+strings.Join(where, " AND ")+` ORDER BY name`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query languages")
	}
	defer rows.Close()

	list := make([]*model.Language, 0)
	for rows.Next() {
		var language model.Language
		if err := rows.Scan(&language.ID, &language.Name); err != nil {
			return nil, err
		}
		list = append(list, &language)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
