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

const userColumns = `
	id,
	username,
	role,
	email,
	nickname,
	password_hash,
	created_ts,
	updated_ts,
	last_login_ts,
	row_status
`

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	// The ordering of scanned fields should be consistent with userColumns
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.Email,
		&user.Nickname,
		&user.PasswordHash,
		&user.CreatedTs,
		&user.UpdatedTs,
		&user.LastLoginTs,
		&user.RowStatus,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, find *model.FindUser) (*model.User, error) {
	if find.ID != nil {
		if cache, ok := s.userCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.userCache.Store(user.ID, user)
	return user, nil
}

// ListUsers returns password hashes too, strip them before responding.
func (s *Store) ListUsers(ctx context.Context, find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "row_status = ?"), append(args, string(*v))
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, v.String())
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}

	query := `SELECT ` + userColumns + ` FROM user WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC` + limitOffset(find.Limit, nil)
	log.Debug("SQL query", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Debug("Error querying users", zap.Error(err))
		return nil, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) CreateUser(ctx context.Context, create *model.User) (*model.User, error) {
	fields := []string{"`username`", "`role`", "`email`", "`nickname`", "`password_hash`"}
	args := []any{create.Username, create.Role.String(), create.Email, create.Nickname, create.PasswordHash}
	stmt := "INSERT INTO user (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(fields)) + ") RETURNING " + userColumns

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(mapConstraintError(err), "failed to create user")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.userCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *model.UpdateUser) (*model.User, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = ?"), append(args, string(*v))
	}
	if v := update.Role; v != nil {
		set, args = append(set, "role = ?"), append(args, v.String())
	}
	if v := update.Email; v != nil {
		set, args = append(set, "email = ?"), append(args, *v)
	}
	if v := update.Nickname; v != nil {
		set, args = append(set, "nickname = ?"), append(args, *v)
	}
	if v := update.PasswordHash; v != nil {
		set, args = append(set, "password_hash = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := `UPDATE user SET ` + strings.Join(set, ", ") + ` WHERE id = ? RETURNING ` + userColumns

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	user, err := scanUser(s.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update user")
	}
	s.userCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) SetLastLogin(ctx context.Context, userID int32) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	if _, err := s.db.ExecContext(ctx, `UPDATE user SET last_login_ts = strftime('%s', 'now') WHERE id = ?`, userID); err != nil {
		return errors.Wrap(err, "store: unable to update last login date")
	}
	s.userCache.Delete(userID)
	return nil
}
