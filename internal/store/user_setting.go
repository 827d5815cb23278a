package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
)

func (s *Store) UpsertUserSetting(ctx context.Context, userSetting *model.UserSetting) (*model.UserSetting, error) {
	query := `
		INSERT INTO user_setting (user_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE
		SET value = EXCLUDED.value
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	if _, err := s.db.ExecContext(ctx, query, userSetting.UserID, string(userSetting.Key), userSetting.Value); err != nil {
		return nil, errors.Wrap(err, "failed to upsert user setting")
	}
	s.userSettingCache.Store(getUserSettingCacheKey(userSetting.UserID, userSetting.Key), userSetting)
	return userSetting, nil
}

func (s *Store) GetUserSetting(ctx context.Context, find *model.FindUserSetting) (*model.UserSetting, error) {
	if find.UserID != nil {
		if cache, ok := s.userSettingCache.Load(getUserSettingCacheKey(*find.UserID, find.Key)); ok {
			return cache.(*model.UserSetting), nil
		}
	}

	list, err := s.ListUserSettings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	if len(list) > 1 {
		return nil, errors.Errorf("Expected 1 user setting, but got %d", len(list))
	}

	userSetting := list[0]
	s.userSettingCache.Store(getUserSettingCacheKey(userSetting.UserID, userSetting.Key), userSetting)
	return userSetting, nil
}

func (s *Store) ListUserSettings(ctx context.Context, find *model.FindUserSetting) ([]*model.UserSetting, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Key; v != "" {
		where, args = append(where, "key = ?"), append(args, string(v))
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}

	query := `
		SELECT
			user_id,
			key,
			value
		FROM user_setting
		WHERE ` + strings.Join(where, " AND ")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userSettingList := make([]*model.UserSetting, 0)
	for rows.Next() {
		userSetting := &model.UserSetting{}
		if err := rows.Scan(
			&userSetting.UserID,
			&userSetting.Key,
			&userSetting.Value,
		); err != nil {
			return nil, err
		}
		userSettingList = append(userSettingList, userSetting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return userSettingList, nil
}

// GetUserAccessTokens returns the tokens the user may still present.
func (s *Store) GetUserAccessTokens(ctx context.Context, userID int32) ([]*model.AccessToken, error) {
	userSetting, err := s.GetUserSetting(ctx, &model.FindUserSetting{
		UserID: &userID,
		Key:    model.UserSettingKeyAccessTokens,
	})
	if err != nil {
		return nil, err
	}
	if userSetting == nil {
		return []*model.AccessToken{}, nil
	}

	accessTokens := &model.AccessTokensUserSetting{}
	if err := json.Unmarshal([]byte(userSetting.Value), accessTokens); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal access tokens")
	}
	return accessTokens.AccessTokens, nil
}

func (s *Store) UpsertUserAccessTokens(ctx context.Context, userID int32, tokens []*model.AccessToken) error {
	_, err := s.UpsertUserSetting(ctx, &model.UserSetting{
		UserID: userID,
		Key:    model.UserSettingKeyAccessTokens,
		Value:  (&model.AccessTokensUserSetting{AccessTokens: tokens}).String(),
	})
	return err
}

func getUserSettingCacheKey(userID int32, key model.UserSettingKey) string {
	return fmt.Sprintf("%d-%s", userID, key)
}
