package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

// GetSystemSetting returns nil when the setting was never written.
func (s *Store) GetSystemSetting(ctx context.Context, name string) (*model.SystemSetting, error) {
	if cache, ok := s.systemSettingCache.Load(name); ok {
		return cache.(*model.SystemSetting), nil
	}

	setting := &model.SystemSetting{}
	stmt := `SELECT name, value, description FROM system_setting WHERE name = ?`
	if err := s.db.QueryRowContext(ctx, stmt, name).Scan(&setting.Name, &setting.Value, &setting.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get system setting")
	}

	s.systemSettingCache.Store(name, setting)
	return setting, nil
}

func (s *Store) UpsertSystemSetting(ctx context.Context, setting *model.SystemSetting) (*model.SystemSetting, error) {
	switch setting.Name {
	case model.SettingTypeGeneral:
		if _, err := setting.GetGeneral(); err != nil {
			return nil, errors.Wrap(err, "invalid general setting")
		}
	case model.SettingTypeSecurity:
		if _, err := setting.GetSecurity(); err != nil {
			return nil, errors.Wrap(err, "invalid security setting")
		}
	default:
		log.Debug("Unsupported system setting key", zap.String("setting", setting.Name))
		return nil, errors.Errorf("unsupported system setting key: %v", setting.Name)
	}

	stmt := `
	INSERT INTO system_setting (
		name, value, description
	)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE
	SET
		value = EXCLUDED.value,
		description = EXCLUDED.description
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	if _, err := s.db.ExecContext(ctx, stmt, setting.Name, setting.Value, setting.Description); err != nil {
		return nil, errors.Wrap(err, "failed to insert/update system setting")
	}
	s.systemSettingCache.Store(setting.Name, setting)
	return setting, nil
}

// GetOrUpsertSecuritySetting generates the JWT secret on first use.
func (s *Store) GetOrUpsertSecuritySetting(ctx context.Context) (*model.SystemSettingSecurity, error) {
	systemSetting, err := s.GetSystemSetting(ctx, model.SettingTypeSecurity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get security settings")
	}

	securitySetting := &model.SystemSettingSecurity{}
	if systemSetting != nil {
		if securitySetting, err = systemSetting.GetSecurity(); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal security settings")
		}
	}
	if securitySetting.JWTSecret != "" {
		return securitySetting, nil
	}

	log.Debug("No JWT secret found, create it")
	secret, err := util.RandomString(32)
	if err != nil {
		return nil, err
	}
	securitySetting = &model.SystemSettingSecurity{JWTSecret: secret}
	if _, err := s.UpsertSystemSetting(ctx, &model.SystemSetting{
		Name:        model.SettingTypeSecurity,
		Value:       securitySetting.ToJSON(),
		Description: "access token signing key",
	}); err != nil {
		return nil, errors.Wrap(err, "failed to upsert security settings")
	}
	return securitySetting, nil
}

// GetGeneralSetting falls back to the zero settings when none are stored.
func (s *Store) GetGeneralSetting(ctx context.Context) (*model.SystemSettingGeneral, error) {
	systemSetting, err := s.GetSystemSetting(ctx, model.SettingTypeGeneral)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get system general setting")
	}
	if systemSetting == nil {
		return &model.SystemSettingGeneral{}, nil
	}
	return systemSetting.GetGeneral()
}

func (s *Store) UpsertGeneralSetting(ctx context.Context, settings *model.SystemSettingGeneral) (*model.SystemSettingGeneral, error) {
	if _, err := s.UpsertSystemSetting(ctx, &model.SystemSetting{
		Name:  model.SettingTypeGeneral,
		Value: settings.ToJSON(),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to upsert general settings")
	}
	return settings, nil
}
