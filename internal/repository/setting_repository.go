package repository

import (
	"context"

	"planner/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository stores local storage items in the client_settings table.
type SettingRepository struct {
	db *gorm.DB
}

var _ LocalStorage = (*SettingRepository)(nil)

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	var settings []model.ClientSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).Find(&settings).Error
	if err != nil {
		return "", false, err
	}
	if len(settings) == 0 {
		return "", false, nil
	}
	return settings[0].Value, true, nil
}

func (r *SettingRepository) SetItem(ctx context.Context, key, value string) error {
	setting := model.ClientSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

func (r *SettingRepository) RemoveItem(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.ClientSetting{}).Error
}

func (r *SettingRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
