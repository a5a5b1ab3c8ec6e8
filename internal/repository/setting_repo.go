package repository

import (
	"context"

	"gorm.io/gorm"

	"classtrack/backend/internal/model"
)

// SettingRepository 考勤设置数据访问接口（单行表）
type SettingRepository interface {
	Get(ctx context.Context) (*model.AttendanceSetting, error)
	Update(ctx context.Context, setting *model.AttendanceSetting) error
}

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo 创建 SettingRepository 实例
func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context) (*model.AttendanceSetting, error) {
	var setting model.AttendanceSetting
	err := r.db.WithContext(ctx).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) Update(ctx context.Context, setting *model.AttendanceSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
