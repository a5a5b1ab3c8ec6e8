package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/repository"
)

// ── 考勤设置模块业务错误 ──

var (
	ErrSettingNotFound    = errors.New("考勤设置不存在")
	ErrSettingInvalidTime = errors.New("时间格式无效，应为 HH:MM")
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// SettingService 考勤设置业务接口（单行配置，仅管理员可改）
type SettingService interface {
	Get(ctx context.Context) (*dto.SettingResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingRequest, callerID string) (*dto.SettingResponse, error)
}

type settingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingService 创建 SettingService 实例
func NewSettingService(repo *repository.Repository, logger *zap.Logger) SettingService {
	return &settingService{repo: repo, logger: logger}
}

func (s *settingService) Get(ctx context.Context) (*dto.SettingResponse, error) {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("查询考勤设置失败", zap.Error(err))
		return nil, err
	}
	return &dto.SettingResponse{
		StudentArrivalTime:   setting.StudentArrivalTime,
		StudentDepartureTime: setting.StudentDepartureTime,
		StaffArrivalTime:     setting.StaffArrivalTime,
		StaffDepartureTime:   setting.StaffDepartureTime,
		DefaultMethod:        setting.DefaultMethod,
		UpdatedAt:            setting.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func (s *settingService) Update(ctx context.Context, req *dto.UpdateSettingRequest, callerID string) (*dto.SettingResponse, error) {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		s.logger.Error("查询考勤设置失败", zap.Error(err))
		return nil, err
	}

	apply := func(dst *string, src *string) error {
		if src == nil {
			return nil
		}
		if !clockPattern.MatchString(*src) {
			return fmt.Errorf("%w: %s", ErrSettingInvalidTime, *src)
		}
		*dst = *src
		return nil
	}
	if err := apply(&setting.StudentArrivalTime, req.StudentArrivalTime); err != nil {
		return nil, err
	}
	if err := apply(&setting.StudentDepartureTime, req.StudentDepartureTime); err != nil {
		return nil, err
	}
	if err := apply(&setting.StaffArrivalTime, req.StaffArrivalTime); err != nil {
		return nil, err
	}
	if err := apply(&setting.StaffDepartureTime, req.StaffDepartureTime); err != nil {
		return nil, err
	}
	if req.DefaultMethod != nil {
		setting.DefaultMethod = *req.DefaultMethod
	}
	setting.UpdatedBy = &callerID

	if err := s.repo.Setting.Update(ctx, setting); err != nil {
		s.logger.Error("更新考勤设置失败", zap.Error(err))
		return nil, err
	}

	return &dto.SettingResponse{
		StudentArrivalTime:   setting.StudentArrivalTime,
		StudentDepartureTime: setting.StudentDepartureTime,
		StaffArrivalTime:     setting.StaffArrivalTime,
		StaffDepartureTime:   setting.StaffDepartureTime,
		DefaultMethod:        setting.DefaultMethod,
		UpdatedAt:            setting.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
