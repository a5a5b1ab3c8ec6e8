package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var ErrNotificationNotFound = errors.New("通知不存在")

// DispatchRequest 站内通知投递参数（供考勤、日志等模块调用）
type DispatchRequest struct {
	UserID      string
	Type        string
	Title       string
	Content     string
	RelatedType *string
	RelatedID   *string
	CreatedBy   string
}

// NotificationService 通知业务接口
type NotificationService interface {
	// Dispatch 投递一条站内通知；接收者偏好关闭该类型时静默跳过
	Dispatch(ctx context.Context, req *DispatchRequest) error
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Dispatch(ctx context.Context, req *DispatchRequest) error {
	pref, err := s.repo.Notification.GetPreference(ctx, req.UserID)
	switch {
	case err == nil:
		if !pref.Allows(req.Type) {
			return nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 未配置偏好视为全部允许
	default:
		s.logger.Error("查询通知偏好失败", zap.String("user_id", req.UserID), zap.Error(err))
		return fmt.Errorf("查询通知偏好失败: %w", err)
	}

	notification := &model.Notification{
		UserID:      req.UserID,
		Type:        req.Type,
		Title:       req.Title,
		Content:     req.Content,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
	}
	if req.CreatedBy != "" {
		notification.CreatedBy = &req.CreatedBy
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Error("创建通知失败", zap.String("user_id", req.UserID), zap.Error(err))
		return fmt.Errorf("创建通知失败: %w", err)
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, fmt.Errorf("查询通知列表失败: %w", err)
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, toNotificationResponse(&notifications[i]))
	}
	return items, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	err := s.repo.Notification.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("标记通知已读失败", zap.String("notification_id", notificationID), zap.Error(err))
		return fmt.Errorf("标记通知已读失败: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("批量标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("批量标记已读失败: %w", err)
	}
	return nil
}

func (s *notificationService) GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.Notification.GetPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 未配置时返回默认偏好（全部开启）
			return &dto.PreferenceResponse{AbsenceMarked: true, LateArrival: true, JournalPublished: true}, nil
		}
		s.logger.Error("查询通知偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("查询通知偏好失败: %w", err)
	}
	return &dto.PreferenceResponse{
		AbsenceMarked:    pref.AbsenceMarked,
		LateArrival:      pref.LateArrival,
		JournalPublished: pref.JournalPublished,
	}, nil
}

func (s *notificationService) UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	pref, err := s.repo.Notification.GetPreference(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询通知偏好失败", zap.String("user_id", userID), zap.Error(err))
			return nil, fmt.Errorf("查询通知偏好失败: %w", err)
		}
		pref = &model.NotificationPreference{
			UserID:           userID,
			AbsenceMarked:    true,
			LateArrival:      true,
			JournalPublished: true,
		}
	}

	if req.AbsenceMarked != nil {
		pref.AbsenceMarked = *req.AbsenceMarked
	}
	if req.LateArrival != nil {
		pref.LateArrival = *req.LateArrival
	}
	if req.JournalPublished != nil {
		pref.JournalPublished = *req.JournalPublished
	}
	pref.UpdatedBy = &userID

	if err := s.repo.Notification.SavePreference(ctx, pref); err != nil {
		s.logger.Error("保存通知偏好失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("保存通知偏好失败: %w", err)
	}
	return &dto.PreferenceResponse{
		AbsenceMarked:    pref.AbsenceMarked,
		LateArrival:      pref.LateArrival,
		JournalPublished: pref.JournalPublished,
	}, nil
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		Type:        n.Type,
		Title:       n.Title,
		Content:     n.Content,
		IsRead:      n.IsRead,
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   n.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
