package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
)

// ── 教学日志模块业务错误 ──

var (
	ErrJournalNotFound    = errors.New("教学日志不存在")
	ErrJournalInvalidDate = errors.New("日期格式无效")
	ErrJournalForbidden   = errors.New("只能操作自己的教学日志")
)

// JournalService 教学日志业务接口
//
// 日志由授课教师填写，管理员可查看全部；创建成功后向班级学生投递
// 站内通知（逐人尊重通知偏好）
type JournalService interface {
	Create(ctx context.Context, req *dto.CreateJournalRequest, teacherID string) (*dto.JournalResponse, error)
	Get(ctx context.Context, journalID string) (*dto.JournalResponse, error)
	List(ctx context.Context, req *dto.JournalListRequest) ([]dto.JournalResponse, int64, error)
	Update(ctx context.Context, journalID string, req *dto.UpdateJournalRequest, callerID, callerRole string) (*dto.JournalResponse, error)
	Delete(ctx context.Context, journalID, callerID, callerRole string) error
}

type journalService struct {
	repo      *repository.Repository
	notifySvc NotificationService
	logger    *zap.Logger
}

// NewJournalService 创建 JournalService 实例
func NewJournalService(repo *repository.Repository, notifySvc NotificationService, logger *zap.Logger) JournalService {
	return &journalService{repo: repo, notifySvc: notifySvc, logger: logger}
}

func (s *journalService) Create(ctx context.Context, req *dto.CreateJournalRequest, teacherID string) (*dto.JournalResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrJournalInvalidDate
	}

	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	journal := &model.Journal{
		TeacherID:   teacherID,
		ClassID:     req.ClassID,
		Subject:     req.Subject,
		JournalDate: date,
		Period:      req.Period,
		Topic:       req.Topic,
		Notes:       req.Notes,
	}
	journal.CreatedBy = &teacherID
	journal.UpdatedBy = &teacherID

	if err := s.repo.Journal.Create(ctx, journal); err != nil {
		s.logger.Error("创建教学日志失败", zap.Error(err))
		return nil, err
	}

	s.notifyClass(ctx, journal, teacherID)

	resp := toJournalResponse(journal)
	return &resp, nil
}

func (s *journalService) Get(ctx context.Context, journalID string) (*dto.JournalResponse, error) {
	journal, err := s.repo.Journal.GetByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		s.logger.Error("查询教学日志失败", zap.Error(err))
		return nil, err
	}
	resp := toJournalResponse(journal)
	return &resp, nil
}

func (s *journalService) List(ctx context.Context, req *dto.JournalListRequest) ([]dto.JournalResponse, int64, error) {
	filter := repository.JournalFilter{
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, 0, ErrJournalInvalidDate
		}
		filter.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, 0, ErrJournalInvalidDate
		}
		filter.EndDate = &end
	}

	journals, total, err := s.repo.Journal.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教学日志列表失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.JournalResponse, 0, len(journals))
	for i := range journals {
		items = append(items, toJournalResponse(&journals[i]))
	}
	return items, total, nil
}

func (s *journalService) Update(ctx context.Context, journalID string, req *dto.UpdateJournalRequest, callerID, callerRole string) (*dto.JournalResponse, error) {
	journal, err := s.repo.Journal.GetByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		s.logger.Error("查询教学日志失败", zap.Error(err))
		return nil, err
	}

	if callerRole != model.RoleAdmin && journal.TeacherID != callerID {
		return nil, ErrJournalForbidden
	}

	if req.Subject != nil {
		journal.Subject = *req.Subject
	}
	if req.Period != nil {
		journal.Period = *req.Period
	}
	if req.Topic != nil {
		journal.Topic = *req.Topic
	}
	if req.Notes != nil {
		journal.Notes = *req.Notes
	}
	journal.UpdatedBy = &callerID

	if err := s.repo.Journal.Update(ctx, journal); err != nil {
		s.logger.Error("更新教学日志失败", zap.String("journal_id", journalID), zap.Error(err))
		return nil, err
	}

	resp := toJournalResponse(journal)
	return &resp, nil
}

func (s *journalService) Delete(ctx context.Context, journalID, callerID, callerRole string) error {
	journal, err := s.repo.Journal.GetByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJournalNotFound
		}
		s.logger.Error("查询教学日志失败", zap.Error(err))
		return err
	}

	if callerRole != model.RoleAdmin && journal.TeacherID != callerID {
		return ErrJournalForbidden
	}

	if err := s.repo.Journal.Delete(ctx, journalID, callerID); err != nil {
		s.logger.Error("删除教学日志失败", zap.String("journal_id", journalID), zap.Error(err))
		return err
	}
	return nil
}

// notifyClass 向班级全体学生投递日志更新通知；失败仅记日志
func (s *journalService) notifyClass(ctx context.Context, journal *model.Journal, teacherID string) {
	if s.notifySvc == nil {
		return
	}
	students, err := s.repo.User.ListByClass(ctx, journal.ClassID)
	if err != nil {
		s.logger.Warn("查询班级学生失败，跳过日志通知", zap.String("class_id", journal.ClassID), zap.Error(err))
		return
	}

	relatedType := "journal"
	for i := range students {
		if err := s.notifySvc.Dispatch(ctx, &DispatchRequest{
			UserID:      students[i].UserID,
			Type:        model.NotifyJournalPublished,
			Title:       "教学日志更新",
			Content:     fmt.Sprintf("%s %s 第%d节 的教学日志已发布", journal.JournalDate.Format("2006-01-02"), journal.Subject, journal.Period),
			RelatedType: &relatedType,
			RelatedID:   &journal.JournalID,
			CreatedBy:   teacherID,
		}); err != nil {
			s.logger.Warn("日志通知投递失败", zap.String("user_id", students[i].UserID), zap.Error(err))
		}
	}
}

func toJournalResponse(journal *model.Journal) dto.JournalResponse {
	resp := dto.JournalResponse{
		ID:        journal.JournalID,
		TeacherID: journal.TeacherID,
		ClassID:   journal.ClassID,
		Subject:   journal.Subject,
		Date:      journal.JournalDate.Format("2006-01-02"),
		Period:    journal.Period,
		Topic:     journal.Topic,
		Notes:     journal.Notes,
		CreatedAt: journal.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: journal.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if journal.Teacher != nil {
		resp.TeacherName = journal.Teacher.Name
	}
	if journal.Class != nil {
		resp.ClassName = journal.Class.Name
	}
	return resp
}
