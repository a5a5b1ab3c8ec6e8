package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
)

// ── 学期模块业务错误 ──

var (
	ErrTermNotFound     = errors.New("学期不存在")
	ErrTermInvalidRange = errors.New("学期起始日期不能晚于结束日期")
	ErrTermInvalidDate  = errors.New("日期格式无效")
	ErrTermNoActive     = errors.New("当前无活动学期")
)

// TermService 学期管理业务接口
type TermService interface {
	Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error)
	Get(ctx context.Context, termID string) (*dto.TermResponse, error)
	GetActive(ctx context.Context) (*dto.TermResponse, error)
	List(ctx context.Context) ([]dto.TermResponse, error)
	Update(ctx context.Context, termID string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error)
	// Activate 切换活动学期：全表清除活动标记后置位，单事务执行
	Activate(ctx context.Context, termID, callerID string) error
	Delete(ctx context.Context, termID, callerID string) error
}

type termService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTermService 创建 TermService 实例
func NewTermService(repo *repository.Repository, logger *zap.Logger) TermService {
	return &termService{repo: repo, logger: logger}
}

func (s *termService) Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrTermInvalidDate
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrTermInvalidDate
	}
	if start.After(end) {
		return nil, ErrTermInvalidRange
	}

	term := &model.Term{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    start,
		EndDate:      end,
	}
	term.CreatedBy = &callerID
	term.UpdatedBy = &callerID

	if err := s.repo.Term.Create(ctx, term); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	resp := toTermResponse(term)
	return &resp, nil
}

func (s *termService) Get(ctx context.Context, termID string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}
	resp := toTermResponse(term)
	return &resp, nil
}

func (s *termService) GetActive(ctx context.Context) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNoActive
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}
	resp := toTermResponse(term)
	return &resp, nil
}

func (s *termService) List(ctx context.Context) ([]dto.TermResponse, error) {
	terms, err := s.repo.Term.List(ctx)
	if err != nil {
		s.logger.Error("查询学期列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.TermResponse, 0, len(terms))
	for i := range terms {
		items = append(items, toTermResponse(&terms[i]))
	}
	return items, nil
}

func (s *termService) Update(ctx context.Context, termID string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		term.Name = *req.Name
	}
	if req.AcademicYear != nil {
		term.AcademicYear = *req.AcademicYear
	}
	if req.StartDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrTermInvalidDate
		}
		term.StartDate = start
	}
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrTermInvalidDate
		}
		term.EndDate = end
	}
	if term.StartDate.After(term.EndDate) {
		return nil, ErrTermInvalidRange
	}
	term.UpdatedBy = &callerID

	if err := s.repo.Term.Update(ctx, term); err != nil {
		s.logger.Error("更新学期失败", zap.String("term_id", termID), zap.Error(err))
		return nil, err
	}

	resp := toTermResponse(term)
	return &resp, nil
}

func (s *termService) Activate(ctx context.Context, termID, callerID string) error {
	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return err
	}

	tx := s.repo.BeginTx()
	if tx != nil {
		defer tx.Rollback()
	}
	r := s.repo.WithTx(tx)

	if err := r.Term.ClearActive(ctx); err != nil {
		s.logger.Error("清除活动学期失败", zap.Error(err))
		return err
	}

	term.IsActive = true
	term.UpdatedBy = &callerID
	if err := r.Term.Update(ctx, term); err != nil {
		s.logger.Error("激活学期失败", zap.String("term_id", termID), zap.Error(err))
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}

func (s *termService) Delete(ctx context.Context, termID, callerID string) error {
	if _, err := s.repo.Term.GetByID(ctx, termID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return err
	}
	if err := s.repo.Term.Delete(ctx, termID, callerID); err != nil {
		s.logger.Error("删除学期失败", zap.String("term_id", termID), zap.Error(err))
		return err
	}
	return nil
}

func toTermResponse(term *model.Term) dto.TermResponse {
	return dto.TermResponse{
		ID:           term.TermID,
		Name:         term.Name,
		AcademicYear: term.AcademicYear,
		StartDate:    term.StartDate.Format("2006-01-02"),
		EndDate:      term.EndDate.Format("2006-01-02"),
		IsActive:     term.IsActive,
		CreatedAt:    term.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    term.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
