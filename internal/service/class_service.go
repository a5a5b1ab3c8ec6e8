package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
)

// ── 班级模块业务错误 ──

var (
	ErrClassTeacherInvalid = errors.New("班主任必须是教师角色")
	ErrClassHasStudents    = errors.New("班级仍有学生，无法删除")
	ErrClassStudentInvalid = errors.New("只能将学生分配到班级")
)

// ClassService 班级管理业务接口
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassDetailResponse, error)
	Get(ctx context.Context, classID string) (*dto.ClassDetailResponse, error)
	List(ctx context.Context) ([]dto.ClassDetailResponse, error)
	Update(ctx context.Context, classID string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassDetailResponse, error)
	Delete(ctx context.Context, classID, callerID string) error
	// AssignStudents 批量将学生划入班级
	AssignStudents(ctx context.Context, classID string, req *dto.AssignStudentsRequest, callerID string) error
	// ListStudents 班级学生名单（姓名升序）
	ListStudents(ctx context.Context, classID string) ([]dto.UserResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassDetailResponse, error) {
	if req.HomeroomTeacherID != nil {
		if err := s.checkTeacher(ctx, *req.HomeroomTeacherID); err != nil {
			return nil, err
		}
	}

	class := &model.Class{
		Name:              req.Name,
		Grade:             req.Grade,
		HomeroomTeacherID: req.HomeroomTeacherID,
	}
	class.CreatedBy = &callerID
	class.UpdatedBy = &callerID

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}
	return s.toDetail(ctx, class)
}

func (s *classService) Get(ctx context.Context, classID string) (*dto.ClassDetailResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}
	return s.toDetail(ctx, class)
}

func (s *classService) List(ctx context.Context) ([]dto.ClassDetailResponse, error) {
	classes, err := s.repo.Class.List(ctx)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.ClassDetailResponse, 0, len(classes))
	for i := range classes {
		detail, err := s.toDetail(ctx, &classes[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *detail)
	}
	return items, nil
}

func (s *classService) Update(ctx context.Context, classID string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassDetailResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}
	if req.HomeroomTeacherID != nil {
		if err := s.checkTeacher(ctx, *req.HomeroomTeacherID); err != nil {
			return nil, err
		}
		class.HomeroomTeacherID = req.HomeroomTeacherID
	}
	class.UpdatedBy = &callerID

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	return s.toDetail(ctx, class)
}

func (s *classService) Delete(ctx context.Context, classID, callerID string) error {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return err
	}

	count, err := s.repo.User.CountByClass(ctx, classID)
	if err != nil {
		s.logger.Error("统计班级学生失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrClassHasStudents
	}

	if err := s.repo.Class.Delete(ctx, classID, callerID); err != nil {
		s.logger.Error("删除班级失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}
	return nil
}

func (s *classService) AssignStudents(ctx context.Context, classID string, req *dto.AssignStudentsRequest, callerID string) error {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return err
	}

	// 全部目标必须是学生，任一不合法则整批拒绝
	for _, id := range req.StudentIDs {
		user, err := s.repo.User.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			s.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
			return err
		}
		if user.Role != model.RoleStudent {
			return ErrClassStudentInvalid
		}
	}

	if err := s.repo.Class.AssignStudents(ctx, classID, req.StudentIDs); err != nil {
		s.logger.Error("分配学生失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}
	return nil
}

func (s *classService) ListStudents(ctx context.Context, classID string) ([]dto.UserResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	students, err := s.repo.User.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		items = append(items, toUserResponse(&students[i]))
	}
	return items, nil
}

// checkTeacher 校验班主任人选存在且为教师
func (s *classService) checkTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询教师失败", zap.String("user_id", teacherID), zap.Error(err))
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return ErrClassTeacherInvalid
	}
	return nil
}

func (s *classService) toDetail(ctx context.Context, class *model.Class) (*dto.ClassDetailResponse, error) {
	count, err := s.repo.User.CountByClass(ctx, class.ClassID)
	if err != nil {
		s.logger.Error("统计班级学生失败", zap.String("class_id", class.ClassID), zap.Error(err))
		return nil, err
	}

	detail := &dto.ClassDetailResponse{
		ID:           class.ClassID,
		Name:         class.Name,
		Grade:        class.Grade,
		StudentCount: count,
		CreatedAt:    class.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    class.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if class.HomeroomTeacherID != nil {
		teacher, err := s.repo.User.GetByID(ctx, *class.HomeroomTeacherID)
		if err == nil {
			resp := toUserResponse(teacher)
			detail.HomeroomTeacher = &resp
		}
	}
	return detail, nil
}
