package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/config"
	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/repository"
)

// ── 课程表模块业务错误 ──

var (
	ErrTimetableParseFail = errors.New("ICS 课表解析失败")
	ErrTimetableEmpty     = errors.New("ICS 文件中无有效课程")
)

// TimetableService 班级课程表业务接口
//
// ICS 导入为全量替换：同一班级同一学期旧课表整体换新，避免重复导入
// 产生叠加条目
type TimetableService interface {
	// ImportICS 从 ICS 数据流导入班级课表
	ImportICS(ctx context.Context, reader io.Reader, req *dto.ImportICSRequest, callerID string) (*dto.ImportICSResponse, error)
	// List 查询班级课程表；termID 缺省取当前活动学期
	List(ctx context.Context, req *dto.TimetableListRequest) ([]dto.CourseScheduleResponse, error)
	// Clear 清空班级指定学期的课表
	Clear(ctx context.Context, classID, termID string) error
}

type timetableService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TimetableService {
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		loc = time.Local
	}
	return &timetableService{repo: repo, loc: loc, logger: logger}
}

func (s *timetableService) ImportICS(ctx context.Context, reader io.Reader, req *dto.ImportICSRequest, callerID string) (*dto.ImportICSResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	term, err := s.resolveTerm(ctx, req.TermID)
	if err != nil {
		return nil, err
	}

	courses, err := ParseICS(reader, req.ClassID, term.TermID, term.StartDate, term.EndDate, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("class_id", req.ClassID), zap.Error(err))
		return nil, ErrTimetableParseFail
	}
	if len(courses) == 0 {
		return nil, ErrTimetableEmpty
	}

	for i := range courses {
		courses[i].CreatedBy = &callerID
		courses[i].UpdatedBy = &callerID
	}

	if err := s.repo.CourseSchedule.ReplaceByClassAndTerm(ctx, req.ClassID, term.TermID, courses); err != nil {
		s.logger.Error("替换班级课表失败", zap.String("class_id", req.ClassID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ImportICSResponse{ImportedCount: len(courses)}
	for i := range courses {
		resp.Courses = append(resp.Courses, dto.ImportedCourseEvent{
			Name:      courses[i].CourseName,
			DayOfWeek: courses[i].DayOfWeek,
			StartTime: courses[i].StartTime,
			EndTime:   courses[i].EndTime,
			Weeks:     []int(courses[i].Weeks),
		})
	}
	return resp, nil
}

func (s *timetableService) List(ctx context.Context, req *dto.TimetableListRequest) ([]dto.CourseScheduleResponse, error) {
	term, err := s.resolveTerm(ctx, req.TermID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.CourseSchedule.ListByClassAndTerm(ctx, req.ClassID, term.TermID)
	if err != nil {
		s.logger.Error("查询班级课表失败", zap.String("class_id", req.ClassID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.CourseScheduleResponse, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		if req.Week > 0 && !c.Weeks.Contains(req.Week) {
			continue
		}
		item := dto.CourseScheduleResponse{
			ID:         c.CourseScheduleID,
			ClassID:    c.ClassID,
			TermID:     c.TermID,
			CourseName: c.CourseName,
			DayOfWeek:  c.DayOfWeek,
			StartTime:  c.StartTime,
			EndTime:    c.EndTime,
			Weeks:      []int(c.Weeks),
			Source:     c.Source,
		}
		if c.TeacherID != nil {
			item.TeacherID = *c.TeacherID
		}
		if c.Teacher != nil {
			item.TeacherName = c.Teacher.Name
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *timetableService) Clear(ctx context.Context, classID, termID string) error {
	term, err := s.resolveTerm(ctx, termID)
	if err != nil {
		return err
	}
	if err := s.repo.CourseSchedule.DeleteByClassAndTerm(ctx, classID, term.TermID); err != nil {
		s.logger.Error("清空班级课表失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}
	return nil
}

// resolveTerm termID 为空时回退到当前活动学期
func (s *timetableService) resolveTerm(ctx context.Context, termID string) (*termRef, error) {
	if termID != "" {
		term, err := s.repo.Term.GetByID(ctx, termID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTermNotFound
			}
			s.logger.Error("查询学期失败", zap.Error(err))
			return nil, err
		}
		return &termRef{TermID: term.TermID, StartDate: term.StartDate, EndDate: term.EndDate}, nil
	}

	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNoActive
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}
	return &termRef{TermID: term.TermID, StartDate: term.StartDate, EndDate: term.EndDate}, nil
}

type termRef struct {
	TermID    string
	StartDate time.Time
	EndDate   time.Time
}
