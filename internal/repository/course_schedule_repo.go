package repository

import (
	"context"

	"gorm.io/gorm"

	"classtrack/backend/internal/model"
)

// CourseScheduleRepository 班级课程表数据访问接口
type CourseScheduleRepository interface {
	BatchCreate(ctx context.Context, courses []model.CourseSchedule) error
	ListByClassAndTerm(ctx context.Context, classID, termID string) ([]model.CourseSchedule, error)
	// ReplaceByClassAndTerm 全量替换班级课表：删除旧数据并批量插入，单事务执行
	ReplaceByClassAndTerm(ctx context.Context, classID, termID string, courses []model.CourseSchedule) error
	DeleteByClassAndTerm(ctx context.Context, classID, termID string) error
}

type courseScheduleRepo struct {
	db *gorm.DB
}

// NewCourseScheduleRepo 创建 CourseScheduleRepository 实例
func NewCourseScheduleRepo(db *gorm.DB) CourseScheduleRepository {
	return &courseScheduleRepo{db: db}
}

func (r *courseScheduleRepo) BatchCreate(ctx context.Context, courses []model.CourseSchedule) error {
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&courses).Error
}

func (r *courseScheduleRepo) ListByClassAndTerm(ctx context.Context, classID, termID string) ([]model.CourseSchedule, error) {
	var courses []model.CourseSchedule
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("class_id = ? AND term_id = ?", classID, termID).
		Order("day_of_week ASC, start_time ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseScheduleRepo) ReplaceByClassAndTerm(ctx context.Context, classID, termID string, courses []model.CourseSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ? AND term_id = ?", classID, termID).
			Delete(&model.CourseSchedule{}).Error; err != nil {
			return err
		}
		if len(courses) == 0 {
			return nil
		}
		return tx.Create(&courses).Error
	})
}

func (r *courseScheduleRepo) DeleteByClassAndTerm(ctx context.Context, classID, termID string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ? AND term_id = ?", classID, termID).
		Delete(&model.CourseSchedule{}).Error
}
