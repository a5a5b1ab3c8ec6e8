package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"classtrack/backend/internal/model"
	pkgerrors "classtrack/backend/pkg/errors"
)

// JournalRepository 教学日志数据访问接口
type JournalRepository interface {
	Create(ctx context.Context, journal *model.Journal) error
	GetByID(ctx context.Context, id string) (*model.Journal, error)
	List(ctx context.Context, filter JournalFilter, offset, limit int) ([]model.Journal, int64, error)
	Update(ctx context.Context, journal *model.Journal) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// JournalFilter 教学日志过滤条件
type JournalFilter struct {
	ClassID   string
	TeacherID string
	StartDate *time.Time
	EndDate   *time.Time
}

type journalRepo struct {
	db *gorm.DB
}

// NewJournalRepo 创建 JournalRepository 实例
func NewJournalRepo(db *gorm.DB) JournalRepository {
	return &journalRepo{db: db}
}

func (r *journalRepo) Create(ctx context.Context, journal *model.Journal) error {
	return r.db.WithContext(ctx).Create(journal).Error
}

func (r *journalRepo) GetByID(ctx context.Context, id string) (*model.Journal, error) {
	var journal model.Journal
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Class").
		Where("journal_id = ?", id).
		First(&journal).Error
	if err != nil {
		return nil, err
	}
	return &journal, nil
}

func (r *journalRepo) List(ctx context.Context, filter JournalFilter, offset, limit int) ([]model.Journal, int64, error) {
	var journals []model.Journal
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Journal{})
	if filter.ClassID != "" {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.StartDate != nil {
		db = db.Where("journal_date >= ?", filter.StartDate.Format("2006-01-02"))
	}
	if filter.EndDate != nil {
		db = db.Where("journal_date <= ?", filter.EndDate.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Teacher").Preload("Class").
		Offset(offset).Limit(limit).
		Order("journal_date DESC, period ASC").
		Find(&journals).Error
	return journals, total, err
}

func (r *journalRepo) Update(ctx context.Context, journal *model.Journal) error {
	oldVersion := journal.Version
	result := r.db.WithContext(ctx).
		Model(journal).
		Where("journal_id = ? AND version = ?", journal.JournalID, oldVersion).
		Updates(map[string]interface{}{
			"subject":    journal.Subject,
			"period":     journal.Period,
			"topic":      journal.Topic,
			"notes":      journal.Notes,
			"updated_by": journal.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	journal.Version = oldVersion + 1
	return nil
}

func (r *journalRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Journal{}).
			Where("journal_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("journal_id = ?", id).Delete(&model.Journal{}).Error
	})
}
