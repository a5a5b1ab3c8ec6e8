package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"classtrack/backend/internal/model"
	pkgerrors "classtrack/backend/pkg/errors"
)

// AttendanceRepository 考勤记录数据访问接口
//
// (user_id, att_date) 的唯一约束由存储层保证；Create 在约束冲突时返回
// pkgerrors.ErrDuplicateRecord，Recorder 据此处理并发打卡。
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error)
	// SetCheckOut 仅对尚未签退的记录生效；已签退时返回 ErrAlreadyCompleted
	SetCheckOut(ctx context.Context, recordID string, t time.Time, updatedBy string) error
	UpdateStatus(ctx context.Context, record *model.AttendanceRecord) error
	ListByDate(ctx context.Context, date time.Time, classID *string) ([]model.AttendanceRecord, error)
	ListByDateRange(ctx context.Context, start, end time.Time, classID *string) ([]model.AttendanceRecord, error)
}

// ErrAlreadyCompleted 签退更新未命中：记录已签退
var ErrAlreadyCompleted = errors.New("考勤记录已签退")

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateRecord
	}
	return err
}

func (r *attendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND att_date = ?", userID, date.Format("2006-01-02")).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) SetCheckOut(ctx context.Context, recordID string, t time.Time, updatedBy string) error {
	// check_out IS NULL 条件保证签退写入至多发生一次
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("record_id = ? AND check_out IS NULL", recordID).
		Updates(map[string]interface{}{
			"check_out":  t,
			"updated_by": updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyCompleted
	}
	return nil
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, record *model.AttendanceRecord) error {
	oldVersion := record.Version
	result := r.db.WithContext(ctx).
		Model(record).
		Where("record_id = ? AND version = ?", record.RecordID, oldVersion).
		Updates(map[string]interface{}{
			"status":       record.Status,
			"late_minutes": record.LateMinutes,
			"updated_by":   record.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	record.Version = oldVersion + 1
	return nil
}

func (r *attendanceRepo) ListByDate(ctx context.Context, date time.Time, classID *string) ([]model.AttendanceRecord, error) {
	return r.listRange(ctx, date, date, classID)
}

func (r *attendanceRepo) ListByDateRange(ctx context.Context, start, end time.Time, classID *string) ([]model.AttendanceRecord, error) {
	return r.listRange(ctx, start, end, classID)
}

func (r *attendanceRepo) listRange(ctx context.Context, start, end time.Time, classID *string) ([]model.AttendanceRecord, error) {
	db := r.db.WithContext(ctx).
		Preload("User").Preload("User.Class").
		Where("att_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02"))

	if classID != nil {
		db = db.Joins("JOIN users ON users.user_id = attendance_records.user_id").
			Where("users.class_id = ?", *classID)
	}

	var records []model.AttendanceRecord
	err := db.Order("att_date ASC, user_id ASC").Find(&records).Error
	return records, err
}
