package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Class          ClassRepository
	Term           TermRepository
	Attendance     AttendanceRepository
	Setting        SettingRepository
	Journal        JournalRepository
	Notification   NotificationRepository
	CourseSchedule CourseScheduleRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		Class:          NewClassRepo(db),
		Term:           NewTermRepo(db),
		Attendance:     NewAttendanceRepo(db),
		Setting:        NewSettingRepo(db),
		Journal:        NewJournalRepo(db),
		Notification:   NewNotificationRepo(db),
		CourseSchedule: NewCourseScheduleRepo(db),
		db:             db,
	}
}

// BeginTx 开启事务，返回事务句柄；mock 场景下 db 为 nil 时返回 nil
func (r *Repository) BeginTx() *gorm.DB {
	if r.db == nil {
		return nil
	}
	return r.db.Begin()
}

// WithTx 返回绑定到事务的 Repository 副本
// tx 为 nil 时（单测 mock 场景）返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
