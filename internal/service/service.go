package service

import (
	"go.uber.org/zap"

	"classtrack/backend/config"
	"classtrack/backend/internal/repository"
	"classtrack/backend/pkg/clock"
	"classtrack/backend/pkg/jwt"
	"classtrack/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Class        ClassService
	Term         TermService
	Attendance   AttendanceService
	Report       ReportService
	Export       ExportService
	Journal      JournalService
	Notification NotificationService
	Setting      SettingService
	Timetable    TimetableService
}

// NewService 创建 Service 聚合
//
// clk 注入时钟：生产环境使用 clock.System，单测使用 clock.Fixed 以便
// 对迟到分钟等时间敏感逻辑做确定性断言
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	notifySvc := NewNotificationService(repo, logger)
	reportSvc := NewReportService(cfg, repo, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(cfg, repo, logger),
		Class:        NewClassService(repo, logger),
		Term:         NewTermService(repo, logger),
		Attendance:   NewAttendanceService(cfg, repo, notifySvc, clk, logger),
		Report:       reportSvc,
		Export:       NewExportService(reportSvc, logger),
		Journal:      NewJournalService(repo, notifySvc, logger),
		Notification: notifySvc,
		Setting:      NewSettingService(repo, logger),
		Timetable:    NewTimetableService(cfg, repo, logger),
	}
}
