package handler

import "classtrack/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Class        *ClassHandler
	Term         *TermHandler
	Attendance   *AttendanceHandler
	Report       *ReportHandler
	Export       *ExportHandler
	Journal      *JournalHandler
	Notification *NotificationHandler
	Setting      *SettingHandler
	Timetable    *TimetableHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Class:        NewClassHandler(svc.Class),
		Term:         NewTermHandler(svc.Term),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Report:       NewReportHandler(svc.Report),
		Export:       NewExportHandler(svc.Export),
		Journal:      NewJournalHandler(svc.Journal),
		Notification: NewNotificationHandler(svc.Notification),
		Setting:      NewSettingHandler(svc.Setting),
		Timetable:    NewTimetableHandler(svc.Timetable),
	}
}
