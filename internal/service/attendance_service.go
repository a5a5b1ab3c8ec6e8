package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classtrack/backend/config"
	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
	"classtrack/backend/pkg/clock"
	pkgerrors "classtrack/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendancePersonNotFound = errors.New("用户不存在")
	ErrAttendanceCheckedOut     = errors.New("今日考勤已完成")
	ErrAttendanceNoSetting      = errors.New("考勤设置缺失，无法计算迟到")
	ErrAttendanceInvalidDate    = errors.New("日期格式无效")
	ErrAttendanceInvalidStatus  = errors.New("考勤状态无效")
)

// AttendanceService 考勤业务接口
//
// 设计说明：
//   - Check 同一接口承担签到与签退：当日无记录为签到，有记录未签退为签退，
//     已签退则报错终结当日流程。状态由 check_out 是否为空判定，状态机只有
//     两态且单向推进。
//   - 迟到分钟 = max(0, 实际签到 − 应到时间)，应到时间按角色取自考勤设置；
//     设置缺失时显式报错而非按零计算。
//   - 同一 (user, date) 的并发签到由存储层唯一约束裁决：插入冲突的一方
//     改走签退路径，绝不产生第二条记录。
type AttendanceService interface {
	// Check 打卡：返回本次动作是签到还是签退
	Check(ctx context.Context, userID string, method string) (*dto.CheckResponse, error)
	// SetStatus 教师/管理员手工标注病假、事假、旷课或改回出勤
	SetStatus(ctx context.Context, req *dto.SetStatusRequest, callerID string) (*dto.AttendanceResponse, error)
	// ListDaily 当日考勤名册（按班级）
	ListDaily(ctx context.Context, req *dto.DailyListRequest) ([]dto.DailyRosterEntry, error)
}

type attendanceService struct {
	cfg       *config.Config
	repo      *repository.Repository
	notifySvc NotificationService
	clk       clock.Clock
	loc       *time.Location
	logger    *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	cfg *config.Config,
	repo *repository.Repository,
	notifySvc NotificationService,
	clk clock.Clock,
	logger *zap.Logger,
) AttendanceService {
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		// 配置层 Validate 已拦截非法时区，此处仅兜底
		loc = time.Local
	}
	return &attendanceService{
		cfg:       cfg,
		repo:      repo,
		notifySvc: notifySvc,
		clk:       clk,
		loc:       loc,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// Check — 打卡（签到 / 签退）
// ════════════════════════════════════════════════════════════

func (s *attendanceService) Check(ctx context.Context, userID string, method string) (*dto.CheckResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendancePersonNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	now := s.clk.Now().In(s.loc)
	today := dateOf(now)

	record, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, today)
	switch {
	case err == nil:
		return s.checkout(ctx, record, now, userID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.checkin(ctx, user, now, today, method)
	default:
		s.logger.Error("查询当日考勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("查询当日考勤失败: %w", err)
	}
}

// checkin 当日首次打卡：创建记录并计算迟到分钟
func (s *attendanceService) checkin(ctx context.Context, user *model.User, now, today time.Time, method string) (*dto.CheckResponse, error) {
	setting, err := s.repo.Setting.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNoSetting
		}
		s.logger.Error("查询考勤设置失败", zap.Error(err))
		return nil, fmt.Errorf("查询考勤设置失败: %w", err)
	}

	expected, err := clockOnDate(setting.ArrivalTimeFor(user.Role), today, s.loc)
	if err != nil {
		// 应到时间无法解析等同于设置缺失，不允许按零迟到蒙混
		return nil, ErrAttendanceNoSetting
	}

	late := 0
	if now.After(expected) {
		late = int(now.Sub(expected) / time.Minute)
	}

	if method == "" {
		method = s.cfg.Attendance.DefaultMethod
	}

	checkIn := now
	record := &model.AttendanceRecord{
		UserID:      user.UserID,
		AttDate:     today,
		CheckIn:     &checkIn,
		Status:      model.StatusPresent,
		LateMinutes: late,
		Method:      method,
	}
	record.CreatedBy = &user.UserID
	record.UpdatedBy = &user.UserID

	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			// 与另一次打卡撞上唯一约束：本次改走签退路径
			existing, err := s.repo.Attendance.GetByUserAndDate(ctx, user.UserID, today)
			if err != nil {
				s.logger.Error("并发打卡后重读记录失败", zap.String("user_id", user.UserID), zap.Error(err))
				return nil, fmt.Errorf("查询当日考勤失败: %w", err)
			}
			return s.checkout(ctx, existing, now, user.UserID)
		}
		s.logger.Error("创建考勤记录失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, fmt.Errorf("创建考勤记录失败: %w", err)
	}

	// 迟到签到向本人投递站内通知；投递失败仅记日志，不影响主流程
	if late > 0 && s.notifySvc != nil {
		relatedType := "attendance_record"
		if err := s.notifySvc.Dispatch(ctx, &DispatchRequest{
			UserID:      user.UserID,
			Type:        model.NotifyLateArrival,
			Title:       "迟到提醒",
			Content:     fmt.Sprintf("你于 %s 签到，迟到 %d 分钟", now.Format("15:04"), late),
			RelatedType: &relatedType,
			RelatedID:   &record.RecordID,
			CreatedBy:   user.UserID,
		}); err != nil {
			s.logger.Warn("迟到通知投递失败", zap.String("user_id", user.UserID), zap.Error(err))
		}
	}

	return &dto.CheckResponse{
		Result:      "checkin",
		Record:      toAttendanceResponse(record),
		LateMinutes: late,
	}, nil
}

// checkout 当日第二次打卡：补写签退时间；已签退则终结报错
func (s *attendanceService) checkout(ctx context.Context, record *model.AttendanceRecord, now time.Time, callerID string) (*dto.CheckResponse, error) {
	if record.CheckedOut() {
		return nil, ErrAttendanceCheckedOut
	}

	err := s.repo.Attendance.SetCheckOut(ctx, record.RecordID, now, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			// 并发签退被抢先，对外表现与重复打卡一致
			return nil, ErrAttendanceCheckedOut
		}
		s.logger.Error("写入签退时间失败", zap.String("record_id", record.RecordID), zap.Error(err))
		return nil, fmt.Errorf("写入签退时间失败: %w", err)
	}

	record.CheckOut = &now
	return &dto.CheckResponse{
		Result:      "checkout",
		Record:      toAttendanceResponse(record),
		LateMinutes: record.LateMinutes,
	}, nil
}

// ════════════════════════════════════════════════════════════
// SetStatus — 手工标注考勤状态
// ════════════════════════════════════════════════════════════

func (s *attendanceService) SetStatus(ctx context.Context, req *dto.SetStatusRequest, callerID string) (*dto.AttendanceResponse, error) {
	switch req.Status {
	case model.StatusPresent, model.StatusSick, model.StatusExcused, model.StatusAbsent:
	default:
		return nil, ErrAttendanceInvalidStatus
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
	if err != nil {
		return nil, ErrAttendanceInvalidDate
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendancePersonNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	record, err := s.repo.Attendance.GetByUserAndDate(ctx, req.UserID, date)
	switch {
	case err == nil:
		record.Status = req.Status
		if req.Status != model.StatusPresent {
			// 病假/事假/旷课不存在迟到概念
			record.LateMinutes = 0
		}
		record.UpdatedBy = &callerID
		if err := s.repo.Attendance.UpdateStatus(ctx, record); err != nil {
			s.logger.Error("更新考勤状态失败", zap.String("record_id", record.RecordID), zap.Error(err))
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = &model.AttendanceRecord{
			UserID:  req.UserID,
			AttDate: date,
			Status:  req.Status,
			Method:  model.MethodManual,
		}
		record.CreatedBy = &callerID
		record.UpdatedBy = &callerID
		if err := s.repo.Attendance.Create(ctx, record); err != nil {
			if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
				return nil, pkgerrors.ErrDuplicateRecord
			}
			s.logger.Error("创建考勤记录失败", zap.String("user_id", req.UserID), zap.Error(err))
			return nil, fmt.Errorf("创建考勤记录失败: %w", err)
		}
	default:
		s.logger.Error("查询考勤记录失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("查询考勤记录失败: %w", err)
	}

	// 非出勤标注向学生投递站内通知；投递失败仅记日志，不影响主流程
	if req.Status != model.StatusPresent && s.notifySvc != nil {
		relatedType := "attendance_record"
		if err := s.notifySvc.Dispatch(ctx, &DispatchRequest{
			UserID:      req.UserID,
			Type:        model.NotifyAbsenceMarked,
			Title:       "考勤状态变更",
			Content:     fmt.Sprintf("你在 %s 的考勤被标记为 %s", req.Date, statusLabel(req.Status)),
			RelatedType: &relatedType,
			RelatedID:   &record.RecordID,
			CreatedBy:   callerID,
		}); err != nil {
			s.logger.Warn("考勤状态通知投递失败", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	resp := toAttendanceResponse(record)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// ListDaily — 当日考勤名册
// ════════════════════════════════════════════════════════════

func (s *attendanceService) ListDaily(ctx context.Context, req *dto.DailyListRequest) ([]dto.DailyRosterEntry, error) {
	date, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
	if err != nil {
		return nil, ErrAttendanceInvalidDate
	}

	var classID *string
	if req.ClassID != "" {
		classID = &req.ClassID
	}

	records, err := s.repo.Attendance.ListByDate(ctx, date, classID)
	if err != nil {
		s.logger.Error("查询当日考勤失败", zap.Error(err))
		return nil, fmt.Errorf("查询当日考勤失败: %w", err)
	}

	recordByUser := make(map[string]*model.AttendanceRecord, len(records))
	for i := range records {
		recordByUser[records[i].UserID] = &records[i]
	}

	// 指定班级时名册覆盖全班学生，未打卡的学生 record 为空
	if classID != nil {
		students, err := s.repo.User.ListByClass(ctx, *classID)
		if err != nil {
			s.logger.Error("查询班级学生失败", zap.String("class_id", *classID), zap.Error(err))
			return nil, fmt.Errorf("查询班级学生失败: %w", err)
		}

		entries := make([]dto.DailyRosterEntry, 0, len(students))
		for i := range students {
			entry := dto.DailyRosterEntry{Student: toUserResponse(&students[i])}
			if rec, ok := recordByUser[students[i].UserID]; ok {
				resp := toAttendanceResponse(rec)
				entry.Record = &resp
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}

	// 未指定班级时仅返回已有记录
	entries := make([]dto.DailyRosterEntry, 0, len(records))
	for i := range records {
		entry := dto.DailyRosterEntry{}
		if records[i].User != nil {
			entry.Student = toUserResponse(records[i].User)
		} else {
			entry.Student = dto.UserResponse{ID: records[i].UserID}
		}
		resp := toAttendanceResponse(&records[i])
		entry.Record = &resp
		entries = append(entries, entry)
	}
	return entries, nil
}

// ── 内部辅助 ──

// dateOf 截取日历日（保留时区）
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// clockOnDate 将 "HH:MM" / "HH:MM:SS" 文本落到指定日期上
func clockOnDate(clockText string, date time.Time, loc *time.Location) (time.Time, error) {
	parts := strings.Split(clockText, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("非法时间文本: %q", clockText)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("非法时间文本: %q", clockText)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("非法时间文本: %q", clockText)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

func statusLabel(status string) string {
	switch status {
	case model.StatusPresent:
		return "出勤"
	case model.StatusSick:
		return "病假"
	case model.StatusExcused:
		return "事假"
	case model.StatusAbsent:
		return "旷课"
	default:
		return status
	}
}

func toAttendanceResponse(record *model.AttendanceRecord) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:          record.RecordID,
		UserID:      record.UserID,
		Date:        record.AttDate.Format("2006-01-02"),
		Status:      record.Status,
		LateMinutes: record.LateMinutes,
		Method:      record.Method,
	}
	if record.User != nil {
		resp.UserName = record.User.Name
	}
	if record.CheckIn != nil {
		resp.CheckIn = record.CheckIn.Format("15:04")
	}
	if record.CheckOut != nil {
		resp.CheckOut = record.CheckOut.Format("15:04")
	}
	return resp
}

func toUserResponse(user *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		StudentNo: user.StudentNo,
		Email:     user.Email,
		Role:      user.Role,
	}
	if user.Class != nil {
		resp.Class = &dto.ClassResponse{
			ID:    user.Class.ClassID,
			Name:  user.Class.Name,
			Grade: user.Class.Grade,
		}
	}
	return resp
}
