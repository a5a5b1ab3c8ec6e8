package dto

// ── 考勤模块 DTO ──

// CheckRequest 打卡请求（同一接口承担签到与签退，由当日状态决定）
type CheckRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=manual mobile device"`
}

// CheckResponse 打卡结果
type CheckResponse struct {
	Result      string             `json:"result"` // checkin | checkout
	Record      AttendanceResponse `json:"record"`
	LateMinutes int                `json:"late_minutes"`
}

// SetStatusRequest 教师手工标注考勤状态（病假/事假/旷课）
type SetStatusRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Date   string `json:"date"    binding:"required"` // "2026-09-01"
	Status string `json:"status"  binding:"required,oneof=present sick excused absent"`
}

// DailyListRequest 当日考勤名册查询
type DailyListRequest struct {
	Date    string `form:"date"     binding:"required"`
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	Date        string `json:"date"`
	CheckIn     string `json:"check_in,omitempty"`  // "07:28"
	CheckOut    string `json:"check_out,omitempty"` // "15:41"
	Status      string `json:"status"`
	LateMinutes int    `json:"late_minutes"`
	Method      string `json:"method"`
}

// DailyRosterEntry 当日名册条目：学生 + 当日记录（可能尚无记录）
type DailyRosterEntry struct {
	Student UserResponse        `json:"student"`
	Record  *AttendanceResponse `json:"record,omitempty"`
}
