package dto

// ── 报表模块 DTO ──

// ReportRangeRequest 聚合区间查询（闭区间 [start, end]）
type ReportRangeRequest struct {
	StartDate string `form:"start_date" binding:"required"` // "2026-09-01"
	EndDate   string `form:"end_date"   binding:"required"` // "2026-09-30"
	ClassID   string `form:"class_id"   binding:"omitempty,uuid"`
}

// MonthlyExportRequest 月度导出查询
type MonthlyExportRequest struct {
	Year    int    `form:"year"     binding:"required,min=2000,max=2100"`
	Month   int    `form:"month"    binding:"required,min=1,max=12"`
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
}

// AttendanceAggregate 单组聚合结果（按班级或按学生）
// 四项计数互斥，合计即区间内该组的记录总数；
// Rate 为 present/total×100 四舍五入取整，AvgLateMinutes 为出勤且迟到记录的
// 迟到分钟均值四舍五入取整，组内无记录时两者均为 0
type AttendanceAggregate struct {
	GroupID        string `json:"group_id"`
	GroupLabel     string `json:"group_label"`
	Grade          int    `json:"grade,omitempty"` // 按班级聚合时用于排序展示
	PresentCount   int    `json:"present_count"`
	SickCount      int    `json:"sick_count"`
	ExcusedCount   int    `json:"excused_count"`
	AbsentCount    int    `json:"absent_count"`
	TotalCount     int    `json:"total_count"`
	Rate           int    `json:"rate"` // 出勤率百分比 0-100
	AvgLateMinutes int    `json:"avg_late_minutes"`
}

// ReportResponse 聚合报表响应
type ReportResponse struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	GroupBy   string                `json:"group_by"` // class | student
	Groups    []AttendanceAggregate `json:"groups"`
}
