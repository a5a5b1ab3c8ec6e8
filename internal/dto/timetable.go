package dto

// ── 课程表模块 DTO ──

// ImportICSRequest ICS 课表导入（multipart 文件随表单上传，此处仅归属信息）
type ImportICSRequest struct {
	ClassID string `form:"class_id" binding:"required,uuid"`
	TermID  string `form:"term_id"  binding:"omitempty,uuid"` // 缺省取当前活动学期
}

// ImportedCourseEvent 导入结果中的单门课程
type ImportedCourseEvent struct {
	Name      string `json:"name"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Weeks     []int  `json:"weeks"`
}

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCount int                   `json:"imported_count"`
	Courses       []ImportedCourseEvent `json:"courses"`
}

// CourseScheduleResponse 课程表条目响应
type CourseScheduleResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	TermID      string `json:"term_id"`
	CourseName  string `json:"course_name"`
	TeacherID   string `json:"teacher_id,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Weeks       []int  `json:"weeks"`
	Source      string `json:"source"`
}

// TimetableListRequest 班级课程表查询
type TimetableListRequest struct {
	ClassID string `form:"class_id" binding:"required,uuid"`
	TermID  string `form:"term_id"  binding:"omitempty,uuid"`
	Week    int    `form:"week"     binding:"omitempty,min=1"` // 仅看某一教学周
}
