package dto

// ── 教学日志模块 DTO ──

// CreateJournalRequest 创建教学日志请求
type CreateJournalRequest struct {
	ClassID string `json:"class_id" binding:"required,uuid"`
	Subject string `json:"subject"  binding:"required,min=1,max=100"`
	Date    string `json:"date"     binding:"required"`
	Period  int    `json:"period"   binding:"required,min=1,max=12"`
	Topic   string `json:"topic"    binding:"required,min=1,max=500"`
	Notes   string `json:"notes"    binding:"omitempty,max=5000"`
}

// UpdateJournalRequest 更新教学日志请求
type UpdateJournalRequest struct {
	Subject *string `json:"subject" binding:"omitempty,min=1,max=100"`
	Period  *int    `json:"period"  binding:"omitempty,min=1,max=12"`
	Topic   *string `json:"topic"   binding:"omitempty,min=1,max=500"`
	Notes   *string `json:"notes"   binding:"omitempty,max=5000"`
}

// JournalListRequest 教学日志列表查询
type JournalListRequest struct {
	PaginationRequest
	ClassID   string `form:"class_id"   binding:"omitempty,uuid"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// JournalResponse 教学日志响应
type JournalResponse struct {
	ID          string `json:"id"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name,omitempty"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Period      int    `json:"period"`
	Topic       string `json:"topic"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
