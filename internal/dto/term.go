package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	AcademicYear string `json:"academic_year" binding:"required,min=4,max=20"`
	StartDate    string `json:"start_date"    binding:"required"` // "2026-07-13"
	EndDate      string `json:"end_date"      binding:"required"` // "2026-12-19"
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	AcademicYear *string `json:"academic_year" binding:"omitempty,min=4,max=20"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AcademicYear string `json:"academic_year"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
