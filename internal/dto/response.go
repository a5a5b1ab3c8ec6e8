package dto

// ── 通用响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	StudentNo string         `json:"student_no"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	Class     *ClassResponse `json:"class,omitempty"`
}

// UserDetailResponse 用户详细信息（GET /auth/me）
type UserDetailResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	StudentNo string         `json:"student_no"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	Class     *ClassResponse `json:"class,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ClassResponse 班级简要信息
type ClassResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
