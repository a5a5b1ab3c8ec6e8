package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Name      string  `json:"name"       binding:"required,min=2,max=100"`
	StudentNo string  `json:"student_no" binding:"required,max=30"`
	Email     string  `json:"email"      binding:"required,email"`
	Password  string  `json:"password"   binding:"required,min=8,max=72"`
	Role      string  `json:"role"       binding:"required,oneof=admin teacher student"`
	ClassID   *string `json:"class_id"   binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name    *string `json:"name"     binding:"omitempty,min=2,max=100"`
	Email   *string `json:"email"    binding:"omitempty,email"`
	ClassID *string `json:"class_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest 角色调整请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin teacher student"`
}

// UserListRequest 用户列表查询
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"     binding:"omitempty,oneof=admin teacher student"`
	ClassID string `form:"class_id" binding:"omitempty,uuid"`
	Keyword string `form:"keyword"  binding:"omitempty,max=100"` // 姓名/学号模糊匹配
}
