package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name              string  `json:"name"                binding:"required,min=1,max=100"`
	Grade             int     `json:"grade"               binding:"required,min=1,max=13"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id" binding:"omitempty,uuid"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name              *string `json:"name"                binding:"omitempty,min=1,max=100"`
	Grade             *int    `json:"grade"               binding:"omitempty,min=1,max=13"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id" binding:"omitempty,uuid"`
}

// AssignStudentsRequest 批量分配学生到班级
type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
}

// ClassDetailResponse 班级详情响应
type ClassDetailResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Grade           int           `json:"grade"`
	HomeroomTeacher *UserResponse `json:"homeroom_teacher,omitempty"`
	StudentCount    int64         `json:"student_count"`
	CreatedAt       string        `json:"created_at"`
	UpdatedAt       string        `json:"updated_at"`
}
