package dto

// ── 考勤设置模块 DTO ──

// UpdateSettingRequest 考勤设置更新请求（时间格式 "HH:MM"）
type UpdateSettingRequest struct {
	StudentArrivalTime   *string `json:"student_arrival_time"`
	StudentDepartureTime *string `json:"student_departure_time"`
	StaffArrivalTime     *string `json:"staff_arrival_time"`
	StaffDepartureTime   *string `json:"staff_departure_time"`
	DefaultMethod        *string `json:"default_method" binding:"omitempty,oneof=manual mobile device"`
}

// SettingResponse 考勤设置响应
type SettingResponse struct {
	StudentArrivalTime   string `json:"student_arrival_time"`
	StudentDepartureTime string `json:"student_departure_time"`
	StaffArrivalTime     string `json:"staff_arrival_time"`
	StaffDepartureTime   string `json:"staff_departure_time"`
	DefaultMethod        string `json:"default_method"`
	UpdatedAt            string `json:"updated_at"`
}
