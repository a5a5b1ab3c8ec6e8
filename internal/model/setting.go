package model

// AttendanceSetting 考勤设置表 — 对应 attendance_settings（单行强类型）
// 学生与教职工分别配置应到/应离时间，时间以 "HH:MM" 文本存储
type AttendanceSetting struct {
	Singleton            bool   `gorm:"primaryKey;default:true"            json:"-"`
	StudentArrivalTime   string `gorm:"type:time;not null;default:'07:30'" json:"student_arrival_time"`
	StudentDepartureTime string `gorm:"type:time;not null;default:'15:30'" json:"student_departure_time"`
	StaffArrivalTime     string `gorm:"type:time;not null;default:'07:00'" json:"staff_arrival_time"`
	StaffDepartureTime   string `gorm:"type:time;not null;default:'16:00'" json:"staff_departure_time"`
	DefaultMethod        string `gorm:"type:varchar(20);not null;default:'mobile'" json:"default_method"`
	BaseModel
}

// TableName 指定表名
func (AttendanceSetting) TableName() string { return "attendance_settings" }

// ArrivalTimeFor 按角色返回应到时间
func (s *AttendanceSetting) ArrivalTimeFor(role string) string {
	if role == RoleStudent {
		return s.StudentArrivalTime
	}
	return s.StaffArrivalTime
}

// DepartureTimeFor 按角色返回应离时间
func (s *AttendanceSetting) DepartureTimeFor(role string) string {
	if role == RoleStudent {
		return s.StudentDepartureTime
	}
	return s.StaffDepartureTime
}
