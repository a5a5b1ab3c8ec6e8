package model

import "time"

// 考勤状态枚举：四种状态互斥，按日合计即为聚合报表的分母
const (
	StatusPresent = "present" // 出勤（含迟到）
	StatusSick    = "sick"    // 病假
	StatusExcused = "excused" // 事假
	StatusAbsent  = "absent"  // 旷课
)

// 打卡来源标记
const (
	MethodManual = "manual" // 教师代录
	MethodMobile = "mobile" // 移动端自助打卡
	MethodDevice = "device" // 闸机/刷卡设备
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records
//
// (user_id, att_date) 唯一约束是核心不变量：同一人同一天至多一条记录。
// 当日状态机仅两态，由 check_out 是否为空区分：
//
//	已签到未签退 (check_out IS NULL) → 已签退 (check_out NOT NULL)
//
// 并发打卡的判重同样落在该唯一约束上。
type AttendanceRecord struct {
	RecordID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"record_id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_user_date" json:"user_id"`
	AttDate     time.Time  `gorm:"type:date;not null;uniqueIndex:uq_attendance_user_date" json:"att_date"`
	CheckIn     *time.Time `json:"check_in,omitempty"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'present'"       json:"status"` // present | sick | excused | absent
	LateMinutes int        `gorm:"not null;default:0"                                json:"late_minutes"`
	Method      string     `gorm:"type:varchar(20);not null;default:'manual'"        json:"method"` // manual | mobile | device
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// CheckedOut 当日考勤是否已完成（签退后状态终结）
func (r *AttendanceRecord) CheckedOut() bool { return r.CheckOut != nil }
