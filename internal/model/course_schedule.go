package model

// 课表条目来源
const (
	ScheduleSourceManual = "manual"
	ScheduleSourceICS    = "ics"
)

// CourseSchedule 班级课程表 — 对应 course_schedules
// 由管理员手工维护或从 ICS 课表导入（source=ics，导入为全量替换）
type CourseSchedule struct {
	CourseScheduleID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_schedule_id"`
	ClassID          string   `gorm:"type:uuid;not null"                             json:"class_id"`
	TermID           string   `gorm:"type:uuid;not null"                             json:"term_id"`
	CourseName       string   `gorm:"type:varchar(200);not null"                     json:"course_name"`
	TeacherID        *string  `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	DayOfWeek        int      `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	StartTime        string   `gorm:"type:time;not null"                             json:"start_time"`
	EndTime          string   `gorm:"type:time;not null"                             json:"end_time"`
	Weeks            IntArray `gorm:"type:int[]"                                     json:"weeks"`
	Source           string   `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | ics
	BaseModel

	// 关联
	Class   *Class `gorm:"foreignKey:ClassID;references:ClassID"  json:"class,omitempty"`
	Term    *Term  `gorm:"foreignKey:TermID;references:TermID"    json:"term,omitempty"`
	Teacher *User  `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (CourseSchedule) TableName() string { return "course_schedules" }
