package model

// 通知类型
const (
	NotifyAbsenceMarked    = "absence_marked"    // 被标记病/事假/旷课
	NotifyLateArrival      = "late_arrival"      // 迟到提醒
	NotifyJournalPublished = "journal_published" // 班级教学日志更新
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // attendance_record | journal
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// NotificationPreference 通知偏好表 — 对应 notification_preferences（与 users 1:1）
type NotificationPreference struct {
	UserID           string `gorm:"type:uuid;primaryKey"  json:"user_id"`
	AbsenceMarked    bool   `gorm:"not null;default:true" json:"absence_marked"`
	LateArrival      bool   `gorm:"not null;default:true" json:"late_arrival"`
	JournalPublished bool   `gorm:"not null;default:true" json:"journal_published"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// Allows 指定类型的通知是否允许投递；未知类型默认允许
func (p *NotificationPreference) Allows(notifyType string) bool {
	switch notifyType {
	case NotifyAbsenceMarked:
		return p.AbsenceMarked
	case NotifyLateArrival:
		return p.LateArrival
	case NotifyJournalPublished:
		return p.JournalPublished
	default:
		return true
	}
}
