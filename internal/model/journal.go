package model

import "time"

// Journal 教学日志表 — 对应 journals（每节授课一条）
type Journal struct {
	JournalID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"journal_id"`
	TeacherID   string    `gorm:"type:uuid;not null"                             json:"teacher_id"`
	ClassID     string    `gorm:"type:uuid;not null"                             json:"class_id"`
	Subject     string    `gorm:"type:varchar(100);not null"                     json:"subject"`
	JournalDate time.Time `gorm:"type:date;not null"                             json:"journal_date"`
	Period      int       `gorm:"type:smallint;not null;default:1"               json:"period"` // 第几节课
	Topic       string    `gorm:"type:varchar(500);not null"                     json:"topic"`
	Notes       string    `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Teacher *User  `gorm:"foreignKey:TeacherID;references:UserID"  json:"teacher,omitempty"`
	Class   *Class `gorm:"foreignKey:ClassID;references:ClassID"   json:"class,omitempty"`
}

// TableName 指定表名
func (Journal) TableName() string { return "journals" }
