package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name              string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Grade             int     `gorm:"type:smallint;not null"                         json:"grade"` // 年级，报表分组排序键
	HomeroomTeacherID *string `gorm:"type:uuid"                                      json:"homeroom_teacher_id,omitempty"`
	VersionedModel

	// 关联
	HomeroomTeacher *User `gorm:"foreignKey:HomeroomTeacherID;references:UserID" json:"homeroom_teacher,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
