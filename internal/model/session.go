package model

import "time"

// Session 课次表 — 对应 sessions
// 同一教师未取消课次的 (instructor_id, date, start_time) 在库中唯一
type Session struct {
	SessionID    string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	ModuleID     string        `gorm:"type:uuid;not null;index"                       json:"module_id"`
	InstructorID string        `gorm:"type:uuid;not null"                             json:"instructor_id"`
	Date         time.Time     `gorm:"type:date;not null"                             json:"date"`
	StartTime    string        `gorm:"type:varchar(5);not null"                       json:"start_time"` // "08:00"
	EndTime      string        `gorm:"type:varchar(5);not null"                       json:"end_time"`   // "10:00"
	Duration     int           `gorm:"not null"                                       json:"duration"`   // 分钟
	Category     Category      `gorm:"type:varchar(10);not null"                      json:"category"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'PLANNED'"    json:"status"`
	Room         *string       `gorm:"type:varchar(100)"                              json:"room,omitempty"` // 教室名称，弱引用
	Notes        string        `gorm:"type:text"                                      json:"notes,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	VersionedModel

	// 关联
	Module     *Module     `gorm:"foreignKey:ModuleID;references:ModuleID"         json:"module,omitempty"`
	Instructor *Instructor `gorm:"foreignKey:InstructorID;references:InstructorID" json:"instructor,omitempty"`
}

func (Session) TableName() string { return "sessions" }
