package model

import "time"

// Instructor 教师表 — 对应 instructors
type Instructor struct {
	InstructorID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"instructor_id"`
	UserID          *string `gorm:"type:uuid;uniqueIndex"                          json:"user_id,omitempty"` // 登录账号
	Name            string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string  `gorm:"type:varchar(200)"                              json:"email,omitempty"`
	MaxHoursPerWeek int     `gorm:"type:smallint;not null;default:0"               json:"max_hours_per_week"` // 0 表示不限
	MaxHoursPerDay  int     `gorm:"type:smallint;not null;default:0"               json:"max_hours_per_day"`
	Available       bool    `gorm:"not null;default:true"                          json:"available"`
	VersionedModel
}

func (Instructor) TableName() string { return "instructors" }

// Room 教室表 — 对应 rooms
type Room struct {
	RoomID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Capacity int    `gorm:"not null;default:0"                             json:"capacity"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

func (Room) TableName() string { return "rooms" }

// AcademicPeriod 学年表 — 对应 academic_periods，同一时间至多一个生效
type AcademicPeriod struct {
	AcademicPeriodID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"academic_period_id"`
	Name                string     `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate           time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate             time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	ChristmasBreakStart *time.Time `gorm:"type:date"                                      json:"christmas_break_start,omitempty"`
	ChristmasBreakEnd   *time.Time `gorm:"type:date"                                      json:"christmas_break_end,omitempty"`
	SpringBreakStart    *time.Time `gorm:"type:date"                                      json:"spring_break_start,omitempty"`
	SpringBreakEnd      *time.Time `gorm:"type:date"                                      json:"spring_break_end,omitempty"`
	IsActive            bool       `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

func (AcademicPeriod) TableName() string { return "academic_periods" }
