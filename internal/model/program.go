package model

import "time"

// Program 培养方案表 — 对应 programs
type Program struct {
	ProgramID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	Name        string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Code        string         `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	OwnerID     string         `gorm:"type:uuid;not null"                             json:"owner_id"` // 负责的协调员
	Progression int            `gorm:"type:smallint;not null;default:0"               json:"progression"`
	Status      ProgressStatus `gorm:"type:varchar(20);not null;default:'PLANNED'"    json:"status"`
	VersionedModel

	// 关联
	Modules []Module `gorm:"foreignKey:ProgramID" json:"modules,omitempty"`
}

func (Program) TableName() string { return "programs" }

// Module 教学模块表 — 对应 modules
type Module struct {
	ModuleID     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"module_id"`
	ProgramID    string         `gorm:"type:uuid;not null;index"                       json:"program_id"`
	Name         string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Code         string         `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	HoursCM      float64        `gorm:"type:numeric(6,2);not null;default:0"           json:"hours_cm"`
	HoursTD      float64        `gorm:"type:numeric(6,2);not null;default:0"           json:"hours_td"`
	HoursTP      float64        `gorm:"type:numeric(6,2);not null;default:0"           json:"hours_tp"`
	HoursTPE     float64        `gorm:"type:numeric(6,2);not null;default:0"           json:"hours_tpe"` // 自主学习
	StartDate    *time.Time     `gorm:"type:date"                                      json:"start_date,omitempty"`
	EndDate      *time.Time     `gorm:"type:date"                                      json:"end_date,omitempty"`
	InstructorID *string        `gorm:"type:uuid"                                      json:"instructor_id,omitempty"`
	Progression  int            `gorm:"type:smallint;not null;default:0"               json:"progression"`
	Status       ProgressStatus `gorm:"type:varchar(20);not null;default:'PLANNED'"    json:"status"`
	VersionedModel

	// 关联
	Program    *Program    `gorm:"foreignKey:ProgramID;references:ProgramID"       json:"program,omitempty"`
	Instructor *Instructor `gorm:"foreignKey:InstructorID;references:InstructorID" json:"instructor,omitempty"`
}

func (Module) TableName() string { return "modules" }

// TotalHours 总学时 VHT = CM + TD + TP + TPE
func (m *Module) TotalHours() float64 {
	return m.HoursCM + m.HoursTD + m.HoursTP + m.HoursTPE
}

// HoursFor 某类别的要求学时
func (m *Module) HoursFor(c Category) float64 {
	switch c {
	case CategoryCM:
		return m.HoursCM
	case CategoryTD:
		return m.HoursTD
	case CategoryTP:
		return m.HoursTP
	}
	return 0
}
