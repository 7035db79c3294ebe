package model

// ── 生命周期状态与课程类别 ──

// ProgressStatus 模块 / 培养方案的进度状态
type ProgressStatus string

const (
	ProgressPlanned    ProgressStatus = "PLANNED"
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressComplete   ProgressStatus = "COMPLETE"
)

// SessionStatus 课次状态
type SessionStatus string

const (
	SessionPlanned    SessionStatus = "PLANNED"
	SessionConfirmed  SessionStatus = "CONFIRMED"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionComplete   SessionStatus = "COMPLETE"
	SessionPostponed  SessionStatus = "POSTPONED"
	SessionCancelled  SessionStatus = "CANCELLED"
)

// Blocks 该状态的课次是否占用教师/教室
func (s SessionStatus) Blocks() bool { return s != SessionCancelled }

// Category 课次类别
type Category string

const (
	CategoryCM     Category = "CM"     // 讲授课
	CategoryTD     Category = "TD"     // 习题课
	CategoryTP     Category = "TP"     // 实验课
	CategoryExam   Category = "EXAM"   // 考试
	CategoryMakeup Category = "MAKEUP" // 补课
)

// PlannableCategories 自动排课按此顺序处理
var PlannableCategories = []Category{CategoryCM, CategoryTD, CategoryTP}

// Valid 是否为已知类别
func (c Category) Valid() bool {
	switch c {
	case CategoryCM, CategoryTD, CategoryTP, CategoryExam, CategoryMakeup:
		return true
	}
	return false
}

// 角色
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleInstructor  = "instructor"
)
