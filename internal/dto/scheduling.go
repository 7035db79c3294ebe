package dto

// ── 排课建议 DTO ──

// SuggestSlotsRequest 单次课时段建议查询参数
type SuggestSlotsRequest struct {
	ModuleID     string `form:"module_id"     binding:"required,uuid"`
	InstructorID string `form:"instructor_id" binding:"required,uuid"`
	Category     string `form:"category"      binding:"omitempty,oneof=CM TD TP EXAM MAKEUP"` // 默认 CM
	Duration     int    `form:"duration"      binding:"omitempty,min=1,max=1439"`             // 分钟，默认 120
	StartDate    string `form:"start_date"    binding:"required,datetime=2006-01-02"`
	EndDate      string `form:"end_date"      binding:"omitempty,datetime=2006-01-02"`
	Room         string `form:"room"          binding:"omitempty,max=100"`
	Limit        int    `form:"limit"         binding:"omitempty,min=1"`
}

// SlotSuggestion 单个候选时段
type SlotSuggestion struct {
	Date           string `json:"date"`
	Weekday        string `json:"weekday"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Duration       int    `json:"duration"`
	Period         string `json:"period"`
	Disponibilite  string `json:"disponibilite"` // 固定为 LIBRE
	Score          int    `json:"score"`
	Recommendation string `json:"recommendation"`
}

// SuggestSlotsResponse 时段建议响应
type SuggestSlotsResponse struct {
	Module      ModuleBrief      `json:"module"`
	Instructor  InstructorBrief  `json:"instructor"`
	Category    string           `json:"category"` // 请求的课次类别，未指定时为 CM
	Period      DateRange        `json:"period"`
	Total       int              `json:"total"` // 截断前的空闲候选总数
	Suggestions []SlotSuggestion `json:"suggestions"`
}

// ModuleBrief 模块简要信息
type ModuleBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InstructorBrief 教师简要信息
type InstructorBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DateRange 日期范围（含首尾）
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ── 模块自动排课 DTO ──

// PlanPreferences 排课偏好
type PlanPreferences struct {
	SessionDuration *int  `json:"session_duration" binding:"omitempty,min=1,max=1439"`
	WorkingDays     []int `json:"working_days"     binding:"omitempty,dive,min=0,max=6"` // 0=周日
	DryRun          bool  `json:"dry_run"`
}

// GeneratePlanRequest 模块自动排课请求
type GeneratePlanRequest struct {
	ModuleID     string          `json:"module_id"     binding:"required,uuid"`
	InstructorID string          `json:"instructor_id" binding:"required,uuid"`
	StartDate    string          `json:"start_date"    binding:"required,datetime=2006-01-02"`
	EndDate      string          `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
	Preferences  PlanPreferences `json:"preferences"`
}

// PlannedSessionItem 排出的课次
type PlannedSessionItem struct {
	SessionID string `json:"session_id,omitempty"` // 试排时为空
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Duration  int    `json:"duration"`
	Category  string `json:"category"`
	Period    string `json:"period"`
	Status    string `json:"status"`
}

// BucketSummary 单个类别的排课汇总
type BucketSummary struct {
	Category         string  `json:"category"`
	HoursRequired    float64 `json:"hours_required"`
	HoursPlanned     float64 `json:"hours_planned"`
	HoursRemaining   float64 `json:"hours_remaining"`
	Sessions         int     `json:"sessions"`
	ConflictsAvoided int     `json:"conflicts_avoided"`
}

// FailedSession 写入失败的课次
type FailedSession struct {
	Index  int    `json:"index"` // 在排课结果中的序号
	Date   string `json:"date"`
	Start  string `json:"start"`
	Reason string `json:"reason"`
}

// GeneratePlanResponse 自动排课响应
// 非试排时 Sessions 与学时统计只包含已成功写入的课次
type GeneratePlanResponse struct {
	Module           ModuleBrief          `json:"module"`
	Instructor       InstructorBrief      `json:"instructor"`
	Period           DateRange            `json:"period"`
	DryRun           bool                 `json:"dry_run"`
	Sessions         []PlannedSessionItem `json:"sessions"`
	Buckets          []BucketSummary      `json:"buckets"`
	HoursPlanned     float64              `json:"hours_planned"`
	HoursRemaining   float64              `json:"hours_remaining"`
	ConflictsAvoided int                  `json:"conflicts_avoided"`
	Failed           []FailedSession      `json:"failed,omitempty"`
	NotAttempted     int                  `json:"not_attempted,omitempty"`
}
