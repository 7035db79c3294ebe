package dto

// ── 课次 DTO ──

// CreateSessionRequest 直接创建课次请求
type CreateSessionRequest struct {
	ModuleID     string  `json:"module_id"     binding:"required,uuid"`
	InstructorID string  `json:"instructor_id" binding:"required,uuid"`
	Date         string  `json:"date"          binding:"required,datetime=2006-01-02"`
	StartTime    string  `json:"start_time"    binding:"required,clock"` // "08:00"
	EndTime      string  `json:"end_time"      binding:"required,clock"` // "10:00"
	Category     string  `json:"category"      binding:"required,oneof=CM TD TP EXAM MAKEUP"`
	Room         *string `json:"room"          binding:"omitempty,min=1,max=100"`
	Notes        string  `json:"notes"         binding:"omitempty,max=2000"`
}

// CompleteSessionRequest 完成课次请求
type CompleteSessionRequest struct {
	Notes        *string `json:"notes"         binding:"omitempty,max=2000"`
	RealDuration *int    `json:"real_duration" binding:"omitempty,min=1,max=1439"` // 实际时长（分钟）
}

// SessionResponse 课次信息响应
type SessionResponse struct {
	ID           string  `json:"id"`
	ModuleID     string  `json:"module_id"`
	InstructorID string  `json:"instructor_id"`
	Date         string  `json:"date"`
	Weekday      string  `json:"weekday"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Duration     int     `json:"duration"`
	Category     string  `json:"category"`
	Status       string  `json:"status"`
	Room         *string `json:"room,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	CompletedAt  *string `json:"completed_at,omitempty"`
	Version      int     `json:"version"`
}

// ModuleProgressResponse 模块进度
type ModuleProgressResponse struct {
	ID             string  `json:"id"`
	Progression    int     `json:"progression"`
	Status         string  `json:"status"`
	HoursCompleted float64 `json:"hours_completed"`
	HoursTotal     float64 `json:"hours_total"`
}

// ProgramProgressResponse 培养方案进度
type ProgramProgressResponse struct {
	ID          string `json:"id"`
	Progression int    `json:"progression"`
	Status      string `json:"status"`
}

// CompleteSessionResponse 完成课次响应
type CompleteSessionResponse struct {
	Session SessionResponse         `json:"session"`
	Module  ModuleProgressResponse  `json:"module"`
	Program ProgramProgressResponse `json:"program"`
}
