package planning

import (
	"time"
)

// ── 模块自动排课（贪心） ──

// Bucket 某一课程类别的待排学时
type Bucket struct {
	Category string
	Hours    float64
}

// Limits 教师工作量上限（分钟），0 表示不限
type Limits struct {
	MaxDailyMinutes  int
	MaxWeeklyMinutes int
}

// PlanRequest 排课输入
type PlanRequest struct {
	Buckets  []Bucket
	Calendar Calendar
	From     time.Time
	To       time.Time
	Duration int // 每次课时长（分钟）
	// Index 已有占用，排课过程中会被原地追加新课次
	Index *ConflictIndex
	// WeeklyMinutes 已有周工作量（分钟），仅在设置周上限时使用
	WeeklyMinutes map[string]int
	Limits        Limits
}

// PlannedSession 待持久化的课次
type PlannedSession struct {
	Date     time.Time
	Interval Interval
	Duration int
	Category string
	Period   Period
}

// BucketResult 单个类别的排课结果
type BucketResult struct {
	Category         string
	HoursRequired    float64
	HoursPlanned     float64
	HoursRemaining   float64
	Sessions         int
	ConflictsAvoided int
}

// PlanResult 排课结果
type PlanResult struct {
	Sessions         []PlannedSession
	Buckets          []BucketResult
	HoursPlanned     float64
	HoursRemaining   float64
	ConflictsAvoided int
}

// Strategy 排课策略，便于替换为交错或求解器方案
type Strategy interface {
	Plan(req PlanRequest) PlanResult
}

// SequentialStrategy 按类别顺序（CM → TD → TP）依次排满，每个工作日最多排一次，
// 取第一个空闲标准窗口。
type SequentialStrategy struct{}

var _ Strategy = SequentialStrategy{}

// Plan 执行顺序贪心排课
func (SequentialStrategy) Plan(req PlanRequest) PlanResult {
	var result PlanResult
	if req.Duration <= 0 {
		return result
	}
	ix := req.Index
	if ix == nil {
		ix = NewConflictIndex()
	}
	weekly := req.WeeklyMinutes
	if weekly == nil {
		weekly = make(map[string]int)
	}
	sessionHours := float64(req.Duration) / 60

	for _, b := range req.Buckets {
		if b.Hours <= 0 {
			continue
		}
		br := BucketResult{Category: b.Category, HoursRequired: b.Hours}
		remaining := b.Hours

		for day := range req.Calendar.Days(req.From, req.To) {
			if remaining <= 0 {
				break
			}
			if !withinLimits(req.Limits, ix, weekly, day, req.Duration) {
				br.ConflictsAvoided++
				continue
			}
			c, ok := FirstFit(day, req.Duration, ix)
			if !ok {
				br.ConflictsAvoided++
				continue
			}
			ix.Add(c.Date, c.Interval)
			weekly[WeekKey(c.Date)] += req.Duration

			result.Sessions = append(result.Sessions, PlannedSession{
				Date:     c.Date,
				Interval: c.Interval,
				Duration: c.Duration,
				Category: b.Category,
				Period:   c.Period,
			})
			remaining -= sessionHours
			br.Sessions++
			br.HoursPlanned += sessionHours
		}

		if remaining < 0 {
			remaining = 0
		}
		br.HoursRemaining = remaining
		result.Buckets = append(result.Buckets, br)
		result.HoursPlanned += br.HoursPlanned
		result.HoursRemaining += br.HoursRemaining
		result.ConflictsAvoided += br.ConflictsAvoided
	}

	return result
}

func withinLimits(l Limits, ix *ConflictIndex, weekly map[string]int, day time.Time, duration int) bool {
	if l.MaxDailyMinutes > 0 && ix.BookedMinutes(day)+duration > l.MaxDailyMinutes {
		return false
	}
	if l.MaxWeeklyMinutes > 0 && weekly[WeekKey(day)]+duration > l.MaxWeeklyMinutes {
		return false
	}
	return true
}
