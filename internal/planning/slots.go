package planning

import (
	"iter"
	"time"
)

// Period 半天时段
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

// Window 标准排课窗口
type Window struct {
	Interval
	Period Period
}

// CanonicalWindows 固定的四个标准窗口，午休 12:00-14:00 不排课
var CanonicalWindows = []Window{
	{Interval: Interval{Start: MustClock("08:00"), End: MustClock("10:00")}, Period: PeriodMorning},
	{Interval: Interval{Start: MustClock("10:15"), End: MustClock("12:00")}, Period: PeriodMorning},
	{Interval: Interval{Start: MustClock("14:00"), End: MustClock("16:00")}, Period: PeriodAfternoon},
	{Interval: Interval{Start: MustClock("16:15"), End: MustClock("18:00")}, Period: PeriodAfternoon},
}

// Candidate 候选空闲时段
type Candidate struct {
	Date     time.Time
	Interval Interval
	Duration int
	Period   Period
}

// FreeSlotsOn 返回某天所有可容纳 duration 分钟且无冲突的候选时段（最多 4 个）。
// 候选区间为 [窗口开始, 窗口开始+duration)，不取整个窗口。
func FreeSlotsOn(day time.Time, duration int, ix *ConflictIndex) []Candidate {
	if duration <= 0 {
		return nil
	}
	var out []Candidate
	for _, w := range CanonicalWindows {
		if c, ok := fitWindow(day, w, duration, ix); ok {
			out = append(out, c)
		}
	}
	return out
}

// FirstFit 返回当天第一个可用的标准窗口（不打分）
func FirstFit(day time.Time, duration int, ix *ConflictIndex) (Candidate, bool) {
	if duration <= 0 {
		return Candidate{}, false
	}
	for _, w := range CanonicalWindows {
		if c, ok := fitWindow(day, w, duration, ix); ok {
			return c, true
		}
	}
	return Candidate{}, false
}

func fitWindow(day time.Time, w Window, duration int, ix *ConflictIndex) (Candidate, bool) {
	if w.Minutes() < duration {
		return Candidate{}, false
	}
	iv := Interval{Start: w.Start, End: w.Start + Clock(duration)}
	if ix != nil && ix.Conflicts(day, iv) {
		return Candidate{}, false
	}
	return Candidate{
		Date:     DateOf(day),
		Interval: iv,
		Duration: duration,
		Period:   w.Period,
	}, true
}

// GenerateSlots 遍历日期序列生成候选时段，保持时间顺序；limit <= 0 表示不限
func GenerateSlots(days iter.Seq[time.Time], duration int, ix *ConflictIndex, limit int) []Candidate {
	var out []Candidate
	for day := range days {
		for _, c := range FreeSlotsOn(day, duration, ix) {
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
