package planning

import "time"

// Booking 已占用的时间段（来自已有课次），Cancelled 的记录不占用
type Booking struct {
	Date      time.Time
	Interval  Interval
	Cancelled bool
}

// ConflictIndex 按日期索引的占用区间，用于排除冲突时段。
// 同一个索引可以同时装入教师与教室的占用，任一占用都会阻塞候选时段。
// 非并发安全：调用方需在同一临界区内读写。
type ConflictIndex struct {
	byDay map[string][]Interval
}

// NewConflictIndex 由若干组占用记录构建索引，已取消的记录被忽略
func NewConflictIndex(groups ...[]Booking) *ConflictIndex {
	ix := &ConflictIndex{byDay: make(map[string][]Interval)}
	for _, g := range groups {
		for _, b := range g {
			if b.Cancelled {
				continue
			}
			ix.Add(b.Date, b.Interval)
		}
	}
	return ix
}

// Add 记录一个占用区间
func (ix *ConflictIndex) Add(day time.Time, iv Interval) {
	key := DayKey(day)
	ix.byDay[key] = append(ix.byDay[key], iv)
}

// Bookings 返回当天的占用区间
func (ix *ConflictIndex) Bookings(day time.Time) []Interval {
	return ix.byDay[DayKey(day)]
}

// Conflicts 判断候选区间是否与当天任一占用重叠
func (ix *ConflictIndex) Conflicts(day time.Time, iv Interval) bool {
	for _, b := range ix.byDay[DayKey(day)] {
		if b.Overlaps(iv) {
			return true
		}
	}
	return false
}

// BookedMinutes 当天已占用的总分钟数
func (ix *ConflictIndex) BookedMinutes(day time.Time) int {
	total := 0
	for _, b := range ix.byDay[DayKey(day)] {
		total += b.Minutes()
	}
	return total
}

// WeeklyLoad ISO 周键 → 课次数
type WeeklyLoad map[string]int

// CountWeeklyLoad 统计每个 ISO 周内未取消的课次数
func CountWeeklyLoad(bookings []Booking) WeeklyLoad {
	load := make(WeeklyLoad)
	for _, b := range bookings {
		if b.Cancelled {
			continue
		}
		load[WeekKey(b.Date)]++
	}
	return load
}

// WeeklyMinutes ISO 周键 → 已排分钟数
func WeeklyMinutes(bookings []Booking) map[string]int {
	m := make(map[string]int)
	for _, b := range bookings {
		if b.Cancelled {
			continue
		}
		m[WeekKey(b.Date)] += b.Interval.Minutes()
	}
	return m
}
