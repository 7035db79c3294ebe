package planning

import (
	"fmt"
	"iter"
	"time"
)

// DateLayout 日期键格式
const DateLayout = "2006-01-02"

// DefaultWorkingDays 默认工作日：周一至周五
var DefaultWorkingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// DateOf 截断为 UTC 零点，只保留日期部分
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey 日历日键 "2006-01-02"
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 解析 "2006-01-02" 日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// Recess 假期窗口，首尾日期均包含在内
type Recess struct {
	Start time.Time
	End   time.Time
}

// Contains 判断日期是否落在假期内
func (r Recess) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// Calendar 工作日历：工作日集合 + 假期窗口
type Calendar struct {
	workingDays [7]bool
	recesses    []Recess
}

// NewCalendar 创建日历；workingDays 为空时使用周一至周五
func NewCalendar(workingDays []time.Weekday, recesses ...Recess) Calendar {
	if len(workingDays) == 0 {
		workingDays = DefaultWorkingDays
	}
	var c Calendar
	for _, wd := range workingDays {
		c.workingDays[wd] = true
	}
	c.recesses = append(c.recesses, recesses...)
	return c
}

// IsWorkingDay 判断某天是否可排课
func (c Calendar) IsWorkingDay(day time.Time) bool {
	if !c.workingDays[day.Weekday()] {
		return false
	}
	for _, r := range c.recesses {
		if r.Contains(day) {
			return false
		}
	}
	return true
}

// Days 按升序惰性产出 [from, to] 内的可排课日期。
// 返回的序列可多次遍历，每次从 from 重新开始。
func (c Calendar) Days(from, to time.Time) iter.Seq[time.Time] {
	start, end := DateOf(from), DateOf(to)
	return func(yield func(time.Time) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !c.IsWorkingDay(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// WeekKey ISO 周键，例如 "2024-W10"
func WeekKey(day time.Time) string {
	y, w := day.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// WeekBounds 返回某天所在 ISO 周的周一与周日
func WeekBounds(day time.Time) (time.Time, time.Time) {
	d := DateOf(day)
	offset := (int(d.Weekday()) + 6) % 7 // 周一为 0
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
