package planning

import (
	"errors"
	"fmt"
)

// ── 时钟时间运算 ──

var (
	ErrInvalidTimeFormat = errors.New("时间格式无效，应为 HH:MM")
	ErrTimeOutOfRange    = errors.New("时间超出当日范围 00:00-23:59")
)

// MinutesPerDay 一天的分钟数
const MinutesPerDay = 24 * 60

// Clock 当日时刻，单位为自零点起的分钟数，取值 [0, 1440)
type Clock int

// ParseClock 解析 "HH:MM" 格式时刻
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return Clock(h*60 + m), nil
}

// MustClock 解析常量时刻，格式错误时 panic（仅用于包内固定配置）
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// String 格式化为 "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add 增加分钟数；结果越过 24:00 或为负时返回 ErrTimeOutOfRange，不做回绕
func (c Clock) Add(minutes int) (Clock, error) {
	v := int(c) + minutes
	if v < 0 || v >= MinutesPerDay {
		return 0, fmt.Errorf("%w: %s%+d分钟", ErrTimeOutOfRange, c, minutes)
	}
	return Clock(v), nil
}

// DurationMinutes 计算 start 到 end 的分钟数
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	return int(e - s), nil
}

// AddMinutes 在 "HH:MM" 上增加分钟数并返回新的 "HH:MM"
func AddMinutes(start string, minutes int) (string, error) {
	s, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	r, err := s.Add(minutes)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Overlaps 半开区间重叠判断：[startA, endA) 与 [startB, endB)
// 首尾相接不算冲突
func Overlaps(startA, endA, startB, endB Clock) bool {
	return startA < endB && endA > startB
}

// Interval 当日时间区间 [Start, End)
type Interval struct {
	Start Clock
	End   Clock
}

// Minutes 区间时长
func (iv Interval) Minutes() int { return int(iv.End - iv.Start) }

// Overlaps 判断两个区间是否重叠
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

// ParseInterval 解析起止时刻，要求 end > start
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptyInterval, start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// ErrEmptyInterval 结束时刻不晚于开始时刻
var ErrEmptyInterval = errors.New("结束时间必须晚于开始时间")
