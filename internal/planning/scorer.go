package planning

import (
	"sort"
	"time"
)

// ── 候选时段打分 ──

const (
	baseScore          = 100
	morningBonus       = 10
	midweekBonus       = 5
	proximityNearBonus = 15 // 距模块开始日 7 天内
	proximityFarBonus  = 10 // 距模块开始日 14 天内
)

// 周负荷阈值与扣分，逐级累加
var weeklyLoadPenalties = []struct {
	over    int
	penalty int
}{
	{over: 3, penalty: 10},
	{over: 5, penalty: 15},
	{over: 7, penalty: 20},
}

// 推荐等级
const (
	RecommendationStrong      = "strongly recommended"
	RecommendationRecommended = "recommended"
	RecommendationAcceptable  = "acceptable"
	RecommendationDiscouraged = "discouraged"
)

// Scorer 根据日历与教师周负荷为候选时段打分（0-100）
type Scorer struct {
	load        WeeklyLoad
	moduleStart *time.Time
}

// NewScorer 创建打分器；moduleStart 为 nil 时不计算临近加分
func NewScorer(load WeeklyLoad, moduleStart *time.Time) *Scorer {
	if load == nil {
		load = WeeklyLoad{}
	}
	return &Scorer{load: load, moduleStart: moduleStart}
}

// Score 计算候选时段得分
func (s *Scorer) Score(c Candidate) int {
	score := baseScore

	if c.Period == PeriodMorning {
		score += morningBonus
	}

	switch c.Date.Weekday() {
	case time.Tuesday, time.Thursday:
		score += midweekBonus
	}

	count := s.load[WeekKey(c.Date)]
	for _, p := range weeklyLoadPenalties {
		if count > p.over {
			score -= p.penalty
		}
	}

	if s.moduleStart != nil {
		days := daysBetween(c.Date, *s.moduleStart)
		switch {
		case days <= 7:
			score += proximityNearBonus
		case days <= 14:
			score += proximityFarBonus
		}
	}

	return clampScore(score)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// daysBetween 两个日期相差的天数（绝对值）
func daysBetween(a, b time.Time) int {
	d := int(DateOf(a).Sub(DateOf(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// Recommendation 由分数得出推荐等级
func Recommendation(score int) string {
	switch {
	case score >= 90:
		return RecommendationStrong
	case score >= 75:
		return RecommendationRecommended
	case score >= 50:
		return RecommendationAcceptable
	default:
		return RecommendationDiscouraged
	}
}

// ScoredCandidate 带分数的候选时段
type ScoredCandidate struct {
	Candidate
	Score          int
	Recommendation string
}

// Rank 为候选时段打分并按分数降序稳定排序（同分保持时间顺序）
func (s *Scorer) Rank(candidates []Candidate) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score := s.Score(c)
		out = append(out, ScoredCandidate{
			Candidate:      c,
			Score:          score,
			Recommendation: Recommendation(score),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
