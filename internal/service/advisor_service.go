package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bem-planning/backend/config"
	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/model"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
)

// disponibiliteFree 建议列表中的时段均为空闲
const disponibiliteFree = "LIBRE"

// AdvisorService 单次课时段建议（只读）
type AdvisorService interface {
	SuggestSlots(ctx context.Context, req *dto.SuggestSlotsRequest, actor Actor) (*dto.SuggestSlotsResponse, error)
}

type advisorService struct {
	load   loader
	cfg    config.SchedulingConfig
	logger *zap.Logger
}

// NewAdvisorService 创建 AdvisorService 实例
func NewAdvisorService(cfg config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) AdvisorService {
	return &advisorService{
		load:   loader{repo: repo, logger: logger},
		cfg:    cfg,
		logger: logger,
	}
}

func (s *advisorService) SuggestSlots(ctx context.Context, req *dto.SuggestSlotsRequest, actor Actor) (*dto.SuggestSlotsResponse, error) {
	category := model.Category(req.Category)
	if category == "" {
		category = model.CategoryCM
	}
	if !category.Valid() {
		return nil, fieldErr("category", ErrInvalidCategory)
	}

	duration := req.Duration
	if duration == 0 {
		duration = s.cfg.DefaultSessionMinutes
	}
	if duration <= 0 {
		return nil, fieldErr("duration", ErrInvalidDuration)
	}

	from, to, err := dateRange(req.StartDate, req.EndDate, s.cfg.SuggestHorizonDays)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultSuggestLimit
	}
	if s.cfg.MaxSuggestLimit > 0 && limit > s.cfg.MaxSuggestLimit {
		limit = s.cfg.MaxSuggestLimit
	}

	module, err := s.load.ownedModule(ctx, req.ModuleID, actor)
	if err != nil {
		return nil, err
	}
	instructor, err := s.load.availableInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}
	if req.Room != "" {
		if err := s.load.roomExists(ctx, req.Room); err != nil {
			return nil, err
		}
	}

	// 周负载按 ISO 周统计，查询范围扩展到首尾所在周
	weekStart, _ := planning.WeekBounds(from)
	_, weekEnd := planning.WeekBounds(to)

	var (
		instrBookings []planning.Booking
		roomBookings  []planning.Booking
		cal           planning.Calendar
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		instrBookings, err = s.load.instructorBookings(gctx, instructor.InstructorID, weekStart, weekEnd)
		return err
	})
	g.Go(func() error {
		var err error
		roomBookings, err = s.load.roomBookings(gctx, req.Room, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		cal, err = s.load.calendar(gctx, weekdays(s.cfg.WorkingDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix := planning.NewConflictIndex(instrBookings, roomBookings)
	candidates := planning.GenerateSlots(cal.Days(from, to), duration, ix, 0)
	ranked := planning.NewScorer(planning.CountWeeklyLoad(instrBookings), module.StartDate).Rank(candidates)

	total := len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	suggestions := make([]dto.SlotSuggestion, 0, len(ranked))
	for _, c := range ranked {
		suggestions = append(suggestions, dto.SlotSuggestion{
			Date:           planning.DayKey(c.Date),
			Weekday:        weekdayName(c.Date),
			Start:          c.Interval.Start.String(),
			End:            c.Interval.End.String(),
			Duration:       c.Duration,
			Period:         string(c.Period),
			Disponibilite:  disponibiliteFree,
			Score:          c.Score,
			Recommendation: c.Recommendation,
		})
	}

	s.logger.Debug("生成时段建议",
		zap.String("module_id", module.ModuleID),
		zap.String("instructor_id", instructor.InstructorID),
		zap.Int("total", total),
		zap.Int("returned", len(suggestions)),
	)

	return &dto.SuggestSlotsResponse{
		Module:      dto.ModuleBrief{ID: module.ModuleID, Name: module.Name},
		Instructor:  dto.InstructorBrief{ID: instructor.InstructorID, Name: instructor.Name},
		Category:    string(category),
		Period:      dto.DateRange{Start: planning.DayKey(from), End: planning.DayKey(to)},
		Total:       total,
		Suggestions: suggestions,
	}, nil
}
