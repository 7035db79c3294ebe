package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bem-planning/backend/config"
	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/model"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
	"bem-planning/backend/pkg/lock"
)

// PlannerService 模块自动排课
type PlannerService interface {
	GenerateModulePlan(ctx context.Context, req *dto.GeneratePlanRequest, actor Actor) (*dto.GeneratePlanResponse, error)
}

type plannerService struct {
	repo     *repository.Repository
	load     loader
	locker   lock.Locker
	strategy planning.Strategy
	cfg      config.SchedulingConfig
	logger   *zap.Logger
}

// NewPlannerService 创建 PlannerService 实例，strategy 为空时使用顺序贪心
func NewPlannerService(
	cfg config.SchedulingConfig,
	repo *repository.Repository,
	locker lock.Locker,
	strategy planning.Strategy,
	logger *zap.Logger,
) PlannerService {
	if strategy == nil {
		strategy = planning.SequentialStrategy{}
	}
	return &plannerService{
		repo:     repo,
		load:     loader{repo: repo, logger: logger},
		locker:   locker,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger,
	}
}

// ────────────────────── GenerateModulePlan ──────────────────────

func (s *plannerService) GenerateModulePlan(ctx context.Context, req *dto.GeneratePlanRequest, actor Actor) (*dto.GeneratePlanResponse, error) {
	duration := s.cfg.DefaultSessionMinutes
	if req.Preferences.SessionDuration != nil {
		duration = *req.Preferences.SessionDuration
	}
	if duration <= 0 {
		return nil, fieldErr("preferences.session_duration", ErrInvalidDuration)
	}

	from, to, err := dateRange(req.StartDate, req.EndDate, s.cfg.PlanHorizonDays)
	if err != nil {
		return nil, err
	}

	workingDays := s.cfg.WorkingDays
	if len(req.Preferences.WorkingDays) > 0 {
		workingDays = req.Preferences.WorkingDays
	}

	module, err := s.load.ownedModule(ctx, req.ModuleID, actor)
	if err != nil {
		return nil, err
	}
	instructor, err := s.load.availableInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}

	dryRun := req.Preferences.DryRun
	if !dryRun {
		// 读取占用到写入完成必须在同一临界区内，防止并发排课重复占用
		unlock, err := acquire(ctx, s.locker, s.cfg.LockWait, instructorLockKey(instructor.InstructorID))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	weekStart, _ := planning.WeekBounds(from)
	_, weekEnd := planning.WeekBounds(to)

	var (
		bookings []planning.Booking
		cal      planning.Calendar
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.load.instructorBookings(gctx, instructor.InstructorID, weekStart, weekEnd)
		return err
	})
	g.Go(func() error {
		var err error
		cal, err = s.load.calendar(gctx, weekdays(workingDays))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	buckets := make([]planning.Bucket, 0, len(model.PlannableCategories))
	for _, c := range model.PlannableCategories {
		buckets = append(buckets, planning.Bucket{Category: string(c), Hours: module.HoursFor(c)})
	}

	result := s.strategy.Plan(planning.PlanRequest{
		Buckets:       buckets,
		Calendar:      cal,
		From:          from,
		To:            to,
		Duration:      duration,
		Index:         planning.NewConflictIndex(bookings),
		WeeklyMinutes: planning.WeeklyMinutes(bookings),
		Limits: planning.Limits{
			MaxDailyMinutes:  instructor.MaxHoursPerDay * 60,
			MaxWeeklyMinutes: instructor.MaxHoursPerWeek * 60,
		},
	})

	resp := &dto.GeneratePlanResponse{
		Module:           dto.ModuleBrief{ID: module.ModuleID, Name: module.Name},
		Instructor:       dto.InstructorBrief{ID: instructor.InstructorID, Name: instructor.Name},
		Period:           dto.DateRange{Start: planning.DayKey(from), End: planning.DayKey(to)},
		DryRun:           dryRun,
		ConflictsAvoided: result.ConflictsAvoided,
	}

	if dryRun {
		resp.Sessions = make([]dto.PlannedSessionItem, 0, len(result.Sessions))
		for _, ps := range result.Sessions {
			resp.Sessions = append(resp.Sessions, toPlannedItem(ps, ""))
		}
		resp.Buckets = toBucketSummaries(result.Buckets, nil)
		resp.HoursPlanned = result.HoursPlanned
		resp.HoursRemaining = result.HoursRemaining
		return resp, nil
	}

	s.commit(ctx, module, instructor, result, actor, resp)

	s.logger.Info("模块自动排课完成",
		zap.String("module_id", module.ModuleID),
		zap.String("instructor_id", instructor.InstructorID),
		zap.Int("planned", len(result.Sessions)),
		zap.Int("committed", len(resp.Sessions)),
		zap.Int("failed", len(resp.Failed)),
		zap.Int("not_attempted", resp.NotAttempted),
		zap.Int("conflicts_avoided", result.ConflictsAvoided),
	)
	return resp, nil
}

// commit 逐个写入排出的课次；单个失败不影响其余课次，已写入的不回滚
func (s *plannerService) commit(
	ctx context.Context,
	module *model.Module,
	instructor *model.Instructor,
	result planning.PlanResult,
	actor Actor,
	resp *dto.GeneratePlanResponse,
) {
	resp.Sessions = make([]dto.PlannedSessionItem, 0, len(result.Sessions))
	lost := make(map[string]lostHours)

	for i, ps := range result.Sessions {
		if ctx.Err() != nil {
			resp.NotAttempted = len(result.Sessions) - i
			for _, rest := range result.Sessions[i:] {
				lost[rest.Category] = lost[rest.Category].add(rest)
			}
			break
		}

		session := &model.Session{
			ModuleID:     module.ModuleID,
			InstructorID: instructor.InstructorID,
			Date:         ps.Date,
			StartTime:    ps.Interval.Start.String(),
			EndTime:      ps.Interval.End.String(),
			Duration:     ps.Duration,
			Category:     model.Category(ps.Category),
			Status:       model.SessionPlanned,
		}
		if actor.UserID != "" {
			session.CreatedBy = &actor.UserID
			session.UpdatedBy = &actor.UserID
		}

		if err := s.repo.Session.Create(ctx, session); err != nil {
			reason := "保存课次失败"
			if errors.Is(err, ErrBookingConflict) {
				reason = ErrBookingConflict.Error()
			} else {
				s.logger.Error("写入排课课次失败",
					zap.String("module_id", module.ModuleID),
					zap.String("date", planning.DayKey(ps.Date)),
					zap.String("start_time", session.StartTime),
					zap.Error(err),
				)
			}
			resp.Failed = append(resp.Failed, dto.FailedSession{
				Index:  i,
				Date:   planning.DayKey(ps.Date),
				Start:  session.StartTime,
				Reason: reason,
			})
			lost[ps.Category] = lost[ps.Category].add(ps)
			continue
		}

		resp.Sessions = append(resp.Sessions, toPlannedItem(ps, session.SessionID))
	}

	resp.Buckets = toBucketSummaries(result.Buckets, lost)
	for _, b := range resp.Buckets {
		resp.HoursPlanned += b.HoursPlanned
		resp.HoursRemaining += b.HoursRemaining
	}
}

func toPlannedItem(ps planning.PlannedSession, sessionID string) dto.PlannedSessionItem {
	return dto.PlannedSessionItem{
		SessionID: sessionID,
		Date:      planning.DayKey(ps.Date),
		Weekday:   weekdayName(ps.Date),
		Start:     ps.Interval.Start.String(),
		End:       ps.Interval.End.String(),
		Duration:  ps.Duration,
		Category:  ps.Category,
		Period:    string(ps.Period),
		Status:    string(model.SessionPlanned),
	}
}

// lostHours 某类别未能写入的课次
type lostHours struct {
	hours    float64
	sessions int
}

func (l lostHours) add(ps planning.PlannedSession) lostHours {
	return lostHours{hours: l.hours + float64(ps.Duration)/60, sessions: l.sessions + 1}
}

// toBucketSummaries 汇总各类别学时，扣除未能写入的部分
func toBucketSummaries(buckets []planning.BucketResult, lost map[string]lostHours) []dto.BucketSummary {
	out := make([]dto.BucketSummary, 0, len(buckets))
	for _, b := range buckets {
		l := lost[b.Category]
		planned := b.HoursPlanned - l.hours
		remaining := b.HoursRequired - planned
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, dto.BucketSummary{
			Category:         b.Category,
			HoursRequired:    b.HoursRequired,
			HoursPlanned:     planned,
			HoursRemaining:   remaining,
			Sessions:         b.Sessions - l.sessions,
			ConflictsAvoided: b.ConflictsAvoided,
		})
	}
	return out
}
