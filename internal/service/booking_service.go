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

// BookingService 直接创建单个课次
type BookingService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest, actor Actor) (*dto.SessionResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	load   loader
	locker lock.Locker
	cfg    config.SchedulingConfig
	logger *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(cfg config.SchedulingConfig, repo *repository.Repository, locker lock.Locker, logger *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		load:   loader{repo: repo, logger: logger},
		locker: locker,
		cfg:    cfg,
		logger: logger,
	}
}

// ────────────────────── CreateSession ──────────────────────

func (s *bookingService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest, actor Actor) (*dto.SessionResponse, error) {
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return nil, err
	}
	start, err := planning.ParseClock(req.StartTime)
	if err != nil {
		return nil, fieldErr("start_time", err)
	}
	end, err := planning.ParseClock(req.EndTime)
	if err != nil {
		return nil, fieldErr("end_time", err)
	}
	if end <= start {
		return nil, fieldErr("end_time", ErrInvalidDuration)
	}
	iv := planning.Interval{Start: start, End: end}

	category := model.Category(req.Category)
	if !category.Valid() {
		return nil, fieldErr("category", ErrInvalidCategory)
	}

	module, err := s.load.ownedModule(ctx, req.ModuleID, actor)
	if err != nil {
		return nil, err
	}
	instructor, err := s.load.availableInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}

	var room string
	keys := []string{instructorLockKey(instructor.InstructorID)}
	if req.Room != nil && *req.Room != "" {
		room = *req.Room
		if err := s.load.roomExists(ctx, room); err != nil {
			return nil, err
		}
		keys = append(keys, roomLockKey(room))
	}

	unlock, err := acquire(ctx, s.locker, s.cfg.LockWait, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var instrBookings, roomBookings []planning.Booking
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		instrBookings, err = s.load.instructorBookings(gctx, instructor.InstructorID, date, date)
		return err
	})
	g.Go(func() error {
		var err error
		roomBookings, err = s.load.roomBookings(gctx, room, date, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if planning.NewConflictIndex(instrBookings, roomBookings).Conflicts(date, iv) {
		return nil, ErrBookingConflict
	}

	session := &model.Session{
		ModuleID:     module.ModuleID,
		InstructorID: instructor.InstructorID,
		Date:         date,
		StartTime:    start.String(),
		EndTime:      end.String(),
		Duration:     iv.Minutes(),
		Category:     category,
		Status:       model.SessionPlanned,
		Notes:        req.Notes,
	}
	if room != "" {
		session.Room = &room
	}
	if actor.UserID != "" {
		session.CreatedBy = &actor.UserID
		session.UpdatedBy = &actor.UserID
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		if errors.Is(err, ErrBookingConflict) {
			return nil, err
		}
		s.logger.Error("创建课次失败", zap.String("module_id", module.ModuleID), zap.Error(err))
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}
