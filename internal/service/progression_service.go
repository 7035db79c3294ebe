package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bem-planning/backend/config"
	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/model"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
	"bem-planning/backend/pkg/lock"
)

// ProgressionService 课次完成与进度级联（课次 → 模块 → 培养方案）
type ProgressionService interface {
	CompleteSession(ctx context.Context, sessionID string, req *dto.CompleteSessionRequest, actor Actor) (*dto.CompleteSessionResponse, error)
}

type progressionService struct {
	repo   *repository.Repository
	locker lock.Locker
	cfg    config.SchedulingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewProgressionService 创建 ProgressionService 实例
func NewProgressionService(cfg config.SchedulingConfig, repo *repository.Repository, locker lock.Locker, logger *zap.Logger) ProgressionService {
	return &progressionService{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── CompleteSession ──────────────────────

func (s *progressionService) CompleteSession(ctx context.Context, sessionID string, req *dto.CompleteSessionRequest, actor Actor) (*dto.CompleteSessionResponse, error) {
	session, err := s.getSession(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}
	if !CanComplete(session, actor) {
		return nil, ErrForbidden
	}
	if err := checkCompletable(session); err != nil {
		return nil, err
	}
	if req.RealDuration != nil && *req.RealDuration <= 0 {
		return nil, fieldErr("real_duration", ErrInvalidDuration)
	}

	module, err := s.repo.Module.GetByID(ctx, session.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		s.logger.Error("查询模块失败", zap.String("module_id", session.ModuleID), zap.Error(err))
		return nil, err
	}

	// 同一培养方案的级联串行执行；修改实际时长会改变占用区间，同时持有教师与教室的预订锁
	keys := []string{programLockKey(module.ProgramID)}
	if req.RealDuration != nil {
		keys = append(keys, instructorLockKey(session.InstructorID))
		if session.Room != nil {
			keys = append(keys, roomLockKey(*session.Room))
		}
	}
	unlock, err := acquire(ctx, s.locker, s.cfg.LockWait, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var resp *dto.CompleteSessionResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		resp, err = s.cascade(ctx, tx, sessionID, req, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("课次已完成",
		zap.String("session_id", sessionID),
		zap.String("module_id", resp.Module.ID),
		zap.Int("module_progression", resp.Module.Progression),
		zap.String("program_id", resp.Program.ID),
		zap.Int("program_progression", resp.Program.Progression),
	)
	return resp, nil
}

// checkOccupancy 调整后的区间不得与同一教师或同一教室当天的其他未取消课次重叠
func (s *progressionService) checkOccupancy(ctx context.Context, tx *repository.Repository, session *model.Session) error {
	iv, err := planning.ParseInterval(session.StartTime, session.EndTime)
	if err != nil {
		return fieldErr("real_duration", err)
	}

	others, err := tx.Session.ListActiveByInstructor(ctx, session.InstructorID, session.Date, session.Date)
	if err != nil {
		s.logger.Error("查询教师课次失败", zap.String("instructor_id", session.InstructorID), zap.Error(err))
		return err
	}
	if session.Room != nil {
		inRoom, err := tx.Session.ListActiveByRoom(ctx, *session.Room, session.Date, session.Date)
		if err != nil {
			s.logger.Error("查询教室课次失败", zap.String("room", *session.Room), zap.Error(err))
			return err
		}
		others = append(others, inRoom...)
	}

	for i := range others {
		o := &others[i]
		if o.SessionID == session.SessionID {
			continue
		}
		oiv, err := planning.ParseInterval(o.StartTime, o.EndTime)
		if err != nil {
			continue
		}
		if iv.Overlaps(oiv) {
			return fieldErr("real_duration", ErrBookingConflict)
		}
	}
	return nil
}

// cascade 在事务内重新读取并依次更新课次、模块、培养方案
func (s *progressionService) cascade(ctx context.Context, tx *repository.Repository, sessionID string, req *dto.CompleteSessionRequest, actor Actor) (*dto.CompleteSessionResponse, error) {
	session, err := s.getSession(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	// 等锁期间可能已被他人完成
	if err := checkCompletable(session); err != nil {
		return nil, err
	}

	if req.RealDuration != nil {
		end, err := planning.AddMinutes(session.StartTime, *req.RealDuration)
		if err != nil {
			return nil, fieldErr("real_duration", err)
		}
		session.Duration = *req.RealDuration
		session.EndTime = end
		if err := s.checkOccupancy(ctx, tx, session); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}
	completedAt := s.now()
	session.Status = model.SessionComplete
	session.CompletedAt = &completedAt
	if actor.UserID != "" {
		session.UpdatedBy = &actor.UserID
	}
	if err := tx.Session.Update(ctx, session); err != nil {
		s.logger.Error("更新课次失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	// ── 模块 ──
	module, err := tx.Module.GetByID(ctx, session.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	minutes, err := tx.Session.SumCompletedMinutes(ctx, module.ModuleID)
	if err != nil {
		s.logger.Error("统计已完成学时失败", zap.String("module_id", module.ModuleID), zap.Error(err))
		return nil, err
	}
	module.Progression = planning.ModuleProgression(minutes, module.TotalHours())
	module.Status = planning.NextModuleStatus(module.Status, module.Progression)
	if actor.UserID != "" {
		module.UpdatedBy = &actor.UserID
	}
	if err := tx.Module.Update(ctx, module); err != nil {
		s.logger.Error("更新模块进度失败", zap.String("module_id", module.ModuleID), zap.Error(err))
		return nil, err
	}

	// ── 培养方案 ──
	program, err := tx.Program.GetByID(ctx, module.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	siblings, err := tx.Module.ListByProgram(ctx, program.ProgramID)
	if err != nil {
		s.logger.Error("查询方案模块失败", zap.String("program_id", program.ProgramID), zap.Error(err))
		return nil, err
	}

	progressions := make([]int, 0, len(siblings))
	allComplete := len(siblings) > 0
	for i := range siblings {
		m := &siblings[i]
		if m.ModuleID == module.ModuleID {
			m = module
		}
		progressions = append(progressions, m.Progression)
		if m.Status != model.ProgressComplete {
			allComplete = false
		}
	}
	program.Progression = planning.ProgramProgression(progressions)
	program.Status = planning.NextProgramStatus(program.Status, program.Progression, allComplete)
	if actor.UserID != "" {
		program.UpdatedBy = &actor.UserID
	}
	if err := tx.Program.Update(ctx, program); err != nil {
		s.logger.Error("更新培养方案进度失败", zap.String("program_id", program.ProgramID), zap.Error(err))
		return nil, err
	}

	return &dto.CompleteSessionResponse{
		Session: toSessionResponse(session),
		Module: dto.ModuleProgressResponse{
			ID:             module.ModuleID,
			Progression:    module.Progression,
			Status:         string(module.Status),
			HoursCompleted: float64(minutes) / 60,
			HoursTotal:     module.TotalHours(),
		},
		Program: dto.ProgramProgressResponse{
			ID:          program.ProgramID,
			Progression: program.Progression,
			Status:      string(program.Status),
		},
	}, nil
}

func (s *progressionService) getSession(ctx context.Context, repo *repository.Repository, id string) (*model.Session, error) {
	session, err := repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课次失败", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func checkCompletable(session *model.Session) error {
	switch session.Status {
	case model.SessionComplete:
		return ErrAlreadyComplete
	case model.SessionCancelled:
		return ErrInvalidTransition
	}
	return nil
}

// toSessionResponse 课次响应
func toSessionResponse(s *model.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:           s.SessionID,
		ModuleID:     s.ModuleID,
		InstructorID: s.InstructorID,
		Date:         planning.DayKey(s.Date),
		Weekday:      weekdayName(s.Date),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Duration:     s.Duration,
		Category:     string(s.Category),
		Status:       string(s.Status),
		Room:         s.Room,
		Notes:        s.Notes,
		Version:      s.Version,
	}
	if s.CompletedAt != nil {
		t := s.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	return resp
}
