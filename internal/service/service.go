package service

import (
	"go.uber.org/zap"

	"bem-planning/backend/config"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
	"bem-planning/backend/pkg/lock"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Advisor     AdvisorService
	Planner     PlannerService
	Booking     BookingService
	Progression ProgressionService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker lock.Locker,
	logger *zap.Logger,
) *Service {
	sched := cfg.Scheduling
	return &Service{
		Advisor:     NewAdvisorService(sched, repo, logger),
		Planner:     NewPlannerService(sched, repo, locker, planning.SequentialStrategy{}, logger),
		Booking:     NewBookingService(sched, repo, locker, logger),
		Progression: NewProgressionService(sched, repo, locker, logger),
	}
}
