package handler

import "bem-planning/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Scheduling *SchedulingHandler
	Session    *SessionHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Scheduling: NewSchedulingHandler(svc.Advisor, svc.Planner),
		Session:    NewSessionHandler(svc.Booking, svc.Progression),
	}
}
