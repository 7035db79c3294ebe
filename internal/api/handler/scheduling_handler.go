package handler

import (
	"github.com/gin-gonic/gin"

	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/service"
	"bem-planning/backend/pkg/response"
)

// SchedulingHandler 排课建议与自动排课 HTTP 处理器
type SchedulingHandler struct {
	advisorSvc service.AdvisorService
	plannerSvc service.PlannerService
}

// NewSchedulingHandler 创建 SchedulingHandler
func NewSchedulingHandler(advisorSvc service.AdvisorService, plannerSvc service.PlannerService) *SchedulingHandler {
	return &SchedulingHandler{advisorSvc: advisorSvc, plannerSvc: plannerSvc}
}

// Suggest 单个课次的候选时段建议
// GET /api/v1/scheduling/suggestions
func (h *SchedulingHandler) Suggest(c *gin.Context) {
	var req dto.SuggestSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.advisorSvc.SuggestSlots(c.Request.Context(), &req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// GeneratePlan 为模块自动排满剩余学时
// POST /api/v1/scheduling/plans
func (h *SchedulingHandler) GeneratePlan(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.plannerSvc.GenerateModulePlan(c.Request.Context(), &req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if req.Preferences.DryRun {
		response.OK(c, result)
		return
	}
	response.Created(c, result)
}
