package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/service"
	"bem-planning/backend/pkg/response"
)

// SessionHandler 课次 HTTP 处理器
type SessionHandler struct {
	bookingSvc     service.BookingService
	progressionSvc service.ProgressionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(bookingSvc service.BookingService, progressionSvc service.ProgressionService) *SessionHandler {
	return &SessionHandler{bookingSvc: bookingSvc, progressionSvc: progressionSvc}
}

// Create 手动预订单个课次
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := h.bookingSvc.CreateSession(c.Request.Context(), &req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, session)
}

// Complete 标记课次完成并级联更新模块与培养方案进度
// POST /api/v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "课次ID不能为空")
		return
	}

	// 请求体可省略，空请求体按零值处理
	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.progressionSvc.CompleteSession(c.Request.Context(), id, &req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
