package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/internal/api/middleware"
	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/service"
	"bem-planning/backend/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取调用方身份。
// JWT 中间件未注入 user_id / role 时写入 401 响应并返回 false，调用方应直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:       userID,
		Role:         role,
		InstructorID: c.GetString(middleware.CtxInstructorID),
	}, true
}

// bindFailed 参数绑定或校验失败，details 列出出错字段
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 14001, "参数校验失败", strings.Join(dto.InvalidFields(err), ","))
}
