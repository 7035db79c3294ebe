package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/service"
	pkgerrors "bem-planning/backend/pkg/errors"
	"bem-planning/backend/pkg/lock"
	"bem-planning/backend/pkg/response"
)

type errorMapping struct {
	target error
	status int
	code   int
}

// 先匹配先生效，字段错误的 details 取出错字段名
var errorMappings = []errorMapping{
	{service.ErrModuleNotFound, http.StatusNotFound, 14101},
	{service.ErrProgramNotFound, http.StatusNotFound, 14102},
	{service.ErrInstructorNotFound, http.StatusNotFound, 14103},
	{service.ErrSessionNotFound, http.StatusNotFound, 14104},
	{service.ErrRoomNotFound, http.StatusNotFound, 14105},

	{service.ErrInstructorUnavailable, http.StatusConflict, 14201},
	{service.ErrBookingConflict, http.StatusConflict, 14202},
	{service.ErrAlreadyComplete, http.StatusConflict, 14203},
	{service.ErrInvalidTransition, http.StatusConflict, 14204},
	{pkgerrors.ErrOptimisticLock, http.StatusConflict, 14205},
	{lock.ErrLockTimeout, http.StatusConflict, 14206},

	{service.ErrForbidden, http.StatusForbidden, 14301},

	{service.ErrInvalidDuration, http.StatusBadRequest, 14002},
	{service.ErrInvalidDateRange, http.StatusBadRequest, 14003},
	{service.ErrInvalidDate, http.StatusBadRequest, 14004},
	{service.ErrInvalidCategory, http.StatusBadRequest, 14005},
	{planning.ErrInvalidTimeFormat, http.StatusBadRequest, 14006},
	{planning.ErrTimeOutOfRange, http.StatusBadRequest, 14007},
	{planning.ErrEmptyInterval, http.StatusBadRequest, 14008},
}

// handleServiceError 统一处理排课业务错误
func handleServiceError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.ErrorWithDetails(c, m.status, m.code, m.target.Error(), service.FieldOf(err))
			return
		}
	}
	_ = c.Error(err)
	response.InternalError(c)
}
