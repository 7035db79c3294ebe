package service

import (
	"errors"

	pkgerrors "bem-planning/backend/pkg/errors"
)

// ── 排课业务错误 ──

var (
	ErrModuleNotFound        = errors.New("模块不存在")
	ErrProgramNotFound       = errors.New("培养方案不存在")
	ErrInstructorNotFound    = errors.New("教师不存在")
	ErrSessionNotFound       = errors.New("课次不存在")
	ErrRoomNotFound          = errors.New("教室不存在")
	ErrInstructorUnavailable = errors.New("教师当前不可排课")
	ErrInvalidDuration       = errors.New("课次时长必须大于 0")
	ErrInvalidDateRange      = errors.New("结束日期不能早于开始日期")
	ErrInvalidDate           = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidCategory       = errors.New("课次类别无效")
	ErrAlreadyComplete       = errors.New("课次已完成")
	ErrInvalidTransition     = errors.New("课次当前状态不允许该操作")
	ErrForbidden             = errors.New("无权执行该操作")

	// ErrBookingConflict 与教师或教室已有课次重叠
	ErrBookingConflict = pkgerrors.ErrBookingConflict
)

// FieldError 指明出错字段，便于调用方修正输入
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// FieldOf 提取错误链中的字段名，无字段信息时返回空串
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
