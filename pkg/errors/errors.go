package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrBookingConflict 唯一约束冲突：同一教师同一日期同一开始时间已有未取消的课次
var ErrBookingConflict = errors.New("该时段已被占用")
