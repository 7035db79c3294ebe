package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
	"bem-planning/backend/pkg/lock"
)

// ── 排课相关服务共用的加载逻辑 ──

// loader 封装模块 / 教师 / 占用 / 日历的读取与归属校验
type loader struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// ownedModule 读取模块并校验调用方是否为方案负责人；无权访问与不存在同样返回 NotFound
func (l loader) ownedModule(ctx context.Context, moduleID string, actor Actor) (*model.Module, error) {
	module, err := l.repo.Module.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldErr("module_id", ErrModuleNotFound)
		}
		l.logger.Error("查询模块失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}

	if module.Program == nil {
		program, err := l.repo.Program.GetByID(ctx, module.ProgramID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fieldErr("module_id", ErrModuleNotFound)
			}
			l.logger.Error("查询培养方案失败", zap.String("program_id", module.ProgramID), zap.Error(err))
			return nil, err
		}
		module.Program = program
	}

	if !CanManageProgram(module.Program, actor) {
		return nil, fieldErr("module_id", ErrModuleNotFound)
	}
	return module, nil
}

// availableInstructor 读取教师并校验可排课
func (l loader) availableInstructor(ctx context.Context, instructorID string) (*model.Instructor, error) {
	instructor, err := l.repo.Instructor.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldErr("instructor_id", ErrInstructorNotFound)
		}
		l.logger.Error("查询教师失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, err
	}
	if !instructor.Available {
		return nil, fieldErr("instructor_id", ErrInstructorUnavailable)
	}
	return instructor, nil
}

// roomExists 校验教室存在且启用
func (l loader) roomExists(ctx context.Context, name string) error {
	if _, err := l.repo.Room.GetByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldErr("room", ErrRoomNotFound)
		}
		l.logger.Error("查询教室失败", zap.String("room", name), zap.Error(err))
		return err
	}
	return nil
}

// calendar 由工作日与当前学年的假期构建日历；没有生效学年时不排除假期
func (l loader) calendar(ctx context.Context, workingDays []time.Weekday) (planning.Calendar, error) {
	period, err := l.repo.AcademicPeriod.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return planning.NewCalendar(workingDays), nil
		}
		l.logger.Error("查询学年失败", zap.Error(err))
		return planning.Calendar{}, err
	}
	return planning.NewCalendar(workingDays, recessesOf(period)...), nil
}

// instructorBookings 教师在 [from, to] 内的占用
func (l loader) instructorBookings(ctx context.Context, instructorID string, from, to time.Time) ([]planning.Booking, error) {
	sessions, err := l.repo.Session.ListActiveByInstructor(ctx, instructorID, from, to)
	if err != nil {
		l.logger.Error("查询教师课次失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, err
	}
	return l.toBookings(sessions), nil
}

// roomBookings 教室在 [from, to] 内的占用；未指定教室时为空
func (l loader) roomBookings(ctx context.Context, room string, from, to time.Time) ([]planning.Booking, error) {
	if room == "" {
		return nil, nil
	}
	sessions, err := l.repo.Session.ListActiveByRoom(ctx, room, from, to)
	if err != nil {
		l.logger.Error("查询教室课次失败", zap.String("room", room), zap.Error(err))
		return nil, err
	}
	return l.toBookings(sessions), nil
}

func (l loader) toBookings(sessions []model.Session) []planning.Booking {
	bookings := make([]planning.Booking, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		iv, err := planning.ParseInterval(s.StartTime, s.EndTime)
		if err != nil {
			// 库中有 CHECK 约束，出现即为脏数据，跳过但保留痕迹
			l.logger.Warn("课次时间无效，已跳过",
				zap.String("session_id", s.SessionID),
				zap.String("start_time", s.StartTime),
				zap.String("end_time", s.EndTime),
			)
			continue
		}
		bookings = append(bookings, planning.Booking{
			Date:      planning.DateOf(s.Date),
			Interval:  iv,
			Cancelled: !s.Status.Blocks(),
		})
	}
	return bookings
}

func recessesOf(p *model.AcademicPeriod) []planning.Recess {
	var out []planning.Recess
	if p.ChristmasBreakStart != nil && p.ChristmasBreakEnd != nil {
		out = append(out, planning.Recess{Start: *p.ChristmasBreakStart, End: *p.ChristmasBreakEnd})
	}
	if p.SpringBreakStart != nil && p.SpringBreakEnd != nil {
		out = append(out, planning.Recess{Start: *p.SpringBreakStart, End: *p.SpringBreakEnd})
	}
	return out
}

// ── 小工具 ──

// acquire 在 wait 时间内获取全部锁
func acquire(ctx context.Context, l lock.Locker, wait time.Duration, keys ...string) (lock.Unlock, error) {
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	return lock.LockAll(ctx, l, keys...)
}

func instructorLockKey(id string) string { return "booking:instructor:" + id }
func roomLockKey(name string) string     { return "booking:room:" + name }
func programLockKey(id string) string    { return "progress:program:" + id }

// parseDateField 解析日期字段，失败时携带字段名
func parseDateField(field, s string) (time.Time, error) {
	d, err := planning.ParseDate(s)
	if err != nil {
		return time.Time{}, fieldErr(field, ErrInvalidDate)
	}
	return d, nil
}

// dateRange 解析起止日期；end 为空时取 start + defaultDays
func dateRange(start, end string, defaultDays int) (time.Time, time.Time, error) {
	from, err := parseDateField("start_date", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end == "" {
		return from, from.AddDate(0, 0, defaultDays), nil
	}
	to, err := parseDateField("end_date", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fieldErr("end_date", ErrInvalidDateRange)
	}
	return from, to, nil
}

func weekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

func weekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
