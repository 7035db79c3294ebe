package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
	pkgerrors "bem-planning/backend/pkg/errors"
)

// SessionRepository 课次数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	ListActiveByInstructor(ctx context.Context, instructorID string, from, to time.Time) ([]model.Session, error)
	ListActiveByRoom(ctx context.Context, room string, from, to time.Time) ([]model.Session, error)
	SumCompletedMinutes(ctx context.Context, moduleID string) (int, error)
	Update(ctx context.Context, session *model.Session) error
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// Create 插入课次；命中 uq_sessions_instructor_slot 时返回 ErrBookingConflict
func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrBookingConflict
	}
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActiveByInstructor 教师在 [from, to] 内未取消的课次
func (r *sessionRepo) ListActiveByInstructor(ctx context.Context, instructorID string, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("instructor_id = ? AND status <> ?", instructorID, model.SessionCancelled).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

// ListActiveByRoom 教室在 [from, to] 内未取消的课次
func (r *sessionRepo) ListActiveByRoom(ctx context.Context, room string, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("room = ? AND status <> ?", room, model.SessionCancelled).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

// SumCompletedMinutes 模块内已完成课次的总时长（分钟）
func (r *sessionRepo) SumCompletedMinutes(ctx context.Context, moduleID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("module_id = ? AND status = ?", moduleID, model.SessionComplete).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"start_time":   session.StartTime,
			"end_time":     session.EndTime,
			"duration":     session.Duration,
			"status":       session.Status,
			"notes":        session.Notes,
			"completed_at": session.CompletedAt,
			"updated_by":   session.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}
