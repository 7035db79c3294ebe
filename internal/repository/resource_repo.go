package repository

import (
	"context"

	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
)

// InstructorRepository 教师数据访问接口
type InstructorRepository interface {
	GetByID(ctx context.Context, id string) (*model.Instructor, error)
}

// RoomRepository 教室数据访问接口
type RoomRepository interface {
	GetByName(ctx context.Context, name string) (*model.Room, error)
}

// AcademicPeriodRepository 学年数据访问接口
type AcademicPeriodRepository interface {
	GetActive(ctx context.Context) (*model.AcademicPeriod, error)
}

// ── Instructor ──

type instructorRepo struct {
	db *gorm.DB
}

func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) GetByID(ctx context.Context, id string) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", id).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

// ── Room ──

type roomRepo struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByName(ctx context.Context, name string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ── AcademicPeriod ──

type academicPeriodRepo struct {
	db *gorm.DB
}

func NewAcademicPeriodRepo(db *gorm.DB) AcademicPeriodRepository {
	return &academicPeriodRepo{db: db}
}

// GetActive 当前生效学年；不存在时返回 gorm.ErrRecordNotFound
func (r *academicPeriodRepo) GetActive(ctx context.Context) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date DESC").
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}
