package repository

import (
	"context"

	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
	pkgerrors "bem-planning/backend/pkg/errors"
)

// ProgramRepository 培养方案数据访问接口
type ProgramRepository interface {
	GetByID(ctx context.Context, id string) (*model.Program, error)
	Update(ctx context.Context, program *model.Program) error
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo 创建 ProgramRepository 实例
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Where("program_id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) Update(ctx context.Context, program *model.Program) error {
	oldVersion := program.Version
	result := r.db.WithContext(ctx).
		Model(program).
		Where("program_id = ? AND version = ?", program.ProgramID, oldVersion).
		Updates(map[string]interface{}{
			"progression": program.Progression,
			"status":      program.Status,
			"updated_by":  program.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	program.Version = oldVersion + 1
	return nil
}
