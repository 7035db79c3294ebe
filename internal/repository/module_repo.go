package repository

import (
	"context"

	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
	pkgerrors "bem-planning/backend/pkg/errors"
)

// ModuleRepository 教学模块数据访问接口
type ModuleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Module, error)
	ListByProgram(ctx context.Context, programID string) ([]model.Module, error)
	Update(ctx context.Context, module *model.Module) error
}

type moduleRepo struct {
	db *gorm.DB
}

// NewModuleRepo 创建 ModuleRepository 实例
func NewModuleRepo(db *gorm.DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Preload("Program").
		Where("module_id = ?", id).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) ListByProgram(ctx context.Context, programID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("created_at ASC").
		Find(&modules).Error
	return modules, err
}

// Update 仅回写进度字段，其余字段由教务模块维护
func (r *moduleRepo) Update(ctx context.Context, module *model.Module) error {
	oldVersion := module.Version
	result := r.db.WithContext(ctx).
		Model(module).
		Where("module_id = ? AND version = ?", module.ModuleID, oldVersion).
		Updates(map[string]interface{}{
			"progression": module.Progression,
			"status":      module.Status,
			"updated_by":  module.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	module.Version = oldVersion + 1
	return nil
}
