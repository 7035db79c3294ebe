package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Program        ProgramRepository
	Module         ModuleRepository
	Session        SessionRepository
	Instructor     InstructorRepository
	Room           RoomRepository
	AcademicPeriod AcademicPeriodRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Program:        NewProgramRepo(db),
		Module:         NewModuleRepo(db),
		Session:        NewSessionRepo(db),
		Instructor:     NewInstructorRepo(db),
		Room:           NewRoomRepo(db),
		AcademicPeriod: NewAcademicPeriodRepo(db),
		db:             db,
	}
}

// WithTx 返回绑定到指定事务的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务内执行 fn，fn 返回错误时整体回滚
// 未绑定数据库时（单元测试中的 mock 聚合）直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
