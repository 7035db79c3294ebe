package service

import "bem-planning/backend/internal/model"

// Actor 发起操作的用户身份，由接入层从令牌中解析后显式传入
type Actor struct {
	UserID       string
	Role         string
	InstructorID string // 教师账号关联的教师 ID，非教师为空
}

// IsAdmin 管理员跳过归属检查
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// CanManageProgram 只有方案负责人或管理员可以为其模块排课
func CanManageProgram(program *model.Program, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return program != nil && actor.UserID != "" && program.OwnerID == actor.UserID
}

// CanComplete 课次的授课教师、协调员与管理员可以标记完成
func CanComplete(session *model.Session, actor Actor) bool {
	switch actor.Role {
	case model.RoleAdmin, model.RoleCoordinator:
		return true
	}
	return actor.InstructorID != "" && actor.InstructorID == session.InstructorID
}
