package service

import (
	"testing"

	"bem-planning/backend/internal/model"
)

func TestCanComplete(t *testing.T) {
	session := &model.Session{SessionID: "s-1", InstructorID: "inst-1"}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"管理员", Actor{UserID: "u1", Role: model.RoleAdmin}, true},
		{"协调员", Actor{UserID: "u2", Role: model.RoleCoordinator}, true},
		{"授课教师", Actor{UserID: "u3", Role: model.RoleInstructor, InstructorID: "inst-1"}, true},
		{"其他教师", Actor{UserID: "u4", Role: model.RoleInstructor, InstructorID: "inst-2"}, false},
		{"无教师身份", Actor{UserID: "u5", Role: model.RoleInstructor}, false},
		{"未知角色", Actor{UserID: "u6", Role: "student"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanComplete(session, tt.actor); got != tt.want {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestCanManageProgram(t *testing.T) {
	program := &model.Program{ProgramID: "p-1", OwnerID: "owner"}

	if !CanManageProgram(program, Actor{UserID: "owner", Role: model.RoleCoordinator}) {
		t.Error("负责人应可管理")
	}
	if CanManageProgram(program, Actor{UserID: "other", Role: model.RoleCoordinator}) {
		t.Error("非负责人不应可管理")
	}
	if !CanManageProgram(program, Actor{UserID: "root", Role: model.RoleAdmin}) {
		t.Error("管理员应可管理")
	}
	if CanManageProgram(nil, Actor{UserID: "owner", Role: model.RoleCoordinator}) {
		t.Error("方案为空时不应可管理")
	}
}
