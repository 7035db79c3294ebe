package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"bem-planning/backend/internal/model"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/repository"
	pkgerrors "bem-planning/backend/pkg/errors"
)

// 所有 mock 读写都返回副本，便于验证乐观锁

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	seq      int
	// onCreate 在写入前调用，返回错误时放弃写入
	onCreate func(s *model.Session) error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.Session) error {
	if m.onCreate != nil {
		if err := m.onCreate(session); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session.Status.Blocks() {
		for _, s := range m.sessions {
			if s.InstructorID == session.InstructorID && s.Status.Blocks() &&
				planning.DayKey(s.Date) == planning.DayKey(session.Date) && s.StartTime == session.StartTime {
				return pkgerrors.ErrBookingConflict
			}
		}
	}

	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("sess-%03d", m.seq)
	}
	if session.Version == 0 {
		session.Version = 1
	}
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) ListActiveByInstructor(_ context.Context, instructorID string, from, to time.Time) ([]model.Session, error) {
	return m.list(func(s *model.Session) bool { return s.InstructorID == instructorID }, from, to), nil
}

func (m *mockSessionRepo) ListActiveByRoom(_ context.Context, room string, from, to time.Time) ([]model.Session, error) {
	return m.list(func(s *model.Session) bool { return s.Room != nil && *s.Room == room }, from, to), nil
}

func (m *mockSessionRepo) list(match func(s *model.Session) bool, from, to time.Time) []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.Session
	for _, s := range m.sessions {
		if !match(s) || !s.Status.Blocks() {
			continue
		}
		if s.Date.Before(planning.DateOf(from)) || s.Date.After(planning.DateOf(to)) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

func (m *mockSessionRepo) SumCompletedMinutes(_ context.Context, moduleID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, s := range m.sessions {
		if s.ModuleID == moduleID && s.Status == model.SessionComplete {
			total += s.Duration
		}
	}
	return total, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.SessionID]
	if !ok || stored.Version != session.Version {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version++
	cp := *session
	m.sessions[session.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ── Mock ModuleRepository ──

type mockModuleRepo struct {
	mu      sync.Mutex
	modules map[string]*model.Module
}

func newMockModuleRepo() *mockModuleRepo {
	return &mockModuleRepo{modules: make(map[string]*model.Module)}
}

func (m *mockModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mod, ok := m.modules[id]; ok {
		cp := *mod
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) ListByProgram(_ context.Context, programID string) ([]model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Module
	for _, mod := range m.modules {
		if mod.ProgramID == programID {
			result = append(result, *mod)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ModuleID < result[j].ModuleID })
	return result, nil
}

func (m *mockModuleRepo) Update(_ context.Context, module *model.Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.modules[module.ModuleID]
	if !ok || stored.Version != module.Version {
		return pkgerrors.ErrOptimisticLock
	}
	module.Version++
	cp := *module
	m.modules[module.ModuleID] = &cp
	return nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	mu       sync.Mutex
	programs map[string]*model.Program
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program)}
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.programs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) Update(_ context.Context, program *model.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.programs[program.ProgramID]
	if !ok || stored.Version != program.Version {
		return pkgerrors.ErrOptimisticLock
	}
	program.Version++
	cp := *program
	m.programs[program.ProgramID] = &cp
	return nil
}

// ── Mock InstructorRepository ──

type mockInstructorRepo struct {
	instructors map[string]*model.Instructor
}

func newMockInstructorRepo() *mockInstructorRepo {
	return &mockInstructorRepo{instructors: make(map[string]*model.Instructor)}
}

func (m *mockInstructorRepo) GetByID(_ context.Context, id string) (*model.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) GetByName(_ context.Context, name string) (*model.Room, error) {
	if r, ok := m.rooms[name]; ok && r.IsActive {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AcademicPeriodRepository ──

type mockAcademicPeriodRepo struct {
	active *model.AcademicPeriod
}

func (m *mockAcademicPeriodRepo) GetActive(_ context.Context) (*model.AcademicPeriod, error) {
	if m.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.active
	return &cp, nil
}

// ── 测试聚合 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	program    *mockProgramRepo
	module     *mockModuleRepo
	session    *mockSessionRepo
	instructor *mockInstructorRepo
	room       *mockRoomRepo
	period     *mockAcademicPeriodRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		program:    newMockProgramRepo(),
		module:     newMockModuleRepo(),
		session:    newMockSessionRepo(),
		instructor: newMockInstructorRepo(),
		room:       newMockRoomRepo(),
		period:     &mockAcademicPeriodRepo{},
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Program:        r.program,
		Module:         r.module,
		Session:        r.session,
		Instructor:     r.instructor,
		Room:           r.room,
		AcademicPeriod: r.period,
	}
}

// ── 种子数据 ──

const (
	testOwnerID      = "user-coord"
	testProgramID    = "prog-1"
	testModuleID     = "mod-1"
	testInstructorID = "inst-1"
)

var coordinator = Actor{UserID: testOwnerID, Role: "coordinator"}

func day(s string) time.Time {
	d, err := planning.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedBasicData 种子数据：1 个方案 + 1 个模块（CM 20h）+ 1 名教师 + 1 间教室
func seedBasicData(repos *testRepos) {
	repos.program.programs[testProgramID] = &model.Program{
		ProgramID: testProgramID,
		Name:      "软件工程",
		OwnerID:   testOwnerID,
		Status:    model.ProgressPlanned,
	}
	repos.program.programs[testProgramID].Version = 1

	start := day("2024-03-04")
	instructorID := testInstructorID
	mod := &model.Module{
		ModuleID:     testModuleID,
		ProgramID:    testProgramID,
		Name:         "算法设计",
		HoursCM:      20,
		StartDate:    &start,
		InstructorID: &instructorID,
		Status:       model.ProgressPlanned,
	}
	mod.Version = 1
	repos.module.modules[testModuleID] = mod

	repos.instructor.instructors[testInstructorID] = &model.Instructor{
		InstructorID: testInstructorID,
		Name:         "王老师",
		Available:    true,
	}
	repos.room.rooms["A101"] = &model.Room{RoomID: "room-1", Name: "A101", Capacity: 40, IsActive: true}
}

// seedSession 直接写入一条已有课次
func seedSession(repos *testRepos, s model.Session) *model.Session {
	if s.ModuleID == "" {
		s.ModuleID = testModuleID
	}
	if s.InstructorID == "" {
		s.InstructorID = testInstructorID
	}
	if s.Status == "" {
		s.Status = model.SessionPlanned
	}
	if s.Category == "" {
		s.Category = model.CategoryCM
	}
	if s.Duration == 0 {
		d, err := planning.DurationMinutes(s.StartTime, s.EndTime)
		if err != nil {
			panic(err)
		}
		s.Duration = d
	}
	if err := repos.session.Create(context.Background(), &s); err != nil {
		panic(err)
	}
	return &s
}
