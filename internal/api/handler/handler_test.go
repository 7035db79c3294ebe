package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/internal/api/middleware"
	"bem-planning/backend/internal/dto"
	"bem-planning/backend/internal/planning"
	"bem-planning/backend/internal/service"
	pkgerrors "bem-planning/backend/pkg/errors"
	"bem-planning/backend/pkg/lock"
	"bem-planning/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

const (
	testModuleID     = "0b6c3f1e-8f7a-4c55-9a7e-0d1f2f3a4b5c"
	testInstructorID = "1c7d4f2e-9a8b-4d66-8b8f-1e2a3b4c5d6e"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

type mockAdvisorService struct {
	result    *dto.SuggestSlotsResponse
	err       error
	gotReq    *dto.SuggestSlotsRequest
	gotActor  service.Actor
	callCount int
}

func (m *mockAdvisorService) SuggestSlots(_ context.Context, req *dto.SuggestSlotsRequest, actor service.Actor) (*dto.SuggestSlotsResponse, error) {
	m.gotReq, m.gotActor = req, actor
	m.callCount++
	return m.result, m.err
}

type mockPlannerService struct {
	result *dto.GeneratePlanResponse
	err    error
	gotReq *dto.GeneratePlanRequest
}

func (m *mockPlannerService) GenerateModulePlan(_ context.Context, req *dto.GeneratePlanRequest, _ service.Actor) (*dto.GeneratePlanResponse, error) {
	m.gotReq = req
	return m.result, m.err
}

type mockBookingService struct {
	result    *dto.SessionResponse
	err       error
	callCount int
}

func (m *mockBookingService) CreateSession(_ context.Context, _ *dto.CreateSessionRequest, _ service.Actor) (*dto.SessionResponse, error) {
	m.callCount++
	return m.result, m.err
}

type mockProgressionService struct {
	result   *dto.CompleteSessionResponse
	err      error
	gotID    string
	gotReq   *dto.CompleteSessionRequest
	gotActor service.Actor
}

func (m *mockProgressionService) CompleteSession(_ context.Context, id string, req *dto.CompleteSessionRequest, actor service.Actor) (*dto.CompleteSessionResponse, error) {
	m.gotID, m.gotReq, m.gotActor = id, req, actor
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth 模拟 JWT 中间件注入身份
func withAuth(role, instructorID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "user-coord")
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxInstructorID, instructorID)
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func validCreateRequest() dto.CreateSessionRequest {
	return dto.CreateSessionRequest{
		ModuleID:     testModuleID,
		InstructorID: testInstructorID,
		Date:         "2024-03-05",
		StartTime:    "08:00",
		EndTime:      "10:00",
		Category:     "CM",
	}
}

// ═══════════════════════════════════════════════════════════
// SchedulingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSchedulingHandler_Suggest_Success(t *testing.T) {
	mock := &mockAdvisorService{result: &dto.SuggestSlotsResponse{
		Total: 1,
		Suggestions: []dto.SlotSuggestion{
			{Date: "2024-03-05", Weekday: "tuesday", Start: "08:00", End: "10:00", Duration: 120, Score: 100, Disponibilite: "LIBRE"},
		},
	}}
	h := NewSchedulingHandler(mock, &mockPlannerService{})

	r := gin.New()
	r.GET("/suggestions", withAuth("coordinator", ""), h.Suggest)
	path := fmt.Sprintf("/suggestions?module_id=%s&instructor_id=%s&start_date=2024-03-04&limit=5", testModuleID, testInstructorID)
	w := serve(r, http.MethodGet, path, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotReq.Limit != 5 || mock.gotReq.StartDate != "2024-03-04" {
		t.Errorf("查询参数未正确绑定: %+v", mock.gotReq)
	}
	if mock.gotActor.Role != "coordinator" || mock.gotActor.UserID != "user-coord" {
		t.Errorf("身份未正确传递: %+v", mock.gotActor)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSchedulingHandler_Suggest_MissingParams(t *testing.T) {
	mock := &mockAdvisorService{}
	h := NewSchedulingHandler(mock, &mockPlannerService{})

	r := gin.New()
	r.GET("/suggestions", withAuth("coordinator", ""), h.Suggest)
	w := serve(r, http.MethodGet, "/suggestions?module_id="+testModuleID, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected code 14001, got %d", resp.Code)
	}
	if resp.Details != "instructor_id,start_date" {
		t.Errorf("expected details instructor_id,start_date, got %q", resp.Details)
	}
	if mock.callCount != 0 {
		t.Error("参数错误时不应调用服务")
	}
}

func TestSchedulingHandler_Suggest_Unauthenticated(t *testing.T) {
	mock := &mockAdvisorService{}
	h := NewSchedulingHandler(mock, &mockPlannerService{})

	r := gin.New()
	r.GET("/suggestions", h.Suggest)
	path := fmt.Sprintf("/suggestions?module_id=%s&instructor_id=%s&start_date=2024-03-04", testModuleID, testInstructorID)
	w := serve(r, http.MethodGet, path, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if mock.callCount != 0 {
		t.Error("未认证时不应调用服务")
	}
}

func TestSchedulingHandler_GeneratePlan_DryRunReturns200(t *testing.T) {
	mock := &mockPlannerService{result: &dto.GeneratePlanResponse{DryRun: true, HoursPlanned: 20}}
	h := NewSchedulingHandler(&mockAdvisorService{}, mock)

	r := gin.New()
	r.POST("/plans", withAuth("coordinator", ""), h.GeneratePlan)
	w := serve(r, http.MethodPost, "/plans", jsonBody(map[string]interface{}{
		"module_id":     testModuleID,
		"instructor_id": testInstructorID,
		"start_date":    "2024-03-04",
		"preferences":   map[string]interface{}{"dry_run": true, "working_days": []int{1, 3, 5}},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(mock.gotReq.Preferences.WorkingDays) != 3 {
		t.Errorf("偏好未正确绑定: %+v", mock.gotReq.Preferences)
	}
}

func TestSchedulingHandler_GeneratePlan_CommitReturns201(t *testing.T) {
	mock := &mockPlannerService{result: &dto.GeneratePlanResponse{HoursPlanned: 20}}
	h := NewSchedulingHandler(&mockAdvisorService{}, mock)

	r := gin.New()
	r.POST("/plans", withAuth("admin", ""), h.GeneratePlan)
	w := serve(r, http.MethodPost, "/plans", jsonBody(dto.GeneratePlanRequest{
		ModuleID:     testModuleID,
		InstructorID: testInstructorID,
		StartDate:    "2024-03-04",
	}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSchedulingHandler_GeneratePlan_InvalidWorkingDay(t *testing.T) {
	h := NewSchedulingHandler(&mockAdvisorService{}, &mockPlannerService{})

	r := gin.New()
	r.POST("/plans", withAuth("admin", ""), h.GeneratePlan)
	w := serve(r, http.MethodPost, "/plans", jsonBody(map[string]interface{}{
		"module_id":     testModuleID,
		"instructor_id": testInstructorID,
		"start_date":    "2024-03-04",
		"preferences":   map[string]interface{}{"working_days": []int{7}},
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SessionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSessionHandler_Create_Success(t *testing.T) {
	mock := &mockBookingService{result: &dto.SessionResponse{ID: "sess-1", Status: "PLANNED"}}
	h := NewSessionHandler(mock, &mockProgressionService{})

	r := gin.New()
	r.POST("/sessions", withAuth("coordinator", ""), h.Create)
	w := serve(r, http.MethodPost, "/sessions", jsonBody(validCreateRequest()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionHandler_Create_InvalidClock(t *testing.T) {
	mock := &mockBookingService{}
	h := NewSessionHandler(mock, &mockProgressionService{})

	req := validCreateRequest()
	req.StartTime = "8h00"

	r := gin.New()
	r.POST("/sessions", withAuth("coordinator", ""), h.Create)
	w := serve(r, http.MethodPost, "/sessions", jsonBody(req))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Details != "start_time" {
		t.Errorf("expected details start_time, got %q", resp.Details)
	}
	if mock.callCount != 0 {
		t.Error("参数错误时不应调用服务")
	}
}

func TestSessionHandler_Create_BadJSON(t *testing.T) {
	h := NewSessionHandler(&mockBookingService{}, &mockProgressionService{})

	r := gin.New()
	r.POST("/sessions", withAuth("coordinator", ""), h.Create)
	w := serve(r, http.MethodPost, "/sessions", bytes.NewReader([]byte("invalid json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionHandler_Complete_EmptyBody(t *testing.T) {
	mock := &mockProgressionService{result: &dto.CompleteSessionResponse{
		Module: dto.ModuleProgressResponse{Progression: 100, Status: "COMPLETE"},
	}}
	h := NewSessionHandler(&mockBookingService{}, mock)

	r := gin.New()
	r.POST("/sessions/:id/complete", withAuth("instructor", testInstructorID), h.Complete)
	w := serve(r, http.MethodPost, "/sessions/sess-9/complete", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotID != "sess-9" {
		t.Errorf("expected id sess-9, got %s", mock.gotID)
	}
	if mock.gotActor.InstructorID != testInstructorID {
		t.Errorf("教师身份未正确传递: %+v", mock.gotActor)
	}
	if mock.gotReq.RealDuration != nil || mock.gotReq.Notes != nil {
		t.Errorf("空请求体应得到零值请求: %+v", mock.gotReq)
	}
}

func TestSessionHandler_Complete_EmptyChunkedBody(t *testing.T) {
	mock := &mockProgressionService{result: &dto.CompleteSessionResponse{}}
	h := NewSessionHandler(&mockBookingService{}, mock)

	r := gin.New()
	r.POST("/sessions/:id/complete", withAuth("coordinator", ""), h.Complete)

	// 未知长度的空请求体（Transfer-Encoding: chunked）
	req := httptest.NewRequest(http.MethodPost, "/sessions/sess-9/complete", struct{ io.Reader }{strings.NewReader("")})
	req.Header.Set("Content-Type", "application/json")
	if req.ContentLength != -1 {
		t.Fatalf("expected unknown content length, got %d", req.ContentLength)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotID != "sess-9" {
		t.Errorf("expected id sess-9, got %s", mock.gotID)
	}
}

func TestSessionHandler_Complete_WithBody(t *testing.T) {
	mock := &mockProgressionService{result: &dto.CompleteSessionResponse{}}
	h := NewSessionHandler(&mockBookingService{}, mock)

	r := gin.New()
	r.POST("/sessions/:id/complete", withAuth("coordinator", ""), h.Complete)
	w := serve(r, http.MethodPost, "/sessions/sess-9/complete", jsonBody(map[string]interface{}{
		"real_duration": 90,
		"notes":         "提前结束",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotReq.RealDuration == nil || *mock.gotReq.RealDuration != 90 {
		t.Errorf("real_duration 未正确绑定: %+v", mock.gotReq)
	}
}

// ═══════════════════════════════════════════════════════════
// 错误映射
// ═══════════════════════════════════════════════════════════

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		details string
	}{
		{"模块不存在", &service.FieldError{Field: "module_id", Err: service.ErrModuleNotFound}, http.StatusNotFound, 14101, "module_id"},
		{"课次不存在", service.ErrSessionNotFound, http.StatusNotFound, 14104, ""},
		{"教室不存在", &service.FieldError{Field: "room", Err: service.ErrRoomNotFound}, http.StatusNotFound, 14105, "room"},
		{"教师不可用", service.ErrInstructorUnavailable, http.StatusConflict, 14201, ""},
		{"时段冲突", service.ErrBookingConflict, http.StatusConflict, 14202, ""},
		{"已完成", service.ErrAlreadyComplete, http.StatusConflict, 14203, ""},
		{"乐观锁", fmt.Errorf("更新模块: %w", pkgerrors.ErrOptimisticLock), http.StatusConflict, 14205, ""},
		{"锁超时", errors.Join(lock.ErrLockTimeout, context.DeadlineExceeded), http.StatusConflict, 14206, ""},
		{"无权限", service.ErrForbidden, http.StatusForbidden, 14301, ""},
		{"时长无效", &service.FieldError{Field: "end_time", Err: service.ErrInvalidDuration}, http.StatusBadRequest, 14002, "end_time"},
		{"时间越界", &service.FieldError{Field: "real_duration", Err: planning.ErrTimeOutOfRange}, http.StatusBadRequest, 14007, "real_duration"},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, 50000, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/err", func(c *gin.Context) { handleServiceError(c, tt.err) })
			w := serve(r, http.MethodGet, "/err", nil)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, resp.Code)
			}
			if resp.Details != tt.details {
				t.Errorf("expected details %q, got %q", tt.details, resp.Details)
			}
		})
	}
}
