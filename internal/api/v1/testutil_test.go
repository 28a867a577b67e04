package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/server/middleware"
	"github.com/gosuda/caseflow/internal/transition"
)

// ---------------------------------------------------------------------------
// Context helpers: inject user/role into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, middleware.RoleStaff)
	return ctx
}

func roleCtx(userID uuid.UUID, role string) context.Context {
	ctx := userCtx(userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, role)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks    domain.TaskRepository
	cases    domain.CaseRepository
	activity domain.ActivityRepository
	links    domain.MessengerLinkRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository                   { return m.tasks }
func (m *mockDataStore) Cases() domain.CaseRepository                   { return m.cases }
func (m *mockDataStore) Activity() domain.ActivityRepository            { return m.activity }
func (m *mockDataStore) MessengerLinks() domain.MessengerLinkRepository { return m.links }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc            func(ctx context.Context, t *domain.Task) error
	getFunc               func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByCaseFunc        func(ctx context.Context, caseID uuid.UUID) ([]*domain.Task, error)
	listByAssigneeFunc    func(ctx context.Context, assignee uuid.UUID, statuses ...domain.TaskStatus) ([]*domain.Task, error)
	conditionalUpdateFunc func(ctx context.Context, id uuid.UUID, expected domain.TaskStatus, mutate domain.TaskMutation) (*domain.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getFunc(ctx, id)
}

func (m *mockTaskRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*domain.Task, error) {
	return m.listByCaseFunc(ctx, caseID)
}

func (m *mockTaskRepo) ListByAssignee(ctx context.Context, assignee uuid.UUID, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	return m.listByAssigneeFunc(ctx, assignee, statuses...)
}

func (m *mockTaskRepo) ConditionalUpdate(ctx context.Context, id uuid.UUID, expected domain.TaskStatus, mutate domain.TaskMutation) (*domain.Task, error) {
	return m.conditionalUpdateFunc(ctx, id, expected, mutate)
}

// ---------------------------------------------------------------------------
// Mock CaseRepository
// ---------------------------------------------------------------------------

type mockCaseRepo struct {
	getFunc  func(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error)
	setFunc  func(ctx context.Context, a *domain.CaseRoleAssignment) error
	listFunc func(ctx context.Context, caseID uuid.UUID) ([]*domain.CaseRoleAssignment, error)
}

func (m *mockCaseRepo) GetCaseRoleAssignment(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error) {
	return m.getFunc(ctx, caseID, role)
}

func (m *mockCaseRepo) SetCaseRoleAssignment(ctx context.Context, a *domain.CaseRoleAssignment) error {
	return m.setFunc(ctx, a)
}

func (m *mockCaseRepo) ListCaseRoleAssignments(ctx context.Context, caseID uuid.UUID) ([]*domain.CaseRoleAssignment, error) {
	return m.listFunc(ctx, caseID)
}

// ---------------------------------------------------------------------------
// Mock ActivityRepository
// ---------------------------------------------------------------------------

type mockActivityRepo struct {
	recordFunc     func(ctx context.Context, e *domain.ActivityEntry) error
	listByCaseFunc func(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*domain.ActivityEntry, error)
}

func (m *mockActivityRepo) Record(ctx context.Context, e *domain.ActivityEntry) error {
	return m.recordFunc(ctx, e)
}

func (m *mockActivityRepo) ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*domain.ActivityEntry, error) {
	return m.listByCaseFunc(ctx, caseID, limit, offset)
}

// ---------------------------------------------------------------------------
// Mock MessengerLinkRepository
// ---------------------------------------------------------------------------

type mockLinkRepo struct {
	createFunc func(ctx context.Context, l *domain.MessengerLink) error
	listFunc   func(ctx context.Context, userID uuid.UUID) ([]*domain.MessengerLink, error)
}

func (m *mockLinkRepo) CreateMessengerLink(ctx context.Context, l *domain.MessengerLink) error {
	return m.createFunc(ctx, l)
}

func (m *mockLinkRepo) ListMessengerLinks(ctx context.Context, userID uuid.UUID) ([]*domain.MessengerLink, error) {
	return m.listFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Mock TaskEngine
// ---------------------------------------------------------------------------

type mockEngine struct {
	completeFunc    func(ctx context.Context, taskID uuid.UUID, actor domain.Actor, payload domain.Payload) (*transition.Result, error)
	startFunc       func(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error)
	acknowledgeFunc func(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error)
	resumeFunc      func(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*transition.Result, error)
	originateFunc   func(ctx context.Context, actor domain.Actor, caseID uuid.UUID, typ domain.TaskType, assignee uuid.UUID) (*domain.Task, error)
}

func (m *mockEngine) Complete(ctx context.Context, taskID uuid.UUID, actor domain.Actor, payload domain.Payload) (*transition.Result, error) {
	return m.completeFunc(ctx, taskID, actor, payload)
}

func (m *mockEngine) Start(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error) {
	return m.startFunc(ctx, taskID, actor)
}

func (m *mockEngine) Acknowledge(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error) {
	return m.acknowledgeFunc(ctx, taskID, actor)
}

func (m *mockEngine) Resume(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*transition.Result, error) {
	return m.resumeFunc(ctx, taskID, actor)
}

func (m *mockEngine) Originate(ctx context.Context, actor domain.Actor, caseID uuid.UUID, typ domain.TaskType, assignee uuid.UUID) (*domain.Task, error) {
	return m.originateFunc(ctx, actor, caseID, typ, assignee)
}
