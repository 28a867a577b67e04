package transition_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseflow/internal/deadline"
	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/store/memory"
	"github.com/gosuda/caseflow/internal/transition"
)

var clock = time.Date(2026, time.March, 2, 18, 30, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture

var officeHours = deadline.Window{StartHour: 10, EndHour: 19, Location: time.UTC} //nolint:gochecknoglobals // test fixture

// ---------------------------------------------------------------------------
// Recording sinks
// ---------------------------------------------------------------------------

type activityCall struct {
	CaseID  uuid.UUID
	Message string
	ActorID uuid.UUID
}

type recordingActivity struct {
	mu    sync.Mutex
	calls []activityCall
}

func (r *recordingActivity) Record(_ context.Context, caseID uuid.UUID, message string, actorID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, activityCall{caseID, message, actorID})
}

func (r *recordingActivity) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Message)
	}
	return out
}

type notifyCall struct {
	UserID  uuid.UUID
	Title   string
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notifyCall{userID, title, message})
}

func (r *recordingNotifier) Calls() []notifyCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifyCall(nil), r.calls...)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (r *recordingEvents) TaskChanged(_ context.Context, ev domain.TaskEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingEvents) Types() []domain.TaskEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TaskEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Case directory mock
// ---------------------------------------------------------------------------

type mockCases struct {
	getFunc func(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error)
}

func (m *mockCases) GetCaseRoleAssignment(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, caseID, role)
	}
	return uuid.Nil, domain.ErrNotFound
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	engine   *transition.Engine
	tasks    domain.TaskRepository
	cases    *memory.CaseRepo
	activity *recordingActivity
	notifier *recordingNotifier
	events   *recordingEvents
	caseID   uuid.UUID
	users    map[domain.Role]uuid.UUID
}

// newHarness builds an engine over the memory store with every role of one
// case filled by a distinct user.
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		tasks:    memory.NewTaskRepo(),
		cases:    memory.NewCaseRepo(),
		activity: &recordingActivity{},
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		caseID:   uuid.New(),
		users:    make(map[domain.Role]uuid.UUID),
	}

	for _, role := range []domain.Role{
		domain.RoleSales, domain.RoleSiteEngineer, domain.RoleDesigner,
		domain.RoleEstimator, domain.RoleProcurement, domain.RoleProjectManager,
	} {
		h.users[role] = uuid.New()
		require.NoError(t, h.cases.SetCaseRoleAssignment(context.Background(), &domain.CaseRoleAssignment{
			CaseID: h.caseID, Role: role, UserID: h.users[role], AssignedAt: clock,
		}))
	}

	h.engine = h.newEngine(t, h.tasks, h.cases)
	return h
}

func (h *harness) newEngine(t *testing.T, tasks domain.TaskRepository, cases transition.CaseDirectory) *transition.Engine {
	t.Helper()

	e, err := transition.NewEngine(tasks, cases, h.activity, h.notifier, officeHours,
		transition.WithClock(func() time.Time { return clock }),
		transition.WithBroadcaster(h.events),
	)
	require.NoError(t, err)
	return e
}

// seed stores a task of typ in status for the user holding role.
func (h *harness) seed(t *testing.T, typ domain.TaskType, status domain.TaskStatus, role domain.Role) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ID:         uuid.New(),
		CaseID:     h.caseID,
		Type:       typ,
		Status:     status,
		AssignedTo: h.users[role],
		AssignedBy: h.users[domain.RoleSales],
		CreatedAt:  clock.Add(-time.Hour),
	}
	require.NoError(t, h.tasks.Create(context.Background(), task))
	return task
}

func (h *harness) actor(role domain.Role) domain.Actor {
	return domain.Actor{ID: h.users[role], Role: string(role)}
}

func (h *harness) successorsOf(t *testing.T, parentID uuid.UUID) []*domain.Task {
	t.Helper()

	all, err := h.tasks.ListByCase(context.Background(), h.caseID)
	require.NoError(t, err)

	var out []*domain.Task
	for _, task := range all {
		if task.ParentID != nil && *task.ParentID == parentID {
			out = append(out, task)
		}
	}
	return out
}

// gatedRepo holds every Get of target until `parties` callers have read it,
// so concurrent commands all observe the same starting status.
type gatedRepo struct {
	domain.TaskRepository
	target  uuid.UUID
	arrived sync.WaitGroup
}

func newGatedRepo(inner domain.TaskRepository, target uuid.UUID, parties int) *gatedRepo {
	g := &gatedRepo{TaskRepository: inner, target: target}
	g.arrived.Add(parties)
	return g
}

func (g *gatedRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := g.TaskRepository.Get(ctx, id)
	if id == g.target {
		g.arrived.Done()
		g.arrived.Wait()
	}
	return t, err
}

// failingCreateRepo fails every Create while fail is set.
type failingCreateRepo struct {
	domain.TaskRepository
	mu   sync.Mutex
	fail error
}

func (f *failingCreateRepo) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *failingCreateRepo) Create(ctx context.Context, t *domain.Task) error {
	f.mu.Lock()
	err := f.fail
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.TaskRepository.Create(ctx, t)
}

func ptr[T any](v T) *T { return &v }
