// Package transition implements the task transition engine: the only code
// that changes task status or creates successor tasks.
package transition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/deadline"
	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/guard"
	"github.com/gosuda/caseflow/internal/metrics"
)

// ErrSuccessorPending is returned together with a non-nil Result when the
// completion committed but the successor could not be created. Resume
// creates it later.
var ErrSuccessorPending = errors.New("transition: task completed, successor pending")

// CaseDirectory resolves which user fills a role on a case.
type CaseDirectory interface {
	GetCaseRoleAssignment(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error)
}

// ActivityLog, Notifier and Broadcaster are fire-and-forget sinks. They
// must not block and have no way to fail the calling command.
type ActivityLog interface {
	Record(ctx context.Context, caseID uuid.UUID, message string, actorID uuid.UUID)
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string)
}

type Broadcaster interface {
	TaskChanged(ctx context.Context, ev domain.TaskEvent)
}

// Result is the outcome of Complete and Resume. Successor is nil for
// terminal task types.
type Result struct {
	Completed *domain.Task `json:"completed"`
	Successor *domain.Task `json:"successor,omitempty"`
}

type Engine struct {
	tasks    domain.TaskRepository
	cases    CaseDirectory
	activity ActivityLog
	notifier Notifier
	events   Broadcaster
	rules    Rules
	window   deadline.Window
	now      func() time.Time
	metrics  *metrics.Metrics
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithRules(r Rules) Option { return func(e *Engine) { e.rules = r } }

func WithBroadcaster(b Broadcaster) Option { return func(e *Engine) { e.events = b } }

func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// NewEngine wires the engine. activity and notifier may be nil.
func NewEngine(tasks domain.TaskRepository, cases CaseDirectory, activity ActivityLog, notifier Notifier, window deadline.Window, opts ...Option) (*Engine, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("transition.NewEngine: %w", err)
	}

	e := &Engine{
		tasks:    tasks,
		cases:    cases,
		activity: activity,
		notifier: notifier,
		rules:    DefaultRules(),
		window:   window,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}

	if e.activity == nil {
		e.activity = nopSink{}
	}
	if e.notifier == nil {
		e.notifier = nopSink{}
	}
	if e.events == nil {
		e.events = nopSink{}
	}
	if err := e.rules.Check(); err != nil {
		return nil, fmt.Errorf("transition.NewEngine: %w", err)
	}

	return e, nil
}

// Complete finishes a STARTED task owned by actor and creates its successor.
//
// Guard and validation failures leave the task untouched. A lost race on
// the status write is reported as ErrConflict and never retried here.
func (e *Engine) Complete(ctx context.Context, taskID uuid.UUID, actor domain.Actor, payload domain.Payload) (_ *Result, err error) {
	begin := time.Now()
	var typ domain.TaskType
	defer func() { e.observe(guard.ActionComplete, typ, err, begin) }()

	task, rule, err := e.load(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Complete: %w", err)
	}
	typ = task.Type

	if err := guard.Authorize(actor.ID, task, guard.ActionComplete); err != nil {
		return nil, fmt.Errorf("transition.Engine.Complete: %w", err)
	}

	merged := task.Payload.Merge(payload)
	if rule.Validate != nil {
		if err := rule.Validate(merged); err != nil {
			return nil, fmt.Errorf("transition.Engine.Complete: %s: %w", task.Type, err)
		}
	}

	now := e.now()
	completed, err := e.tasks.ConditionalUpdate(ctx, task.ID, domain.TaskStatusStarted, func(t *domain.Task) {
		t.Status = domain.TaskStatusCompleted
		t.CompletedAt = &now
		t.Payload = merged
	})
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Complete: %w", err)
	}

	res := &Result{Completed: completed}

	var (
		successor *domain.Task
		created   bool
		succErr   error
	)
	if rule.Successor != "" {
		successor, created, succErr = e.ensureSuccessor(ctx, completed, rule, actor.ID)
	}

	e.activity.Record(ctx, completed.CaseID, fmt.Sprintf("%s completed", completed.Type), actor.ID)
	e.events.TaskChanged(ctx, domain.NewTaskEvent(domain.TaskEventCompleted, completed, actor.ID, now))

	if succErr != nil {
		log.Error().Err(succErr).
			Str("task_id", completed.ID.String()).
			Str("successor_type", string(rule.Successor)).
			Msg("transition: successor creation failed after completion")
		return res, fmt.Errorf("transition.Engine.Complete: %w: %w", ErrSuccessorPending, succErr)
	}

	res.Successor = successor
	if created {
		e.announce(ctx, successor, actor.ID)
	}

	return res, nil
}

// Start moves a PENDING or ACKNOWLEDGED task to STARTED.
func (e *Engine) Start(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (_ *domain.Task, err error) {
	begin := time.Now()
	var typ domain.TaskType
	defer func() { e.observe(guard.ActionStart, typ, err, begin) }()

	task, _, err := e.load(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Start: %w", err)
	}
	typ = task.Type

	if err := guard.Authorize(actor.ID, task, guard.ActionStart); err != nil {
		return nil, fmt.Errorf("transition.Engine.Start: %w", err)
	}

	now := e.now()
	started, err := e.tasks.ConditionalUpdate(ctx, task.ID, task.Status, func(t *domain.Task) {
		t.Status = domain.TaskStatusStarted
		t.StartedAt = &now
	})
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Start: %w", err)
	}

	e.activity.Record(ctx, started.CaseID, fmt.Sprintf("%s started", started.Type), actor.ID)
	e.events.TaskChanged(ctx, domain.NewTaskEvent(domain.TaskEventStarted, started, actor.ID, now))

	return started, nil
}

// Acknowledge marks a PENDING task of an acknowledgeable type as seen.
func (e *Engine) Acknowledge(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (_ *domain.Task, err error) {
	begin := time.Now()
	var typ domain.TaskType
	defer func() { e.observe(guard.ActionAcknowledge, typ, err, begin) }()

	task, rule, err := e.load(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Acknowledge: %w", err)
	}
	typ = task.Type

	if err := guard.Authorize(actor.ID, task, guard.ActionAcknowledge); err != nil {
		return nil, fmt.Errorf("transition.Engine.Acknowledge: %w", err)
	}
	if !rule.Acknowledgeable {
		return nil, fmt.Errorf("transition.Engine.Acknowledge: %s cannot be acknowledged: %w", task.Type, domain.ErrInvalidState)
	}

	now := e.now()
	acked, err := e.tasks.ConditionalUpdate(ctx, task.ID, domain.TaskStatusPending, func(t *domain.Task) {
		t.Status = domain.TaskStatusAcknowledged
		t.AcknowledgedAt = &now
	})
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Acknowledge: %w", err)
	}

	e.activity.Record(ctx, acked.CaseID, fmt.Sprintf("%s acknowledged", acked.Type), actor.ID)
	e.events.TaskChanged(ctx, domain.NewTaskEvent(domain.TaskEventAcknowledged, acked, actor.ID, now))

	return acked, nil
}

// Resume creates the successor of a COMPLETED task if it is missing. It is
// safe to call any number of times.
func (e *Engine) Resume(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (_ *Result, err error) {
	begin := time.Now()
	var typ domain.TaskType
	defer func() { e.observe(guard.ActionResume, typ, err, begin) }()

	task, rule, err := e.load(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("transition.Engine.Resume: %w", err)
	}
	typ = task.Type

	if err := guard.Authorize(actor.ID, task, guard.ActionResume); err != nil {
		return nil, fmt.Errorf("transition.Engine.Resume: %w", err)
	}

	res := &Result{Completed: task}
	if rule.Successor == "" {
		return res, nil
	}

	successor, created, err := e.ensureSuccessor(ctx, task, rule, actor.ID)
	if err != nil {
		return res, fmt.Errorf("transition.Engine.Resume: %w: %w", ErrSuccessorPending, err)
	}
	res.Successor = successor

	if created {
		log.Info().Str("task_id", task.ID.String()).Str("successor_id", successor.ID.String()).Msg("transition: resumed missing successor")
		e.activity.Record(ctx, task.CaseID, fmt.Sprintf("%s created on resume", successor.Type), actor.ID)
		e.announce(ctx, successor, actor.ID)
	}

	return res, nil
}

// Originate creates the first task of a case. A nil assignee is resolved
// from the case role owning typ, falling back to the actor.
func (e *Engine) Originate(ctx context.Context, actor domain.Actor, caseID uuid.UUID, typ domain.TaskType, assignee uuid.UUID) (_ *domain.Task, err error) {
	begin := time.Now()
	defer func() { e.observe("ORIGINATE", typ, err, begin) }()

	if actor.ID == uuid.Nil {
		return nil, fmt.Errorf("transition.Engine.Originate: anonymous actor: %w", domain.ErrNotOwner)
	}
	if caseID == uuid.Nil {
		return nil, fmt.Errorf("transition.Engine.Originate: %w", &domain.ValidationError{Field: "caseId", Message: "is required"})
	}
	rule, ok := e.rules[typ]
	if !ok {
		return nil, fmt.Errorf("transition.Engine.Originate: %w", &domain.ValidationError{Field: "type", Message: fmt.Sprintf("unknown task type %q", typ)})
	}

	if assignee == uuid.Nil {
		assignee, err = e.resolveAssignee(ctx, caseID, rule.Role, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("transition.Engine.Originate: %w", err)
		}
	}

	task := &domain.Task{
		ID:         uuid.New(),
		CaseID:     caseID,
		Type:       typ,
		Status:     domain.TaskStatusPending,
		AssignedTo: assignee,
		AssignedBy: actor.ID,
		CreatedAt:  e.now(),
	}
	if err := e.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("transition.Engine.Originate: %w", err)
	}

	e.activity.Record(ctx, caseID, fmt.Sprintf("%s created", typ), actor.ID)
	e.announce(ctx, task, actor.ID)

	return task, nil
}

func (e *Engine) load(ctx context.Context, taskID uuid.UUID) (*domain.Task, Rule, error) {
	task, err := e.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, Rule{}, err
	}

	rule, ok := e.rules[task.Type]
	if !ok {
		return nil, Rule{}, fmt.Errorf("no rule for task type %s: %w", task.Type, domain.ErrInvalidState)
	}

	return task, rule, nil
}

// ensureSuccessor creates the successor of parent, or returns the one a
// previous attempt already created. created reports which.
func (e *Engine) ensureSuccessor(ctx context.Context, parent *domain.Task, rule Rule, actorID uuid.UUID) (*domain.Task, bool, error) {
	id := domain.SuccessorID(parent.ID)

	existing, err := e.tasks.Get(ctx, id)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	assignee, err := e.resolveAssignee(ctx, parent.CaseID, e.rules[rule.Successor].Role, actorID)
	if err != nil {
		return nil, false, err
	}

	// Deadlines run from the completion time so a resumed successor gets
	// the same due time it would have had originally.
	from := e.now()
	if parent.CompletedAt != nil {
		from = *parent.CompletedAt
	}

	var due *time.Time
	if rule.DeadlineHours > 0 {
		d, err := deadline.Compute(from, rule.DeadlineHours, e.window)
		if err != nil {
			return nil, false, err
		}
		due = &d
	}

	parentID := parent.ID
	next := &domain.Task{
		ID:         id,
		CaseID:     parent.CaseID,
		ParentID:   &parentID,
		Type:       rule.Successor,
		Status:     domain.TaskStatusPending,
		AssignedTo: assignee,
		AssignedBy: actorID,
		CreatedAt:  e.now(),
		Deadline:   due,
	}

	err = e.tasks.Create(ctx, next)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent Resume.
		existing, err := e.tasks.Get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return next, true, nil
}

// resolveAssignee reads the case role, falling back to fallback when the
// role is unset. Lookup failures other than not-found are returned.
func (e *Engine) resolveAssignee(ctx context.Context, caseID uuid.UUID, role domain.Role, fallback uuid.UUID) (uuid.UUID, error) {
	if e.cases == nil {
		return fallback, nil
	}

	userID, err := e.cases.GetCaseRoleAssignment(ctx, caseID, role)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && userID == uuid.Nil) {
		log.Debug().Str("case_id", caseID.String()).Str("role", string(role)).Msg("transition: role unassigned, using acting user")
		return fallback, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve %s for case %s: %w", role, caseID, err)
	}

	return userID, nil
}

// announce tells the new assignee and subscribers that t exists.
func (e *Engine) announce(ctx context.Context, t *domain.Task, actorID uuid.UUID) {
	msg := fmt.Sprintf("%s on case %s", t.Type, t.CaseID)
	if t.Deadline != nil {
		msg += ", due " + t.Deadline.Format(time.RFC3339)
	}
	e.notifier.Notify(ctx, t.AssignedTo, "New task assigned", msg)
	e.events.TaskChanged(ctx, domain.NewTaskEvent(domain.TaskEventCreated, t, actorID, t.CreatedAt))
}

func (e *Engine) observe(action guard.Action, typ domain.TaskType, err error, begin time.Time) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflict):
		outcome = metrics.OutcomeConflict
	case errors.Is(err, ErrSuccessorPending):
		outcome = metrics.OutcomeError
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	e.metrics.ObserveTransition(string(action), string(typ), outcome, time.Since(begin))
}

type nopSink struct{}

func (nopSink) Record(context.Context, uuid.UUID, string, uuid.UUID) {}
func (nopSink) Notify(context.Context, uuid.UUID, string, string) {}
func (nopSink) TaskChanged(context.Context, domain.TaskEvent) {}
