package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseflow/internal/async"
	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/events"
	redisstore "github.com/gosuda/caseflow/internal/store/redis"
)

type published struct {
	channel string
	payload []byte
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, published{channel, payload})
	return nil
}

func TestBroadcaster_TaskChanged(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	q := async.NewQueue(1, 4, time.Second, nil)
	b := events.NewBroadcaster(pub, q)

	task := &domain.Task{
		ID:         uuid.New(),
		CaseID:     uuid.New(),
		Type:       domain.TaskTypeQuotation,
		Status:     domain.TaskStatusPending,
		AssignedTo: uuid.New(),
	}
	ev := domain.NewTaskEvent(domain.TaskEventCreated, task, uuid.New(), time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	b.TaskChanged(t.Context(), ev)
	q.Close()

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, redisstore.CaseChannel(task.CaseID), pub.msgs[0].channel)
	assert.Equal(t, redisstore.QueueChannel(task.AssignedTo), pub.msgs[1].channel)

	var decoded domain.TaskEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestBroadcaster_PublishFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{err: errors.New("redis down")}
	q := async.NewQueue(1, 4, time.Second, nil)
	b := events.NewBroadcaster(pub, q)

	assert.NotPanics(t, func() {
		b.TaskChanged(t.Context(), domain.TaskEvent{TaskID: uuid.New()})
	})
	q.Close()
	assert.Empty(t, pub.msgs)
}
