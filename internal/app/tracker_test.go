package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/memory"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
)

// capturePublisher collects events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func TestTrackerLifecycle(t *testing.T) {
	store := memory.NewRepository()
	publisher := &capturePublisher{}
	tracker := NewExecutionTracker(store, nil, publisher, zap.NewNop())
	ctx := context.Background()

	execution := domain.NewExecution("wf-1", map[string]any{"topic": "t"})
	require.NoError(t, tracker.RecordStart(ctx, execution))

	tracker.MarkRunning(execution.ID)
	tracker.AppendLog(execution.ID, domain.LogEntry{NodeID: "n1", NodeName: "节点", Status: domain.NodeStatusCompleted})

	current, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusRunning, current.Status)
	require.Len(t, current.ExecutionLog, 1)
	assert.False(t, current.ExecutionLog[0].Timestamp.IsZero())

	require.NoError(t, tracker.Finalize(execution.ID, domain.ExecutionStatusCompleted, map[string]any{"done": true}, ""))

	final, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusCompleted, final.Status)
	require.NotNil(t, final.EndTime)
	assert.Equal(t, true, final.OutputData["done"])

	assert.Equal(t, []domain.EventType{
		domain.EventExecutionStarted,
		domain.EventNodeCompleted,
		domain.EventExecutionCompleted,
	}, publisher.types())

	// The repository got the terminal snapshot too.
	persisted, err := store.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusCompleted, persisted.Status)
}

func TestTrackerFinalizeIdempotent(t *testing.T) {
	store := memory.NewRepository()
	tracker := NewExecutionTracker(store, nil, nil, zap.NewNop())
	ctx := context.Background()

	execution := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(ctx, execution))

	require.NoError(t, tracker.Finalize(execution.ID, domain.ExecutionStatusFailed, nil, "boom"))
	// A later finalize must not overwrite the first terminal state.
	require.NoError(t, tracker.Finalize(execution.ID, domain.ExecutionStatusCompleted, map[string]any{"x": 1}, ""))

	final, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusFailed, final.Status)
	assert.Equal(t, "boom", final.Error)
	assert.Nil(t, final.OutputData)
}

func TestTrackerFinalizeRejectsNonTerminal(t *testing.T) {
	tracker := NewExecutionTracker(memory.NewRepository(), nil, nil, zap.NewNop())
	execution := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(context.Background(), execution))

	assert.Error(t, tracker.Finalize(execution.ID, domain.ExecutionStatusRunning, nil, ""))
}

func TestTrackerConcurrentAppends(t *testing.T) {
	store := memory.NewRepository()
	tracker := NewExecutionTracker(store, nil, nil, zap.NewNop())
	ctx := context.Background()

	execution := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(ctx, execution))
	tracker.MarkRunning(execution.ID)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tracker.AppendLog(execution.ID, domain.LogEntry{
				NodeID: fmt.Sprintf("n%d", i),
				Status: domain.NodeStatusCompleted,
			})
		}(i)
	}
	wg.Wait()

	current, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Len(t, current.ExecutionLog, writers)

	seen := make(map[string]bool, writers)
	for _, entry := range current.ExecutionLog {
		seen[entry.NodeID] = true
	}
	assert.Len(t, seen, writers)
}

func TestTrackerAppendAfterTerminalIsDropped(t *testing.T) {
	tracker := NewExecutionTracker(memory.NewRepository(), nil, nil, zap.NewNop())
	ctx := context.Background()

	execution := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(ctx, execution))
	require.NoError(t, tracker.Finalize(execution.ID, domain.ExecutionStatusCancelled, nil, "cancelled"))

	tracker.AppendLog(execution.ID, domain.LogEntry{NodeID: "late", Status: domain.NodeStatusCompleted})

	final, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Empty(t, final.ExecutionLog)
}

func TestTrackerGetFallsBackToRepository(t *testing.T) {
	store := memory.NewRepository()
	tracker := NewExecutionTracker(store, nil, nil, zap.NewNop())
	ctx := context.Background()

	execution := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(ctx, execution))
	require.NoError(t, tracker.Finalize(execution.ID, domain.ExecutionStatusCompleted, nil, ""))

	// Drop the in-memory record; the persisted snapshot still serves reads.
	tracker.Release(execution.ID)

	fetched, err := tracker.Get(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusCompleted, fetched.Status)

	_, err = tracker.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrExecutionNotFound)
}

func TestTrackerStaleRunning(t *testing.T) {
	tracker := NewExecutionTracker(memory.NewRepository(), nil, nil, zap.NewNop())
	ctx := context.Background()

	old := domain.NewExecution("wf-1", nil)
	old.StartTime = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, tracker.RecordStart(ctx, old))

	fresh := domain.NewExecution("wf-1", nil)
	require.NoError(t, tracker.RecordStart(ctx, fresh))

	done := domain.NewExecution("wf-1", nil)
	done.StartTime = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, tracker.RecordStart(ctx, done))
	require.NoError(t, tracker.Finalize(done.ID, domain.ExecutionStatusCompleted, nil, ""))

	stale := tracker.StaleRunning(time.Now().UTC().Add(-30 * time.Minute))
	assert.Equal(t, []string{old.ID}, stale)
}
