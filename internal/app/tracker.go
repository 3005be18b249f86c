package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

const persistTimeout = 5 * time.Second

// ExecutionTracker owns the mutable execution record for the lifetime of a
// run. Every writer goes through its mutex, so concurrent node completions
// interleave without losing or corrupting log entries. Snapshots are pushed
// to the repository and cache best effort; the in-memory record is
// authoritative while the run is live.
type ExecutionTracker struct {
	repo   ports.ExecutionRepository
	cache  ports.ExecutionCache
	events ports.EventPublisher
	logger *zap.Logger

	mu         sync.Mutex
	executions map[string]*domain.Execution
}

func NewExecutionTracker(repo ports.ExecutionRepository, cache ports.ExecutionCache, events ports.EventPublisher, logger *zap.Logger) *ExecutionTracker {
	if events == nil {
		events = noopPublisher{}
	}
	return &ExecutionTracker{
		repo:       repo,
		cache:      cache,
		events:     events,
		logger:     logger,
		executions: make(map[string]*domain.Execution),
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.Event) error { return nil }

// RecordStart registers a freshly accepted execution in the pending state.
func (t *ExecutionTracker) RecordStart(ctx context.Context, execution *domain.Execution) error {
	t.mu.Lock()
	t.executions[execution.ID] = execution.Clone()
	snapshot := execution.Clone()
	t.mu.Unlock()

	if err := t.repo.CreateExecution(ctx, snapshot); err != nil {
		return fmt.Errorf("persist execution: %w", err)
	}
	t.writeCache(snapshot)
	t.publish(domain.Event{
		Type:        domain.EventExecutionStarted,
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
		Timestamp:   time.Now().UTC(),
	})
	return nil
}

// MarkRunning transitions a pending execution to running. Called once,
// before the first node is dispatched.
func (t *ExecutionTracker) MarkRunning(executionID string) {
	t.mu.Lock()
	execution, ok := t.executions[executionID]
	if ok && !execution.Status.Terminal() {
		execution.Status = domain.ExecutionStatusRunning
	}
	var snapshot *domain.Execution
	if ok {
		snapshot = execution.Clone()
	}
	t.mu.Unlock()

	if snapshot != nil {
		t.persist(snapshot)
	}
}

// AppendLog appends one step to the execution history.
func (t *ExecutionTracker) AppendLog(executionID string, entry domain.LogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	execution, ok := t.executions[executionID]
	if !ok || execution.Status.Terminal() {
		t.mu.Unlock()
		return
	}
	execution.ExecutionLog = append(execution.ExecutionLog, entry)
	snapshot := execution.Clone()
	t.mu.Unlock()

	t.persist(snapshot)

	eventType := domain.EventNodeCompleted
	if entry.Status == domain.NodeStatusFailed {
		eventType = domain.EventNodeFailed
	}
	t.publish(domain.Event{
		Type:        eventType,
		WorkflowID:  snapshot.WorkflowID,
		ExecutionID: executionID,
		NodeID:      entry.NodeID,
		Timestamp:   entry.Timestamp,
		Data:        map[string]any{"status": string(entry.Status)},
	})
}

// Finalize moves the execution into a terminal status. It is idempotent and
// the only transition into a terminal state; the first call wins.
func (t *ExecutionTracker) Finalize(executionID string, status domain.ExecutionStatus, output map[string]any, execErr string) error {
	if !status.Terminal() {
		return fmt.Errorf("finalize requires a terminal status, got %q", status)
	}

	t.mu.Lock()
	execution, ok := t.executions[executionID]
	if !ok {
		t.mu.Unlock()
		return domain.ErrExecutionNotFound
	}
	if execution.Status.Terminal() {
		t.mu.Unlock()
		return nil
	}
	now := time.Now().UTC()
	execution.Status = status
	execution.OutputData = output
	execution.Error = execErr
	execution.EndTime = &now
	snapshot := execution.Clone()
	t.mu.Unlock()

	t.persist(snapshot)

	eventType := domain.EventExecutionCompleted
	switch status {
	case domain.ExecutionStatusFailed:
		eventType = domain.EventExecutionFailed
	case domain.ExecutionStatusCancelled:
		eventType = domain.EventExecutionCancelled
	}
	t.publish(domain.Event{
		Type:        eventType,
		WorkflowID:  snapshot.WorkflowID,
		ExecutionID: executionID,
		Timestamp:   now,
	})
	return nil
}

// Get returns the current snapshot of an execution, live or terminal.
func (t *ExecutionTracker) Get(ctx context.Context, executionID string) (*domain.Execution, error) {
	t.mu.Lock()
	if execution, ok := t.executions[executionID]; ok {
		snapshot := execution.Clone()
		t.mu.Unlock()
		return snapshot, nil
	}
	t.mu.Unlock()

	if t.cache != nil {
		if execution, err := t.cache.GetExecution(ctx, executionID); err == nil {
			return execution, nil
		}
	}
	return t.repo.GetExecution(ctx, executionID)
}

// StaleRunning returns ids of executions that began before the cutoff and
// have not reached a terminal state.
func (t *ExecutionTracker) StaleRunning(cutoff time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []string
	for id, execution := range t.executions {
		if !execution.Status.Terminal() && execution.StartTime.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Release drops a terminal execution from the in-memory map once durable
// copies exist; later reads fall through to cache and repository.
func (t *ExecutionTracker) Release(executionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if execution, ok := t.executions[executionID]; ok && execution.Status.Terminal() {
		delete(t.executions, executionID)
	}
}

func (t *ExecutionTracker) persist(snapshot *domain.Execution) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := t.repo.UpdateExecution(ctx, snapshot); err != nil {
		t.logger.Warn("failed to persist execution snapshot",
			zap.String("execution_id", snapshot.ID), zap.Error(err))
	}
	t.writeCache(snapshot)
}

func (t *ExecutionTracker) writeCache(snapshot *domain.Execution) {
	if t.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := t.cache.SetExecution(ctx, snapshot); err != nil {
		t.logger.Warn("failed to cache execution snapshot",
			zap.String("execution_id", snapshot.ID), zap.Error(err))
	}
}

func (t *ExecutionTracker) publish(event domain.Event) {
	if err := t.events.Publish(event); err != nil {
		t.logger.Warn("failed to publish event",
			zap.String("type", string(event.Type)), zap.Error(err))
	}
}
