package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// ExecutionService drives workflow runs.
type ExecutionService interface {
	Start(ctx context.Context, workflowID string, inputData map[string]any) (*domain.Execution, error)
	Get(ctx context.Context, executionID string) (*domain.Execution, error)
	Cancel(ctx context.Context, executionID string) error
}

// Executor runs workflows layer by layer: at every step all nodes whose
// predecessors have finished are dispatched concurrently, and the next layer
// is collected once they drain. Failed or skipped predecessors propagate a
// skip to their descendants.
type Executor struct {
	workflows ports.WorkflowRepository
	tracker   *ExecutionTracker
	nodes     *NodeExecutor
	logger    *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewExecutor(workflows ports.WorkflowRepository, tracker *ExecutionTracker, nodes *NodeExecutor, logger *zap.Logger) *Executor {
	return &Executor{
		workflows: workflows,
		tracker:   tracker,
		nodes:     nodes,
		logger:    logger,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Start validates the workflow, records a pending execution and launches the
// run in the background. The returned snapshot is the accepted pending
// record, not the final result.
func (e *Executor) Start(ctx context.Context, workflowID string, inputData map[string]any) (*domain.Execution, error) {
	workflow, err := e.workflows.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	graph, err := domain.NewGraph(workflow.Nodes, workflow.Edges)
	if err != nil {
		return nil, err
	}

	execution := domain.NewExecution(workflowID, inputData)
	if err := e.tracker.RecordStart(ctx, execution); err != nil {
		return nil, err
	}

	// The run outlives the request; cancellation happens through Cancel.
	runCtx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancels[execution.ID] = cancel
	e.mu.Unlock()

	e.logger.Info("execution started",
		zap.String("execution_id", execution.ID),
		zap.String("workflow_id", workflowID),
		zap.Int("node_count", graph.Len()))

	go e.run(runCtx, execution.ID, graph, inputData)

	return execution, nil
}

// Get returns the current state of an execution.
func (e *Executor) Get(ctx context.Context, executionID string) (*domain.Execution, error) {
	return e.tracker.Get(ctx, executionID)
}

// Cancel requests cancellation of a live run. Nodes already dispatched drain
// to their own deadlines; no new layer starts afterwards.
func (e *Executor) Cancel(ctx context.Context, executionID string) error {
	e.mu.Lock()
	cancel, ok := e.cancels[executionID]
	e.mu.Unlock()
	if !ok {
		execution, err := e.tracker.Get(ctx, executionID)
		if err != nil {
			return err
		}
		if execution.Status.Terminal() {
			return fmt.Errorf("execution %s: %w", executionID, domain.ErrExecutionFinished)
		}
		return domain.ErrExecutionNotFound
	}
	cancel()
	e.logger.Info("execution cancellation requested", zap.String("execution_id", executionID))
	return nil
}

// ForceFail is used by the reaper to close out executions that outlived the
// configured maximum age.
func (e *Executor) ForceFail(executionID, reason string) {
	e.cancelFunc(executionID)
	if err := e.tracker.Finalize(executionID, domain.ExecutionStatusFailed, nil, reason); err != nil &&
		!errors.Is(err, domain.ErrExecutionNotFound) {
		e.logger.Warn("failed to force-fail execution",
			zap.String("execution_id", executionID), zap.Error(err))
	}
	e.tracker.Release(executionID)
}

// StaleRunning exposes the tracker's view of overdue executions.
func (e *Executor) StaleRunning(cutoff time.Time) []string {
	return e.tracker.StaleRunning(cutoff)
}

func (e *Executor) run(ctx context.Context, executionID string, graph *domain.Graph, inputData map[string]any) {
	defer e.cancelFunc(executionID)

	e.tracker.MarkRunning(executionID)

	var mu sync.Mutex
	bound := make(map[string]any, len(inputData))
	for k, v := range inputData {
		bound[k] = v
	}
	nodeStatus := make(map[string]domain.NodeStatus, graph.Len())
	nodeOutput := make(map[string]map[string]any, graph.Len())
	var nodeFailed bool

	for {
		if ctx.Err() != nil {
			e.finalizeCancelled(executionID, bound, nodeOutput)
			return
		}

		ready, skippable := nextLayer(graph, nodeStatus)
		if len(ready) == 0 && len(skippable) == 0 {
			break
		}

		for _, node := range skippable {
			nodeStatus[node.ID] = domain.NodeStatusSkipped
			e.tracker.AppendLog(executionID, domain.LogEntry{
				NodeID:   node.ID,
				NodeName: node.Name,
				Status:   domain.NodeStatusSkipped,
			})
		}

		var wg sync.WaitGroup
		for _, node := range ready {
			wg.Add(1)
			go func(node domain.Node) {
				defer wg.Done()

				mu.Lock()
				snapshot := make(map[string]any, len(bound))
				for k, v := range bound {
					snapshot[k] = v
				}
				mu.Unlock()

				result := e.nodes.Execute(ctx, &node, snapshot)

				mu.Lock()
				nodeStatus[node.ID] = result.Status
				if result.Status == domain.NodeStatusCompleted {
					nodeOutput[node.ID] = result.Output
					for k, v := range result.Output {
						bound[k] = v
					}
				} else {
					nodeFailed = true
				}
				mu.Unlock()

				entry := domain.LogEntry{
					NodeID:   node.ID,
					NodeName: node.Name,
					Status:   result.Status,
					Result:   result.Output,
					Source:   result.Source,
				}
				if result.Err != nil {
					entry.Error = result.Err.Error()
				}
				e.tracker.AppendLog(executionID, entry)
			}(node)
		}
		wg.Wait()
	}

	output := outputSnapshot(bound, nodeOutput)
	if ctx.Err() != nil {
		e.finalizeCancelled(executionID, bound, nodeOutput)
		return
	}
	if nodeFailed {
		e.finalize(executionID, domain.ExecutionStatusFailed, output, "one or more nodes failed")
		return
	}
	e.finalize(executionID, domain.ExecutionStatusCompleted, output, "")
}

// nextLayer partitions unvisited nodes into those ready to run (all
// predecessors completed) and those that must be skipped (some predecessor
// failed or was skipped). Nodes with unfinished predecessors stay pending.
func nextLayer(graph *domain.Graph, nodeStatus map[string]domain.NodeStatus) (ready, skippable []domain.Node) {
	for _, node := range graph.Nodes() {
		if _, visited := nodeStatus[node.ID]; visited {
			continue
		}
		runnable := true
		skip := false
		for _, pred := range graph.Predecessors(node.ID) {
			switch nodeStatus[pred.ID] {
			case domain.NodeStatusCompleted:
			case domain.NodeStatusFailed, domain.NodeStatusSkipped:
				skip = true
				runnable = false
			default:
				runnable = false
			}
		}
		if skip {
			skippable = append(skippable, node)
		} else if runnable {
			ready = append(ready, node)
		}
	}
	return ready, skippable
}

func outputSnapshot(bound map[string]any, nodeOutput map[string]map[string]any) map[string]any {
	output := make(map[string]any, len(bound)+1)
	for k, v := range bound {
		output[k] = v
	}
	nodes := make(map[string]any, len(nodeOutput))
	for id, out := range nodeOutput {
		nodes[id] = out
	}
	output["node_results"] = nodes
	return output
}

func (e *Executor) finalizeCancelled(executionID string, bound map[string]any, nodeOutput map[string]map[string]any) {
	e.finalize(executionID, domain.ExecutionStatusCancelled, outputSnapshot(bound, nodeOutput), "execution cancelled")
}

func (e *Executor) finalize(executionID string, status domain.ExecutionStatus, output map[string]any, execErr string) {
	if err := e.tracker.Finalize(executionID, status, output, execErr); err != nil {
		e.logger.Error("failed to finalize execution",
			zap.String("execution_id", executionID), zap.Error(err))
		return
	}
	// Durable copies exist once Finalize returns; later reads go to the
	// cache or repository.
	e.tracker.Release(executionID)
	e.logger.Info("execution finished",
		zap.String("execution_id", executionID),
		zap.String("status", string(status)))
}

func (e *Executor) cancelFunc(executionID string) {
	e.mu.Lock()
	cancel, ok := e.cancels[executionID]
	delete(e.cancels, executionID)
	e.mu.Unlock()
	if ok {
		cancel()
	}
}
