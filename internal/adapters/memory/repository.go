package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

// Repository is an in-memory store for workflows and executions, used for
// local development and tests. All reads return clones so callers cannot
// mutate stored state.
type Repository struct {
	mu         sync.RWMutex
	workflows  map[string]*domain.Workflow
	executions map[string]*domain.Execution
}

var (
	_ ports.WorkflowRepository  = (*Repository)(nil)
	_ ports.ExecutionRepository = (*Repository)(nil)
)

func NewRepository() *Repository {
	return &Repository{
		workflows:  make(map[string]*domain.Workflow),
		executions: make(map[string]*domain.Execution),
	}
}

func (r *Repository) CreateWorkflow(_ context.Context, workflow *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[workflow.ID] = workflow.Clone()
	return nil
}

func (r *Repository) GetWorkflow(_ context.Context, id string) (*domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	workflow, ok := r.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return workflow.Clone(), nil
}

func (r *Repository) ReplaceWorkflow(_ context.Context, workflow *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[workflow.ID]; !ok {
		return domain.ErrWorkflowNotFound
	}
	r.workflows[workflow.ID] = workflow.Clone()
	return nil
}

func (r *Repository) DeleteWorkflow(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[id]; !ok {
		return domain.ErrWorkflowNotFound
	}
	delete(r.workflows, id)
	return nil
}

func (r *Repository) ListWorkflows(_ context.Context, page, limit int) ([]*domain.Workflow, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Workflow, 0, len(r.workflows))
	for _, workflow := range r.workflows {
		all = append(all, workflow)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Workflow{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	pageItems := make([]*domain.Workflow, 0, end-start)
	for _, workflow := range all[start:end] {
		pageItems = append(pageItems, workflow.Clone())
	}
	return pageItems, total, nil
}

func (r *Repository) CreateExecution(_ context.Context, execution *domain.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions[execution.ID] = execution.Clone()
	return nil
}

func (r *Repository) UpdateExecution(_ context.Context, execution *domain.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.executions[execution.ID]; !ok {
		return domain.ErrExecutionNotFound
	}
	r.executions[execution.ID] = execution.Clone()
	return nil
}

func (r *Repository) GetExecution(_ context.Context, id string) (*domain.Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	execution, ok := r.executions[id]
	if !ok {
		return nil, domain.ErrExecutionNotFound
	}
	return execution.Clone(), nil
}
