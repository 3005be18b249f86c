package ports

import (
	"context"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
)

type WorkflowRepository interface {
	CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	// ReplaceWorkflow swaps the stored document wholesale; there are no
	// partial-field patches.
	ReplaceWorkflow(ctx context.Context, workflow *domain.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	ListWorkflows(ctx context.Context, page, limit int) ([]*domain.Workflow, int, error)
}

type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *domain.Execution) error
	UpdateExecution(ctx context.Context, execution *domain.Execution) error
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
}

// TemplateRegistry is the read-only catalog of workflow blueprints.
type TemplateRegistry interface {
	Get(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context) ([]*domain.Template, error)
}

// ExecutionCache holds the latest execution snapshot for cheap status polling.
type ExecutionCache interface {
	SetExecution(ctx context.Context, execution *domain.Execution) error
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
}
