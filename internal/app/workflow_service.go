package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

const defaultWorkflowVersion = "1.0"

// WorkflowService manages workflow definitions and templates.
type WorkflowService interface {
	CreateWorkflow(ctx context.Context, workflow *domain.Workflow) (*domain.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	ReplaceWorkflow(ctx context.Context, id string, workflow *domain.Workflow) (*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	ListWorkflows(ctx context.Context, page, limit int) ([]*domain.Workflow, int, error)
	EstimateWorkflow(nodes []domain.Node, edges []domain.Edge) (domain.Estimate, error)
	ListTemplates(ctx context.Context) ([]*domain.Template, error)
	InstantiateTemplate(ctx context.Context, templateID string) (*domain.Workflow, error)
}

type workflowService struct {
	repo      ports.WorkflowRepository
	templates ports.TemplateRegistry
	logger    *zap.Logger
}

func NewWorkflowService(repo ports.WorkflowRepository, templates ports.TemplateRegistry, logger *zap.Logger) WorkflowService {
	return &workflowService{repo: repo, templates: templates, logger: logger}
}

// CreateWorkflow validates the definition, assigns identity and stamps the
// derived metadata before persisting.
func (s *workflowService) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) (*domain.Workflow, error) {
	if _, err := domain.NewGraph(workflow.Nodes, workflow.Edges); err != nil {
		return nil, err
	}
	if err := domain.ValidateNodeConfigs(workflow.Nodes); err != nil {
		return nil, err
	}

	created := workflow.Clone()
	created.ID = uuid.NewString()
	if created.Version == "" {
		created.Version = defaultWorkflowVersion
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	stampMetadata(created)

	if err := s.repo.CreateWorkflow(ctx, created); err != nil {
		return nil, err
	}
	s.logger.Info("workflow created",
		zap.String("workflow_id", created.ID),
		zap.String("name", created.Name),
		zap.Int("node_count", len(created.Nodes)))
	return created, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	return s.repo.GetWorkflow(ctx, id)
}

// ReplaceWorkflow swaps the definition of an existing workflow wholesale,
// preserving its identity and creation time.
func (s *workflowService) ReplaceWorkflow(ctx context.Context, id string, workflow *domain.Workflow) (*domain.Workflow, error) {
	if _, err := domain.NewGraph(workflow.Nodes, workflow.Edges); err != nil {
		return nil, err
	}
	if err := domain.ValidateNodeConfigs(workflow.Nodes); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := workflow.Clone()
	updated.ID = existing.ID
	if updated.Version == "" {
		updated.Version = existing.Version
	}
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	stampMetadata(updated)

	if err := s.repo.ReplaceWorkflow(ctx, updated); err != nil {
		return nil, err
	}
	s.logger.Info("workflow replaced", zap.String("workflow_id", id))
	return updated, nil
}

func (s *workflowService) DeleteWorkflow(ctx context.Context, id string) error {
	if err := s.repo.DeleteWorkflow(ctx, id); err != nil {
		return err
	}
	s.logger.Info("workflow deleted", zap.String("workflow_id", id))
	return nil
}

func (s *workflowService) ListWorkflows(ctx context.Context, page, limit int) ([]*domain.Workflow, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListWorkflows(ctx, page, limit)
}

// EstimateWorkflow sizes a draft definition without persisting it. The graph
// must still be structurally valid for the numbers to mean anything.
func (s *workflowService) EstimateWorkflow(nodes []domain.Node, edges []domain.Edge) (domain.Estimate, error) {
	if _, err := domain.NewGraph(nodes, edges); err != nil {
		return domain.Estimate{}, err
	}
	return domain.EstimateWorkflow(nodes, edges), nil
}

func (s *workflowService) ListTemplates(ctx context.Context) ([]*domain.Template, error) {
	return s.templates.List(ctx)
}

// InstantiateTemplate expands a template into a persisted workflow with
// fresh node identity.
func (s *workflowService) InstantiateTemplate(ctx context.Context, templateID string) (*domain.Workflow, error) {
	template, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	workflow, err := template.Instantiate()
	if err != nil {
		return nil, err
	}
	stampMetadata(workflow)

	if err := s.repo.CreateWorkflow(ctx, workflow); err != nil {
		return nil, err
	}
	s.logger.Info("template instantiated",
		zap.String("template_id", templateID),
		zap.String("workflow_id", workflow.ID))
	return workflow, nil
}

// stampMetadata refreshes the derived size and estimate fields.
func stampMetadata(workflow *domain.Workflow) {
	estimate := domain.EstimateWorkflow(workflow.Nodes, workflow.Edges)
	if workflow.Metadata == nil {
		workflow.Metadata = make(map[string]any, 4)
	}
	workflow.Metadata["node_count"] = len(workflow.Nodes)
	workflow.Metadata["edge_count"] = len(workflow.Edges)
	workflow.Metadata["estimated_time"] = estimate.EstimatedTime
	workflow.Metadata["complexity"] = string(estimate.Complexity)
}
