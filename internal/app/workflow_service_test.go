package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/adapters/templates"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
)

// MockWorkflowRepository is a mock implementation of ports.WorkflowRepository
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) CreateWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockWorkflowRepository) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) ReplaceWorkflow(ctx context.Context, workflow *domain.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockWorkflowRepository) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ListWorkflows(ctx context.Context, page, limit int) ([]*domain.Workflow, int, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Workflow), args.Int(1), args.Error(2)
}

func validDraft() *domain.Workflow {
	return &domain.Workflow{
		Name: "测试工作流",
		Nodes: []domain.Node{
			{ID: "in", Type: domain.NodeTypeInput, Name: "输入"},
			{ID: "text", Type: domain.NodeTypeTextGeneration, Name: "文本", Config: map[string]any{"prompt": "p"}},
			{ID: "out", Type: domain.NodeTypeOutput, Name: "输出"},
		},
		Edges: []domain.Edge{
			{From: "in", To: "text"},
			{From: "text", To: "out"},
		},
	}
}

func TestWorkflowServiceCreate(t *testing.T) {
	t.Run("assigns identity and stamps metadata", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		repo.On("CreateWorkflow", mock.Anything, mock.AnythingOfType("*domain.Workflow")).Return(nil)
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		created, err := service.CreateWorkflow(context.Background(), validDraft())
		require.NoError(t, err)

		_, parseErr := uuid.Parse(created.ID)
		assert.NoError(t, parseErr)
		assert.Equal(t, "1.0", created.Version)
		assert.Equal(t, 3, created.Metadata["node_count"])
		assert.Equal(t, 2, created.Metadata["edge_count"])
		assert.Equal(t, "2分钟", created.Metadata["estimated_time"])
		assert.Equal(t, "simple", created.Metadata["complexity"])
		assert.False(t, created.CreatedAt.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid graph before touching the store", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		draft := validDraft()
		draft.Edges = append(draft.Edges, domain.Edge{From: "out", To: "in"})

		_, err := service.CreateWorkflow(context.Background(), draft)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		repo.AssertNotCalled(t, "CreateWorkflow")
	})

	t.Run("rejects node types outside the closed set", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		draft := validDraft()
		draft.Nodes[1].Type = domain.NodeType("banana")

		_, err := service.CreateWorkflow(context.Background(), draft)
		require.Error(t, err)

		var typeErr domain.UnknownNodeTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.True(t, domain.IsValidationError(err))
		repo.AssertNotCalled(t, "CreateWorkflow")
	})

	t.Run("rejects nodes missing required config before touching the store", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		draft := validDraft()
		draft.Nodes[1].Config = map[string]any{}

		_, err := service.CreateWorkflow(context.Background(), draft)
		require.Error(t, err)

		var configErr domain.NodeConfigError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "prompt", configErr.Field)
		assert.True(t, domain.IsValidationError(err))
		repo.AssertNotCalled(t, "CreateWorkflow")
	})

	t.Run("does not mutate the caller's draft", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		repo.On("CreateWorkflow", mock.Anything, mock.Anything).Return(nil)
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		draft := validDraft()
		_, err := service.CreateWorkflow(context.Background(), draft)
		require.NoError(t, err)

		assert.Empty(t, draft.ID)
		assert.Nil(t, draft.Metadata)
	})
}

func TestWorkflowServiceReplace(t *testing.T) {
	existing := validDraft()
	existing.ID = uuid.NewString()
	existing.Version = "1.0"
	existing.CreatedAt = time.Now().UTC().Add(-time.Hour)

	t.Run("keeps identity and creation time", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		repo.On("GetWorkflow", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("ReplaceWorkflow", mock.Anything, mock.AnythingOfType("*domain.Workflow")).Return(nil)
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		replacement := validDraft()
		replacement.Name = "新名字"

		updated, err := service.ReplaceWorkflow(context.Background(), existing.ID, replacement)
		require.NoError(t, err)

		assert.Equal(t, existing.ID, updated.ID)
		assert.Equal(t, existing.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "新名字", updated.Name)
		assert.True(t, updated.UpdatedAt.After(existing.CreatedAt))
		repo.AssertExpectations(t)
	})

	t.Run("unknown workflow", func(t *testing.T) {
		repo := &MockWorkflowRepository{}
		repo.On("GetWorkflow", mock.Anything, "missing").Return(nil, domain.ErrWorkflowNotFound)
		service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

		_, err := service.ReplaceWorkflow(context.Background(), "missing", validDraft())
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})
}

func TestWorkflowServiceList(t *testing.T) {
	repo := &MockWorkflowRepository{}
	repo.On("ListWorkflows", mock.Anything, 1, 20).Return([]*domain.Workflow{}, 0, nil)
	service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())

	// Out-of-range paging collapses to the defaults.
	_, _, err := service.ListWorkflows(context.Background(), 0, 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestWorkflowServiceEstimate(t *testing.T) {
	service := NewWorkflowService(&MockWorkflowRepository{}, templates.NewRegistry(), zap.NewNop())
	draft := validDraft()

	estimate, err := service.EstimateWorkflow(draft.Nodes, draft.Edges)
	require.NoError(t, err)
	assert.Equal(t, "2分钟", estimate.EstimatedTime)
	assert.Equal(t, domain.ComplexitySimple, estimate.Complexity)

	_, err = service.EstimateWorkflow(nil, nil)
	assert.True(t, domain.IsValidationError(err))
}

func TestWorkflowServiceTemplates(t *testing.T) {
	repo := &MockWorkflowRepository{}
	repo.On("CreateWorkflow", mock.Anything, mock.AnythingOfType("*domain.Workflow")).Return(nil)
	service := NewWorkflowService(repo, templates.NewRegistry(), zap.NewNop())
	ctx := context.Background()

	t.Run("lists the built-in templates", func(t *testing.T) {
		list, err := service.ListTemplates(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 4)
	})

	t.Run("instantiates and persists", func(t *testing.T) {
		workflow, err := service.InstantiateTemplate(ctx, "blog_post_workflow")
		require.NoError(t, err)

		assert.Equal(t, "blog_post_workflow", workflow.Metadata["template_id"])
		assert.Equal(t, 7, workflow.Metadata["node_count"])
		repo.AssertExpectations(t)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := service.InstantiateTemplate(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}
