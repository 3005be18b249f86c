package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/app"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
)

type WorkflowHandler struct {
	workflowService app.WorkflowService
}

func NewWorkflowHandler(workflowService app.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

type WorkflowRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Nodes       []domain.Node  `json:"nodes" binding:"required"`
	Edges       []domain.Edge  `json:"edges"`
	Variables   map[string]any `json:"variables"`
}

func (r *WorkflowRequest) toDomain() *domain.Workflow {
	return &domain.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Version:     r.Version,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
		Variables:   r.Variables,
	}
}

func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(c, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	workflow, err := h.workflowService.GetWorkflow(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) ReplaceWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.workflowService.ReplaceWorkflow(c, c.Param("id"), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	if err := h.workflowService.DeleteWorkflow(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	workflows, total, err := h.workflowService.ListWorkflows(c, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflows": workflows,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

type EstimateRequest struct {
	Nodes []domain.Node `json:"nodes" binding:"required"`
	Edges []domain.Edge `json:"edges"`
}

func (h *WorkflowHandler) EstimateWorkflow(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estimate, err := h.workflowService.EstimateWorkflow(req.Nodes, req.Edges)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, estimate)
}

func (h *WorkflowHandler) ListTemplates(c *gin.Context) {
	templates, err := h.workflowService.ListTemplates(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *WorkflowHandler) InstantiateTemplate(c *gin.Context) {
	workflow, err := h.workflowService.InstantiateTemplate(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

func (h *WorkflowHandler) ListNodeTypes(c *gin.Context) {
	types := domain.NodeTypes()
	out := make([]gin.H, 0, len(types))
	for _, t := range types {
		out = append(out, gin.H{
			"type":     string(t),
			"category": t.Category(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"node_types": out})
}

type ExecutionHandler struct {
	executionService app.ExecutionService
}

func NewExecutionHandler(executionService app.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{executionService: executionService}
}

type StartExecutionRequest struct {
	InputData map[string]any `json:"input_data"`
}

func (h *ExecutionHandler) StartExecution(c *gin.Context) {
	var req StartExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	execution, err := h.executionService.Start(c, c.Param("id"), req.InputData)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, execution)
}

func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	execution, err := h.executionService.Get(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// GetExecutionResult returns only the outcome of a finished execution.
func (h *ExecutionHandler) GetExecutionResult(c *gin.Context) {
	execution, err := h.executionService.Get(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !execution.Status.Terminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "execution still running",
			"status": string(execution.Status),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"execution_id": execution.ID,
		"status":       string(execution.Status),
		"output_data":  execution.OutputData,
		"error":        execution.Error,
	})
}

func (h *ExecutionHandler) CancelExecution(c *gin.Context) {
	if err := h.executionService.Cancel(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cancellation requested"})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound),
		errors.Is(err, domain.ErrExecutionNotFound),
		errors.Is(err, domain.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrExecutionFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
