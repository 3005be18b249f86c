package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}
	return false
}

// ResultSource distinguishes real backend output from the deterministic
// placeholder substituted when a capability is unavailable.
type ResultSource string

const (
	SourceGenerated ResultSource = "generated"
	SourceFallback  ResultSource = "fallback"
)

// LogEntry is one step of an execution's append-only history.
type LogEntry struct {
	NodeID    string         `json:"node_id"`
	NodeName  string         `json:"node_name"`
	Status    NodeStatus     `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Source    ResultSource   `json:"source,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Execution is one run of a workflow. The execution log is the single source
// of truth for what happened; once the status turns terminal the record is
// immutable.
type Execution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	Status       ExecutionStatus `json:"status"`
	InputData    map[string]any  `json:"input_data"`
	OutputData   map[string]any  `json:"output_data,omitempty"`
	ExecutionLog []LogEntry      `json:"execution_log"`
	Error        string          `json:"error,omitempty"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
}

func NewExecution(workflowID string, input map[string]any) *Execution {
	if input == nil {
		input = map[string]any{}
	}
	return &Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     ExecutionStatusPending,
		InputData:  input,
		StartTime:  time.Now().UTC(),
	}
}

// Clone returns an independent snapshot of the execution.
func (e *Execution) Clone() *Execution {
	out := *e
	out.InputData = cloneMap(e.InputData)
	out.OutputData = cloneMap(e.OutputData)
	out.ExecutionLog = make([]LogEntry, len(e.ExecutionLog))
	for i, entry := range e.ExecutionLog {
		entry.Result = cloneMap(entry.Result)
		out.ExecutionLog[i] = entry
	}
	if e.EndTime != nil {
		end := *e.EndTime
		out.EndTime = &end
	}
	return &out
}
