package domain

import (
	"strings"
	"time"
)

type NodeType string

const (
	NodeTypeInput               NodeType = "input"
	NodeTypeTextGeneration      NodeType = "text_generation"
	NodeTypeImageGeneration     NodeType = "image_generation"
	NodeTypeMusicGeneration     NodeType = "music_generation"
	NodeTypeContentAnalysis     NodeType = "content_analysis"
	NodeTypeContentOptimization NodeType = "content_optimization"
	NodeTypePlatformPublish     NodeType = "platform_publish"
	NodeTypeOutput              NodeType = "output"
)

// NodeTypes lists every supported node type in display order.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeInput,
		NodeTypeTextGeneration,
		NodeTypeImageGeneration,
		NodeTypeMusicGeneration,
		NodeTypeContentAnalysis,
		NodeTypeContentOptimization,
		NodeTypePlatformPublish,
		NodeTypeOutput,
	}
}

func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeInput, NodeTypeTextGeneration, NodeTypeImageGeneration,
		NodeTypeMusicGeneration, NodeTypeContentAnalysis,
		NodeTypeContentOptimization, NodeTypePlatformPublish, NodeTypeOutput:
		return true
	}
	return false
}

// Category groups node types for catalog display.
func (t NodeType) Category() string {
	switch t {
	case NodeTypeInput, NodeTypeOutput:
		return "input_output"
	case NodeTypeTextGeneration, NodeTypeImageGeneration, NodeTypeMusicGeneration:
		return "ai_generation"
	case NodeTypeContentAnalysis, NodeTypeContentOptimization:
		return "processing"
	case NodeTypePlatformPublish:
		return "integration"
	}
	return "other"
}

type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// Position is a canvas layout hint with no semantic role.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Node struct {
	ID          string         `json:"id"`
	Type        NodeType       `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Inputs      []string       `json:"inputs,omitempty"`
	Outputs     []string       `json:"outputs,omitempty"`
	Position    Position       `json:"position"`
	Status      NodeStatus     `json:"status,omitempty"`
}

// Edge is a directed "must complete before" dependency between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Workflow is a directed graph of content-generation nodes. Node sequence
// order is preserved for display only; execution order is derived from the
// edge set.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Nodes       []Node         `json:"nodes"`
	Edges       []Edge         `json:"edges"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// requiredConfig lists the config fields a node type cannot run without.
// Placeholder values like "{platform}" count as present; they resolve from
// the execution context at run time.
var requiredConfig = map[NodeType][]string{
	NodeTypeTextGeneration:      {"prompt"},
	NodeTypeContentOptimization: {"platform"},
	NodeTypePlatformPublish:     {"platform"},
}

// ValidateNodeConfig checks one node's type against the closed set and its
// config against the required fields of that type.
func ValidateNodeConfig(node Node) error {
	if !node.Type.Valid() {
		return UnknownNodeTypeError{NodeID: node.ID, Type: node.Type}
	}
	for _, field := range requiredConfig[node.Type] {
		v, ok := node.Config[field]
		if !ok {
			return NodeConfigError{NodeID: node.ID, Field: field}
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return NodeConfigError{NodeID: node.ID, Field: field}
		}
	}
	return nil
}

// ValidateNodeConfigs runs ValidateNodeConfig over every node, returning the
// first violation.
func ValidateNodeConfigs(nodes []Node) error {
	for _, node := range nodes {
		if err := ValidateNodeConfig(node); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	out := *w
	out.Nodes = make([]Node, len(w.Nodes))
	for i, n := range w.Nodes {
		out.Nodes[i] = n.clone()
	}
	out.Edges = append([]Edge(nil), w.Edges...)
	out.Variables = cloneMap(w.Variables)
	out.Metadata = cloneMap(w.Metadata)
	return &out
}

func (n Node) clone() Node {
	n.Config = cloneMap(n.Config)
	n.Inputs = append([]string(nil), n.Inputs...)
	n.Outputs = append([]string(nil), n.Outputs...)
	return n
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
