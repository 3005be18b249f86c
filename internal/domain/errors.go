package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrTemplateNotFound  = errors.New("template not found")

	// ErrExecutionFinished is returned when an operation requires a live
	// execution but the target already reached a terminal status.
	ErrExecutionFinished = errors.New("execution already finished")
)

// EmptyWorkflowError rejects a definition with no nodes.
type EmptyWorkflowError struct{}

func (EmptyWorkflowError) Error() string {
	return "workflow must contain at least one node"
}

// DuplicateNodeError rejects a definition reusing a node id.
type DuplicateNodeError struct {
	NodeID string
}

func (e DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node id: %s", e.NodeID)
}

// DanglingEdgeError rejects an edge whose endpoint is not a known node.
type DanglingEdgeError struct {
	From    string
	To      string
	Missing string
}

func (e DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s references unknown node %s", e.From, e.To, e.Missing)
}

// CycleError rejects a definition whose edge set is cyclic. NodeID names one
// node on the cycle.
type CycleError struct {
	NodeID string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("workflow contains a cycle through node %s", e.NodeID)
}

// UnknownNodeTypeError rejects a node whose type is outside the closed set.
type UnknownNodeTypeError struct {
	NodeID string
	Type   NodeType
}

func (e UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("node %s: unknown node type %q", e.NodeID, e.Type)
}

// NodeConfigError rejects a node missing a config field its type requires.
type NodeConfigError struct {
	NodeID string
	Field  string
}

func (e NodeConfigError) Error() string {
	return fmt.Sprintf("node %s: missing required config field %q", e.NodeID, e.Field)
}

// IsValidationError reports whether err was produced by graph or node-config
// validation.
func IsValidationError(err error) bool {
	var empty EmptyWorkflowError
	var dup DuplicateNodeError
	var dangling DanglingEdgeError
	var cycle CycleError
	var unknownType UnknownNodeTypeError
	var config NodeConfigError
	return errors.As(err, &empty) || errors.As(err, &dup) ||
		errors.As(err, &dangling) || errors.As(err, &cycle) ||
		errors.As(err, &unknownType) || errors.As(err, &config)
}
