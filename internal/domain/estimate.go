package domain

import (
	"fmt"
	"math"
)

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Estimate carries the human-facing preview derived from a workflow's shape.
type Estimate struct {
	EstimatedTime string     `json:"estimated_time"`
	Complexity    Complexity `json:"complexity"`
}

// Per-type expected minutes. Types outside the table cost 0.2 minutes.
var nodeMinutes = map[NodeType]float64{
	NodeTypeTextGeneration:      1,
	NodeTypeImageGeneration:     2,
	NodeTypeMusicGeneration:     3,
	NodeTypeContentAnalysis:     0.5,
	NodeTypeContentOptimization: 0.5,
	NodeTypePlatformPublish:     1,
}

// EstimateWorkflow is a pure function over the graph shape; it is recomputed
// whenever a workflow is created or its definition replaced.
func EstimateWorkflow(nodes []Node, edges []Edge) Estimate {
	var minutes float64
	for _, n := range nodes {
		w, ok := nodeMinutes[n.Type]
		if !ok {
			w = 0.2
		}
		minutes += w
	}

	var rendered string
	switch {
	case minutes < 1:
		rendered = "< 1分钟"
	case minutes < 60:
		rendered = fmt.Sprintf("%d分钟", int(math.Ceil(minutes)))
	default:
		rendered = fmt.Sprintf("%d小时", int(math.Ceil(minutes/60)))
	}

	complexity := ComplexitySimple
	nodeCount, edgeCount := len(nodes), len(edges)
	switch {
	case nodeCount > 10 || edgeCount > 15:
		complexity = ComplexityComplex
	case nodeCount > 5 || edgeCount > 8:
		complexity = ComplexityMedium
	}

	return Estimate{EstimatedTime: rendered, Complexity: complexity}
}
