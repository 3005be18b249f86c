package domain

import (
	"time"

	"github.com/google/uuid"
)

// Template is an immutable workflow blueprint. Instantiating it mints a new
// workflow that shares no ids, and no mutable state, with the template.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Category    string         `json:"category,omitempty"`
	Difficulty  string         `json:"difficulty,omitempty"`
	Nodes       []Node         `json:"nodes"`
	Edges       []Edge         `json:"edges"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Clone returns an independent copy of the template.
func (t *Template) Clone() *Template {
	out := *t
	out.Nodes = make([]Node, len(t.Nodes))
	for i, n := range t.Nodes {
		out.Nodes[i] = n.clone()
	}
	out.Edges = append([]Edge(nil), t.Edges...)
	out.Variables = cloneMap(t.Variables)
	out.Metadata = cloneMap(t.Metadata)
	return &out
}

// Instantiate produces a fresh workflow with the same node/edge shape as the
// template. Every node id and the workflow id are newly generated, so two
// instantiations never collide with each other or with the template.
func (t *Template) Instantiate() (*Workflow, error) {
	if _, err := NewGraph(t.Nodes, t.Edges); err != nil {
		return nil, err
	}

	idMap := make(map[string]string, len(t.Nodes))
	nodes := make([]Node, len(t.Nodes))
	for i, n := range t.Nodes {
		fresh := n.clone()
		fresh.ID = uuid.NewString()
		fresh.Status = NodeStatusPending
		idMap[n.ID] = fresh.ID
		nodes[i] = fresh
	}

	edges := make([]Edge, len(t.Edges))
	for i, e := range t.Edges {
		edges[i] = Edge{From: idMap[e.From], To: idMap[e.To]}
	}

	metadata := cloneMap(t.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["template_id"] = t.ID

	now := time.Now().UTC()
	return &Workflow{
		ID:          uuid.NewString(),
		Name:        t.Name,
		Description: t.Description,
		Version:     t.Version,
		Nodes:       nodes,
		Edges:       edges,
		Variables:   cloneMap(t.Variables),
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
