package domain

// Graph is a validated, read-only view over a workflow's nodes and edges.
// Construction enforces, in order: at least one node, unique node ids, edge
// endpoints that exist, and acyclicity. A Graph performs no execution; it
// only answers the adjacency questions the executor needs.
type Graph struct {
	order []string
	nodes map[string]Node
	succ  map[string][]string
	pred  map[string][]string
}

func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, EmptyWorkflowError{}
	}

	g := &Graph{
		order: make([]string, 0, len(nodes)),
		nodes: make(map[string]Node, len(nodes)),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}

	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, DuplicateNodeError{NodeID: n.ID}
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, DanglingEdgeError{From: e.From, To: e.To, Missing: e.From}
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, DanglingEdgeError{From: e.From, To: e.To, Missing: e.To}
		}
		g.succ[e.From] = append(g.succ[e.From], e.To)
		g.pred[e.To] = append(g.pred[e.To], e.From)
	}

	if offender, ok := g.findCycle(); ok {
		return nil, CycleError{NodeID: offender}
	}

	return g, nil
}

// findCycle runs Kahn's algorithm; if not every node is drained, some node
// still has unresolved predecessors and sits on (or behind) a cycle.
func (g *Graph) findCycle() (string, bool) {
	indegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.pred[id])
	}

	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	drained := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		drained++
		for _, next := range g.succ[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if drained == len(g.order) {
		return "", false
	}
	for _, id := range g.order {
		if indegree[id] > 0 {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in definition order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Roots returns the nodes with no incoming edge, in definition order.
func (g *Graph) Roots() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		if len(g.pred[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Layers partitions the nodes into dependency layers: layer 0 holds the
// roots, and every node appears one layer after its deepest predecessor.
// Nodes within a layer share no ordering constraint.
func (g *Graph) Layers() [][]Node {
	depth := make(map[string]int, len(g.order))
	var resolve func(id string) int
	resolve = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 0
		for _, p := range g.pred[id] {
			if pd := resolve(p) + 1; pd > d {
				d = pd
			}
		}
		depth[id] = d
		return d
	}

	maxDepth := 0
	for _, id := range g.order {
		if d := resolve(id); d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([][]Node, maxDepth+1)
	for _, id := range g.order {
		d := depth[id]
		layers[d] = append(layers[d], g.nodes[id])
	}
	return layers
}

// Successors returns the direct dependents of the given node.
func (g *Graph) Successors(id string) []Node {
	return g.resolve(g.succ[id])
}

// Predecessors returns the direct dependencies of the given node.
func (g *Graph) Predecessors(id string) []Node {
	return g.resolve(g.pred[id])
}

func (g *Graph) resolve(ids []string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.nodes[id])
	}
	return out
}
