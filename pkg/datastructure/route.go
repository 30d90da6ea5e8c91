package datastructure

// Route is an ordered walk from a start node to a goal node. It only borrows
// nodes and edges from the graph it was computed on, so it stays valid as
// long as that graph is alive and unmodified. edgeCosts holds the scored cost
// of each traversal at planning time, parallel to edges.
type Route struct {
	cost      float64
	start     *Node
	edges     []*Edge
	edgeCosts []float64
}

func NewRoute(cost float64, start *Node, edges []*Edge, edgeCosts []float64) *Route {
	return &Route{cost: cost, start: start, edges: edges, edgeCosts: edgeCosts}
}

func (r *Route) GetCost() float64 {
	return r.cost
}

func (r *Route) GetStart() *Node {
	return r.start
}

func (r *Route) GetEdges() []*Edge {
	return r.edges
}

func (r *Route) GetEdgeCosts() []float64 {
	return r.edgeCosts
}

// GetNodes returns the visited nodes in travel order, the start node first.
func (r *Route) GetNodes() []*Node {
	nodes := make([]*Node, 0, len(r.edges)+1)
	nodes = append(nodes, r.start)
	for _, edge := range r.edges {
		nodes = append(nodes, edge.GetEnd())
	}
	return nodes
}

// GetNodeIDs returns the visited node ids in travel order.
func (r *Route) GetNodeIDs() []Index {
	ids := make([]Index, 0, len(r.edges)+1)
	ids = append(ids, r.start.GetID())
	for _, edge := range r.edges {
		ids = append(ids, edge.GetEnd().GetID())
	}
	return ids
}

// GetEdgeIDs returns the traversed edge ids in travel order.
func (r *Route) GetEdgeIDs() []Index {
	ids := make([]Index, 0, len(r.edges))
	for _, edge := range r.edges {
		ids = append(ids, edge.GetID())
	}
	return ids
}
