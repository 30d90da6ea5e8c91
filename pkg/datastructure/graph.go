package datastructure

import (
	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/lintang-b-s/routegraph/pkg/util"
)

type Index uint32

// Metadata holds free-form key/value tags attached to a node or an edge.
// Only scorer plugins interpret them.
type Metadata map[string]interface{}

func (m Metadata) GetFloat64(key string, def float64) float64 {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func (m Metadata) GetString(key string, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func (m Metadata) GetBool(key string, def bool) bool {
	if m == nil {
		return def
	}
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

// EdgeCost is the static cost descriptor of an edge. An overridable edge may
// have its cost replaced by scorer plugins at query time, a non-overridable
// edge always uses the fixed cost and must keep it strictly positive.
type EdgeCost struct {
	cost        float64
	overridable bool
}

func NewEdgeCost(cost float64, overridable bool) EdgeCost {
	return EdgeCost{cost: cost, overridable: overridable}
}

func (e EdgeCost) GetCost() float64 {
	return e.cost
}

func (e EdgeCost) IsOverridable() bool {
	return e.overridable
}

// SearchState is the per-node scratch state of one shortest path search. It
// is reset at the beginning of every search and never shared between two
// concurrent searches.
type SearchState struct {
	parentEdge     *Edge
	integratedCost float64
	traversalCost  float64
}

func (s *SearchState) Reset() {
	s.parentEdge = nil
	s.integratedCost = pkg.INF_WEIGHT
	s.traversalCost = 0
}

func (s *SearchState) GetParentEdge() *Edge {
	return s.parentEdge
}

func (s *SearchState) GetIntegratedCost() float64 {
	return s.integratedCost
}

func (s *SearchState) GetTraversalCost() float64 {
	return s.traversalCost
}

func (s *SearchState) Update(parentEdge *Edge, integratedCost, traversalCost float64) {
	s.parentEdge = parentEdge
	s.integratedCost = integratedCost
	s.traversalCost = traversalCost
}

type Node struct {
	id       Index
	lat      float64
	lon      float64
	outEdges []*Edge
	metadata Metadata
	search   SearchState
}

func NewNode(id Index, lat, lon float64) *Node {
	n := &Node{id: id, lat: lat, lon: lon}
	n.search.Reset()
	return n
}

func (n *Node) GetID() Index {
	return n.id
}

func (n *Node) GetLat() float64 {
	return n.lat
}

func (n *Node) GetLon() float64 {
	return n.lon
}

func (n *Node) GetOutEdges() []*Edge {
	return n.outEdges
}

func (n *Node) GetMetadata() Metadata {
	return n.metadata
}

func (n *Node) SetMetadata(m Metadata) {
	n.metadata = m
}

func (n *Node) SearchState() *SearchState {
	return &n.search
}

// Edge is a directed connection between two nodes of the same graph. Start
// and end are lookup references into the owning graph, never copies.
type Edge struct {
	id       Index
	start    *Node
	end      *Node
	edgeCost EdgeCost
	metadata Metadata
}

func NewEdge(id Index, start, end *Node, edgeCost EdgeCost) *Edge {
	return &Edge{id: id, start: start, end: end, edgeCost: edgeCost}
}

func (e *Edge) GetID() Index {
	return e.id
}

func (e *Edge) GetStart() *Node {
	return e.start
}

func (e *Edge) GetEnd() *Node {
	return e.end
}

func (e *Edge) GetEdgeCost() EdgeCost {
	return e.edgeCost
}

func (e *Edge) GetMetadata() Metadata {
	return e.metadata
}

func (e *Edge) SetMetadata(m Metadata) {
	e.metadata = m
}

// Graph owns every node and edge of one routing graph. Node and edge ids are
// the stable external identifiers from the graph file, lookups go through the
// id maps.
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	nodeByID map[Index]*Node
	edgeByID map[Index]*Edge
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make([]*Node, 0),
		edges:    make([]*Edge, 0),
		nodeByID: make(map[Index]*Node),
		edgeByID: make(map[Index]*Edge),
	}
}

func (g *Graph) AddNode(id Index, lat, lon float64) (*Node, error) {
	if _, ok := g.nodeByID[id]; ok {
		return nil, util.WrapErrorf(nil, util.ErrConflict, "duplicate node id %d", id)
	}
	node := NewNode(id, lat, lon)
	g.nodes = append(g.nodes, node)
	g.nodeByID[id] = node
	return node, nil
}

func (g *Graph) AddEdge(id, startID, endID Index, edgeCost EdgeCost) (*Edge, error) {
	if _, ok := g.edgeByID[id]; ok {
		return nil, util.WrapErrorf(nil, util.ErrConflict, "duplicate edge id %d", id)
	}
	start, ok := g.nodeByID[startID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "edge %d references unknown start node %d", id, startID)
	}
	end, ok := g.nodeByID[endID]
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "edge %d references unknown end node %d", id, endID)
	}
	edge := NewEdge(id, start, end, edgeCost)
	start.outEdges = append(start.outEdges, edge)
	g.edges = append(g.edges, edge)
	g.edgeByID[id] = edge
	return edge, nil
}

func (g *Graph) GetNode(id Index) (*Node, bool) {
	node, ok := g.nodeByID[id]
	return node, ok
}

func (g *Graph) GetEdge(id Index) (*Edge, bool) {
	edge, ok := g.edgeByID[id]
	return edge, ok
}

func (g *Graph) GetNodes() []*Node {
	return g.nodes
}

func (g *Graph) GetEdges() []*Edge {
	return g.edges
}

func (g *Graph) NumberOfNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

// ResetSearchStates prepares every node for a fresh search.
func (g *Graph) ResetSearchStates() {
	for _, node := range g.nodes {
		node.search.Reset()
	}
}
