package routing

import (
	"errors"
	"math"

	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrInvalidGraph   = errors.New("routing: invalid graph")
	ErrNoRouteFound   = errors.New("routing: no route found")
	ErrSearchTimedOut = errors.New("routing: search timed out")
)

/*
RoutePlanner runs a uniform cost search (dijkstra) over the routing graph.
edge weights come from the configured EdgeScorer plugins, so the metric can
change between queries without rebuilding the graph. the priority queue uses
lazy deletion: a node is pushed again on every improvement and stale entries
are discarded when popped, instead of doing decrease-key.

the search is bounded by maxIterations settled nodes. a query that exhausts
the bound before settling the goal fails with ErrSearchTimedOut. zero or
negative means unbounded.
*/
type RoutePlanner struct {
	log           *zap.Logger
	scorer        *EdgeScorer
	maxIterations int

	pq *da.MinHeap[*da.Node]
}

func NewRoutePlanner(log *zap.Logger, scorer *EdgeScorer, maxIterations int) *RoutePlanner {
	return &RoutePlanner{
		log:           log,
		scorer:        scorer,
		maxIterations: maxIterations,
		pq:            da.NewFourAryHeap[*da.Node](),
	}
}

// FindRoute computes the cheapest path from startId to goalId. edges whose id
// or end node id appears in blockedIds are skipped, except edges that lead
// directly into the goal. the returned route owns the ordered edge list and
// its total integrated cost.
//
// FindRoute mutates the per-node search states of graph, so callers must not
// run two searches over the same graph concurrently.
func (rp *RoutePlanner) FindRoute(graph *da.Graph, startId, goalId da.Index,
	blockedIds []da.Index) (*da.Route, error) {

	if graph == nil || graph.NumberOfNodes() == 0 {
		return nil, util.WrapErrorf(ErrInvalidGraph, util.ErrBadParamInput,
			"graph is empty")
	}

	start, ok := graph.GetNode(startId)
	if !ok {
		return nil, util.WrapErrorf(ErrInvalidGraph, util.ErrBadParamInput,
			"start node %d does not exist", startId)
	}
	goal, ok := graph.GetNode(goalId)
	if !ok {
		return nil, util.WrapErrorf(ErrInvalidGraph, util.ErrBadParamInput,
			"goal node %d does not exist", goalId)
	}

	if err := rp.findShortestGraphTraversal(graph, start, goal, blockedIds); err != nil {
		return nil, err
	}

	// walk parent pointers back from the goal. an empty walk means the goal
	// was settled without traversing any edge, i.e. start == goal, which is
	// not a routable request.
	edges := make([]*da.Edge, 0)
	edgeCosts := make([]float64, 0)
	for parentEdge := goal.SearchState().GetParentEdge(); parentEdge != nil; parentEdge = parentEdge.GetStart().SearchState().GetParentEdge() {
		edges = append(edges, parentEdge)
		edgeCosts = append(edgeCosts, parentEdge.GetEnd().SearchState().GetTraversalCost())
	}
	if len(edges) == 0 {
		return nil, util.WrapErrorf(ErrNoRouteFound, util.ErrNotFound,
			"no route found from %d to %d", startId, goalId)
	}

	edges = util.ReverseG(edges)
	edgeCosts = util.ReverseG(edgeCosts)

	return da.NewRoute(goal.SearchState().GetIntegratedCost(), start, edges, edgeCosts), nil
}

func (rp *RoutePlanner) findShortestGraphTraversal(graph *da.Graph, start, goal *da.Node,
	blockedIds []da.Index) error {

	graph.ResetSearchStates()
	rp.pq.Clear()
	defer rp.pq.Clear()

	rp.scorer.Prepare()

	maxIterations := rp.maxIterations
	if maxIterations <= 0 {
		maxIterations = math.MaxInt
	}

	start.SearchState().Update(nil, 0, 0)
	rp.pq.Insert(da.NewPriorityQueueNode(0, start))

	goalReached := false
	iterations := 0

	for !rp.pq.IsEmpty() && iterations < maxIterations {
		iterations++

		pqNode, _ := rp.pq.ExtractMin()
		node := pqNode.GetItem()
		if pqNode.GetRank() != node.SearchState().GetIntegratedCost() {
			// stale duplicate from lazy deletion, already settled cheaper
			continue
		}

		if node == goal {
			goalReached = true
			break
		}

		for _, edge := range node.GetOutEdges() {
			traversalCost, valid, err := rp.getTraversalCost(edge, goal, blockedIds)
			if err != nil {
				return err
			}
			if !valid {
				continue
			}

			next := edge.GetEnd()
			newCost := node.SearchState().GetIntegratedCost() + traversalCost
			if newCost < next.SearchState().GetIntegratedCost() {
				next.SearchState().Update(edge, newCost, traversalCost)
				rp.pq.Insert(da.NewPriorityQueueNode(newCost, next))
			}
		}
	}

	if !goalReached {
		if rp.pq.IsEmpty() {
			return util.WrapErrorf(ErrNoRouteFound, util.ErrNotFound,
				"no route found from %d to %d", start.GetID(), goal.GetID())
		}
		return util.WrapErrorf(ErrSearchTimedOut, util.ErrTimeout,
			"search exceeded %d iterations before reaching goal %d", maxIterations, goal.GetID())
	}

	rp.log.Debug("graph traversal settled goal",
		zap.Uint32("start", uint32(start.GetID())),
		zap.Uint32("goal", uint32(goal.GetID())),
		zap.Int("iterations", iterations),
		zap.Float64("cost", goal.SearchState().GetIntegratedCost()))

	return nil
}

// getTraversalCost returns the scored cost of traversing edge, or valid=false
// when the edge must be skipped. blocked ids never veto edges that end at the
// goal, so a goal inside a blocked region stays reachable.
func (rp *RoutePlanner) getTraversalCost(edge *da.Edge, goal *da.Node,
	blockedIds []da.Index) (float64, bool, error) {

	if len(blockedIds) > 0 && edge.GetEnd() != goal {
		for _, blockedId := range blockedIds {
			if blockedId == edge.GetID() || blockedId == edge.GetEnd().GetID() {
				return 0, false, nil
			}
		}
	}

	if !edge.GetEdgeCost().IsOverridable() || rp.scorer.NumPlugins() == 0 {
		staticCost := edge.GetEdgeCost().GetCost()
		if staticCost <= 0 {
			return 0, false, util.WrapErrorf(ErrInvalidGraph, util.ErrBadParamInput,
				"edge %d has no usable fixed cost", edge.GetID())
		}
		return staticCost, true, nil
	}

	cost, valid := rp.scorer.Score(edge)
	return cost, valid, nil
}
