package engine

import (
	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/routegraph/pkg"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/spatialindex"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GoalIntentExtractor resolves raw query poses into graph node ids and trims
// route endpoints the requester already passed. Requests that carry explicit
// node ids never touch it.
type GoalIntentExtractor struct {
	log       *zap.Logger
	index     *spatialindex.NodeIndex
	pruneGoal bool
}

func NewGoalIntentExtractor(log *zap.Logger, index *spatialindex.NodeIndex) *GoalIntentExtractor {
	viper.SetDefault("routing.prune_goal", true)

	return &GoalIntentExtractor{
		log:       log,
		index:     index,
		pruneGoal: viper.GetBool("routing.prune_goal"),
	}
}

// ResolveNode snaps a pose onto its closest graph node.
func (ex *GoalIntentExtractor) ResolveNode(lat, lon float64) (da.Index, error) {
	node, err := ex.index.NearestNode(lat, lon)
	if err != nil {
		return 0, err
	}
	return node.GetID(), nil
}

// PruneRoute drops the first traversal when the start pose already lies along
// it, and the last one when the goal pose does. The input route is shared
// with the route cache and never modified, pruning returns a fresh route.
func (ex *GoalIntentExtractor) PruneRoute(route *da.Route,
	startLat, startLon, goalLat, goalLon float64) *da.Route {

	cost := route.GetCost()
	start := route.GetStart()
	edges := route.GetEdges()
	edgeCosts := route.GetEdgeCosts()

	if len(edges) > 1 && ex.poseAlongEdge(edges[0], false, startLat, startLon,
		pkg.MIN_DIST_FROM_START_METER) {
		ex.log.Debug("pruned first route edge, start pose is already along it",
			zap.Uint32("edge", uint32(edges[0].GetID())))
		cost -= edgeCosts[0]
		start = edges[0].GetEnd()
		edges = edges[1:]
		edgeCosts = edgeCosts[1:]
	}

	if ex.pruneGoal && len(edges) > 1 && ex.poseAlongEdge(edges[len(edges)-1], true,
		goalLat, goalLon, pkg.MIN_DIST_FROM_GOAL_METER) {
		ex.log.Debug("pruned last route edge, goal pose is before it",
			zap.Uint32("edge", uint32(edges[len(edges)-1].GetID())))
		cost -= edgeCosts[len(edgeCosts)-1]
		edges = edges[:len(edges)-1]
		edgeCosts = edgeCosts[:len(edgeCosts)-1]
	}

	return da.NewRoute(cost, start, edges, edgeCosts)
}

// poseAlongEdge reports whether the pose projects onto the edge, in the
// direction of travel away from its anchor node. The anchor is the edge start
// normally and the edge end when reversed (goal side).
func (ex *GoalIntentExtractor) poseAlongEdge(edge *da.Edge, reversed bool,
	poseLat, poseLon, minDistFromAnchor float64) bool {

	anchor, other := edge.GetStart(), edge.GetEnd()
	if reversed {
		anchor, other = other, anchor
	}

	ref := geo.NewCoordinate(anchor.GetLat(), anchor.GetLon())
	edgeVec := geo.ToPlanarMeter(ref, geo.NewCoordinate(other.GetLat(), other.GetLon()))
	poseVec := geo.ToPlanarMeter(ref, geo.NewCoordinate(poseLat, poseLon))

	if geo.NormalizedDot(edgeVec, poseVec) <= 0 {
		return false
	}

	closest := geo.ClosestPointOnSegment(r2.Point{}, edgeVec, poseVec)
	if poseVec.Sub(closest).Norm() >= pkg.MAX_DIST_FROM_EDGE_METER {
		return false
	}

	// a pose basically sitting on the anchor node keeps the whole edge
	return poseVec.Norm() > minDistFromAnchor
}
