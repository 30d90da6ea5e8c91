package usecases

import (
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
)

// RouteEngine is the engine facade surface the http services consume.
type RouteEngine interface {
	FindRoute(startId, goalId datastructure.Index,
		blockedIds []datastructure.Index) (*datastructure.Route, error)
	FindRouteFromPose(startLat, startLon, goalLat, goalLon float64,
		blockedIds []datastructure.Index) (*datastructure.Route, error)
	ApplyEdgeAdjustments(closedEdges, openedEdges []datastructure.Index,
		penalties []routing.EdgePenalty) error
	UpdateCostmap(grid *costmap.OccupancyGrid)
	GetRoutingEngine() *routing.RoutingEngine
}
