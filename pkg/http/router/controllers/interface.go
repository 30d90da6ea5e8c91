package controllers

import (
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
)

type RoutingService interface {
	RouteByID(startId, goalId datastructure.Index,
		blockedIds []datastructure.Index) (*datastructure.Route, string, error)
	RouteByPose(startLat, startLon, goalLat, goalLon float64,
		blockedIds []datastructure.Index) (*datastructure.Route, string, error)
}

type ControlService interface {
	AdjustEdges(closedEdges, openedEdges []datastructure.Index,
		penalties []routing.EdgePenalty) error
	ApplyCostmap(grid *costmap.OccupancyGrid)
	Status() routing.EngineStatus
}
