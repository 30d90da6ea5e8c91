package controllers

import (
	"encoding/base64"
	"time"

	"github.com/lintang-b-s/routegraph/pkg/costmap"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/util"
)

type routeByPoseRequest struct {
	StartLat float64 `json:"start_lat" validate:"min=-90,max=90"`
	StartLon float64 `json:"start_lon" validate:"min=-180,max=180"`
	GoalLat  float64 `json:"goal_lat" validate:"min=-90,max=90"`
	GoalLon  float64 `json:"goal_lon" validate:"min=-180,max=180"`
}

type routeResponse struct {
	Cost    float64               `json:"cost"`
	NodeIds []datastructure.Index `json:"node_ids"`
	EdgeIds []datastructure.Index `json:"edge_ids"`
	Path    string                `json:"path"`
}

func NewRouteResponse(route *datastructure.Route, path string) routeResponse {
	return routeResponse{
		Cost:    route.GetCost(),
		NodeIds: route.GetNodeIDs(),
		EdgeIds: route.GetEdgeIDs(),
		Path:    path,
	}
}

type edgePenaltyRequest struct {
	EdgeID  datastructure.Index `json:"edge_id"`
	Penalty float64             `json:"penalty" validate:"min=0"`
}

type adjustEdgesRequest struct {
	ClosedEdges []datastructure.Index `json:"closed_edges"`
	OpenedEdges []datastructure.Index `json:"opened_edges"`
	Penalties   []edgePenaltyRequest  `json:"penalties" validate:"dive"`
}

func (r adjustEdgesRequest) ToEdgePenalties() []routing.EdgePenalty {
	penalties := make([]routing.EdgePenalty, 0, len(r.Penalties))
	for _, p := range r.Penalties {
		penalties = append(penalties, routing.EdgePenalty{EdgeID: p.EdgeID, Penalty: p.Penalty})
	}
	return penalties
}

type adjustEdgesResponse struct {
	Success bool `json:"success"`
}

type statusResponse struct {
	GraphNodes     int    `json:"graph_nodes"`
	GraphEdges     int    `json:"graph_edges"`
	Generation     uint64 `json:"generation"`
	CostmapUpdates uint64 `json:"costmap_updates"`
	ClosedEdges    int    `json:"closed_edges"`
	PenalizedEdges int    `json:"penalized_edges"`
}

func NewStatusResponse(status routing.EngineStatus) statusResponse {
	return statusResponse{
		GraphNodes:     status.GraphNodes,
		GraphEdges:     status.GraphEdges,
		Generation:     status.Generation,
		CostmapUpdates: status.CostmapUpdates,
		ClosedEdges:    status.ClosedEdges,
		PenalizedEdges: status.PenalizedEdges,
	}
}

// costmapFrameRequest is one websocket frame of the costmap feed. Data is
// the base64 of the row-major uint8 cell costs.
type costmapFrameRequest struct {
	Resolution float64 `json:"resolution" validate:"required,gt=0"`
	Width      int     `json:"width" validate:"required,gt=0"`
	Height     int     `json:"height" validate:"required,gt=0"`
	OriginLat  float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon  float64 `json:"origin_lon" validate:"min=-180,max=180"`
	StampMs    int64   `json:"stamp_ms"`
	Data       string  `json:"data" validate:"required"`
}

func (r costmapFrameRequest) ToOccupancyGrid() (*costmap.OccupancyGrid, error) {
	cells, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "costmap frame data is not valid base64")
	}

	// frames without a stamp count as fresh on arrival
	stamp := time.Now()
	if r.StampMs > 0 {
		stamp = time.UnixMilli(r.StampMs)
	}
	return costmap.NewOccupancyGrid(r.Resolution, r.Width, r.Height,
		geo.NewCoordinate(r.OriginLat, r.OriginLon), cells, stamp)
}

type costmapFrameResponse struct {
	Applied bool `json:"applied"`
	Cells   int  `json:"cells"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
