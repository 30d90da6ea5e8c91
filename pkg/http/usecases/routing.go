package usecases

import (
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"go.uber.org/zap"
)

type RoutingService struct {
	log    *zap.Logger
	engine RouteEngine
}

func NewRoutingService(log *zap.Logger, engine RouteEngine) *RoutingService {
	return &RoutingService{
		log:    log,
		engine: engine,
	}
}

// RouteByID plans between two graph node ids and returns the route with
// its encoded polyline.
func (rs *RoutingService) RouteByID(startId, goalId datastructure.Index,
	blockedIds []datastructure.Index) (*datastructure.Route, string, error) {
	route, err := rs.engine.FindRoute(startId, goalId, blockedIds)
	if err != nil {
		return nil, "", err
	}
	return route, routePolyline(route), nil
}

// RouteByPose snaps both poses to the graph before planning.
func (rs *RoutingService) RouteByPose(startLat, startLon, goalLat, goalLon float64,
	blockedIds []datastructure.Index) (*datastructure.Route, string, error) {
	route, err := rs.engine.FindRouteFromPose(startLat, startLon, goalLat, goalLon, blockedIds)
	if err != nil {
		return nil, "", err
	}
	return route, routePolyline(route), nil
}

func routePolyline(route *datastructure.Route) string {
	start := route.GetStart()
	coords := make([]geo.Coordinate, 0, len(route.GetEdges())+1)
	coords = append(coords, geo.NewCoordinate(start.GetLat(), start.GetLon()))
	for _, edge := range route.GetEdges() {
		end := edge.GetEnd()
		coords = append(coords, geo.NewCoordinate(end.GetLat(), end.GetLon()))
	}
	return geo.PolylineFromCoords(coords)
}
