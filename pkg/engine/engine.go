package engine

import (
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
	"github.com/lintang-b-s/routegraph/pkg/spatialindex"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// routeCacheKey pins a cached route to the scorer state it was planned
// against, the generation part invalidates everything on adjustments and
// costmap updates.
type routeCacheKey struct {
	start      da.Index
	goal       da.Index
	blocked    string
	generation uint64
}

func blockedKey(blockedIds []da.Index) string {
	if len(blockedIds) == 0 {
		return ""
	}
	sorted := make([]da.Index, len(blockedIds))
	copy(sorted, blockedIds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sb strings.Builder
	for i, id := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}

type Engine struct {
	log           *zap.Logger
	routingEngine *routing.RoutingEngine
	nodeIndex     *spatialindex.NodeIndex
	extractor     *GoalIntentExtractor
	routeCache    *lru.Cache[routeCacheKey, *da.Route]
}

func NewEngine(graphFilePath string, logger *zap.Logger) (*Engine, error) {
	graph, err := loadGraph(graphFilePath, logger)
	if err != nil {
		return nil, err
	}
	return NewEngineFromGraph(graph, logger)
}

func NewEngineFromGraph(graph *da.Graph, logger *zap.Logger) (*Engine, error) {
	routingEngine, err := routing.NewRoutingEngine(logger, graph)
	if err != nil {
		return nil, err
	}

	nodeIndex := spatialindex.NewNodeIndex()
	nodeIndex.Build(graph, logger)

	viper.SetDefault("engine.route_cache_size", 8192)
	routeCache, err := lru.New[routeCacheKey, *da.Route](viper.GetInt("engine.route_cache_size"))
	if err != nil {
		return nil, err
	}

	return &Engine{
		log:           logger,
		routingEngine: routingEngine,
		nodeIndex:     nodeIndex,
		extractor:     NewGoalIntentExtractor(logger, nodeIndex),
		routeCache:    routeCache,
	}, nil
}

func loadGraph(graphFilePath string, logger *zap.Logger) (*da.Graph, error) {
	logger.Info("reading graph...", zap.String("graphFilePath", graphFilePath))

	if strings.HasSuffix(graphFilePath, ".geojson") || strings.HasSuffix(graphFilePath, ".json") {
		return da.LoadGraphFromGeoJSON(graphFilePath)
	}
	return da.ReadGraph(graphFilePath)
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

func (e *Engine) GetNodeIndex() *spatialindex.NodeIndex {
	return e.nodeIndex
}

// FindRoute plans between two graph node ids, serving repeated queries from
// the route cache while the scorer state is unchanged.
func (e *Engine) FindRoute(startId, goalId da.Index, blockedIds []da.Index) (*da.Route, error) {
	generation := e.routingEngine.GetGeneration()
	key := routeCacheKey{
		start:      startId,
		goal:       goalId,
		blocked:    blockedKey(blockedIds),
		generation: generation,
	}

	if route, ok := e.routeCache.Get(key); ok {
		e.log.Debug("route cache hit",
			zap.Uint32("start", uint32(startId)), zap.Uint32("goal", uint32(goalId)))
		return route, nil
	}

	route, err := e.routingEngine.FindRoute(startId, goalId, blockedIds)
	if err != nil {
		return nil, err
	}

	// an adjustment may have landed while planning, only cache routes that
	// still reflect the current scorer state
	if e.routingEngine.GetGeneration() == generation {
		e.routeCache.Add(key, route)
	}
	return route, nil
}

// FindRouteFromPose snaps both poses onto the graph, plans between the
// snapped nodes and prunes the endpoints the poses already passed.
func (e *Engine) FindRouteFromPose(startLat, startLon, goalLat, goalLon float64,
	blockedIds []da.Index) (*da.Route, error) {

	startId, err := e.extractor.ResolveNode(startLat, startLon)
	if err != nil {
		return nil, err
	}
	goalId, err := e.extractor.ResolveNode(goalLat, goalLon)
	if err != nil {
		return nil, err
	}

	route, err := e.FindRoute(startId, goalId, blockedIds)
	if err != nil {
		return nil, err
	}
	return e.extractor.PruneRoute(route, startLat, startLon, goalLat, goalLon), nil
}

func (e *Engine) ApplyEdgeAdjustments(closedEdges, openedEdges []da.Index,
	penalties []routing.EdgePenalty) error {
	return e.routingEngine.ApplyEdgeAdjustments(closedEdges, openedEdges, penalties)
}

func (e *Engine) UpdateCostmap(grid *costmap.OccupancyGrid) {
	e.routingEngine.UpdateCostmap(grid)
}
