package routing

import (
	"sync"
	"sync/atomic"

	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RoutingEngine owns the graph, the scorer plugin chain, and the planner.
// searches mutate per-node state inside the graph, so FindRoute serializes
// callers behind searchMu. generation increments on every mutation that can
// change scoring results (edge adjustments, costmap updates), callers use it
// to invalidate cached routes.
type RoutingEngine struct {
	log     *zap.Logger
	graph   *da.Graph
	scorer  *EdgeScorer
	planner *RoutePlanner
	source  *costmap.Source

	searchMu   sync.Mutex
	generation atomic.Uint64
}

func NewRoutingEngine(log *zap.Logger, graph *da.Graph) (*RoutingEngine, error) {
	viper.SetDefault("routing.edge_cost_functions", []string{"distance_scorer", "adjust_edges_scorer"})
	viper.SetDefault("routing.max_iterations", 10000)
	viper.SetDefault("costmap.stale_after", "10s")

	source := costmap.NewSource(log, viper.GetDuration("costmap.stale_after"))

	scorer, err := BuildEdgeScorer(log, source, viper.GetStringSlice("routing.edge_cost_functions"))
	if err != nil {
		return nil, err
	}

	return &RoutingEngine{
		log:     log,
		graph:   graph,
		scorer:  scorer,
		planner: NewRoutePlanner(log, scorer, viper.GetInt("routing.max_iterations")),
		source:  source,
	}, nil
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

func (re *RoutingEngine) GetCostmapSource() *costmap.Source {
	return re.source
}

func (re *RoutingEngine) GetScorer() *EdgeScorer {
	return re.scorer
}

func (re *RoutingEngine) GetGeneration() uint64 {
	return re.generation.Load()
}

// EngineStatus is one point in time snapshot of the planner state.
type EngineStatus struct {
	GraphNodes     int
	GraphEdges     int
	Generation     uint64
	CostmapUpdates uint64
	ClosedEdges    int
	PenalizedEdges int
}

func (re *RoutingEngine) Status() EngineStatus {
	status := EngineStatus{
		GraphNodes:     re.graph.NumberOfNodes(),
		GraphEdges:     re.graph.NumberOfEdges(),
		Generation:     re.generation.Load(),
		CostmapUpdates: re.source.NumUpdates(),
	}
	if adjuster, ok := re.scorer.GetAdjustEdgesScorer(); ok {
		status.ClosedEdges = len(adjuster.GetClosedEdges())
		status.PenalizedEdges = len(adjuster.GetPenalties())
	}
	return status
}

func (re *RoutingEngine) FindRoute(startId, goalId da.Index, blockedIds []da.Index) (*da.Route, error) {
	re.searchMu.Lock()
	defer re.searchMu.Unlock()

	return re.planner.FindRoute(re.graph, startId, goalId, blockedIds)
}

// ApplyEdgeAdjustments routes dynamic closures and penalties to the
// adjust_edges_scorer plugin. it fails when that plugin is not part of the
// configured chain, since the request would otherwise be silently ignored.
func (re *RoutingEngine) ApplyEdgeAdjustments(closedEdges, openedEdges []da.Index,
	penalties []EdgePenalty) error {

	adjuster, ok := re.scorer.GetAdjustEdgesScorer()
	if !ok {
		return util.WrapErrorf(nil, util.ErrNotFound,
			"adjust_edges_scorer is not configured")
	}

	adjuster.Apply(closedEdges, openedEdges, penalties)
	re.generation.Add(1)
	return nil
}

func (re *RoutingEngine) UpdateCostmap(grid *costmap.OccupancyGrid) {
	re.source.Update(grid)
	re.generation.Add(1)
}
