package routing

import (
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"go.uber.org/zap"
)

// EdgeCostFunction scores one graph edge during a search. Score runs once
// per edge expansion, implementations must be cheap and must never block.
type EdgeCostFunction interface {
	// Configure binds the plugin to its parameter namespace, the viper keys
	// under scorers.<name>.
	Configure(name string) error
	// Prepare runs once at the beginning of every search. Plugins use it to
	// snapshot external data feeds so one search sees consistent data.
	Prepare()
	// Score prices the edge. A false return vetoes the edge outright no
	// matter what cost was produced.
	Score(edge *da.Edge) (float64, bool)
	GetName() string
}

// ScorerFactory builds one edge cost function instance. The registry below
// replaces runtime plugin discovery, the configured scorer chain is
// assembled from it at startup.
type ScorerFactory func(log *zap.Logger, source *costmap.Source) EdgeCostFunction

var scorerFactories = map[string]ScorerFactory{
	"distance_scorer": func(log *zap.Logger, _ *costmap.Source) EdgeCostFunction {
		return NewDistanceScorer(log)
	},
	"time_scorer": func(log *zap.Logger, _ *costmap.Source) EdgeCostFunction {
		return NewTimeScorer(log)
	},
	"penalty_scorer": func(log *zap.Logger, _ *costmap.Source) EdgeCostFunction {
		return NewPenaltyScorer(log)
	},
	"adjust_edges_scorer": func(log *zap.Logger, _ *costmap.Source) EdgeCostFunction {
		return NewAdjustEdgesScorer(log)
	},
	"costmap_scorer": func(log *zap.Logger, source *costmap.Source) EdgeCostFunction {
		return NewCostmapScorer(log, source)
	},
}
