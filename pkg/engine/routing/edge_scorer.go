package routing

import (
	"fmt"

	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"go.uber.org/zap"
)

func scorerParamKey(name, param string) string {
	return fmt.Sprintf("scorers.%s.%s", name, param)
}

// EdgeScorer composes the configured edge cost functions into one
// accept/reject plus total cost decision per edge.
type EdgeScorer struct {
	log     *zap.Logger
	plugins []EdgeCostFunction
}

func NewEdgeScorer(log *zap.Logger, plugins ...EdgeCostFunction) *EdgeScorer {
	return &EdgeScorer{log: log, plugins: plugins}
}

// BuildEdgeScorer assembles and configures the scorer chain from the
// configured plugin names, in list order.
func BuildEdgeScorer(log *zap.Logger, source *costmap.Source, pluginNames []string) (*EdgeScorer, error) {
	plugins := make([]EdgeCostFunction, 0, len(pluginNames))
	for _, name := range pluginNames {
		factory, ok := scorerFactories[name]
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown edge cost function %q", name)
		}
		plugin := factory(log, source)
		if err := plugin.Configure(name); err != nil {
			return nil, err
		}
		log.Info("configured edge cost function", zap.String("name", plugin.GetName()))
		plugins = append(plugins, plugin)
	}
	return NewEdgeScorer(log, plugins...), nil
}

// Prepare runs every plugin's per-search setup.
func (s *EdgeScorer) Prepare() {
	for _, plugin := range s.plugins {
		plugin.Prepare()
	}
}

// Score asks every plugin in order. The edge is valid only if every plugin
// accepts it, the total cost is the sum of the individual contributions.
// Aggregation short-circuits on the first veto, the edge is rejected no
// matter what the remaining plugins would say.
func (s *EdgeScorer) Score(edge *da.Edge) (float64, bool) {
	total := 0.0
	for _, plugin := range s.plugins {
		cost, ok := plugin.Score(edge)
		if !ok {
			return 0, false
		}
		total += cost
	}
	return total, true
}

func (s *EdgeScorer) NumPlugins() int {
	return len(s.plugins)
}

// GetAdjustEdgesScorer returns the closure/penalty plugin when one is part
// of the chain, the control endpoint needs a handle on it.
func (s *EdgeScorer) GetAdjustEdgesScorer() (*AdjustEdgesScorer, bool) {
	for _, plugin := range s.plugins {
		if adjust, ok := plugin.(*AdjustEdgesScorer); ok {
			return adjust, true
		}
	}
	return nil, false
}
