package routing

import (
	"github.com/lintang-b-s/routegraph/pkg"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PenaltyScorer reads a soft penalty from edge metadata and adds it to the
// edge cost. Edges without the tag contribute nothing. This is the static
// counterpart of AdjustEdgesScorer, for penalties baked into the graph file.
type PenaltyScorer struct {
	log        *zap.Logger
	name       string
	weight     float64
	penaltyTag string
}

func NewPenaltyScorer(log *zap.Logger) *PenaltyScorer {
	return &PenaltyScorer{log: log}
}

func (s *PenaltyScorer) Configure(name string) error {
	s.name = name
	viper.SetDefault(scorerParamKey(name, "weight"), pkg.DEFAULT_EDGE_WEIGHT)
	viper.SetDefault(scorerParamKey(name, "penalty_tag"), "penalty")
	s.weight = viper.GetFloat64(scorerParamKey(name, "weight"))
	s.penaltyTag = viper.GetString(scorerParamKey(name, "penalty_tag"))
	return nil
}

func (s *PenaltyScorer) Prepare() {}

func (s *PenaltyScorer) Score(edge *da.Edge) (float64, bool) {
	penalty := edge.GetMetadata().GetFloat64(s.penaltyTag, 0)
	if penalty <= 0 {
		return 0, true
	}
	return s.weight * penalty, true
}

func (s *PenaltyScorer) GetName() string {
	return s.name
}
