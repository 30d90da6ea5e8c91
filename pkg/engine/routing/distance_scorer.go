package routing

import (
	"github.com/lintang-b-s/routegraph/pkg"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DistanceScorer prices an edge by its great circle length in km.
type DistanceScorer struct {
	log    *zap.Logger
	name   string
	weight float64
}

func NewDistanceScorer(log *zap.Logger) *DistanceScorer {
	return &DistanceScorer{log: log}
}

func (s *DistanceScorer) Configure(name string) error {
	s.name = name
	viper.SetDefault(scorerParamKey(name, "weight"), pkg.DEFAULT_EDGE_WEIGHT)
	s.weight = viper.GetFloat64(scorerParamKey(name, "weight"))
	return nil
}

func (s *DistanceScorer) Prepare() {}

func (s *DistanceScorer) Score(edge *da.Edge) (float64, bool) {
	start, end := edge.GetStart(), edge.GetEnd()
	dist := geo.CalculateHaversineDistance(start.GetLat(), start.GetLon(),
		end.GetLat(), end.GetLon())
	return s.weight * dist, true
}

func (s *DistanceScorer) GetName() string {
	return s.name
}
