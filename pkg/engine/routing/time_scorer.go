package routing

import (
	"github.com/lintang-b-s/routegraph/pkg"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TimeScorer prices an edge by its travel time in minutes. The speed limit
// comes from the edge metadata, edges without one use the configured
// default.
type TimeScorer struct {
	log             *zap.Logger
	name            string
	weight          float64
	speedTag        string
	defaultSpeedKmH float64
}

func NewTimeScorer(log *zap.Logger) *TimeScorer {
	return &TimeScorer{log: log}
}

func (s *TimeScorer) Configure(name string) error {
	s.name = name
	viper.SetDefault(scorerParamKey(name, "weight"), pkg.DEFAULT_EDGE_WEIGHT)
	viper.SetDefault(scorerParamKey(name, "speed_tag"), "speed_limit")
	viper.SetDefault(scorerParamKey(name, "default_speed"), 30.0)

	s.weight = viper.GetFloat64(scorerParamKey(name, "weight"))
	s.speedTag = viper.GetString(scorerParamKey(name, "speed_tag"))
	s.defaultSpeedKmH = viper.GetFloat64(scorerParamKey(name, "default_speed"))
	if s.defaultSpeedKmH <= 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput,
			"scorer %s: default_speed %f must be positive", name, s.defaultSpeedKmH)
	}
	return nil
}

func (s *TimeScorer) Prepare() {}

func (s *TimeScorer) Score(edge *da.Edge) (float64, bool) {
	start, end := edge.GetStart(), edge.GetEnd()
	distKm := geo.CalculateHaversineDistance(start.GetLat(), start.GetLon(),
		end.GetLat(), end.GetLon())

	speedKmH := edge.GetMetadata().GetFloat64(s.speedTag, s.defaultSpeedKmH)
	if speedKmH <= 0 {
		speedKmH = s.defaultSpeedKmH
	}

	return s.weight * (distKm / speedKmH) * 60.0, true
}

func (s *TimeScorer) GetName() string {
	return s.name
}
