package routing

import (
	"testing"

	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// one edge between two real coordinates in Yogyakarta, roughly 1.6 km apart
func buildGeoEdge(t *testing.T) *da.Edge {
	t.Helper()
	g := da.NewGraph()

	_, err := g.AddNode(0, -7.7828, 110.3671)
	require.NoError(t, err)
	_, err = g.AddNode(1, -7.7956, 110.3695)
	require.NoError(t, err)

	edge, err := g.AddEdge(10, 0, 1, da.NewEdgeCost(1, true))
	require.NoError(t, err)
	return edge
}

func geoEdgeDistanceKm(edge *da.Edge) float64 {
	return geo.CalculateHaversineDistance(
		edge.GetStart().GetLat(), edge.GetStart().GetLon(),
		edge.GetEnd().GetLat(), edge.GetEnd().GetLon())
}

func TestDistanceScorer(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	edge := buildGeoEdge(t)

	scorer := NewDistanceScorer(zap.NewNop())
	require.NoError(t, scorer.Configure("distance_scorer"))
	scorer.Prepare()

	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, geoEdgeDistanceKm(edge), cost, testEps)

	viper.Set(scorerParamKey("distance_scorer", "weight"), 2.5)
	require.NoError(t, scorer.Configure("distance_scorer"))

	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 2.5*geoEdgeDistanceKm(edge), cost, testEps)
}

func TestTimeScorer(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	edge := buildGeoEdge(t)
	distKm := geoEdgeDistanceKm(edge)

	scorer := NewTimeScorer(zap.NewNop())
	require.NoError(t, scorer.Configure("time_scorer"))
	scorer.Prepare()

	// no speed tag, the default 30 km/h applies
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, distKm/30.0*60.0, cost, testEps)

	// tagged speed wins, integer metadata values are coerced
	edge.SetMetadata(da.Metadata{"speed_limit": 60})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, distKm/60.0*60.0, cost, testEps)

	// non positive tagged speed falls back to the default
	edge.SetMetadata(da.Metadata{"speed_limit": -10.0})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, distKm/30.0*60.0, cost, testEps)
}

func TestTimeScorerRejectsNonPositiveDefaultSpeed(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(scorerParamKey("time_scorer", "default_speed"), 0.0)

	scorer := NewTimeScorer(zap.NewNop())
	require.Error(t, scorer.Configure("time_scorer"))
}

func TestPenaltyScorer(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	edge := buildGeoEdge(t)

	scorer := NewPenaltyScorer(zap.NewNop())
	require.NoError(t, scorer.Configure("penalty_scorer"))
	scorer.Prepare()

	// untagged edges contribute nothing
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.Equal(t, 0.0, cost)

	edge.SetMetadata(da.Metadata{"penalty": 5.0})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.Equal(t, 5.0, cost)

	viper.Set(scorerParamKey("penalty_scorer", "weight"), 2.0)
	viper.Set(scorerParamKey("penalty_scorer", "penalty_tag"), "toll")
	require.NoError(t, scorer.Configure("penalty_scorer"))

	edge.SetMetadata(da.Metadata{"toll": 3.0})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.Equal(t, 6.0, cost)
}
