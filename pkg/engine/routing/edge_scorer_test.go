package routing

import (
	"errors"
	"testing"

	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildSingleEdgeGraph(t *testing.T) *da.Edge {
	t.Helper()
	g := da.NewGraph()
	addNode(t, g, 0)
	addNode(t, g, 1)
	return addEdge(t, g, 10, 0, 1, 1)
}

func TestEdgeScorerSumsPluginCosts(t *testing.T) {
	edge := buildSingleEdgeGraph(t)

	scorer := NewEdgeScorer(zap.NewNop(),
		&stubScorer{costs: map[da.Index]float64{10: 2}},
		&stubScorer{costs: map[da.Index]float64{10: 3.5}},
	)
	require.Equal(t, 2, scorer.NumPlugins())

	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 5.5, cost, testEps)
}

func TestEdgeScorerVetoShortCircuits(t *testing.T) {
	edge := buildSingleEdgeGraph(t)

	scorer := NewEdgeScorer(zap.NewNop(),
		&stubScorer{veto: map[da.Index]struct{}{10: {}}},
		&stubScorer{costs: map[da.Index]float64{10: 3.5}},
	)

	cost, valid := scorer.Score(edge)
	assert.False(t, valid)
	assert.Equal(t, 0.0, cost)
}

func TestBuildEdgeScorerConfiguresAllKnownPlugins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	source := costmap.NewSource(zap.NewNop(), 0)

	scorer, err := BuildEdgeScorer(zap.NewNop(), source, []string{
		"distance_scorer", "time_scorer", "penalty_scorer",
		"adjust_edges_scorer", "costmap_scorer",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, scorer.NumPlugins())

	adjuster, ok := scorer.GetAdjustEdgesScorer()
	require.True(t, ok)
	assert.Equal(t, "adjust_edges_scorer", adjuster.GetName())
}

func TestBuildEdgeScorerRejectsUnknownPlugin(t *testing.T) {
	_, err := BuildEdgeScorer(zap.NewNop(), nil, []string{"warp_scorer"})
	require.Error(t, err)

	var uerr *util.Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, util.ErrBadParamInput, uerr.Code())
}

func TestGetAdjustEdgesScorerAbsent(t *testing.T) {
	scorer := NewEdgeScorer(zap.NewNop(), &stubScorer{})

	_, ok := scorer.GetAdjustEdgesScorer()
	assert.False(t, ok)
}
