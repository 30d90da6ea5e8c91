package engine

import (
	"errors"
	"path/filepath"
	"testing"

	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// diamond on the equator meridian. the direct corridor 0 -> 1 -> 3 runs
// straight north and is 300m long, the detour 0 -> 2 -> 3 swings 200m east
// and is about 500m long, so the distance scorer prefers the corridor.
func buildDiamondGraph(t *testing.T) *da.Graph {
	t.Helper()
	g := da.NewGraph()

	nodes := []struct {
		id       da.Index
		lat, lon float64
	}{
		{0, 0, 0},
		{1, metersToLat(150), 0},
		{2, metersToLat(150), metersToLon(200)},
		{3, metersToLat(300), 0},
	}
	for _, n := range nodes {
		_, err := g.AddNode(n.id, n.lat, n.lon)
		require.NoError(t, err)
	}

	edges := []struct {
		id, start, end da.Index
	}{
		{10, 0, 1},
		{11, 1, 3},
		{12, 0, 2},
		{13, 2, 3},
	}
	for _, e := range edges {
		_, err := g.AddEdge(e.id, e.start, e.end, da.NewEdgeCost(0, true))
		require.NoError(t, err)
	}
	return g
}

func newDiamondEngine(t *testing.T) *Engine {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	eng, err := NewEngineFromGraph(buildDiamondGraph(t), zap.NewNop())
	require.NoError(t, err)
	return eng
}

func TestEngineFindRoute(t *testing.T) {
	eng := newDiamondEngine(t)

	route, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{10, 11}, route.GetEdgeIDs())
	assert.Equal(t, []da.Index{0, 1, 3}, route.GetNodeIDs())
}

func TestEngineRouteCacheHit(t *testing.T) {
	eng := newDiamondEngine(t)

	first, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	second, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// a different blocked list is a different cache entry
	blocked, err := eng.FindRoute(0, 3, []da.Index{12})
	require.NoError(t, err)
	assert.NotSame(t, first, blocked)
}

func TestEngineRouteCacheCanonicalizesBlockedIds(t *testing.T) {
	eng := newDiamondEngine(t)

	first, err := eng.FindRoute(0, 3, []da.Index{13, 12})
	require.NoError(t, err)
	second, err := eng.FindRoute(0, 3, []da.Index{12, 13})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestEngineAdjustmentInvalidatesCache(t *testing.T) {
	eng := newDiamondEngine(t)

	direct, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{10, 11}, direct.GetEdgeIDs())

	require.NoError(t, eng.ApplyEdgeAdjustments([]da.Index{10}, nil, nil))

	detour, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.NotSame(t, direct, detour)
	assert.Equal(t, []da.Index{12, 13}, detour.GetEdgeIDs())

	require.NoError(t, eng.ApplyEdgeAdjustments(nil, []da.Index{10}, nil))

	reopened, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{10, 11}, reopened.GetEdgeIDs())
}

func TestEnginePenaltyDivertsRoute(t *testing.T) {
	eng := newDiamondEngine(t)

	penalties := []routing.EdgePenalty{{EdgeID: 10, Penalty: 9.9}}
	require.NoError(t, eng.ApplyEdgeAdjustments(nil, nil, penalties))

	route, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{12, 13}, route.GetEdgeIDs())
}

func TestEngineFindRouteFromPose(t *testing.T) {
	eng := newDiamondEngine(t)

	t.Run("poses on the nodes keep the full route", func(t *testing.T) {
		route, err := eng.FindRouteFromPose(0, 0, metersToLat(300), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, []da.Index{10, 11}, route.GetEdgeIDs())
	})

	t.Run("start pose along the first edge prunes it", func(t *testing.T) {
		route, err := eng.FindRouteFromPose(metersToLat(60), 0, metersToLat(310), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, []da.Index{11}, route.GetEdgeIDs())
		assert.Equal(t, da.Index(1), route.GetStart().GetID())
	})

	t.Run("pose too far from any node fails", func(t *testing.T) {
		_, err := eng.FindRouteFromPose(10, 10, metersToLat(300), 0, nil)
		assert.Error(t, err)
	})
}

func TestEngineFindRouteErrors(t *testing.T) {
	eng := newDiamondEngine(t)

	_, err := eng.FindRoute(0, 99, nil)
	assert.True(t, errors.Is(err, routing.ErrInvalidGraph))

	// node 3 has no outgoing edges
	_, err = eng.FindRoute(3, 0, nil)
	assert.True(t, errors.Is(err, routing.ErrNoRouteFound))
}

func TestNewEngineReadsGraphFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "diamond.graph")
	require.NoError(t, buildDiamondGraph(t).WriteGraph(path))

	eng, err := NewEngine(path, zap.NewNop())
	require.NoError(t, err)

	route, err := eng.FindRoute(0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{10, 11}, route.GetEdgeIDs())
}

func TestNewEngineMissingGraphFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := NewEngine(filepath.Join(t.TempDir(), "nope.graph"), zap.NewNop())
	assert.Error(t, err)
}
