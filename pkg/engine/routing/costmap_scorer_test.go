package routing

import (
	"testing"
	"time"

	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testGridResolution = 1.0 // meter per cell

// world coordinate of the center of cell (mx, my), for a grid whose origin
// sits on the equator at (0, 0). inverse of OccupancyGrid.WorldToMap.
func cellCenterCoord(mx, my int) (float64, float64) {
	const earthRadiusMeter = 6371.0 * 1000.0
	lat := util.RadiansToDegree((float64(my) + 0.5) * testGridResolution / earthRadiusMeter)
	lon := util.RadiansToDegree((float64(mx) + 0.5) * testGridResolution / earthRadiusMeter)
	return lat, lon
}

func buildTestGrid(t *testing.T, width, height int, cells map[[2]int]uint8) *costmap.OccupancyGrid {
	t.Helper()
	data := make([]uint8, width*height)
	for cell, cost := range cells {
		data[cell[1]*width+cell[0]] = cost
	}
	grid, err := costmap.NewOccupancyGrid(testGridResolution, width, height,
		geo.NewCoordinate(0, 0), data, time.Now())
	require.NoError(t, err)
	return grid
}

// horizontal edge across row 0 of the grid, from cell (0,0) to cell (x1,0)
func buildGridEdge(t *testing.T, x1 int) *da.Edge {
	t.Helper()
	g := da.NewGraph()

	startLat, startLon := cellCenterCoord(0, 0)
	endLat, endLon := cellCenterCoord(x1, 0)

	_, err := g.AddNode(0, startLat, startLon)
	require.NoError(t, err)
	_, err = g.AddNode(1, endLat, endLon)
	require.NoError(t, err)

	edge, err := g.AddEdge(10, 0, 1, da.NewEdgeCost(1, true))
	require.NoError(t, err)
	return edge
}

func newCostmapScorer(t *testing.T, grid *costmap.OccupancyGrid,
	overrides map[string]interface{}) *CostmapScorer {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	for param, value := range overrides {
		viper.Set(scorerParamKey("costmap_scorer", param), value)
	}

	source := costmap.NewSource(zap.NewNop(), 0)
	if grid != nil {
		source.Update(grid)
	}

	scorer := NewCostmapScorer(zap.NewNop(), source)
	require.NoError(t, scorer.Configure("costmap_scorer"))
	scorer.Prepare()
	return scorer
}

func TestCostmapScorerNoGridFailsSafe(t *testing.T) {
	edge := buildGridEdge(t, 9)
	scorer := newCostmapScorer(t, nil, nil)

	cost, valid := scorer.Score(edge)
	assert.False(t, valid)
	assert.Equal(t, 0.0, cost)
}

func TestCostmapScorerStaleGridFailsSafe(t *testing.T) {
	edge := buildGridEdge(t, 9)

	viper.Reset()
	t.Cleanup(viper.Reset)
	stale, err := costmap.NewOccupancyGrid(testGridResolution, 10, 1,
		geo.NewCoordinate(0, 0), make([]uint8, 10), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	source := costmap.NewSource(zap.NewNop(), time.Minute)
	source.Update(stale)

	scorer := NewCostmapScorer(zap.NewNop(), source)
	require.NoError(t, scorer.Configure("costmap_scorer"))
	scorer.Prepare()

	_, valid := scorer.Score(edge)
	assert.False(t, valid)
}

func TestCostmapScorerCollisionPolicy(t *testing.T) {
	grid := buildTestGrid(t, 10, 1, map[[2]int]uint8{{5, 0}: 253})
	edge := buildGridEdge(t, 9)

	// default policy rejects the edge outright
	scorer := newCostmapScorer(t, grid, nil)
	cost, valid := scorer.Score(edge)
	assert.False(t, valid)
	assert.Equal(t, 0.0, cost)

	// with collisions allowed the lethal cell just dominates the score
	scorer = newCostmapScorer(t, grid, map[string]interface{}{"invalid_on_collision": false})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 1.0, cost, testEps)
}

func TestCostmapScorerRaisingMaxCostClearsCollision(t *testing.T) {
	grid := buildTestGrid(t, 10, 1, map[[2]int]uint8{{5, 0}: 200})
	edge := buildGridEdge(t, 9)

	scorer := newCostmapScorer(t, grid, map[string]interface{}{"max_cost": 254.0})
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 200.0/254.0, cost, testEps)

	scorer = newCostmapScorer(t, grid, map[string]interface{}{"max_cost": 100.0})
	_, valid = scorer.Score(edge)
	assert.False(t, valid)
}

func TestCostmapScorerUnknownCellsAreSkipped(t *testing.T) {
	// an unobserved cell must neither trigger a collision nor enter the stats
	grid := buildTestGrid(t, 10, 1, map[[2]int]uint8{
		{2, 0}: 100,
		{5, 0}: uint8(pkg.OCC_UNKNOWN_COST),
	})
	edge := buildGridEdge(t, 9)

	scorer := newCostmapScorer(t, grid, nil)
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 100.0/pkg.OCC_DEFAULT_MAX_COST, cost, testEps)
}

func TestCostmapScorerAllUnknownLineCostsNothing(t *testing.T) {
	cells := make(map[[2]int]uint8)
	for x := 0; x < 10; x++ {
		cells[[2]int{x, 0}] = uint8(pkg.OCC_UNKNOWN_COST)
	}
	grid := buildTestGrid(t, 10, 1, cells)
	edge := buildGridEdge(t, 9)

	scorer := newCostmapScorer(t, grid, nil)
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.Equal(t, 0.0, cost)
}

func TestCostmapScorerOffMapPolicy(t *testing.T) {
	grid := buildTestGrid(t, 10, 1, nil)
	// endpoint at cell x=50 is far outside the 10 cell grid
	edge := buildGridEdge(t, 50)

	scorer := newCostmapScorer(t, grid, nil)
	_, valid := scorer.Score(edge)
	assert.False(t, valid)

	scorer = newCostmapScorer(t, grid, map[string]interface{}{"invalid_off_map": false})
	cost, valid := scorer.Score(edge)
	assert.True(t, valid)
	assert.Equal(t, 0.0, cost)
}

func TestCostmapScorerMaximumVersusAverage(t *testing.T) {
	// one expensive cell on a 10 sample line
	grid := buildTestGrid(t, 10, 1, map[[2]int]uint8{{4, 0}: 100})
	edge := buildGridEdge(t, 9)

	scorer := newCostmapScorer(t, grid, nil)
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 100.0/pkg.OCC_DEFAULT_MAX_COST, cost, testEps)

	scorer = newCostmapScorer(t, grid, map[string]interface{}{"use_maximum": false})
	cost, valid = scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 100.0/(10.0*pkg.OCC_DEFAULT_MAX_COST), cost, testEps)
}

func TestCostmapScorerWeightScalesScore(t *testing.T) {
	grid := buildTestGrid(t, 10, 1, map[[2]int]uint8{{4, 0}: 100})
	edge := buildGridEdge(t, 9)

	scorer := newCostmapScorer(t, grid, map[string]interface{}{"weight": 3.0})
	cost, valid := scorer.Score(edge)
	require.True(t, valid)
	assert.InDelta(t, 3.0*100.0/pkg.OCC_DEFAULT_MAX_COST, cost, testEps)
}

func TestCostmapScorerRejectsNonPositiveMaxCost(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(scorerParamKey("costmap_scorer", "max_cost"), 0.0)

	scorer := NewCostmapScorer(zap.NewNop(), costmap.NewSource(zap.NewNop(), 0))
	err := scorer.Configure("costmap_scorer")
	require.Error(t, err)
}
