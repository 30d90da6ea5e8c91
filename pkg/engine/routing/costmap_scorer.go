package routing

import (
	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	da "github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CostmapScorer prices an edge by sampling the live occupancy grid along the
// straight cell line between its endpoints. It fails safe: without a usable
// grid every edge is rejected.
type CostmapScorer struct {
	log    *zap.Logger
	source *costmap.Source
	name   string

	// per-search snapshot taken in Prepare, one search never mixes two grids
	grid   *costmap.OccupancyGrid
	warned bool

	useMaximum         bool
	invalidOnCollision bool
	invalidOffMap      bool
	maxCost            float64
	weight             float64
}

func NewCostmapScorer(log *zap.Logger, source *costmap.Source) *CostmapScorer {
	return &CostmapScorer{log: log, source: source}
}

func (s *CostmapScorer) Configure(name string) error {
	s.name = name

	viper.SetDefault(scorerParamKey(name, "use_maximum"), true)
	viper.SetDefault(scorerParamKey(name, "invalid_on_collision"), true)
	viper.SetDefault(scorerParamKey(name, "invalid_off_map"), true)
	viper.SetDefault(scorerParamKey(name, "max_cost"), pkg.OCC_DEFAULT_MAX_COST)
	viper.SetDefault(scorerParamKey(name, "weight"), pkg.DEFAULT_EDGE_WEIGHT)

	s.useMaximum = viper.GetBool(scorerParamKey(name, "use_maximum"))
	s.invalidOnCollision = viper.GetBool(scorerParamKey(name, "invalid_on_collision"))
	s.invalidOffMap = viper.GetBool(scorerParamKey(name, "invalid_off_map"))
	s.maxCost = viper.GetFloat64(scorerParamKey(name, "max_cost"))
	s.weight = viper.GetFloat64(scorerParamKey(name, "weight"))

	if s.maxCost <= 0 {
		return util.WrapErrorf(nil, util.ErrBadParamInput,
			"scorer %s: max_cost %f must be positive", name, s.maxCost)
	}
	return nil
}

func (s *CostmapScorer) Prepare() {
	s.warned = false
	if s.source == nil {
		s.grid = nil
		return
	}
	s.grid = s.source.Snapshot()
}

func (s *CostmapScorer) Score(edge *da.Edge) (float64, bool) {
	if s.grid == nil {
		if !s.warned {
			s.log.Warn("no occupancy grid available, rejecting every edge",
				zap.String("scorer", s.name))
			s.warned = true
		}
		return 0, false
	}

	start, end := edge.GetStart(), edge.GetEnd()
	x0, y0, ok0 := s.grid.WorldToMap(start.GetLat(), start.GetLon())
	x1, y1, ok1 := s.grid.WorldToMap(end.GetLat(), end.GetLon())
	if !ok0 || !ok1 {
		if s.invalidOffMap {
			return 0, false
		}
		return 0, true
	}

	largestCost := 0.0
	runningCost := 0.0
	pointCount := 0
	for it := costmap.NewLineIterator(x0, y0, x1, y1); it.IsValid(); it.Advance() {
		pointCost := s.grid.GetCost(it.GetX(), it.GetY())

		// unobserved cells neither collide nor contribute
		if pointCost == pkg.OCC_UNKNOWN_COST {
			continue
		}

		if s.invalidOnCollision && pointCost >= s.maxCost {
			return 0, false
		}

		if pointCost > largestCost {
			largestCost = pointCost
		}
		runningCost += pointCost
		pointCount++
	}

	if pointCount == 0 {
		return 0, true
	}
	if s.useMaximum {
		return s.weight * largestCost / s.maxCost, true
	}
	return s.weight * runningCost / (float64(pointCount) * s.maxCost), true
}

func (s *CostmapScorer) GetName() string {
	return s.name
}
