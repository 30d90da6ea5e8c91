package usecases

import (
	"github.com/lintang-b-s/routegraph/pkg/costmap"
	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/engine/routing"
	"go.uber.org/zap"
)

// ControlService mutates the live planner state: edge closures, penalty
// overrides and costmap refreshes pushed by operators or sensor feeds.
type ControlService struct {
	log    *zap.Logger
	engine RouteEngine
}

func NewControlService(log *zap.Logger, engine RouteEngine) *ControlService {
	return &ControlService{
		log:    log,
		engine: engine,
	}
}

func (cs *ControlService) AdjustEdges(closedEdges, openedEdges []datastructure.Index,
	penalties []routing.EdgePenalty) error {
	cs.log.Info("applying edge adjustments",
		zap.Int("closed", len(closedEdges)),
		zap.Int("opened", len(openedEdges)),
		zap.Int("penalties", len(penalties)))
	return cs.engine.ApplyEdgeAdjustments(closedEdges, openedEdges, penalties)
}

func (cs *ControlService) ApplyCostmap(grid *costmap.OccupancyGrid) {
	cs.engine.UpdateCostmap(grid)
}

// Status reports graph size, the adjustment generation, active closures and
// penalties, and how many costmap frames have been applied since startup.
func (cs *ControlService) Status() routing.EngineStatus {
	return cs.engine.GetRoutingEngine().Status()
}
