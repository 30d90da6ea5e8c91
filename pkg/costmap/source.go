package costmap

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Source hands out the latest occupancy grid snapshot. Updates arrive on the
// feed goroutine while searches read concurrently, the handoff is a single
// atomic pointer swap so one search always scores against one consistent
// grid even when a refresh lands mid-search.
type Source struct {
	log        *zap.Logger
	grid       atomic.Pointer[OccupancyGrid]
	staleAfter time.Duration
	updates    atomic.Uint64
}

// NewSource. staleAfter bounds how old a grid may be before Snapshot treats
// it as absent, zero disables the staleness check.
func NewSource(log *zap.Logger, staleAfter time.Duration) *Source {
	return &Source{
		log:        log,
		staleAfter: staleAfter,
	}
}

func (s *Source) Update(grid *OccupancyGrid) {
	s.grid.Store(grid)
	s.updates.Add(1)
	s.log.Debug("occupancy grid updated",
		zap.Int("width", grid.GetWidth()),
		zap.Int("height", grid.GetHeight()),
		zap.Float64("resolution", grid.GetResolution()),
		zap.Time("stamp", grid.GetStamp()))
}

// Snapshot returns the current grid, or nil when none has been received yet
// or the latest one is older than the staleness window.
func (s *Source) Snapshot() *OccupancyGrid {
	grid := s.grid.Load()
	if grid == nil {
		return nil
	}
	if s.staleAfter > 0 && time.Since(grid.GetStamp()) > s.staleAfter {
		return nil
	}
	return grid
}

// NumUpdates reports how many grids have been received over the lifetime of
// the source.
func (s *Source) NumUpdates() uint64 {
	return s.updates.Load()
}
