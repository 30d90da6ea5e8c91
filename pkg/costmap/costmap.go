package costmap

import (
	"math"
	"time"

	"github.com/lintang-b-s/routegraph/pkg/datastructure"
	"github.com/lintang-b-s/routegraph/pkg/geo"
	"github.com/lintang-b-s/routegraph/pkg/util"
)

const earthRadiusMeter = 6371.0 * 1000.0

// OccupancyGrid is one immutable snapshot of the live obstacle map. Cells
// hold a cost in [0,254], the reserved value 255 marks an unobserved cell.
// A grid is never mutated after construction, feed updates swap in a whole
// new grid.
type OccupancyGrid struct {
	resolution float64 // meter per cell
	width      int
	height     int
	origin     geo.Coordinate // world position of cell (0,0), the lower-left corner
	data       []uint8        // row-major, data[my*width+mx]
	stamp      time.Time
}

func NewOccupancyGrid(resolution float64, width, height int,
	origin geo.Coordinate, data []uint8, stamp time.Time) (*OccupancyGrid, error) {
	if resolution <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "grid resolution %f must be positive", resolution)
	}
	if width <= 0 || height <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "grid size %dx%d must be positive", width, height)
	}
	if len(data) != width*height {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"grid data length %d does not match %dx%d cells", len(data), width, height)
	}
	return &OccupancyGrid{
		resolution: resolution,
		width:      width,
		height:     height,
		origin:     origin,
		data:       data,
		stamp:      stamp,
	}, nil
}

func (g *OccupancyGrid) GetResolution() float64 {
	return g.resolution
}

func (g *OccupancyGrid) GetWidth() int {
	return g.width
}

func (g *OccupancyGrid) GetHeight() int {
	return g.height
}

func (g *OccupancyGrid) GetOrigin() geo.Coordinate {
	return g.origin
}

func (g *OccupancyGrid) GetStamp() time.Time {
	return g.stamp
}

// GetCost returns the cell cost at map coordinates (mx, my). The caller must
// have validated the coordinates with WorldToMap.
func (g *OccupancyGrid) GetCost(mx, my int) float64 {
	return float64(g.data[my*g.width+mx])
}

// WorldToMap converts a world coordinate into map cell coordinates. The
// second return is false when the coordinate falls outside the grid extent.
func (g *OccupancyGrid) WorldToMap(lat, lon float64) (int, int, bool) {
	p := geo.ToPlanarMeter(g.origin, geo.NewCoordinate(lat, lon))
	if p.X < 0 || p.Y < 0 {
		return 0, 0, false
	}
	mx := int(p.X / g.resolution)
	my := int(p.Y / g.resolution)
	if mx >= g.width || my >= g.height {
		return 0, 0, false
	}
	return mx, my, true
}

// GetBounds returns the world extent covered by the grid.
func (g *OccupancyGrid) GetBounds() *datastructure.BoundingBox {
	heightMeter := float64(g.height) * g.resolution
	widthMeter := float64(g.width) * g.resolution
	maxLat := g.origin.Lat + util.RadiansToDegree(heightMeter/earthRadiusMeter)
	maxLon := g.origin.Lon +
		util.RadiansToDegree(widthMeter/(earthRadiusMeter*math.Cos(util.DegreeToRadians(g.origin.Lat))))
	return datastructure.NewBoundingBox(g.origin.Lat, g.origin.Lon, maxLat, maxLon)
}
