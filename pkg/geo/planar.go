package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/routegraph/pkg"
	"github.com/lintang-b-s/routegraph/pkg/util"
)

// ToPlanarMeter projects c into a local planar frame centered at ref using an
// equirectangular approximation, in meters. Accurate enough at the
// sub-kilometer scale of edge snapping and occupancy grids.
func ToPlanarMeter(ref, c Coordinate) r2.Point {
	latRef := util.DegreeToRadians(ref.Lat)
	x := util.DegreeToRadians(c.Lon-ref.Lon) * math.Cos(latRef) * earthRadiusKM * 1000.0
	y := util.DegreeToRadians(c.Lat-ref.Lat) * earthRadiusKM * 1000.0
	return r2.Point{X: x, Y: y}
}

// ClosestPointOnSegment returns the point of segment ab closest to p.
func ClosestPointOnSegment(a, b, p r2.Point) r2.Point {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq <= pkg.EPSILON {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		return a
	}
	if t > 1 {
		return b
	}
	return a.Add(ab.Mul(t))
}

// NormalizedDot returns the cosine of the angle between v1 and v2, zero when
// either vector is degenerate.
func NormalizedDot(v1, v2 r2.Point) float64 {
	n1 := v1.Dot(v1)
	n2 := v2.Dot(v2)
	if n1 < pkg.EPSILON || n2 < pkg.EPSILON {
		return 0
	}
	return v1.Dot(v2) / math.Sqrt(n1*n2)
}
