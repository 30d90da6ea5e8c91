package costmap

import (
	"github.com/lintang-b-s/routegraph/pkg/util"
)

// LineIterator walks every grid cell of a discrete line segment with the
// bresenham algorithm, both endpoints inclusive.
type LineIterator struct {
	x, y   int
	x1, y1 int
	dx, dy int
	sx, sy int
	err    int
	done   bool
}

func NewLineIterator(x0, y0, x1, y1 int) *LineIterator {
	dx := util.Abs(x1 - x0)
	dy := util.Abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	return &LineIterator{
		x: x0, y: y0,
		x1: x1, y1: y1,
		dx: dx, dy: dy,
		sx: sx, sy: sy,
		err: dx - dy,
	}
}

func (it *LineIterator) IsValid() bool {
	return !it.done
}

func (it *LineIterator) GetX() int {
	return it.x
}

func (it *LineIterator) GetY() int {
	return it.y
}

func (it *LineIterator) Advance() {
	if it.x == it.x1 && it.y == it.y1 {
		it.done = true
		return
	}
	e2 := 2 * it.err
	if e2 > -it.dy {
		it.err -= it.dy
		it.x += it.sx
	}
	if e2 < it.dx {
		it.err += it.dx
		it.y += it.sy
	}
}
