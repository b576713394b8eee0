// Package geometry converts hours and clock times into dial angles and ring
// sector outlines. It is pure: no images, no I/O, no clocks.
//
// Angles are in degrees. Angle 0 is 12 o'clock and angles grow clockwise, as
// on a clock face. Conversion to pixel space applies the -90° offset, so a
// point at angle a and radius r sits at (cx + r·cos(a-90°), cy + r·sin(a-90°))
// with y growing downward.
package geometry

import "math"

// Offset rotates dial angles so that 0° lands on 12 o'clock in screen space.
const Offset = -90.0

// Point is a position in pixel space.
type Point struct {
	X, Y float64
}

// Polar returns the pixel-space point at the given screen angle (degrees,
// already offset) and radius around center.
func Polar(center Point, deg, r float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: center.X + r*math.Cos(rad),
		Y: center.Y + r*math.Sin(rad),
	}
}

// Step returns the angular width of one sector for a cycle of n hours.
func Step(cycle int) float64 {
	return 360 / float64(cycle)
}

// SectorIndex maps an hour (1-based) to its sector on a dial of the given
// cycle length. Hour 1 is sector 0; hour cycle+1 wraps back to 0.
func SectorIndex(hour, cycle int) int {
	idx := (hour - 1) % cycle
	if idx < 0 {
		idx += cycle
	}
	return idx
}

// SectorAngles returns the screen-space start, mid and end angles of the
// sector holding hour.
func SectorAngles(hour, cycle int) (start, mid, end float64) {
	step := Step(cycle)
	start = Offset + float64(SectorIndex(hour, cycle))*step
	mid = start + step/2
	end = start + step
	return start, mid, end
}

// SectorPolygon returns the closed outline of an annulus wedge between start
// and end (screen-space degrees). The outer arc is walked from start to end,
// then the inner arc from end back to start, at one point per whole degree.
// The exact start and end angles are always part of both arcs, so wedges that
// share an edge share its vertices.
func SectorPolygon(center Point, start, end, outer, inner float64) []Point {
	angles := arcAngles(start, end)
	pts := make([]Point, 0, 2*len(angles))
	for _, a := range angles {
		pts = append(pts, Polar(center, a, outer))
	}
	for i := len(angles) - 1; i >= 0; i-- {
		pts = append(pts, Polar(center, angles[i], inner))
	}
	return pts
}

// SplitSector returns the two half wedges of a sector, first half first.
func SplitSector(center Point, start, end, outer, inner float64) (first, second []Point) {
	mid := start + (end-start)/2
	return SectorPolygon(center, start, mid, outer, inner),
		SectorPolygon(center, mid, end, outer, inner)
}

// Circle approximates a circle with one vertex per degree.
func Circle(center Point, r float64) []Point {
	pts := make([]Point, 0, 360)
	for a := 0; a < 360; a++ {
		pts = append(pts, Polar(center, float64(a), r))
	}
	return pts
}

// arcAngles returns start, every whole degree strictly between start and end,
// and end.
func arcAngles(start, end float64) []float64 {
	out := []float64{start}
	for a := math.Floor(start) + 1; a < end; a++ {
		out = append(out, a)
	}
	if end > start {
		out = append(out, end)
	}
	return out
}
