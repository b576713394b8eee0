package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outerArc(pts []Point) []Point {
	return pts[:len(pts)/2]
}

func TestSectorIndex(t *testing.T) {
	tests := []struct {
		hour, cycle, want int
	}{
		{1, 12, 0},
		{12, 12, 11},
		{13, 12, 0},
		{24, 12, 11},
		{1, 24, 0},
		{24, 24, 23},
		{0, 24, 23},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SectorIndex(tt.hour, tt.cycle), "hour %d cycle %d", tt.hour, tt.cycle)
	}
}

func TestSectorAnglesStartAtTwelve(t *testing.T) {
	start, mid, end := SectorAngles(1, 12)
	assert.Equal(t, -90.0, start)
	assert.Equal(t, -75.0, mid)
	assert.Equal(t, -60.0, end)

	start, mid, end = SectorAngles(24, 24)
	assert.Equal(t, 255.0, start)
	assert.Equal(t, 262.5, mid)
	assert.Equal(t, 270.0, end)
}

func TestSectorPolygonStartsAtTwelveOClock(t *testing.T) {
	c := Point{X: 100, Y: 100}
	start, _, end := SectorAngles(1, 12)
	pts := SectorPolygon(c, start, end, 73, 42)

	first := pts[0]
	assert.InDelta(t, 100, first.X, 1e-9)
	assert.InDelta(t, 27, first.Y, 1e-9)

	// Inner arc closes back at the start angle.
	last := pts[len(pts)-1]
	assert.InDelta(t, 100, last.X, 1e-9)
	assert.InDelta(t, 58, last.Y, 1e-9)
}

func TestSectorPolygonDegreeResolution(t *testing.T) {
	pts := SectorPolygon(Point{}, -90, -60, 10, 5)
	// 31 whole degrees on each arc.
	assert.Len(t, pts, 62)

	half := SectorPolygon(Point{}, -82.5, -75, 10, 5)
	// -82.5, -82..-76, -75
	assert.Len(t, half, 2*9)
}

func TestAdjacentSectorsShareEdges(t *testing.T) {
	c := Point{X: 200, Y: 200}
	for _, cycle := range []int{12, 24} {
		for hour := 1; hour <= cycle; hour++ {
			next := hour%cycle + 1
			s1, _, e1 := SectorAngles(hour, cycle)
			s2, _, e2 := SectorAngles(next, cycle)

			a := outerArc(SectorPolygon(c, s1, e1, 148, 83))
			b := outerArc(SectorPolygon(c, s2, e2, 148, 83))

			end := a[len(a)-1]
			begin := b[0]
			assert.InDelta(t, end.X, begin.X, 1e-9, "cycle %d hour %d", cycle, hour)
			assert.InDelta(t, end.Y, begin.Y, 1e-9, "cycle %d hour %d", cycle, hour)
		}
	}
}

func TestSectorsCoverFullCircle(t *testing.T) {
	for _, cycle := range []int{12, 24} {
		total := 0.0
		for hour := 1; hour <= cycle; hour++ {
			s, _, e := SectorAngles(hour, cycle)
			require.Greater(t, e, s)
			total += e - s
		}
		assert.InDelta(t, 360, total, 1e-9)
	}
}

func TestSplitSectorHalvesMeetAtMid(t *testing.T) {
	c := Point{X: 100, Y: 100}
	start, mid, end := SectorAngles(3, 12)
	first, second := SplitSector(c, start, end, 73, 42)

	fo := outerArc(first)
	so := outerArc(second)
	want := Polar(c, mid, 73)

	assert.InDelta(t, want.X, fo[len(fo)-1].X, 1e-9)
	assert.InDelta(t, want.Y, fo[len(fo)-1].Y, 1e-9)
	assert.InDelta(t, want.X, so[0].X, 1e-9)
	assert.InDelta(t, want.Y, so[0].Y, 1e-9)
}

func TestCircle(t *testing.T) {
	c := Point{X: 50, Y: 50}
	pts := Circle(c, 20)
	require.Len(t, pts, 360)
	for _, p := range pts {
		assert.InDelta(t, 20, math.Hypot(p.X-c.X, p.Y-c.Y), 1e-9)
	}
}

func TestMinuteAngle(t *testing.T) {
	assert.Equal(t, 360.0, MinuteAngle(0))
	assert.Equal(t, 270.0, MinuteAngle(15))
	assert.Equal(t, 6.0, MinuteAngle(59))
}

func TestHourAngle12Periodic(t *testing.T) {
	assert.Equal(t, HourAngle12(0, 0), HourAngle12(12, 0))
	for m := 0; m < 60; m++ {
		assert.Equal(t, HourAngle12(3, m), HourAngle12(15, m))
	}
	assert.Equal(t, 255.0, HourAngle12(3, 30))
}

func TestHourAngle24(t *testing.T) {
	// 14:30 on the 24-hour dial.
	assert.Equal(t, 142.5, HourAngle24(14, 30))
	assert.Equal(t, 360.0, HourAngle24(0, 0))
	assert.Equal(t, 180.0, HourAngle24(12, 0))
}
