package calchart

// CurvePoint is one control point of a Curve, in coord-units.
type CurvePoint struct {
	X, Y int16
}

// Curve is a planar curve (a sequence of control points defining a
// piecewise path) along which a set of marchers is evenly redistributed on
// a given sheet.
type Curve struct {
	Points []CurvePoint
}

// PointAt returns the position t (in [0,1]) of the way along the curve's
// piecewise-linear path through its control points, used to re-project a
// marcher assigned to this curve onto an evenly spaced slot.
func (c Curve) PointAt(t float64) Coord {
	if len(c.Points) == 0 {
		return Coord{}
	}
	if len(c.Points) == 1 {
		return Coord{X: c.Points[0].X, Y: c.Points[0].Y}
	}
	if t <= 0 {
		return Coord{X: c.Points[0].X, Y: c.Points[0].Y}
	}
	if t >= 1 {
		last := c.Points[len(c.Points)-1]
		return Coord{X: last.X, Y: last.Y}
	}
	segCount := len(c.Points) - 1
	scaled := t * float64(segCount)
	idx := int(scaled)
	if idx >= segCount {
		idx = segCount - 1
	}
	frac := scaled - float64(idx)
	a, b := c.Points[idx], c.Points[idx+1]
	start := Coord{X: a.X, Y: a.Y}
	end := Coord{X: b.X, Y: b.Y}
	return start.Lerp(end, frac)
}

// CurveAssignment binds a Curve to the ordered set of marcher indices
// distributed along it. Position i's marcher is placed at PointAt(i /
// (len(MarcherIndices)-1)) when len > 1, or at PointAt(0) when there is a
// single assignee.
type CurveAssignment struct {
	Curve          Curve
	MarcherIndices []int
}

// ProjectedPositions returns the re-projected coord-unit position for each
// of the assignment's marchers, evenly spaced along the curve.
func (a CurveAssignment) ProjectedPositions() []Coord {
	n := len(a.MarcherIndices)
	out := make([]Coord, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = a.Curve.PointAt(0)
		return out
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = a.Curve.PointAt(t)
	}
	return out
}
