package geom

// Port names, clockwise from north. Every attachable object exposes exactly
// these eight ports on its perimeter: the four edge midpoints and the four
// corners. Ports are computed on the unrotated box and then rotated about
// the object's center, so they track rotation exactly.
const (
	PortN  = "n"
	PortNE = "ne"
	PortE  = "e"
	PortSE = "se"
	PortS  = "s"
	PortSW = "sw"
	PortW  = "w"
	PortNW = "nw"
)

// PortNames lists the eight port names in clockwise order from north.
var PortNames = []string{PortN, PortNE, PortE, PortSE, PortS, PortSW, PortW, PortNW}

// ValidPort reports whether name is one of the eight fixed port names.
func ValidPort(name string) bool {
	switch name {
	case PortN, PortNE, PortE, PortSE, PortS, PortSW, PortW, PortNW:
		return true
	}
	return false
}

// PortPosition returns the world position of the named port on r rotated by
// deg about its center. Unknown names resolve to the center, which keeps
// callers total without a second return value; callers that need strictness
// check ValidPort first.
func PortPosition(r Rect, deg float64, name string) Point {
	c := r.Center()
	var p Point
	switch name {
	case PortN:
		p = Point{X: c.X, Y: r.Y}
	case PortNE:
		p = Point{X: r.X + r.Width, Y: r.Y}
	case PortE:
		p = Point{X: r.X + r.Width, Y: c.Y}
	case PortSE:
		p = Point{X: r.X + r.Width, Y: r.Y + r.Height}
	case PortS:
		p = Point{X: c.X, Y: r.Y + r.Height}
	case PortSW:
		p = Point{X: r.X, Y: r.Y + r.Height}
	case PortW:
		p = Point{X: r.X, Y: c.Y}
	case PortNW:
		p = Point{X: r.X, Y: r.Y}
	default:
		return c
	}
	if deg == 0 {
		return p
	}
	return RotatePoint(p, c, deg)
}

// ClosestPort returns the name and world position of the port on r (rotated
// by deg) nearest to the query point. Ties resolve to the first port in
// clockwise order from north, which keeps the result deterministic.
func ClosestPort(r Rect, deg float64, query Point) (string, Point) {
	bestName := PortN
	bestPos := PortPosition(r, deg, PortN)
	bestDist := Distance(query, bestPos)
	for _, name := range PortNames[1:] {
		pos := PortPosition(r, deg, name)
		if d := Distance(query, pos); d < bestDist {
			bestName, bestPos, bestDist = name, pos, d
		}
	}
	return bestName, bestPos
}
