// Package geom provides the pure geometry primitives shared by the object
// store, the containment synchronizer and the connector resolver.
//
// All angles are in degrees. Rotation is clockwise-positive in screen
// coordinates (y grows downward), matching the convention of every consumer
// in this module. Functions here never mutate their inputs and hold no state,
// so they are safe for concurrent use.
package geom

import "math"

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// A rotated object is represented as a Rect plus a rotation angle applied
// about the rect's center.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Intersects reports whether two axis-aligned rectangles overlap.
// Touching edges do not count as an intersection.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// NormalizeAngle maps an angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// RotatePoint rotates p about pivot by deg degrees.
func RotatePoint(p, pivot Point, deg float64) Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return Point{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// Corners returns the four corners of r rotated by deg about r's center,
// in order top-left, top-right, bottom-right, bottom-left.
func Corners(r Rect, deg float64) [4]Point {
	c := r.Center()
	corners := [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
	if deg == 0 {
		return corners
	}
	for i, p := range corners {
		corners[i] = RotatePoint(p, c, deg)
	}
	return corners
}

// BoundingBox returns the axis-aligned bounding box of r rotated by deg
// about its center. For deg == 0 this is r itself.
func BoundingBox(r Rect, deg float64) Rect {
	if deg == 0 {
		return r
	}
	corners := Corners(r, deg)
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, p := range corners[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Union returns the smallest axis-aligned rectangle covering all given
// rectangles. The zero Rect is returned for an empty slice.
func Union(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	u := rects[0]
	maxX, maxY := u.X+u.Width, u.Y+u.Height
	for _, r := range rects[1:] {
		u.X = math.Min(u.X, r.X)
		u.Y = math.Min(u.Y, r.Y)
		maxX = math.Max(maxX, r.X+r.Width)
		maxY = math.Max(maxY, r.Y+r.Height)
	}
	u.Width = maxX - u.X
	u.Height = maxY - u.Y
	return u
}

// PointInRotatedRect reports whether p lies inside r rotated by deg about
// its center. The test rotates p by -deg into r's local frame and performs
// an axis-aligned check; edges count as inside.
func PointInRotatedRect(p Point, r Rect, deg float64) bool {
	local := p
	if deg != 0 {
		local = RotatePoint(p, r.Center(), -deg)
	}
	return local.X >= r.X && local.X <= r.X+r.Width &&
		local.Y >= r.Y && local.Y <= r.Y+r.Height
}

// ContainsRotatedRect reports whether inner (rotated by innerDeg) lies
// entirely inside outer (rotated by outerDeg). All four rotated corners of
// inner must fall inside outer's rotated rectangle.
func ContainsRotatedRect(outer Rect, outerDeg float64, inner Rect, innerDeg float64) bool {
	for _, corner := range Corners(inner, innerDeg) {
		if !PointInRotatedRect(corner, outer, outerDeg) {
			return false
		}
	}
	return true
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
