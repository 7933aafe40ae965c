// Package board defines the object model for the whiteboard: the tagged
// union of placeable objects, the connector endpoint model, and the value
// normalization rules every mutation path applies.
//
// There is exactly one representation of an object. The live store, the
// batch agent mirror and the snapshot layer all hold the same concrete
// types, so validation and geometry logic is defined once. Consumers
// dispatch on the concrete type via type switch, never by probing optional
// fields.
package board

import (
	"github.com/google/uuid"

	"github.com/mwhite-io/easel/internal/geom"
)

// Kind discriminates the object union.
type Kind string

const (
	KindSticky    Kind = "sticky"
	KindShape     Kind = "shape"
	KindText      Kind = "text"
	KindConnector Kind = "connector"
	KindFrame     Kind = "frame"
	KindTable     Kind = "table"
)

// ValidKinds lists every object kind.
var ValidKinds = []Kind{KindSticky, KindShape, KindText, KindConnector, KindFrame, KindTable}

// MinSize is the floor applied to every object's width and height.
// Mutations clamp rather than reject, so a degenerate resize still settles
// on a visible object.
const MinSize = 8.0

// ClampSize raises w and h to MinSize.
func ClampSize(w, h float64) (float64, float64) {
	if w < MinSize {
		w = MinSize
	}
	if h < MinSize {
		h = MinSize
	}
	return w, h
}

// NewID returns a fresh opaque object id.
func NewID() string {
	return uuid.NewString()
}

// Base carries the fields shared by every object variant. Variants embed it,
// so its fields serialize inline and its Common method satisfies part of the
// Object interface for every variant.
//
// ParentFrameID is a weak back-reference: a plain id resolved through the
// document on demand, never an owning pointer. Empty means the object sits
// directly on the canvas.
type Base struct {
	ID            string  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Rotation      float64 `json:"rotation"`
	CreatedBy     string  `json:"createdBy,omitempty"`
	ParentFrameID string  `json:"parentFrameId,omitempty"`
}

// Common returns the shared fields. Promoted onto every variant.
func (b *Base) Common() *Base { return b }

// Rect returns the object's unrotated bounding rectangle.
func (b *Base) Rect() geom.Rect {
	return geom.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// SetRect overwrites position and size from r.
func (b *Base) SetRect(r geom.Rect) {
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
}

// Normalize clamps size to the floor and maps rotation into [0, 360).
// Every mutation path calls this before the object settles.
func (b *Base) Normalize() {
	b.Width, b.Height = ClampSize(b.Width, b.Height)
	b.Rotation = geom.NormalizeAngle(b.Rotation)
}

// Object is the board object union. Concrete types are *Sticky, *Shape,
// *Text, *Connector, *Frame and *Table; nothing else implements it.
type Object interface {
	Kind() Kind
	Common() *Base
	// Clone returns a deep copy sharing no mutable state with the
	// receiver.
	Clone() Object
}

// Sticky is a colored sticky note with text.
type Sticky struct {
	Base
	Text     string `json:"text,omitempty"`
	Color    string `json:"color,omitempty"`
	TextSize string `json:"textSize,omitempty"`
}

func (s *Sticky) Kind() Kind { return KindSticky }
func (s *Sticky) Clone() Object {
	c := *s
	return &c
}

// Shape geometry allow-list.
const (
	ShapeRectangle = "rectangle"
	ShapeEllipse   = "ellipse"
	ShapeDiamond   = "diamond"
	ShapeTriangle  = "triangle"
)

// ValidShapeTypes lists the drawable shape geometries.
var ValidShapeTypes = []string{ShapeRectangle, ShapeEllipse, ShapeDiamond, ShapeTriangle}

// Shape is a geometric shape, optionally labeled.
type Shape struct {
	Base
	ShapeType string `json:"shapeType,omitempty"`
	Text      string `json:"text,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (s *Shape) Kind() Kind { return KindShape }
func (s *Shape) Clone() Object {
	c := *s
	return &c
}

// Text is a free-standing text block.
type Text struct {
	Base
	Text     string `json:"text,omitempty"`
	TextSize string `json:"textSize,omitempty"`
	Color    string `json:"color,omitempty"`
}

func (t *Text) Kind() Kind { return KindText }
func (t *Text) Clone() Object {
	c := *t
	return &c
}

// Endpoint is one end of a connector. It is either bound to a named port on
// a live object (ObjectID non-empty) or a free world point, never both.
// Detaching a bound endpoint freezes its last resolved position into Point.
type Endpoint struct {
	ObjectID string      `json:"objectId,omitempty"`
	Port     string      `json:"port,omitempty"`
	Point    *geom.Point `json:"point,omitempty"`
}

// Bound reports whether the endpoint references an object.
func (e Endpoint) Bound() bool { return e.ObjectID != "" }

// clone deep-copies the endpoint's free point.
func (e Endpoint) clone() Endpoint {
	if e.Point != nil {
		p := *e.Point
		e.Point = &p
	}
	return e
}

// Connector style allow-list.
const (
	StyleStraight = "straight"
	StyleElbow    = "elbow"
	StyleCurved   = "curved"
)

// ValidConnectorStyles lists the connector routing styles.
var ValidConnectorStyles = []string{StyleStraight, StyleElbow, StyleCurved}

// Connector is a directed link between two endpoints. Connectors have no
// meaningful box of their own: x/y/width/height are derived for hit-testing
// only, and resize/rotate are rejected for them.
type Connector struct {
	Base
	From  Endpoint `json:"from"`
	To    Endpoint `json:"to"`
	Style string   `json:"style,omitempty"`
	Label string   `json:"label,omitempty"`
}

func (c *Connector) Kind() Kind { return KindConnector }
func (c *Connector) Clone() Object {
	n := *c
	n.From = c.From.clone()
	n.To = c.To.clone()
	return &n
}

// Frame is a container object. Children is the ordered list of ids whose
// ParentFrameID points back at this frame; the containment synchronizer
// keeps the two sides of that relation equal.
type Frame struct {
	Base
	Title    string   `json:"title,omitempty"`
	Children []string `json:"children,omitempty"`
}

func (f *Frame) Kind() Kind { return KindFrame }
func (f *Frame) Clone() Object {
	n := *f
	n.Children = append([]string(nil), f.Children...)
	return &n
}

// HasChild reports whether id is in the frame's children list.
func (f *Frame) HasChild(id string) bool {
	for _, c := range f.Children {
		if c == id {
			return true
		}
	}
	return false
}

// AddChild appends id if absent.
func (f *Frame) AddChild(id string) {
	if !f.HasChild(id) {
		f.Children = append(f.Children, id)
	}
}

// RemoveChild deletes id from the children list, preserving order.
func (f *Frame) RemoveChild(id string) {
	for i, c := range f.Children {
		if c == id {
			f.Children = append(f.Children[:i], f.Children[i+1:]...)
			return
		}
	}
}

// Table is a simple grid of titled cells.
type Table struct {
	Base
	Title string   `json:"title,omitempty"`
	Rows  int      `json:"rows,omitempty"`
	Cols  int      `json:"cols,omitempty"`
	Cells []string `json:"cells,omitempty"`
}

func (t *Table) Kind() Kind { return KindTable }
func (t *Table) Clone() Object {
	n := *t
	n.Cells = append([]string(nil), t.Cells...)
	return &n
}
