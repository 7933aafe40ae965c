package store

import (
	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/geom"
)

// Connector resolver.
//
// A bound endpoint resolves dynamically: the referenced object's named port
// is computed from its current unrotated box and rotated about its center,
// so the endpoint tracks every move and rotation without any stored state.
// A free endpoint is just its literal point. When a referenced object is
// deleted, the binding is cleared and the last resolved position frozen in
// as a free point.

// getter abstracts tx.Get / doc.Get so resolution works inside and outside
// transactions.
type getter func(id string) (board.Object, bool)

// validateEndpoint checks a bound endpoint against the document view it is
// about to enter: the referenced object must be live and must not itself
// be a connector. Nil and free endpoints pass.
func validateEndpoint(get getter, e *board.Endpoint) error {
	if e == nil || !e.Bound() {
		return nil
	}
	obj, ok := get(e.ObjectID)
	if !ok {
		return &MissingEndpointError{ID: e.ObjectID}
	}
	if obj.Kind() == board.KindConnector {
		return &UnsupportedError{Op: "anchor", Kind: board.KindConnector}
	}
	return nil
}

// resolveEndpoint returns the concrete world position of an endpoint. A
// dangling binding (object gone, no frozen point) resolves to the zero
// point; create, rebind and delete all guard against that case persisting.
func resolveEndpoint(get getter, e board.Endpoint) geom.Point {
	if e.Bound() {
		if obj, ok := get(e.ObjectID); ok {
			return endpointPortPosition(obj, e.Port)
		}
	}
	if e.Point != nil {
		return *e.Point
	}
	return geom.Point{}
}

// endpointPortPosition resolves a port name against an object, falling back
// to the object's center for names outside the 8-port set.
func endpointPortPosition(obj board.Object, port string) geom.Point {
	b := obj.Common()
	if !geom.ValidPort(port) {
		return b.Rect().Center()
	}
	return geom.PortPosition(b.Rect(), b.Rotation, port)
}

// ResolveConnector returns the current world positions of a connector's two
// endpoints. ok is false if id is missing or not a connector.
func (s *Store) ResolveConnector(id string) (from, to geom.Point, ok bool) {
	obj, found := s.doc.Get(id)
	if !found {
		return geom.Point{}, geom.Point{}, false
	}
	c, isConnector := obj.(*board.Connector)
	if !isConnector {
		return geom.Point{}, geom.Point{}, false
	}
	return resolveEndpoint(s.doc.Get, c.From), resolveEndpoint(s.doc.Get, c.To), true
}

// fitConnectorBox derives the connector's cosmetic bounding box from its
// resolved endpoints. The box exists for hit-testing only; resolution never
// reads it.
func fitConnectorBox(tx doc.Tx, c *board.Connector) {
	from := resolveEndpoint(tx.Get, c.From)
	to := resolveEndpoint(tx.Get, c.To)
	minX, maxX := from.X, to.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := from.Y, to.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	c.X, c.Y = minX, minY
	c.Width, c.Height = maxX-minX, maxY-minY
}

// detachConnectors rewrites every surviving connector that references a
// to-be-deleted object: the binding is cleared and the endpoint frozen at
// the referenced object's last on-screen port position. Must run inside the
// delete transaction, before the referenced objects disappear.
func detachConnectors(tx doc.Tx, doomed map[string]bool) {
	for _, id := range tx.Order() {
		if doomed[id] {
			continue
		}
		obj, ok := tx.Get(id)
		if !ok {
			continue
		}
		c, isConnector := obj.(*board.Connector)
		if !isConnector {
			continue
		}

		changed := false
		for _, e := range []*board.Endpoint{&c.From, &c.To} {
			if e.Bound() && doomed[e.ObjectID] {
				frozen := resolveEndpoint(tx.Get, *e)
				*e = board.Endpoint{Point: &frozen}
				changed = true
			}
		}
		if changed {
			tx.Set(c)
		}
	}
}

// GetAttachableAtPoint returns the topmost non-connector object whose
// nearest port lies within AttachRadius of the query point. Objects in
// exclude are skipped; the attach affordance uses that to ignore the
// connector being drawn and its source object.
func (s *Store) GetAttachableAtPoint(x, y float64, exclude []string) (board.Object, bool) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	query := geom.Point{X: x, Y: y}

	order := s.doc.Order()
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if excluded[id] {
			continue
		}
		obj, ok := s.doc.Get(id)
		if !ok || obj.Kind() == board.KindConnector {
			continue
		}
		b := obj.Common()
		_, pos := geom.ClosestPort(b.Rect(), b.Rotation, query)
		if geom.Distance(query, pos) <= AttachRadius {
			return obj, true
		}
	}
	return nil, false
}
