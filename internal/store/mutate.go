package store

import (
	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/geom"
)

// Move translates the objects by (dx, dy) in one transaction. If any id is
// a frame, its descendants join the move set, so frame contents travel with
// the frame. Containment re-syncs only after every position is applied;
// re-parenting mid-gesture would briefly attach objects to frames they are
// merely passing over. Empty id sets and zero deltas are no-ops.
func (s *Store) Move(ids []string, dx, dy float64) error {
	if len(ids) == 0 || (dx == 0 && dy == 0) {
		return nil
	}
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		moveSet := descendants(tx, ids)

		for _, id := range moveSet {
			obj, ok := tx.Get(id)
			if !ok {
				continue
			}
			shift(obj, dx, dy)
			tx.Set(obj)
		}
		syncContainmentAll(tx, moveSet)
		return nil
	})
}

// shift translates an object. A connector moves its free points; bound
// endpoints stay put because they track their object, not the connector.
func shift(obj board.Object, dx, dy float64) {
	b := obj.Common()
	b.X += dx
	b.Y += dy
	if c, ok := obj.(*board.Connector); ok {
		for _, e := range []*board.Endpoint{&c.From, &c.To} {
			if !e.Bound() && e.Point != nil {
				e.Point.X += dx
				e.Point.Y += dy
			}
		}
	}
}

// Resize sets the object's box, clamped to the minimum size. Connectors
// have no resizable box and return UnsupportedError; missing ids are
// silently ignored.
func (s *Store) Resize(id string, x, y, w, h float64) error {
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		obj, ok := tx.Get(id)
		if !ok {
			return nil
		}
		if obj.Kind() == board.KindConnector {
			return &UnsupportedError{Op: "resize", Kind: obj.Kind()}
		}
		w, h = board.ClampSize(w, h)
		obj.Common().SetRect(geom.Rect{X: x, Y: y, Width: w, Height: h})
		tx.Set(obj)
		syncContainment(tx, id)
		return nil
	})
}

// Rotate turns the objects by deltaAngle about pivot. A nil pivot defaults
// to the center of the selection's combined bounding box. Each object's
// center is rotated about the pivot and its own rotation incremented;
// connectors are skipped entirely.
func (s *Store) Rotate(ids []string, deltaAngle float64, pivot *geom.Point) error {
	if len(ids) == 0 || deltaAngle == 0 {
		return nil
	}
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		var targets []board.Object
		var boxes []geom.Rect
		for _, id := range ids {
			obj, ok := tx.Get(id)
			if !ok || obj.Kind() == board.KindConnector {
				continue
			}
			targets = append(targets, obj)
			b := obj.Common()
			boxes = append(boxes, geom.BoundingBox(b.Rect(), b.Rotation))
		}
		if len(targets) == 0 {
			return nil
		}

		p := geom.Union(boxes).Center()
		if pivot != nil {
			p = *pivot
		}

		synced := make([]string, 0, len(targets))
		for _, obj := range targets {
			b := obj.Common()
			center := geom.RotatePoint(b.Rect().Center(), p, deltaAngle)
			b.X = center.X - b.Width/2
			b.Y = center.Y - b.Height/2
			b.Rotation = geom.NormalizeAngle(b.Rotation + deltaAngle)
			tx.Set(obj)
			synced = append(synced, b.ID)
		}
		syncContainmentAll(tx, synced)
		return nil
	})
}

// PurgeRefs rewrites every surviving object that references a doomed id:
// connectors get their bound endpoints frozen to the referenced object's
// last resolved position, and frames drop doomed ids from their children
// lists. The batch agent calls this while committing its deletions into
// the live document, where concurrent edits may hold references its
// mirror never saw. Callers still remove the doomed entries themselves.
func PurgeRefs(tx doc.Tx, doomed map[string]bool) {
	detachConnectors(tx, doomed)
	for _, id := range tx.Order() {
		if doomed[id] {
			continue
		}
		obj, ok := tx.Get(id)
		if !ok {
			continue
		}
		if frame, isFrame := obj.(*board.Frame); isFrame {
			changed := false
			for childID := range doomed {
				if frame.HasChild(childID) {
					frame.RemoveChild(childID)
					changed = true
				}
			}
			if changed {
				tx.Set(frame)
			}
		}
		if b := obj.Common(); b.ParentFrameID != "" && doomed[b.ParentFrameID] {
			b.ParentFrameID = ""
			tx.Set(obj)
		}
	}
}

// Delete removes the objects, expanding frames to their descendants. In a
// single pass inside one transaction it (1) freezes surviving connectors
// that reference doomed objects, then (2) removes object map entries,
// z-order entries and surviving parents' children links. Descendants die
// with their frame, so no child ever outlives its parent here.
func (s *Store) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		doomedList := descendants(tx, ids)
		doomed := make(map[string]bool, len(doomedList))
		for _, id := range doomedList {
			doomed[id] = true
		}

		detachConnectors(tx, doomed)

		for _, id := range doomedList {
			obj, ok := tx.Get(id)
			if !ok {
				continue
			}
			b := obj.Common()

			// Unlink from a surviving parent frame. Doomed parents need
			// no bookkeeping; they disappear in this same pass.
			if b.ParentFrameID != "" && !doomed[b.ParentFrameID] {
				if parent, ok := tx.Get(b.ParentFrameID); ok {
					if frame, isFrame := parent.(*board.Frame); isFrame {
						frame.RemoveChild(id)
						tx.Set(frame)
					}
				}
			}

			tx.Delete(id)
			tx.RemoveOrder(id)
		}
		return nil
	})
}
