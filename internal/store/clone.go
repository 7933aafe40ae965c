package store

import (
	"fmt"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/geom"
)

// DefaultPasteOffset is the translation applied when neither an absolute
// position nor an explicit offset is given.
const DefaultPasteOffset = 16.0

// SerializeSelection captures the selected objects as a self-contained
// byte payload. Cross-references leaving the selection are collapsed at
// clone time: connector endpoints bound to outside objects freeze to their
// currently resolved points, children entries and parent links pointing
// outside are dropped. The payload therefore pastes cleanly into any board,
// including one where the outside objects no longer exist.
func (s *Store) SerializeSelection(ids []string) ([]byte, error) {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var objs []board.Object
	for _, id := range s.doc.Order() { // z-order keeps paste stacking stable
		if !selected[id] {
			continue
		}
		obj, ok := s.doc.Get(id)
		if !ok {
			continue
		}
		collapseExternalRefs(s.doc.Get, obj, selected)
		objs = append(objs, obj)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("serialize selection: no live objects in selection")
	}
	return board.MarshalObjects(objs)
}

// collapseExternalRefs rewrites obj's outbound references so none point
// outside the selection.
func collapseExternalRefs(get getter, obj board.Object, selected map[string]bool) {
	b := obj.Common()
	if b.ParentFrameID != "" && !selected[b.ParentFrameID] {
		b.ParentFrameID = ""
	}
	switch o := obj.(type) {
	case *board.Connector:
		for _, e := range []*board.Endpoint{&o.From, &o.To} {
			if e.Bound() && !selected[e.ObjectID] {
				frozen := resolveEndpoint(get, *e)
				*e = board.Endpoint{Point: &frozen}
			}
		}
	case *board.Frame:
		kept := o.Children[:0]
		for _, childID := range o.Children {
			if selected[childID] {
				kept = append(kept, childID)
			}
		}
		o.Children = kept
	}
}

// PasteOptions positions pasted content. At places the selection's combined
// bounding-box center at an absolute point; Offset translates relative to
// the original position. At wins when both are set; neither defaults to a
// small down-right offset so a paste never lands exactly on its source.
type PasteOptions struct {
	At     *geom.Point
	Offset *geom.Point
}

// PasteSerialized materializes a payload from SerializeSelection as fresh
// objects: every id is remapped through an old-to-new map, internal
// cross-references follow it, and the clones are appended to the z-order
// and containment-synced in one transaction.
func (s *Store) PasteSerialized(data []byte, opts PasteOptions) ([]board.Object, error) {
	objs, err := board.UnmarshalObjects(data)
	if err != nil {
		return nil, fmt.Errorf("paste: %w", err)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("paste: empty payload")
	}

	idMap := make(map[string]string, len(objs))
	for _, obj := range objs {
		idMap[obj.Common().ID] = s.newID()
	}

	dx, dy := pasteDelta(objs, opts)

	clones := make([]board.Object, 0, len(objs))
	for _, obj := range objs {
		clone := obj.Clone()
		remapIDs(clone, idMap)
		shift(clone, dx, dy)
		b := clone.Common()
		b.CreatedBy = s.actor
		b.Normalize()
		clones = append(clones, clone)
	}

	err = s.doc.Transact(s.origin, func(tx doc.Tx) error {
		var synced []string
		for _, clone := range clones {
			tx.Set(clone)
			tx.PushOrder(clone.Common().ID)
			if clone.Kind() != board.KindConnector {
				synced = append(synced, clone.Common().ID)
			}
		}
		syncContainmentAll(tx, synced)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("store.paste", "count", len(clones))
	return clones, nil
}

// pasteDelta computes the translation for the whole pasted selection.
func pasteDelta(objs []board.Object, opts PasteOptions) (float64, float64) {
	if opts.At != nil {
		boxes := make([]geom.Rect, len(objs))
		for i, obj := range objs {
			b := obj.Common()
			boxes[i] = geom.BoundingBox(b.Rect(), b.Rotation)
		}
		center := geom.Union(boxes).Center()
		return opts.At.X - center.X, opts.At.Y - center.Y
	}
	if opts.Offset != nil {
		return opts.Offset.X, opts.Offset.Y
	}
	return DefaultPasteOffset, DefaultPasteOffset
}

// remapIDs rewrites obj's own id and every internal cross-reference through
// idMap. References not in the map were already collapsed at serialize
// time; any straggler is dropped rather than left dangling in the old id
// space.
func remapIDs(obj board.Object, idMap map[string]string) {
	b := obj.Common()
	b.ID = idMap[b.ID]
	if b.ParentFrameID != "" {
		b.ParentFrameID = idMap[b.ParentFrameID] // empty when unmapped
	}
	switch o := obj.(type) {
	case *board.Connector:
		for _, e := range []*board.Endpoint{&o.From, &o.To} {
			if !e.Bound() {
				continue
			}
			if newID, ok := idMap[e.ObjectID]; ok {
				e.ObjectID = newID
			} else {
				pt := geom.Point{}
				if e.Point != nil {
					pt = *e.Point
				}
				*e = board.Endpoint{Point: &pt}
			}
		}
	case *board.Frame:
		kept := o.Children[:0]
		for _, childID := range o.Children {
			if newID, ok := idMap[childID]; ok {
				kept = append(kept, newID)
			}
		}
		o.Children = kept
	}
}

// Duplicate clones the selection in place with a relative offset. A zero
// offset falls back to the default paste offset.
func (s *Store) Duplicate(ids []string, dx, dy float64) ([]board.Object, error) {
	data, err := s.SerializeSelection(ids)
	if err != nil {
		return nil, err
	}
	opts := PasteOptions{}
	if dx != 0 || dy != 0 {
		opts.Offset = &geom.Point{X: dx, Y: dy}
	}
	return s.PasteSerialized(data, opts)
}
