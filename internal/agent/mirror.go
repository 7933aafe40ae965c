package agent

import (
	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
)

// mirror is the runner's private point-in-time copy of the live document:
// a plain object map plus a z-order list, with none of the replica's
// stamp or log machinery. It implements doc.Document so the object
// store's mutation logic (clamping, containment sync, connector freeze)
// runs against it unchanged.
//
// onCommit reports each transaction's written and deleted ids so the
// runner can maintain its diff sets.
type mirror struct {
	objects  map[string]board.Object
	order    []string
	onCommit func(sets, deletes []string)
}

func newMirror(live doc.Document) *mirror {
	objects, order := live.Snapshot()
	return &mirror{objects: objects, order: order}
}

func (m *mirror) Get(id string) (board.Object, bool) {
	obj, ok := m.objects[id]
	if !ok {
		return nil, false
	}
	return obj.Clone(), true
}

func (m *mirror) Order() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *mirror) Len() int { return len(m.objects) }

func (m *mirror) Snapshot() (map[string]board.Object, []string) {
	objects := make(map[string]board.Object, len(m.objects))
	for id, obj := range m.objects {
		objects[id] = obj.Clone()
	}
	return objects, m.Order()
}

func (m *mirror) Transact(_ doc.Origin, fn func(tx doc.Tx) error) error {
	tx := &mirrorTx{m: m, pending: make(map[string]board.Object)}
	if err := fn(tx); err != nil {
		return err
	}

	var sets, deletes []string
	for id, obj := range tx.pending {
		if obj == nil {
			if _, existed := m.objects[id]; existed {
				delete(m.objects, id)
				deletes = append(deletes, id)
			}
			continue
		}
		m.objects[id] = obj
		sets = append(sets, id)
	}
	if tx.orderTouched {
		m.order = tx.order
	}
	if m.onCommit != nil && (len(sets) > 0 || len(deletes) > 0) {
		m.onCommit(sets, deletes)
	}
	return nil
}

// mirrorTx stages writes; nothing reaches the mirror until the callback
// returns nil. A nil pending entry marks a delete.
type mirrorTx struct {
	m            *mirror
	pending      map[string]board.Object
	order        []string
	orderTouched bool
}

func (tx *mirrorTx) Get(id string) (board.Object, bool) {
	if obj, staged := tx.pending[id]; staged {
		if obj == nil {
			return nil, false
		}
		return obj.Clone(), true
	}
	return tx.m.Get(id)
}

func (tx *mirrorTx) Set(obj board.Object) {
	tx.pending[obj.Common().ID] = obj.Clone()
}

func (tx *mirrorTx) Delete(id string) {
	tx.pending[id] = nil
}

func (tx *mirrorTx) Order() []string {
	src := tx.m.order
	if tx.orderTouched {
		src = tx.order
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (tx *mirrorTx) touchOrder() {
	if !tx.orderTouched {
		tx.order = tx.m.Order()
		tx.orderTouched = true
	}
}

func (tx *mirrorTx) PushOrder(id string) {
	tx.touchOrder()
	tx.order = append(tx.order, id)
}

func (tx *mirrorTx) RemoveOrder(id string) {
	tx.touchOrder()
	for i, cur := range tx.order {
		if cur == id {
			tx.order = append(tx.order[:i], tx.order[i+1:]...)
			return
		}
	}
}
