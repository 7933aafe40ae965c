// Package doc provides the replicated document handle the rest of the core
// mutates. The Document interface is the only contract the object store and
// the batch agent depend on: an atomic transact primitive, a get/set/delete
// object map keyed by id, and an ordered z-order list.
//
// Replica is the in-memory implementation: it keeps an origin-tagged
// transaction log with inverse information (consumed by the undo manager)
// and merges transactions from other replicas with last-writer-wins
// semantics per leaf field. Every component receives its Document as an
// explicit handle at construction; there is no package-level document.
package doc

import (
	"github.com/mwhite-io/easel/internal/board"
)

// Origin tags the logical activity that produced a transaction. The undo
// manager coalesces consecutive transactions sharing a non-baseline origin
// into one undo step.
type Origin string

const (
	// OriginBaseline marks one-shot mutations; each is its own undo step.
	OriginBaseline Origin = "baseline"
	// OriginGesture marks a discrete interactive gesture (click-create,
	// delete key, paste).
	OriginGesture Origin = "gesture"
	// OriginDrag marks a continuous drag; the many transactions of one
	// drag collapse into a single undo step.
	OriginDrag Origin = "drag"
	// OriginTextEdit marks keystroke-granular text editing.
	OriginTextEdit Origin = "text-edit"
	// OriginAgent marks the batch agent's single commit.
	OriginAgent Origin = "agent"
	// OriginHistory marks transactions produced by undo/redo replay.
	// They are never grouped into new undo steps themselves.
	OriginHistory Origin = "history"
)

// Tx is the mutable view handed to a Transact callback. All writes through
// a Tx become observable together when the callback returns nil, and are
// discarded entirely when it returns an error.
type Tx interface {
	// Get returns a deep copy of the object, or false if absent.
	// Mutate the copy and Set it back; in-place edits are invisible.
	Get(id string) (board.Object, bool)
	// Set writes the object under its id.
	Set(obj board.Object)
	// Delete removes the object map entry. The z-order entry is separate;
	// callers remove it explicitly.
	Delete(id string)
	// Order returns a copy of the current z-order id list.
	Order() []string
	// PushOrder appends id to the end of the z-order (topmost).
	PushOrder(id string)
	// RemoveOrder deletes id from the z-order, a no-op if absent.
	RemoveOrder(id string)
}

// Document is the shared replicated document consumed by the object store
// and the batch agent. Implementations must make each Transact call one
// atomic, individually observable unit.
type Document interface {
	// Transact runs fn against a transactional view. On error nothing is
	// applied.
	Transact(origin Origin, fn func(tx Tx) error) error
	// Get returns a deep copy of an object, or false if absent.
	Get(id string) (board.Object, bool)
	// Order returns a copy of the z-order id list, bottom to top.
	Order() []string
	// Len returns the number of live objects.
	Len() int
	// Snapshot returns a point-in-time deep copy of the object map and
	// z-order. The copy never reflects later document changes.
	Snapshot() (map[string]board.Object, []string)
}
