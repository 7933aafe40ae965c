// Package history groups the replica's origin-tagged transactions into undo
// steps. It decides only the step boundaries; inversion itself is the
// replica's native Revert/Reapply replay.
//
// Grouping rule: consecutive transactions sharing the same non-baseline
// origin coalesce into one step while that origin stays open. The step
// closes when the origin changes or reverts to baseline. Baseline
// transactions are each their own step.
package history

import (
	"github.com/mwhite-io/easel/internal/doc"
)

// step is one undoable unit: a coalesced run of transactions, stored in
// commit order.
type step []doc.TxRecord

// Manager tracks undo/redo steps for one replica. It subscribes to the
// replica's commit stream; every locally committed non-history transaction
// lands in a step, and any new local work clears the redo stack.
//
// Single-threaded like everything else per participant.
type Manager struct {
	rep *doc.Replica

	steps      []step // closed steps, oldest first
	open       step   // currently coalescing run, nil if none
	openOrigin doc.Origin
	redo       []step

	replaying bool // true while Undo/Redo drive the replica
}

// New creates a Manager observing rep's commits.
func New(rep *doc.Replica) *Manager {
	m := &Manager{rep: rep}
	rep.OnCommit(m.observe)
	return m
}

func (m *Manager) observe(rec doc.TxRecord) {
	if rec.Origin == doc.OriginHistory || m.replaying {
		return
	}
	m.redo = nil

	if rec.Origin == doc.OriginBaseline {
		m.closeOpen()
		m.steps = append(m.steps, step{rec})
		return
	}
	if m.open != nil && m.openOrigin != rec.Origin {
		m.closeOpen()
	}
	m.open = append(m.open, rec)
	m.openOrigin = rec.Origin
}

func (m *Manager) closeOpen() {
	if m.open != nil {
		m.steps = append(m.steps, m.open)
		m.open = nil
	}
}

// Checkpoint force-closes the open step. Gesture teardown calls this when
// an interaction ends without a trailing baseline transaction.
func (m *Manager) Checkpoint() {
	m.closeOpen()
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	return m.open != nil || len(m.steps) > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	return len(m.redo) > 0
}

// Depth returns the number of closed undo steps plus the open one.
func (m *Manager) Depth() int {
	n := len(m.steps)
	if m.open != nil {
		n++
	}
	return n
}

// Undo reverts the most recent step's transactions in reverse commit order.
// Returns false if there is nothing to undo.
func (m *Manager) Undo() (bool, error) {
	m.closeOpen()
	if len(m.steps) == 0 {
		return false, nil
	}
	s := m.steps[len(m.steps)-1]
	m.steps = m.steps[:len(m.steps)-1]

	m.replaying = true
	defer func() { m.replaying = false }()
	for i := len(s) - 1; i >= 0; i-- {
		if err := m.rep.Revert(s[i]); err != nil {
			return false, err
		}
	}
	m.redo = append(m.redo, s)
	return true, nil
}

// Redo replays the most recently undone step forward. Returns false if
// there is nothing to redo.
func (m *Manager) Redo() (bool, error) {
	if len(m.redo) == 0 {
		return false, nil
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	m.replaying = true
	defer func() { m.replaying = false }()
	for _, rec := range s {
		if err := m.rep.Reapply(rec); err != nil {
			return false, err
		}
	}
	m.steps = append(m.steps, s)
	return true, nil
}
