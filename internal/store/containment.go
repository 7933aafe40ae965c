package store

import (
	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/geom"
)

// Containment synchronizer.
//
// After a structural mutation of an object, its parent frame is recomputed
// as the smallest-area frame whose rotated rectangle encloses all four of
// the object's rotated corners. Frames re-evaluate their membership when
// they move or resize, so the walk uses an explicit worklist rather than
// recursion; deeply nested frame trees stay stack-safe.

// syncContainment re-evaluates containment for id and, transitively, for
// every object a re-evaluated frame might have gained or lost. Connectors
// are excluded entirely. All reads and writes go through the enclosing
// transaction, so a multi-object mutation settles as one atomic unit.
func syncContainment(tx doc.Tx, id string) {
	syncContainmentAll(tx, []string{id})
}

// syncContainmentAll runs the synchronizer over a set of seed ids. Move
// uses this to defer re-parenting until every position in the gesture has
// been applied, avoiding transient mis-reparenting mid-move.
func syncContainmentAll(tx doc.Tx, seeds []string) {
	worklist := append([]string(nil), seeds...)
	visited := make(map[string]bool)

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		obj, ok := tx.Get(id)
		if !ok || obj.Kind() == board.KindConnector {
			continue
		}

		reparent(tx, obj)

		// A mutated frame can gain or lose children: every object
		// currently linked to it, plus every object its bounds now
		// cover, gets re-evaluated.
		if frame, isFrame := obj.(*board.Frame); isFrame {
			for _, memberID := range membershipCandidates(tx, frame) {
				if !visited[memberID] {
					worklist = append(worklist, memberID)
				}
			}
		}
	}
}

// reparent computes obj's enclosing frame and rewrites the parent/children
// links if the winner differs from the current parent. Writes happen only
// on change.
func reparent(tx doc.Tx, obj board.Object) {
	base := obj.Common()
	winner := enclosingFrame(tx, obj)

	winnerID := ""
	if winner != nil {
		winnerID = winner.ID
	}
	if winnerID == base.ParentFrameID {
		return
	}

	if old, ok := tx.Get(base.ParentFrameID); ok {
		if oldFrame, isFrame := old.(*board.Frame); isFrame {
			oldFrame.RemoveChild(base.ID)
			tx.Set(oldFrame)
		}
	}
	if winner != nil {
		// Re-read in case the winner was already written this pass.
		cur, _ := tx.Get(winner.ID)
		if newFrame, isFrame := cur.(*board.Frame); isFrame {
			newFrame.AddChild(base.ID)
			tx.Set(newFrame)
		}
	}
	base.ParentFrameID = winnerID
	tx.Set(obj)
}

// enclosingFrame returns the smallest-area frame whose rotated rectangle
// contains all four rotated corners of obj, or nil. The object itself and
// its own descendants are never candidates, which is what keeps the frame
// graph cycle-free.
func enclosingFrame(tx doc.Tx, obj board.Object) *board.Frame {
	base := obj.Common()
	blocked := descendantFrames(tx, base.ID)

	var winner *board.Frame
	for _, id := range tx.Order() {
		if id == base.ID || blocked[id] {
			continue
		}
		cand, ok := tx.Get(id)
		if !ok {
			continue
		}
		frame, isFrame := cand.(*board.Frame)
		if !isFrame {
			continue
		}
		if !geom.ContainsRotatedRect(frame.Rect(), frame.Rotation, base.Rect(), base.Rotation) {
			continue
		}
		if winner == nil || frame.Rect().Area() < winner.Rect().Area() {
			winner = frame
		}
	}
	return winner
}

// descendantFrames returns the ids of every frame below id in the
// containment tree. Non-frames never have descendants.
func descendantFrames(tx doc.Tx, id string) map[string]bool {
	out := make(map[string]bool)
	obj, ok := tx.Get(id)
	if !ok {
		return out
	}
	root, isFrame := obj.(*board.Frame)
	if !isFrame {
		return out
	}

	worklist := append([]string(nil), root.Children...)
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		if out[cur] {
			continue
		}
		child, ok := tx.Get(cur)
		if !ok {
			continue
		}
		if childFrame, isFrame := child.(*board.Frame); isFrame {
			out[cur] = true
			worklist = append(worklist, childFrame.Children...)
		}
	}
	return out
}

// descendants returns every object id transitively inside the frames of
// ids, frames included. Move and Delete expand their id sets through this.
func descendants(tx doc.Tx, ids []string) []string {
	seen := make(map[string]bool)
	var out []string
	worklist := append([]string(nil), ids...)
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if obj, ok := tx.Get(id); ok {
			if frame, isFrame := obj.(*board.Frame); isFrame {
				worklist = append(worklist, frame.Children...)
			}
		}
	}
	return out
}

// membershipCandidates lists ids a frame's re-evaluation must revisit: its
// current children plus every non-connector object its rotated bounds
// fully cover.
func membershipCandidates(tx doc.Tx, frame *board.Frame) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range frame.Children {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range tx.Order() {
		if id == frame.ID || seen[id] {
			continue
		}
		obj, ok := tx.Get(id)
		if !ok || obj.Kind() == board.KindConnector {
			continue
		}
		b := obj.Common()
		if geom.ContainsRotatedRect(frame.Rect(), frame.Rotation, b.Rect(), b.Rotation) {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
