package agent

import (
	"math"
	"sort"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/geom"
	"github.com/mwhite-io/easel/internal/store"
)

// Frame post-processing constants. The margins mirror what a human
// would leave when framing a cluster by hand; the extra top margin
// clears the frame's own title bar.
const (
	fitMargin      = 48.0
	fitTitleMargin = 72.0
	gridGap        = 24.0
)

// postProcessFrames runs the deterministic cleanup over frames created
// in this session, before anything reaches the live document. Agents
// routinely emit template layouts with sloppy geometry: an outer frame
// too small for its quadrants, or category frames stacked on top of
// each other. Two passes fix that, touching newly created frames only:
//
//  1. Outer fit: when an outer frame is identifiable among the titled
//     new frames, it is resized to the union of the other new frames'
//     bounds plus a margin.
//  2. Grid relayout: when a template's category-titled frames overlap,
//     they are relaid into a non-overlapping grid anchored at the same
//     centroid, ordered by the template's own slot order.
func (r *Runner) postProcessFrames() {
	frames := r.newFrames()
	if len(frames) == 0 {
		return
	}

	outer := r.pickOuter(frames)
	if outer != nil {
		r.fitOuter(outer, frames)
	}
	r.relayGroups(frames, outer)
}

// newFrames returns the session's created frames still live in the
// mirror, in z-order.
func (r *Runner) newFrames() []*board.Frame {
	var out []*board.Frame
	for _, id := range r.mirror.order {
		if !r.created[id] {
			continue
		}
		obj, ok := r.mirror.Get(id)
		if !ok {
			continue
		}
		if f, isFrame := obj.(*board.Frame); isFrame {
			out = append(out, f)
		}
	}
	return out
}

// pickOuter identifies the frame meant to wrap the others, if any: a
// new frame titled like a template board ("SWOT Analysis"), or failing
// that the geometrically largest titled frame when at least four other
// titled new frames exist. A bare category set has no outer frame.
func (r *Runner) pickOuter(frames []*board.Frame) *board.Frame {
	var titled []*board.Frame
	for _, f := range frames {
		if f.Title == "" {
			continue
		}
		if _, ok := r.catalog.MatchBoardTitle(f.Title); ok {
			return f
		}
		titled = append(titled, f)
	}
	if len(titled) < 5 {
		return nil
	}
	largest := titled[0]
	for _, f := range titled[1:] {
		if f.Width*f.Height > largest.Width*largest.Height {
			largest = f
		}
	}
	return largest
}

// fitOuter resizes outer to the union of the other new frames' bounds
// plus the fit margins.
func (r *Runner) fitOuter(outer *board.Frame, frames []*board.Frame) {
	var boxes []geom.Rect
	for _, f := range frames {
		if f.ID == outer.ID {
			continue
		}
		boxes = append(boxes, geom.BoundingBox(f.Rect(), f.Rotation))
	}
	if len(boxes) == 0 {
		return
	}
	u := geom.Union(boxes)
	if err := r.store.Resize(outer.ID,
		u.X-fitMargin,
		u.Y-fitTitleMargin,
		u.Width+2*fitMargin,
		u.Height+fitMargin+fitTitleMargin,
	); err != nil {
		r.log.Warn("agent.postprocess.fit", "id", outer.ID, "err", err)
	}
}

// relayGroups finds category-titled frame groups per template and
// relays each overlapping group into its grid.
func (r *Runner) relayGroups(frames []*board.Frame, outer *board.Frame) {
	type member struct {
		frame *board.Frame
		slot  int
	}
	groups := make(map[string][]member)
	for _, f := range frames {
		if outer != nil && f.ID == outer.ID {
			continue
		}
		tplName, slot, ok := r.catalog.Category(f.Title)
		if !ok {
			continue
		}
		groups[tplName] = append(groups[tplName], member{frame: f, slot: slot})
	}

	for _, tplName := range r.catalog.Names() {
		group := groups[tplName]
		rects := make([]geom.Rect, len(group))
		for i, m := range group {
			rects[i] = m.frame.Rect()
		}
		if len(group) < 2 || !anyOverlap(rects) {
			continue
		}
		tpl, _ := r.catalog.Get(tplName)

		// Template slot order, not creation order, decides grid cells:
		// Strengths always lands top-left regardless of emission order.
		sort.Slice(group, func(i, j int) bool {
			if group[i].slot != group[j].slot {
				return group[i].slot < group[j].slot
			}
			return group[i].frame.ID < group[j].frame.ID
		})

		var cellW, cellH, cx, cy float64
		for _, m := range group {
			cellW = math.Max(cellW, m.frame.Width)
			cellH = math.Max(cellH, m.frame.Height)
			c := m.frame.Rect().Center()
			cx += c.X
			cy += c.Y
		}
		n := float64(len(group))
		cx /= n
		cy /= n

		cols := tpl.Columns
		rows := (len(group) + cols - 1) / cols
		totalW := float64(cols)*cellW + float64(cols-1)*gridGap
		totalH := float64(rows)*cellH + float64(rows-1)*gridGap
		originX := cx - totalW/2
		originY := cy - totalH/2

		for i, m := range group {
			row, col := i/cols, i%cols
			cellX := originX + float64(col)*(cellW+gridGap)
			cellY := originY + float64(row)*(cellH+gridGap)
			// Center each frame in its cell; sizes are untouched. The
			// write is an absolute position patch, not a move: moving a
			// frame would carry along frames that happened to nest while
			// the group still overlapped.
			x := cellX + (cellW-m.frame.Width)/2
			y := cellY + (cellH-m.frame.Height)/2
			if err := r.store.Update(m.frame.ID, store.Patch{X: &x, Y: &y}); err != nil {
				r.log.Warn("agent.postprocess.grid", "id", m.frame.ID, "err", err)
			}
		}
	}
}

func anyOverlap(rects []geom.Rect) bool {
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Intersects(rects[j]) {
				return true
			}
		}
	}
	return false
}
