package agent

import (
	"github.com/mwhite-io/easel/internal/board"
)

// summaryTextRunes caps text previews in the compact projection. The
// agent reads the projection to orient itself; full content stays one
// update_object away, so long bodies are truncated rather than echoed.
const summaryTextRunes = 160

// EndpointState is a connector endpoint in the compact projection.
type EndpointState struct {
	ObjectID string   `json:"objectId,omitempty"`
	Port     string   `json:"port,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

// ObjectState is one object in the compact projection.
type ObjectState struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Rotation      float64 `json:"rotation,omitempty"`
	ParentFrameID string  `json:"parentFrameId,omitempty"`

	Text      string         `json:"text,omitempty"`
	Title     string         `json:"title,omitempty"`
	Color     string         `json:"color,omitempty"`
	ShapeType string         `json:"shapeType,omitempty"`
	Style     string         `json:"style,omitempty"`
	Label     string         `json:"label,omitempty"`
	Children  []string       `json:"children,omitempty"`
	Rows      int            `json:"rows,omitempty"`
	Cols      int            `json:"cols,omitempty"`
	From      *EndpointState `json:"from,omitempty"`
	To        *EndpointState `json:"to,omitempty"`
}

// BoardState is the read-only compact projection of the whole board, in
// paint order bottom to top.
type BoardState struct {
	Objects []ObjectState `json:"objects"`
	Count   int           `json:"count"`
}

func boardState(objects map[string]board.Object, order []string) BoardState {
	states := make([]ObjectState, 0, len(order))
	for _, id := range order {
		obj, ok := objects[id]
		if !ok {
			continue
		}
		states = append(states, summarize(obj))
	}
	return BoardState{Objects: states, Count: len(states)}
}

// summarize projects one object into its compact state.
func summarize(obj board.Object) ObjectState {
	b := obj.Common()
	s := ObjectState{
		ID:            b.ID,
		Type:          string(obj.Kind()),
		X:             b.X,
		Y:             b.Y,
		Width:         b.Width,
		Height:        b.Height,
		Rotation:      b.Rotation,
		ParentFrameID: b.ParentFrameID,
	}
	switch o := obj.(type) {
	case *board.Sticky:
		s.Text = capRunes(o.Text, summaryTextRunes)
		s.Color = o.Color
	case *board.Shape:
		s.Text = capRunes(o.Text, summaryTextRunes)
		s.Color = o.Color
		s.ShapeType = o.ShapeType
	case *board.Text:
		s.Text = capRunes(o.Text, summaryTextRunes)
		s.Color = o.Color
	case *board.Connector:
		s.Style = o.Style
		s.Label = capRunes(o.Label, summaryTextRunes)
		s.From = endpointState(o.From)
		s.To = endpointState(o.To)
	case *board.Frame:
		s.Title = o.Title
		if len(o.Children) > 0 {
			s.Children = append([]string(nil), o.Children...)
		}
	case *board.Table:
		s.Title = o.Title
		s.Rows = o.Rows
		s.Cols = o.Cols
	}
	return s
}

func endpointState(e board.Endpoint) *EndpointState {
	if e.Bound() {
		return &EndpointState{ObjectID: e.ObjectID, Port: e.Port}
	}
	if e.Point != nil {
		x, y := e.Point.X, e.Point.Y
		return &EndpointState{X: &x, Y: &y}
	}
	return nil
}
