package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/geom"
)

func TestClampSize(t *testing.T) {
	w, h := ClampSize(0, -5)
	assert.Equal(t, MinSize, w)
	assert.Equal(t, MinSize, h)

	w, h = ClampSize(100, 200)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 200.0, h)
}

func TestBaseNormalize(t *testing.T) {
	b := Base{Width: 1, Height: 5000, Rotation: 725}
	b.Normalize()
	assert.Equal(t, MinSize, b.Width)
	assert.Equal(t, 5000.0, b.Height)
	assert.Equal(t, 5.0, b.Rotation)
}

func TestBaseRectRoundTrip(t *testing.T) {
	b := Base{X: 1, Y: 2, Width: 30, Height: 40}
	r := b.Rect()
	assert.Equal(t, geom.Rect{X: 1, Y: 2, Width: 30, Height: 40}, r)

	b.SetRect(geom.Rect{X: 9, Y: 8, Width: 70, Height: 60})
	assert.Equal(t, 9.0, b.X)
	assert.Equal(t, 60.0, b.Height)
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		obj  Object
		want Kind
	}{
		{&Sticky{}, KindSticky},
		{&Shape{}, KindShape},
		{&Text{}, KindText},
		{&Connector{}, KindConnector},
		{&Frame{}, KindFrame},
		{&Table{}, KindTable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.obj.Kind())
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Run("frame children", func(t *testing.T) {
		f := &Frame{Title: "plan", Children: []string{"a", "b"}}
		c := f.Clone().(*Frame)
		c.Children[0] = "mutated"
		c.AddChild("c")
		assert.Equal(t, []string{"a", "b"}, f.Children)
	})

	t.Run("connector free point", func(t *testing.T) {
		orig := &Connector{
			From: Endpoint{Point: &geom.Point{X: 1, Y: 2}},
			To:   Endpoint{ObjectID: "x", Port: geom.PortE},
		}
		c := orig.Clone().(*Connector)
		c.From.Point.X = 99
		assert.Equal(t, 1.0, orig.From.Point.X)
	})

	t.Run("clone keeps identity fields", func(t *testing.T) {
		s := &Sticky{Base: Base{ID: "s1", X: 5}, Text: "hi", Color: ColorBlue}
		c := s.Clone().(*Sticky)
		assert.Equal(t, "s1", c.ID)
		assert.Equal(t, "hi", c.Text)
	})
}

func TestEndpointBound(t *testing.T) {
	assert.True(t, Endpoint{ObjectID: "a", Port: geom.PortN}.Bound())
	assert.False(t, Endpoint{Point: &geom.Point{}}.Bound())
	assert.False(t, Endpoint{}.Bound())
}

func TestFrameChildren(t *testing.T) {
	f := &Frame{}
	f.AddChild("a")
	f.AddChild("b")
	f.AddChild("a") // duplicate is a no-op
	assert.Equal(t, []string{"a", "b"}, f.Children)
	assert.True(t, f.HasChild("a"))

	f.RemoveChild("a")
	assert.Equal(t, []string{"b"}, f.Children)
	f.RemoveChild("missing") // no-op
	assert.Equal(t, []string{"b"}, f.Children)
}

func TestAllowLists(t *testing.T) {
	assert.True(t, ValidColor(ColorPink))
	assert.False(t, ValidColor("#ff00ff"))
	assert.True(t, ValidTextSize(TextSizeXL))
	assert.False(t, ValidTextSize("huge"))
	assert.True(t, ValidShapeType(ShapeDiamond))
	assert.False(t, ValidShapeType("star"))
	assert.True(t, ValidConnectorStyle(StyleElbow))
	assert.False(t, ValidConnectorStyle("zigzag"))
}
