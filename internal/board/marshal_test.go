package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/geom"
)

func TestMarshalObject_InlineDiscriminator(t *testing.T) {
	s := &Sticky{Base: Base{ID: "s1", X: 10, Y: 20, Width: 100, Height: 100}, Text: "hello", Color: ColorGreen}

	data, err := MarshalObject(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "sticky", m["type"])
	assert.Equal(t, "s1", m["id"])
	assert.Equal(t, "hello", m["text"])
	// The discriminator is flat, not nested under a payload key.
	_, hasPayload := m["payload"]
	assert.False(t, hasPayload)
}

func TestObjectRoundTrip(t *testing.T) {
	objs := []Object{
		&Sticky{Base: Base{ID: "a", X: 1, Y: 2, Width: 100, Height: 100, Rotation: 45}, Text: "note", Color: ColorBlue, TextSize: TextSizeL},
		&Shape{Base: Base{ID: "b", Width: 50, Height: 50}, ShapeType: ShapeEllipse, Text: "lbl"},
		&Text{Base: Base{ID: "c", Width: 200, Height: 30}, Text: "heading", TextSize: TextSizeXL},
		&Connector{
			Base: Base{ID: "d"},
			From: Endpoint{ObjectID: "a", Port: geom.PortE},
			To:   Endpoint{Point: &geom.Point{X: 500, Y: 500}},
			Style: StyleElbow,
			Label: "flows to",
		},
		&Frame{Base: Base{ID: "e", Width: 400, Height: 300}, Title: "Sprint 12", Children: []string{"a", "b"}},
		&Table{Base: Base{ID: "f", Width: 300, Height: 200}, Title: "matrix", Rows: 2, Cols: 2, Cells: []string{"1", "2", "3", "4"}},
	}

	for _, o := range objs {
		t.Run(string(o.Kind()), func(t *testing.T) {
			data, err := MarshalObject(o)
			require.NoError(t, err)

			back, err := UnmarshalObject(data)
			require.NoError(t, err)
			assert.Equal(t, o, back)
		})
	}
}

func TestUnmarshalObject_UnknownType(t *testing.T) {
	_, err := UnmarshalObject([]byte(`{"type":"hologram","id":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestUnmarshalObject_Garbage(t *testing.T) {
	_, err := UnmarshalObject([]byte(`{`))
	require.Error(t, err)
}

func TestMarshalObjects_PreservesOrder(t *testing.T) {
	in := []Object{
		&Frame{Base: Base{ID: "f1"}, Title: "first"},
		&Sticky{Base: Base{ID: "s1"}},
		&Sticky{Base: Base{ID: "s2"}},
	}
	data, err := MarshalObjects(in)
	require.NoError(t, err)

	out, err := UnmarshalObjects(data)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "f1", out[0].Common().ID)
	assert.Equal(t, "s2", out[2].Common().ID)
}
