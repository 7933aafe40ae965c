package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/geom"
)

func TestSerializeSelection_EmptyOrMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.SerializeSelection(nil)
	require.Error(t, err)
	_, err = s.SerializeSelection([]string{"ghost"})
	require.Error(t, err)
}

func TestRoundTripClone_RemapsAllInternalRefs(t *testing.T) {
	s, _ := newTestStore(t)
	frame := mustCreate(t, s, board.KindFrame, 0, 0, 500, 500, Extra{Title: "F"})
	a := mustCreate(t, s, board.KindSticky, 50, 50, 100, 100, Extra{})
	b := mustCreate(t, s, board.KindSticky, 200, 200, 100, 100, Extra{})
	conn := mustCreate(t, s, board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortE},
		To:   &board.Endpoint{ObjectID: b.Common().ID, Port: geom.PortW},
	})

	sel := []string{frame.Common().ID, a.Common().ID, b.Common().ID, conn.Common().ID}
	data, err := s.SerializeSelection(sel)
	require.NoError(t, err)

	clones, err := s.PasteSerialized(data, PasteOptions{Offset: &geom.Point{X: 1000, Y: 0}})
	require.NoError(t, err)
	require.Len(t, clones, len(sel))

	oldIDs := make(map[string]bool, len(sel))
	for _, id := range sel {
		oldIDs[id] = true
	}

	var newFrame *board.Frame
	var newConn *board.Connector
	newIDs := make(map[string]bool)
	for _, c := range clones {
		require.False(t, oldIDs[c.Common().ID], "clone ids must be fresh")
		newIDs[c.Common().ID] = true
		switch o := c.(type) {
		case *board.Frame:
			newFrame = o
		case *board.Connector:
			newConn = o
		}
	}
	require.NotNil(t, newFrame)
	require.NotNil(t, newConn)

	// Frame children point only into the new id space.
	require.Len(t, newFrame.Children, 2)
	for _, childID := range newFrame.Children {
		assert.True(t, newIDs[childID], "child %s should be a clone id", childID)
	}

	// Connector endpoints rebound into the new id space.
	assert.True(t, newConn.From.Bound())
	assert.True(t, newIDs[newConn.From.ObjectID])
	assert.True(t, newIDs[newConn.To.ObjectID])
	assert.Equal(t, geom.PortE, newConn.From.Port)

	// And the originals are untouched.
	origFrame, _ := s.Get(frame.Common().ID)
	assert.Len(t, origFrame.(*board.Frame).Children, 2)
}

func TestSerializeSelection_CollapsesExternalRefs(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindSticky, 0, 0, 100, 100, Extra{})
	outside := mustCreate(t, s, board.KindShape, 300, 0, 100, 100, Extra{})
	conn := mustCreate(t, s, board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortE},
		To:   &board.Endpoint{ObjectID: outside.Common().ID, Port: geom.PortW},
	})

	// Select the sticky and the connector but not the shape.
	data, err := s.SerializeSelection([]string{a.Common().ID, conn.Common().ID})
	require.NoError(t, err)

	objs, err := board.UnmarshalObjects(data)
	require.NoError(t, err)
	var serConn *board.Connector
	for _, o := range objs {
		if c, ok := o.(*board.Connector); ok {
			serConn = c
		}
	}
	require.NotNil(t, serConn)
	assert.True(t, serConn.From.Bound(), "internal binding survives")
	assert.False(t, serConn.To.Bound(), "external binding collapses")
	assert.Equal(t, geom.Point{X: 300, Y: 50}, *serConn.To.Point, "collapsed at the resolved position")
}

func TestSerializeSelection_DropsExternalChildrenAndParent(t *testing.T) {
	s, _ := newTestStore(t)
	frame := mustCreate(t, s, board.KindFrame, 0, 0, 500, 500, Extra{})
	inside := mustCreate(t, s, board.KindSticky, 50, 50, 100, 100, Extra{})
	require.Equal(t, frame.Common().ID, parentOf(t, s, inside.Common().ID))

	// Selecting only the frame: its child reference leaves the selection.
	data, err := s.SerializeSelection([]string{frame.Common().ID})
	require.NoError(t, err)
	objs, err := board.UnmarshalObjects(data)
	require.NoError(t, err)
	assert.Empty(t, objs[0].(*board.Frame).Children)

	// Selecting only the sticky: its parent link leaves the selection.
	data, err = s.SerializeSelection([]string{inside.Common().ID})
	require.NoError(t, err)
	objs, err = board.UnmarshalObjects(data)
	require.NoError(t, err)
	assert.Empty(t, objs[0].Common().ParentFrameID)
}

func TestPasteSerialized_AbsolutePlacement(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindSticky, 0, 0, 100, 100, Extra{})

	data, err := s.SerializeSelection([]string{a.Common().ID})
	require.NoError(t, err)

	clones, err := s.PasteSerialized(data, PasteOptions{At: &geom.Point{X: 2000, Y: 2000}})
	require.NoError(t, err)
	require.Len(t, clones, 1)
	// The selection's bbox center lands exactly at the requested point.
	assert.Equal(t, 1950.0, clones[0].Common().X)
	assert.Equal(t, 1950.0, clones[0].Common().Y)
}

func TestPasteSerialized_DefaultOffset(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindSticky, 10, 10, 100, 100, Extra{})

	data, err := s.SerializeSelection([]string{a.Common().ID})
	require.NoError(t, err)
	clones, err := s.PasteSerialized(data, PasteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 10.0+DefaultPasteOffset, clones[0].Common().X)
}

func TestPasteSerialized_SyncsContainment(t *testing.T) {
	s, _ := newTestStore(t)
	frame := mustCreate(t, s, board.KindFrame, 1000, 1000, 400, 400, Extra{})
	a := mustCreate(t, s, board.KindSticky, 0, 0, 100, 100, Extra{})

	data, err := s.SerializeSelection([]string{a.Common().ID})
	require.NoError(t, err)
	clones, err := s.PasteSerialized(data, PasteOptions{At: &geom.Point{X: 1200, Y: 1200}})
	require.NoError(t, err)

	assert.Equal(t, frame.Common().ID, parentOf(t, s, clones[0].Common().ID), "paste into a frame attaches")
}

func TestDuplicate(t *testing.T) {
	s, rep := newTestStore(t)
	a := mustCreate(t, s, board.KindSticky, 0, 0, 100, 100, Extra{Text: "orig"})

	clones, err := s.Duplicate([]string{a.Common().ID}, 20, 30)
	require.NoError(t, err)
	require.Len(t, clones, 1)
	assert.Equal(t, 20.0, clones[0].Common().X)
	assert.Equal(t, 30.0, clones[0].Common().Y)
	assert.Equal(t, "orig", clones[0].(*board.Sticky).Text)
	assert.Equal(t, 2, rep.Len())
	assert.NotEqual(t, a.Common().ID, clones[0].Common().ID)
}

func TestPasteSerialized_GarbageInput(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.PasteSerialized([]byte("not json"), PasteOptions{})
	require.Error(t, err)
	_, err = s.PasteSerialized([]byte("[]"), PasteOptions{})
	require.Error(t, err)
}
