package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/geom"
)

// connectorBetween creates A (0,0,100x100), B (300,0,100x100) and a
// connector bound A.e -> B.w.
func connectorBetween(t *testing.T, s *Store) (a, b board.Object, c *board.Connector) {
	t.Helper()
	a = mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})
	b = mustCreate(t, s, board.KindShape, 300, 0, 100, 100, Extra{})
	obj := mustCreate(t, s, board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortE},
		To:   &board.Endpoint{ObjectID: b.Common().ID, Port: geom.PortW},
	})
	return a, b, obj.(*board.Connector)
}

func TestResolveConnector_BoundPorts(t *testing.T) {
	s, _ := newTestStore(t)
	_, _, c := connectorBetween(t, s)

	from, to, ok := s.ResolveConnector(c.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 100, Y: 50}, from, "east port of A")
	assert.Equal(t, geom.Point{X: 300, Y: 50}, to, "west port of B")
}

func TestResolveConnector_TracksMovement(t *testing.T) {
	s, _ := newTestStore(t)
	a, _, c := connectorBetween(t, s)

	require.NoError(t, s.Move([]string{a.Common().ID}, 0, 200))

	from, _, ok := s.ResolveConnector(c.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 100, Y: 250}, from, "binding resolves against the moved object")
}

func TestResolveConnector_TracksRotation(t *testing.T) {
	s, _ := newTestStore(t)
	a, _, c := connectorBetween(t, s)

	require.NoError(t, s.Rotate([]string{a.Common().ID}, 180, nil))

	from, _, ok := s.ResolveConnector(c.ID)
	require.True(t, ok)
	// After a half turn of A (about its own center, the default pivot for
	// a single-object selection), its east port sits where west was.
	assert.InDelta(t, 0.0, from.X, 1e-9)
	assert.InDelta(t, 50.0, from.Y, 1e-9)
}

func TestResolveConnector_NonConnector(t *testing.T) {
	s, _ := newTestStore(t)
	obj := mustCreate(t, s, board.KindSticky, 0, 0, 100, 100, Extra{})
	_, _, ok := s.ResolveConnector(obj.Common().ID)
	assert.False(t, ok)
	_, _, ok = s.ResolveConnector("ghost")
	assert.False(t, ok)
}

func TestCreate_RejectsDanglingEndpoint(t *testing.T) {
	s, rep := newTestStore(t)
	a := mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})

	_, err := s.Create(board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortE},
		To:   &board.Endpoint{ObjectID: "ghost", Port: geom.PortW},
	})

	var missing *MissingEndpointError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.ID)
	assert.Equal(t, 1, rep.Len(), "the failed create leaves nothing behind")
}

func TestCreate_RejectsConnectorAsAnchor(t *testing.T) {
	s, _ := newTestStore(t)
	_, _, c := connectorBetween(t, s)

	_, err := s.Create(board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: c.ID, Port: geom.PortN},
	})

	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestUpdate_RejectsDanglingRebind(t *testing.T) {
	s, _ := newTestStore(t)
	a, _, c := connectorBetween(t, s)

	err := s.Update(c.ID, Patch{
		From: &board.Endpoint{ObjectID: "ghost", Port: geom.PortN},
	})

	var missing *MissingEndpointError
	require.ErrorAs(t, err, &missing)

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	conn := got.(*board.Connector)
	assert.Equal(t, a.Common().ID, conn.From.ObjectID, "failed rebind leaves the binding untouched")
}

func TestDelete_FreezesConnectorEndpoint(t *testing.T) {
	// Spec scenario: delete A; C.fromId clears and C.fromPoint equals
	// A's former east port; C.toId is untouched.
	s, _ := newTestStore(t)
	a, b, c := connectorBetween(t, s)

	require.NoError(t, s.Delete([]string{a.Common().ID}))

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	conn := got.(*board.Connector)

	assert.False(t, conn.From.Bound(), "binding to the deleted object is cleared")
	require.NotNil(t, conn.From.Point)
	assert.InDelta(t, 100.0, conn.From.Point.X, 1e-9)
	assert.InDelta(t, 50.0, conn.From.Point.Y, 1e-9)

	assert.Equal(t, b.Common().ID, conn.To.ObjectID)
	assert.Equal(t, geom.PortW, conn.To.Port)
}

func TestDelete_FreezePositionReflectsLastMove(t *testing.T) {
	s, _ := newTestStore(t)
	a, _, c := connectorBetween(t, s)

	require.NoError(t, s.Move([]string{a.Common().ID}, 500, 500))
	require.NoError(t, s.Delete([]string{a.Common().ID}))

	got, _ := s.Get(c.ID)
	conn := got.(*board.Connector)
	require.NotNil(t, conn.From.Point)
	assert.InDelta(t, 600.0, conn.From.Point.X, 1e-9, "frozen at the last on-screen position")
	assert.InDelta(t, 550.0, conn.From.Point.Y, 1e-9)
}

func TestDelete_ConnectorItselfJustDies(t *testing.T) {
	s, rep := newTestStore(t)
	a, b, c := connectorBetween(t, s)

	require.NoError(t, s.Delete([]string{c.ID}))
	_, ok := s.Get(c.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{a.Common().ID, b.Common().ID}, rep.Order())
}

func TestDelete_BothEndpointsSameObject(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})
	c := mustCreate(t, s, board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortN},
		To:   &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortS},
	})

	require.NoError(t, s.Delete([]string{a.Common().ID}))

	got, _ := s.Get(c.Common().ID)
	conn := got.(*board.Connector)
	assert.False(t, conn.From.Bound())
	assert.False(t, conn.To.Bound())
	assert.Equal(t, geom.Point{X: 50, Y: 0}, *conn.From.Point)
	assert.Equal(t, geom.Point{X: 50, Y: 100}, *conn.To.Point)
}

func TestMove_ConnectorShiftsOnlyFreePoints(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})
	c := mustCreate(t, s, board.KindConnector, 0, 0, 10, 10, Extra{
		From: &board.Endpoint{ObjectID: a.Common().ID, Port: geom.PortE},
		To:   &board.Endpoint{Point: &geom.Point{X: 500, Y: 500}},
	})

	require.NoError(t, s.Move([]string{c.Common().ID}, 10, 10))

	got, _ := s.Get(c.Common().ID)
	conn := got.(*board.Connector)
	assert.Equal(t, geom.Point{X: 510, Y: 510}, *conn.To.Point)

	from, _, _ := s.ResolveConnector(conn.ID)
	assert.Equal(t, geom.Point{X: 100, Y: 50}, from, "bound endpoint ignores the connector's own move")
}

func TestGetAttachableAtPoint(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})

	t.Run("within radius of a port", func(t *testing.T) {
		got, ok := s.GetAttachableAtPoint(100+AttachRadius-1, 50, nil)
		require.True(t, ok)
		assert.Equal(t, a.Common().ID, got.Common().ID)
	})
	t.Run("outside radius", func(t *testing.T) {
		_, ok := s.GetAttachableAtPoint(100+AttachRadius+50, 50, nil)
		assert.False(t, ok)
	})
	t.Run("excluded id is skipped", func(t *testing.T) {
		_, ok := s.GetAttachableAtPoint(100, 50, []string{a.Common().ID})
		assert.False(t, ok)
	})
}

func TestGetAttachableAtPoint_TopmostWinsAndConnectorsSkipped(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})
	top := mustCreate(t, s, board.KindShape, 0, 0, 100, 100, Extra{})
	mustCreate(t, s, board.KindConnector, 0, 0, 100, 100, Extra{})

	got, ok := s.GetAttachableAtPoint(50, 0, nil)
	require.True(t, ok)
	assert.Equal(t, top.Common().ID, got.Common().ID, "topmost non-connector wins")
}
