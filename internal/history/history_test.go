package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
)

func setX(t *testing.T, rep *doc.Replica, origin doc.Origin, id string, x float64) {
	t.Helper()
	require.NoError(t, rep.Transact(origin, func(tx doc.Tx) error {
		o, ok := tx.Get(id)
		require.True(t, ok)
		o.Common().X = x
		tx.Set(o)
		return nil
	}))
}

func create(t *testing.T, rep *doc.Replica, origin doc.Origin, id string) {
	t.Helper()
	require.NoError(t, rep.Transact(origin, func(tx doc.Tx) error {
		tx.Set(&board.Sticky{Base: board.Base{ID: id, Width: 100, Height: 100}})
		tx.PushOrder(id)
		return nil
	}))
}

func getX(t *testing.T, rep *doc.Replica, id string) float64 {
	t.Helper()
	o, ok := rep.Get(id)
	require.True(t, ok)
	return o.Common().X
}

func TestUndo_EmptyIsNoop(t *testing.T) {
	m := New(doc.NewReplicaWithSite("site-a"))
	done, err := m.Undo()
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, m.CanUndo())
}

func TestUndo_SingleGesture(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")

	done, err := m.Undo()
	require.NoError(t, err)
	require.True(t, done)

	_, ok := rep.Get("s1")
	assert.False(t, ok)
	assert.True(t, m.CanRedo())
}

func TestDrag_CoalescesIntoOneStep(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")

	// One continuous drag emits many transactions.
	for _, x := range []float64{10, 20, 30, 40} {
		setX(t, rep, doc.OriginDrag, "s1", x)
	}
	assert.Equal(t, 2, m.Depth(), "create + one coalesced drag")

	done, err := m.Undo()
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, 0.0, getX(t, rep, "s1"), "one undo rewinds the whole drag")
}

func TestOriginChange_ClosesStep(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")

	setX(t, rep, doc.OriginDrag, "s1", 10)
	setX(t, rep, doc.OriginDrag, "s1", 20)
	// Text edit interrupts the drag: new step.
	require.NoError(t, rep.Transact(doc.OriginTextEdit, func(tx doc.Tx) error {
		o, _ := tx.Get("s1")
		o.(*board.Sticky).Text = "hello"
		tx.Set(o)
		return nil
	}))

	assert.Equal(t, 3, m.Depth())

	_, err := m.Undo()
	require.NoError(t, err)
	got, _ := rep.Get("s1")
	assert.Empty(t, got.(*board.Sticky).Text, "first undo removes only the text edit")
	assert.Equal(t, 20.0, got.Common().X)
}

func TestBaseline_IsItsOwnStep(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")
	setX(t, rep, doc.OriginBaseline, "s1", 10)
	setX(t, rep, doc.OriginBaseline, "s1", 20)

	assert.Equal(t, 3, m.Depth(), "baseline transactions never coalesce")
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")
	for _, x := range []float64{10, 20, 30} {
		setX(t, rep, doc.OriginDrag, "s1", x)
	}

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0.0, getX(t, rep, "s1"))

	done, err := m.Redo()
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, 30.0, getX(t, rep, "s1"))
	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestNewLocalWork_ClearsRedo(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")
	setX(t, rep, doc.OriginDrag, "s1", 10)

	_, err := m.Undo()
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	setX(t, rep, doc.OriginGesture, "s1", 99)
	assert.False(t, m.CanRedo(), "fresh local work invalidates redo")
}

func TestCheckpoint_SplitsSameOriginRuns(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")

	setX(t, rep, doc.OriginDrag, "s1", 10)
	m.Checkpoint() // drag ended, next drag is a new step
	setX(t, rep, doc.OriginDrag, "s1", 20)

	assert.Equal(t, 3, m.Depth())

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, 10.0, getX(t, rep, "s1"))
}

func TestUndo_DoubleStepRewindsFurther(t *testing.T) {
	rep := doc.NewReplicaWithSite("site-a")
	m := New(rep)
	create(t, rep, doc.OriginGesture, "s1")
	setX(t, rep, doc.OriginDrag, "s1", 10)

	for range 2 {
		_, err := m.Undo()
		require.NoError(t, err)
	}
	_, ok := rep.Get("s1")
	assert.False(t, ok, "second undo rewinds the create itself")
}
