package store

import (
	"fmt"

	"github.com/mwhite-io/easel/internal/board"
)

// UnsupportedError reports an operation applied to the wrong object
// variant, e.g. resizing a connector. The interactive path surfaces it to
// the gesture layer; the agent path maps it to a structured tool failure.
type UnsupportedError struct {
	Op   string
	Kind board.Kind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("operation %q not supported for %s objects", e.Op, e.Kind)
}

// MissingEndpointError reports a connector endpoint bound to an id with no
// live object behind it. Bindings are checked on create and rebind so a
// dangling reference never enters the document.
type MissingEndpointError struct {
	ID string
}

func (e *MissingEndpointError) Error() string {
	return fmt.Sprintf("connector endpoint references missing object %q", e.ID)
}

// UnknownKindError reports a Create with a kind outside the object union.
type UnknownKindError struct {
	Kind board.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown object kind %q", e.Kind)
}
