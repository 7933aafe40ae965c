// Package store implements the canonical CRUD surface over board objects in
// the replicated document, the containment synchronizer that keeps
// frame/child relationships geometrically correct, and the connector
// resolver that keeps links valid as their endpoints move or disappear.
//
// Every mutating method wraps its writes in exactly one document
// transaction; partial application is never observable. The interactive
// path silently ignores operations on missing ids; variant mismatches
// (resizing a connector and the like) and endpoint bindings to missing
// objects surface as errors.
package store

import (
	"log/slog"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/geom"
)

// AttachRadius is the world-space distance within which a point query snaps
// to an object's nearest port.
const AttachRadius = 24.0

// Store is the object store for one participant's view of the document. It
// holds an explicit document handle; there is no process-wide board.
type Store struct {
	doc    doc.Document
	log    *slog.Logger
	newID  func() string
	actor  string
	origin doc.Origin
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDFunc overrides id generation. Tests use deterministic ids.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithActor sets the participant id recorded as createdBy on new objects.
func WithActor(actor string) Option {
	return func(s *Store) { s.actor = actor }
}

// New creates a Store over the given document.
func New(d doc.Document, opts ...Option) *Store {
	s := &Store{
		doc:    d,
		log:    slog.Default(),
		newID:  board.NewID,
		origin: doc.OriginGesture,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOrigin tags subsequent transactions with the given origin. The input
// layer switches to OriginDrag while a drag is in flight and back to
// OriginBaseline when it settles; the undo manager groups on these tags.
func (s *Store) SetOrigin(origin doc.Origin) {
	s.origin = origin
}

// Get returns a copy of the object, or false if absent.
func (s *Store) Get(id string) (board.Object, bool) {
	return s.doc.Get(id)
}

// GetAll returns copies of every object in z-order, frames first. The
// frames-first order is what the rendering and containment consumers
// expect: walking frames before their potential children keeps containment
// walks single-pass.
func (s *Store) GetAll() []board.Object {
	objects, order := s.doc.Snapshot()
	frames := make([]board.Object, 0, len(order))
	rest := make([]board.Object, 0, len(order))
	for _, id := range order {
		o, ok := objects[id]
		if !ok {
			continue
		}
		if o.Kind() == board.KindFrame {
			frames = append(frames, o)
		} else {
			rest = append(rest, o)
		}
	}
	return append(frames, rest...)
}

// Extra carries the optional, kind-specific fields of Create. Zero values
// fall back to documented defaults.
type Extra struct {
	Text      string
	Color     string
	TextSize  string
	ShapeType string
	Style     string
	Label     string
	Title     string
	Rows      int
	Cols      int
	From      *board.Endpoint
	To        *board.Endpoint
}

// Create adds a new object of the given kind, size-clamped, appended to the
// z-order and containment-synced, all in one transaction.
func (s *Store) Create(kind board.Kind, x, y, w, h float64, extra Extra) (board.Object, error) {
	w, h = board.ClampSize(w, h)
	base := board.Base{
		ID:        s.newID(),
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
		CreatedBy: s.actor,
	}

	obj, err := buildObject(kind, base, extra)
	if err != nil {
		return nil, err
	}

	err = s.doc.Transact(s.origin, func(tx doc.Tx) error {
		if c, ok := obj.(*board.Connector); ok {
			if err := validateEndpoint(tx.Get, &c.From); err != nil {
				return err
			}
			if err := validateEndpoint(tx.Get, &c.To); err != nil {
				return err
			}
			fitConnectorBox(tx, c)
		}
		tx.Set(obj)
		tx.PushOrder(base.ID)
		if kind != board.KindConnector {
			syncContainment(tx, base.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("store.create", "kind", kind, "id", base.ID)
	created, _ := s.doc.Get(base.ID)
	return created, nil
}

// buildObject assembles the variant for Create, applying per-kind defaults.
func buildObject(kind board.Kind, base board.Base, extra Extra) (board.Object, error) {
	switch kind {
	case board.KindSticky:
		return &board.Sticky{
			Base:     base,
			Text:     extra.Text,
			Color:    defaultToken(extra.Color, board.ValidColor, board.DefaultColor),
			TextSize: defaultToken(extra.TextSize, board.ValidTextSize, board.DefaultTextSize),
		}, nil
	case board.KindShape:
		return &board.Shape{
			Base:      base,
			ShapeType: defaultToken(extra.ShapeType, board.ValidShapeType, board.DefaultShapeType),
			Text:      extra.Text,
			Color:     defaultToken(extra.Color, board.ValidColor, board.DefaultColor),
		}, nil
	case board.KindText:
		return &board.Text{
			Base:     base,
			Text:     extra.Text,
			TextSize: defaultToken(extra.TextSize, board.ValidTextSize, board.DefaultTextSize),
			Color:    defaultToken(extra.Color, board.ValidColor, board.ColorBlack),
		}, nil
	case board.KindConnector:
		c := &board.Connector{
			Base:  base,
			Style: defaultToken(extra.Style, board.ValidConnectorStyle, board.DefaultConnectorStyle),
			Label: extra.Label,
		}
		if extra.From != nil {
			c.From = *extra.From
		} else {
			c.From = board.Endpoint{Point: &geom.Point{X: base.X, Y: base.Y}}
		}
		if extra.To != nil {
			c.To = *extra.To
		} else {
			c.To = board.Endpoint{Point: &geom.Point{X: base.X + base.Width, Y: base.Y + base.Height}}
		}
		return c, nil
	case board.KindFrame:
		return &board.Frame{Base: base, Title: extra.Title}, nil
	case board.KindTable:
		rows, cols := extra.Rows, extra.Cols
		if rows < 1 {
			rows = 2
		}
		if cols < 1 {
			cols = 2
		}
		return &board.Table{Base: base, Title: extra.Title, Rows: rows, Cols: cols}, nil
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
}

func defaultToken(v string, valid func(string) bool, fallback string) string {
	if v == "" || !valid(v) {
		return fallback
	}
	return v
}

// Patch is a merge patch for Update. Nil fields are untouched; set fields
// are validated per the target's variant.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64

	Text      *string
	Color     *string
	TextSize  *string
	ShapeType *string
	Style     *string
	Label     *string
	Title     *string
	Rows      *int
	Cols      *int

	From *board.Endpoint
	To   *board.Endpoint
}

// positional reports whether the patch touches geometry.
func (p Patch) positional() bool {
	return p.X != nil || p.Y != nil || p.Width != nil || p.Height != nil ||
		p.Rotation != nil || p.From != nil || p.To != nil
}

// Update merges patch into the object, re-normalizes rotation and size, and
// re-syncs containment. A missing id is silently ignored; a patch that does
// not apply to the object's variant returns UnsupportedError, and an
// endpoint bound to a missing object returns MissingEndpointError.
func (s *Store) Update(id string, patch Patch) error {
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		obj, ok := tx.Get(id)
		if !ok {
			return nil
		}
		if _, isConnector := obj.(*board.Connector); isConnector {
			if err := validateEndpoint(tx.Get, patch.From); err != nil {
				return err
			}
			if err := validateEndpoint(tx.Get, patch.To); err != nil {
				return err
			}
		}
		if err := applyPatch(obj, patch); err != nil {
			return err
		}
		obj.Common().Normalize()
		if c, ok := obj.(*board.Connector); ok {
			fitConnectorBox(tx, c)
		}
		tx.Set(obj)
		if obj.Kind() != board.KindConnector && patch.positional() {
			syncContainment(tx, id)
		}
		return nil
	})
}

// applyPatch merges patch into obj in place, dispatching variant fields
// exhaustively.
func applyPatch(obj board.Object, p Patch) error {
	b := obj.Common()
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}

	switch o := obj.(type) {
	case *board.Sticky:
		if err := rejectConnectorOnly(obj, p); err != nil {
			return err
		}
		applySize(b, p)
		setString(&o.Text, p.Text)
		setToken(&o.Color, p.Color, board.ValidColor)
		setToken(&o.TextSize, p.TextSize, board.ValidTextSize)
	case *board.Shape:
		if err := rejectConnectorOnly(obj, p); err != nil {
			return err
		}
		applySize(b, p)
		setString(&o.Text, p.Text)
		setToken(&o.Color, p.Color, board.ValidColor)
		setToken(&o.ShapeType, p.ShapeType, board.ValidShapeType)
	case *board.Text:
		if err := rejectConnectorOnly(obj, p); err != nil {
			return err
		}
		applySize(b, p)
		setString(&o.Text, p.Text)
		setToken(&o.Color, p.Color, board.ValidColor)
		setToken(&o.TextSize, p.TextSize, board.ValidTextSize)
	case *board.Connector:
		// Connectors reject box and appearance patches; only endpoints,
		// style and label apply.
		if p.Width != nil || p.Height != nil || p.Rotation != nil {
			return &UnsupportedError{Op: "resize", Kind: obj.Kind()}
		}
		if p.Color != nil {
			return &UnsupportedError{Op: "recolor", Kind: obj.Kind()}
		}
		if p.From != nil {
			o.From = *p.From
		}
		if p.To != nil {
			o.To = *p.To
		}
		setToken(&o.Style, p.Style, board.ValidConnectorStyle)
		setString(&o.Label, p.Label)
	case *board.Frame:
		if err := rejectConnectorOnly(obj, p); err != nil {
			return err
		}
		applySize(b, p)
		setString(&o.Title, p.Title)
	case *board.Table:
		if err := rejectConnectorOnly(obj, p); err != nil {
			return err
		}
		applySize(b, p)
		setString(&o.Title, p.Title)
		if p.Rows != nil && *p.Rows > 0 {
			o.Rows = *p.Rows
		}
		if p.Cols != nil && *p.Cols > 0 {
			o.Cols = *p.Cols
		}
	}
	return nil
}

// rejectConnectorOnly errors when a non-connector patch carries
// connector-only fields.
func rejectConnectorOnly(obj board.Object, p Patch) error {
	if p.From != nil || p.To != nil || p.Style != nil {
		return &UnsupportedError{Op: "rebind", Kind: obj.Kind()}
	}
	return nil
}

func applySize(b *board.Base, p Patch) {
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
	if p.Rotation != nil {
		b.Rotation = *p.Rotation
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setToken(dst *string, v *string, valid func(string) bool) {
	if v != nil && valid(*v) {
		*dst = *v
	}
}

// BringToFront moves the object to the end of the z-order (topmost).
func (s *Store) BringToFront(id string) error {
	return s.doc.Transact(s.origin, func(tx doc.Tx) error {
		if _, ok := tx.Get(id); !ok {
			return nil
		}
		tx.RemoveOrder(id)
		tx.PushOrder(id)
		return nil
	})
}
