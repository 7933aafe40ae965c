// Package template holds the built-in board template catalog: SWOT,
// retrospective and kanban layouts compiled from an embedded CUE file.
// The agent layer uses the catalog two ways: the create_template tool
// instantiates a template's frames, and the frame post-processing step
// consults it to recognize category titles worth relaying into a grid.
package template

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
)

//go:embed templates.cue
var templatesCUE string

// Frame is one frame a template lays down, positioned relative to the
// template's anchor.
type Frame struct {
	Title  string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Template is a compiled board template.
type Template struct {
	Name        string
	Title       string
	Description string
	Columns     int
	Frames      []Frame
}

// Catalog is the compiled set of templates plus a title index for
// category matching.
type Catalog struct {
	templates map[string]*Template
	names     []string
	titles    map[string]category // canonical frame title -> template + slot
	boards    map[string]string   // canonical board title -> template name
}

type category struct {
	tpl   string
	index int
}

// Load compiles the embedded templates.cue into a Catalog.
func Load() (*Catalog, error) {
	return compile(templatesCUE)
}

func compile(src string) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("templates.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath("template"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "template",
			Message: "top-level template struct is required",
			Pos:     v.Pos(),
		}
	}

	cat := &Catalog{
		templates: make(map[string]*Template),
		titles:    make(map[string]category),
		boards:    make(map[string]string),
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		tpl, err := compileTemplate(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat.templates[tpl.Name] = tpl
		cat.names = append(cat.names, tpl.Name)
		cat.boards[CanonicalTitle(tpl.Title)] = tpl.Name
		for i, f := range tpl.Frames {
			cat.titles[CanonicalTitle(f.Title)] = category{tpl: tpl.Name, index: i}
		}
	}
	if len(cat.names) == 0 {
		return nil, &CompileError{
			Field:   "template",
			Message: "at least one template is required",
			Pos:     root.Pos(),
		}
	}
	return cat, nil
}

// compileTemplate parses a single template struct.
func compileTemplate(name string, v cue.Value) (*Template, error) {
	tpl := &Template{Name: name}

	title, err := requiredString(v, name, "title")
	if err != nil {
		return nil, err
	}
	tpl.Title = title

	// Description is optional.
	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		if tpl.Description, err = descVal.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("template.%s.columns", name),
			Message: "columns is required",
			Pos:     v.Pos(),
		}
	}
	cols, err := colsVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if cols < 1 {
		return nil, &CompileError{
			Field:   fmt.Sprintf("template.%s.columns", name),
			Message: "columns must be at least 1",
			Pos:     colsVal.Pos(),
		}
	}
	tpl.Columns = int(cols)

	framesVal := v.LookupPath(cue.ParsePath("frames"))
	if !framesVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("template.%s.frames", name),
			Message: "frames are required",
			Pos:     v.Pos(),
		}
	}
	frameIter, err := framesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for frameIter.Next() {
		frame, err := compileFrame(name, frameIter.Value())
		if err != nil {
			return nil, err
		}
		tpl.Frames = append(tpl.Frames, frame)
	}
	if len(tpl.Frames) == 0 {
		return nil, &CompileError{
			Field:   fmt.Sprintf("template.%s.frames", name),
			Message: "at least one frame is required",
			Pos:     framesVal.Pos(),
		}
	}
	return tpl, nil
}

func compileFrame(tplName string, v cue.Value) (Frame, error) {
	var frame Frame

	title, err := requiredString(v, tplName, "title")
	if err != nil {
		return frame, err
	}
	frame.Title = title

	for _, dim := range []struct {
		name string
		dst  *float64
	}{
		{"x", &frame.X},
		{"y", &frame.Y},
		{"width", &frame.Width},
		{"height", &frame.Height},
	} {
		dimVal := v.LookupPath(cue.ParsePath(dim.name))
		if !dimVal.Exists() {
			return frame, &CompileError{
				Field:   fmt.Sprintf("template.%s.frames.%s", tplName, dim.name),
				Message: dim.name + " is required",
				Pos:     v.Pos(),
			}
		}
		if *dim.dst, err = dimVal.Float64(); err != nil {
			return frame, formatCUEError(err)
		}
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return frame, &CompileError{
			Field:   fmt.Sprintf("template.%s.frames", tplName),
			Message: "frame dimensions must be positive",
			Pos:     v.Pos(),
		}
	}
	return frame, nil
}

func requiredString(v cue.Value, tplName, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   fmt.Sprintf("template.%s.%s", tplName, field),
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if strings.TrimSpace(s) == "" {
		return "", &CompileError{
			Field:   fmt.Sprintf("template.%s.%s", tplName, field),
			Message: field + " must not be empty",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

// Get returns the template with the given name.
func (c *Catalog) Get(name string) (*Template, bool) {
	tpl, ok := c.templates[name]
	return tpl, ok
}

// Names returns template names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// MatchCategory reports whether title matches a frame title from any
// template, and if so which template it belongs to. Matching is
// NFC-normalized and case-insensitive so agent-supplied titles like
// "STRENGTHS " still hit the SWOT quadrant.
func (c *Catalog) MatchCategory(title string) (string, bool) {
	cat, ok := c.titles[CanonicalTitle(title)]
	return cat.tpl, ok
}

// Category resolves title to its template and slot index within that
// template's frame list. The slot index gives grid relayout a stable
// ordering that does not depend on creation order.
func (c *Catalog) Category(title string) (tpl string, index int, ok bool) {
	cat, ok := c.titles[CanonicalTitle(title)]
	return cat.tpl, cat.index, ok
}

// MatchBoardTitle reports whether title matches a template's own board
// title, e.g. "SWOT Analysis".
func (c *Catalog) MatchBoardTitle(title string) (string, bool) {
	tplName, ok := c.boards[CanonicalTitle(title)]
	return tplName, ok
}

// CanonicalTitle normalizes a frame title for catalog matching.
func CanonicalTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(title)))
}

// CompileError is a template compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
