package agent

import (
	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/geom"
	"github.com/mwhite-io/easel/internal/store"
)

// Param describes one tool argument for the transport layer's schema.
// The runner never trusts the schema; every field re-validates on the
// way in.
type Param struct {
	Name        string
	Type        string // "string", "number", "integer", "array"
	Description string
	Required    bool
}

// ToolDef is one entry of the tool registry: transport-facing metadata
// plus the handler. Handlers return the validated argument map (what
// the call log records) and the result.
type ToolDef struct {
	Name        string
	Description string
	Params      []Param

	run func(r *Runner, args map[string]any) (map[string]any, Result)
}

// Tools lists the registry in stable order for transport registration.
func Tools() []ToolDef {
	out := make([]ToolDef, len(toolOrder))
	for i, name := range toolOrder {
		out[i] = registry[name]
	}
	return out
}

var toolOrder = []string{
	"create_object",
	"update_object",
	"delete_object",
	"move_objects",
	"resize_object",
	"rotate_objects",
	"bring_to_front",
	"duplicate_objects",
	"batch_create",
	"batch_update",
	"batch_delete",
	"create_template",
	"get_board_state",
}

var registry = map[string]ToolDef{
	"create_object": {
		Name:        "create_object",
		Description: "Create one board object. Type is one of sticky, shape, text, connector, frame, table.",
		Params: []Param{
			{Name: "type", Type: "string", Required: true, Description: "Object kind"},
			{Name: "x", Type: "number", Description: "Left edge"},
			{Name: "y", Type: "number", Description: "Top edge"},
			{Name: "width", Type: "number", Description: "Width"},
			{Name: "height", Type: "number", Description: "Height"},
			{Name: "text", Type: "string", Description: "Text content (sticky, shape, text)"},
			{Name: "color", Type: "string", Description: "Color token"},
			{Name: "text_size", Type: "string", Description: "Text size token (s, m, l, xl)"},
			{Name: "shape_type", Type: "string", Description: "Shape type (rectangle, ellipse, diamond, triangle)"},
			{Name: "style", Type: "string", Description: "Connector style (straight, elbow, curved)"},
			{Name: "label", Type: "string", Description: "Connector label"},
			{Name: "title", Type: "string", Description: "Frame or table title"},
			{Name: "rows", Type: "integer", Description: "Table rows"},
			{Name: "cols", Type: "integer", Description: "Table columns"},
			{Name: "from_id", Type: "string", Description: "Connector source object id"},
			{Name: "from_port", Type: "string", Description: "Connector source port"},
			{Name: "from_x", Type: "number", Description: "Free source point x"},
			{Name: "from_y", Type: "number", Description: "Free source point y"},
			{Name: "to_id", Type: "string", Description: "Connector target object id"},
			{Name: "to_port", Type: "string", Description: "Connector target port"},
			{Name: "to_x", Type: "number", Description: "Free target point x"},
			{Name: "to_y", Type: "number", Description: "Free target point y"},
		},
		run: runCreateObject,
	},
	"update_object": {
		Name:        "update_object",
		Description: "Merge a partial update into one object. Fields that do not apply to the object's kind fail the call; invalid values fall back without failing.",
		Params: []Param{
			{Name: "id", Type: "string", Required: true, Description: "Object id"},
			{Name: "x", Type: "number"}, {Name: "y", Type: "number"},
			{Name: "width", Type: "number"}, {Name: "height", Type: "number"},
			{Name: "rotation", Type: "number", Description: "Absolute rotation in degrees"},
			{Name: "text", Type: "string"}, {Name: "color", Type: "string"},
			{Name: "text_size", Type: "string"}, {Name: "shape_type", Type: "string"},
			{Name: "style", Type: "string"}, {Name: "label", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "rows", Type: "integer"}, {Name: "cols", Type: "integer"},
			{Name: "from_id", Type: "string"}, {Name: "from_port", Type: "string"},
			{Name: "from_x", Type: "number"}, {Name: "from_y", Type: "number"},
			{Name: "to_id", Type: "string"}, {Name: "to_port", Type: "string"},
			{Name: "to_x", Type: "number"}, {Name: "to_y", Type: "number"},
		},
		run: runUpdateObject,
	},
	"delete_object": {
		Name:        "delete_object",
		Description: "Delete one object. Deleting a frame deletes its contents.",
		Params: []Param{
			{Name: "id", Type: "string", Required: true, Description: "Object id"},
		},
		run: runDeleteObject,
	},
	"move_objects": {
		Name:        "move_objects",
		Description: "Translate objects by a delta. Frame contents travel with their frame.",
		Params: []Param{
			{Name: "ids", Type: "array", Required: true, Description: "Object ids"},
			{Name: "dx", Type: "number", Description: "Horizontal delta"},
			{Name: "dy", Type: "number", Description: "Vertical delta"},
		},
		run: runMoveObjects,
	},
	"resize_object": {
		Name:        "resize_object",
		Description: "Set an object's box. Connectors cannot be resized.",
		Params: []Param{
			{Name: "id", Type: "string", Required: true, Description: "Object id"},
			{Name: "x", Type: "number"}, {Name: "y", Type: "number"},
			{Name: "width", Type: "number"}, {Name: "height", Type: "number"},
		},
		run: runResizeObject,
	},
	"rotate_objects": {
		Name:        "rotate_objects",
		Description: "Rotate objects about a pivot, defaulting to the selection's bounding-box center. Connectors are skipped.",
		Params: []Param{
			{Name: "ids", Type: "array", Required: true, Description: "Object ids"},
			{Name: "degrees", Type: "number", Description: "Rotation delta in degrees"},
			{Name: "pivot_x", Type: "number"}, {Name: "pivot_y", Type: "number"},
		},
		run: runRotateObjects,
	},
	"bring_to_front": {
		Name:        "bring_to_front",
		Description: "Move one object to the top of the paint order.",
		Params: []Param{
			{Name: "id", Type: "string", Required: true, Description: "Object id"},
		},
		run: runBringToFront,
	},
	"duplicate_objects": {
		Name:        "duplicate_objects",
		Description: "Clone objects with fresh ids at a relative offset.",
		Params: []Param{
			{Name: "ids", Type: "array", Required: true, Description: "Object ids"},
			{Name: "dx", Type: "number"}, {Name: "dy", Type: "number"},
		},
		run: runDuplicateObjects,
	},
	"batch_create": {
		Name:        "batch_create",
		Description: "Create many objects in one call. Each item takes the create_object arguments; items fail individually.",
		Params: []Param{
			{Name: "objects", Type: "array", Required: true, Description: "Array of create_object argument objects"},
		},
		run: runBatchCreate,
	},
	"batch_update": {
		Name:        "batch_update",
		Description: "Update many objects in one call. Each item takes the update_object arguments; items fail individually.",
		Params: []Param{
			{Name: "updates", Type: "array", Required: true, Description: "Array of update_object argument objects"},
		},
		run: runBatchUpdate,
	},
	"batch_delete": {
		Name:        "batch_delete",
		Description: "Delete many objects in one call.",
		Params: []Param{
			{Name: "ids", Type: "array", Required: true, Description: "Object ids"},
		},
		run: runBatchDelete,
	},
	"create_template": {
		Name:        "create_template",
		Description: "Instantiate a built-in board template (swot, retro, kanban) at an anchor point.",
		Params: []Param{
			{Name: "name", Type: "string", Required: true, Description: "Template name"},
			{Name: "x", Type: "number", Description: "Anchor left edge"},
			{Name: "y", Type: "number", Description: "Anchor top edge"},
		},
		run: runCreateTemplate,
	},
	"get_board_state": {
		Name:        "get_board_state",
		Description: "Read a compact projection of the whole board: every object with its geometry, parent frame and content summary, in paint order.",
		run:         runGetBoardState,
	},
}

// cleanCreate validates one create_object argument set. A missing or
// unknown type reports false; everything else downgrades.
func cleanCreate(args map[string]any) (map[string]any, board.Kind, geom.Rect, store.Extra, bool) {
	kind, ok := kindArg(args, "type")
	if !ok {
		return nil, "", geom.Rect{}, store.Extra{}, false
	}

	rect := geom.Rect{
		X:      numArg(args, "x", 0, -maxCoord, maxCoord),
		Y:      numArg(args, "y", 0, -maxCoord, maxCoord),
		Width:  numArg(args, "width", defaultDim, board.MinSize, maxDim),
		Height: numArg(args, "height", defaultDim, board.MinSize, maxDim),
	}
	cleaned := map[string]any{
		"type":   string(kind),
		"x":      rect.X,
		"y":      rect.Y,
		"width":  rect.Width,
		"height": rect.Height,
	}

	var extra store.Extra
	switch kind {
	case board.KindSticky:
		extra.Text, _ = strArg(args, "text", maxTextRunes)
		extra.Color = enumArg(args, "color", board.ValidColor, board.DefaultColor)
		extra.TextSize = enumArg(args, "text_size", board.ValidTextSize, board.DefaultTextSize)
		cleaned["text"], cleaned["color"], cleaned["text_size"] = extra.Text, extra.Color, extra.TextSize
	case board.KindShape:
		extra.Text, _ = strArg(args, "text", maxTextRunes)
		extra.Color = enumArg(args, "color", board.ValidColor, board.DefaultColor)
		extra.ShapeType = enumArg(args, "shape_type", board.ValidShapeType, board.DefaultShapeType)
		cleaned["text"], cleaned["color"], cleaned["shape_type"] = extra.Text, extra.Color, extra.ShapeType
	case board.KindText:
		extra.Text, _ = strArg(args, "text", maxTextRunes)
		extra.Color = enumArg(args, "color", board.ValidColor, board.ColorBlack)
		extra.TextSize = enumArg(args, "text_size", board.ValidTextSize, board.DefaultTextSize)
		cleaned["text"], cleaned["color"], cleaned["text_size"] = extra.Text, extra.Color, extra.TextSize
	case board.KindConnector:
		extra.Style = enumArg(args, "style", board.ValidConnectorStyle, board.DefaultConnectorStyle)
		extra.Label, _ = strArg(args, "label", maxTitleRunes)
		extra.From = endpointArg(args, cleaned, "from")
		extra.To = endpointArg(args, cleaned, "to")
		cleaned["style"], cleaned["label"] = extra.Style, extra.Label
	case board.KindFrame:
		extra.Title, _ = strArg(args, "title", maxTitleRunes)
		cleaned["title"] = extra.Title
	case board.KindTable:
		extra.Title, _ = strArg(args, "title", maxTitleRunes)
		extra.Rows = intArg(args, "rows", 2, 1, maxTableDim)
		extra.Cols = intArg(args, "cols", 2, 1, maxTableDim)
		cleaned["title"], cleaned["rows"], cleaned["cols"] = extra.Title, extra.Rows, extra.Cols
	}
	return cleaned, kind, rect, extra, true
}

// endpointArg reads one connector endpoint: bound when <prefix>_id is
// present, free when <prefix>_x/<prefix>_y are, nil otherwise.
func endpointArg(args map[string]any, cleaned map[string]any, prefix string) *board.Endpoint {
	if id, ok := idArg(args, prefix+"_id"); ok {
		port := enumArg(args, prefix+"_port", geom.ValidPort, geom.PortN)
		cleaned[prefix+"_id"] = id
		cleaned[prefix+"_port"] = port
		return &board.Endpoint{ObjectID: id, Port: port}
	}
	x, okX := optNumArg(args, prefix+"_x", -maxCoord, maxCoord)
	y, okY := optNumArg(args, prefix+"_y", -maxCoord, maxCoord)
	if okX || okY {
		cleaned[prefix+"_x"] = x
		cleaned[prefix+"_y"] = y
		return &board.Endpoint{Point: &geom.Point{X: x, Y: y}}
	}
	return nil
}

func runCreateObject(r *Runner, args map[string]any) (map[string]any, Result) {
	cleaned, kind, rect, extra, ok := cleanCreate(args)
	if !ok {
		t, _ := args["type"].(string)
		return map[string]any{"type": t},
			Result{Code: CodeUnsupported, Error: "unknown object type"}
	}
	obj, err := r.store.Create(kind, rect.X, rect.Y, rect.Width, rect.Height, extra)
	if err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true, Data: summarize(obj)}
}

// cleanUpdate validates update_object arguments into a store patch.
func cleanUpdate(args map[string]any) (map[string]any, store.Patch) {
	cleaned := map[string]any{}
	var p store.Patch

	setNum := func(key string, dst **float64, lo, hi float64) {
		if v, ok := optNumArg(args, key, lo, hi); ok {
			*dst = &v
			cleaned[key] = v
		}
	}
	setNum("x", &p.X, -maxCoord, maxCoord)
	setNum("y", &p.Y, -maxCoord, maxCoord)
	setNum("width", &p.Width, board.MinSize, maxDim)
	setNum("height", &p.Height, board.MinSize, maxDim)
	setNum("rotation", &p.Rotation, -maxAngle, maxAngle)

	setStr := func(key string, dst **string, maxRunes int) {
		if v, ok := strArg(args, key, maxRunes); ok {
			*dst = &v
			cleaned[key] = v
		}
	}
	setStr("text", &p.Text, maxTextRunes)
	setStr("label", &p.Label, maxTitleRunes)
	setStr("title", &p.Title, maxTitleRunes)

	setTok := func(key string, dst **string, valid func(string) bool) {
		if v, ok := optEnumArg(args, key, valid); ok {
			*dst = &v
			cleaned[key] = v
		}
	}
	setTok("color", &p.Color, board.ValidColor)
	setTok("text_size", &p.TextSize, board.ValidTextSize)
	setTok("shape_type", &p.ShapeType, board.ValidShapeType)
	setTok("style", &p.Style, board.ValidConnectorStyle)

	if v, ok := optNumArg(args, "rows", 1, maxTableDim); ok {
		n := int(v)
		p.Rows = &n
		cleaned["rows"] = n
	}
	if v, ok := optNumArg(args, "cols", 1, maxTableDim); ok {
		n := int(v)
		p.Cols = &n
		cleaned["cols"] = n
	}

	p.From = endpointArg(args, cleaned, "from")
	p.To = endpointArg(args, cleaned, "to")
	return cleaned, p
}

func runUpdateObject(r *Runner, args map[string]any) (map[string]any, Result) {
	cleaned, patch := cleanUpdate(args)
	id, ok := idArg(args, "id")
	if !ok {
		return cleaned, notFound("")
	}
	cleaned["id"] = id
	if !r.exists(id) {
		return cleaned, notFound(id)
	}
	if err := r.store.Update(id, patch); err != nil {
		return cleaned, failure(err)
	}
	obj, _ := r.mirror.Get(id)
	return cleaned, Result{OK: true, Data: summarize(obj)}
}

func runDeleteObject(r *Runner, args map[string]any) (map[string]any, Result) {
	id, ok := idArg(args, "id")
	cleaned := map[string]any{"id": id}
	if !ok || !r.exists(id) {
		return cleaned, notFound(id)
	}
	if err := r.store.Delete([]string{id}); err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true}
}

func runMoveObjects(r *Runner, args map[string]any) (map[string]any, Result) {
	ids := idListArg(args, "ids")
	dx := numArg(args, "dx", 0, -maxCoord, maxCoord)
	dy := numArg(args, "dy", 0, -maxCoord, maxCoord)
	cleaned := map[string]any{"ids": ids, "dx": dx, "dy": dy}

	live := r.liveSubset(ids)
	if len(live) == 0 {
		return cleaned, notFound(firstOr(ids, ""))
	}
	if err := r.store.Move(live, dx, dy); err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true, Data: map[string]any{"moved": live}}
}

func runResizeObject(r *Runner, args map[string]any) (map[string]any, Result) {
	id, ok := idArg(args, "id")
	cleaned := map[string]any{"id": id}
	if !ok || !r.exists(id) {
		return cleaned, notFound(id)
	}
	cur, _ := r.mirror.Get(id)
	b := cur.Common()
	x := numArg(args, "x", b.X, -maxCoord, maxCoord)
	y := numArg(args, "y", b.Y, -maxCoord, maxCoord)
	w := numArg(args, "width", b.Width, board.MinSize, maxDim)
	h := numArg(args, "height", b.Height, board.MinSize, maxDim)
	cleaned["x"], cleaned["y"], cleaned["width"], cleaned["height"] = x, y, w, h

	if err := r.store.Resize(id, x, y, w, h); err != nil {
		return cleaned, failure(err)
	}
	obj, _ := r.mirror.Get(id)
	return cleaned, Result{OK: true, Data: summarize(obj)}
}

func runRotateObjects(r *Runner, args map[string]any) (map[string]any, Result) {
	ids := idListArg(args, "ids")
	deg := numArg(args, "degrees", 0, -maxAngle, maxAngle)
	cleaned := map[string]any{"ids": ids, "degrees": deg}

	var pivot *geom.Point
	px, okX := optNumArg(args, "pivot_x", -maxCoord, maxCoord)
	py, okY := optNumArg(args, "pivot_y", -maxCoord, maxCoord)
	if okX && okY {
		pivot = &geom.Point{X: px, Y: py}
		cleaned["pivot_x"], cleaned["pivot_y"] = px, py
	}

	live := r.liveSubset(ids)
	if len(live) == 0 {
		return cleaned, notFound(firstOr(ids, ""))
	}
	if err := r.store.Rotate(live, deg, pivot); err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true, Data: map[string]any{"rotated": live}}
}

func runBringToFront(r *Runner, args map[string]any) (map[string]any, Result) {
	id, ok := idArg(args, "id")
	cleaned := map[string]any{"id": id}
	if !ok || !r.exists(id) {
		return cleaned, notFound(id)
	}
	if err := r.store.BringToFront(id); err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true}
}

func runDuplicateObjects(r *Runner, args map[string]any) (map[string]any, Result) {
	ids := idListArg(args, "ids")
	dx := numArg(args, "dx", 0, -maxCoord, maxCoord)
	dy := numArg(args, "dy", 0, -maxCoord, maxCoord)
	cleaned := map[string]any{"ids": ids, "dx": dx, "dy": dy}

	live := r.liveSubset(ids)
	if len(live) == 0 {
		return cleaned, notFound(firstOr(ids, ""))
	}
	clones, err := r.store.Duplicate(live, dx, dy)
	if err != nil {
		return cleaned, failure(err)
	}
	newIDs := make([]string, len(clones))
	for i, c := range clones {
		newIDs[i] = c.Common().ID
	}
	return cleaned, Result{OK: true, Data: map[string]any{"ids": newIDs}}
}

func runBatchCreate(r *Runner, args map[string]any) (map[string]any, Result) {
	items := objListArg(args, "objects")
	cleanedItems := make([]any, 0, len(items))
	results := make([]Result, 0, len(items))
	for _, item := range items {
		cleaned, res := runCreateObject(r, item)
		cleanedItems = append(cleanedItems, cleaned)
		results = append(results, res)
	}
	return map[string]any{"objects": cleanedItems},
		Result{OK: true, Data: map[string]any{"results": results}}
}

func runBatchUpdate(r *Runner, args map[string]any) (map[string]any, Result) {
	items := objListArg(args, "updates")
	cleanedItems := make([]any, 0, len(items))
	results := make([]Result, 0, len(items))
	for _, item := range items {
		cleaned, res := runUpdateObject(r, item)
		cleanedItems = append(cleanedItems, cleaned)
		results = append(results, res)
	}
	return map[string]any{"updates": cleanedItems},
		Result{OK: true, Data: map[string]any{"results": results}}
}

func runBatchDelete(r *Runner, args map[string]any) (map[string]any, Result) {
	ids := idListArg(args, "ids")
	cleaned := map[string]any{"ids": ids}
	live := r.liveSubset(ids)
	if len(live) == 0 {
		return cleaned, notFound(firstOr(ids, ""))
	}
	if err := r.store.Delete(live); err != nil {
		return cleaned, failure(err)
	}
	return cleaned, Result{OK: true, Data: map[string]any{"deleted": live}}
}

func runCreateTemplate(r *Runner, args map[string]any) (map[string]any, Result) {
	name, _ := strArg(args, "name", maxTitleRunes)
	x := numArg(args, "x", 0, -maxCoord, maxCoord)
	y := numArg(args, "y", 0, -maxCoord, maxCoord)
	cleaned := map[string]any{"name": name, "x": x, "y": y}

	tpl, ok := r.catalog.Get(name)
	if !ok {
		return cleaned, Result{Code: CodeNotFound, Error: "unknown template " + name}
	}

	frameIDs := make([]string, 0, len(tpl.Frames))
	for _, f := range tpl.Frames {
		obj, err := r.store.Create(board.KindFrame, x+f.X, y+f.Y, f.Width, f.Height,
			store.Extra{Title: f.Title})
		if err != nil {
			return cleaned, failure(err)
		}
		frameIDs = append(frameIDs, obj.Common().ID)
	}
	return cleaned, Result{OK: true, Data: map[string]any{
		"template":  tpl.Name,
		"frame_ids": frameIDs,
	}}
}

func runGetBoardState(r *Runner, _ map[string]any) (map[string]any, Result) {
	objects, order := r.mirror.Snapshot()
	return map[string]any{}, Result{OK: true, Data: boardState(objects, order)}
}

// liveSubset filters ids down to those live in the mirror, preserving
// order.
func (r *Runner) liveSubset(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if r.exists(id) {
			out = append(out, id)
		}
	}
	return out
}

func firstOr(ids []string, def string) string {
	if len(ids) > 0 {
		return ids[0]
	}
	return def
}
