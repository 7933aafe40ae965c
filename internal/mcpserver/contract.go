package mcpserver

// ToolGuide describes the session model and the tool surface for LLM
// consumers, served as the easel://tool-guide resource.
const ToolGuide = `# Easel Board Tool Guide

All board tools operate on a private session mirror, not the shared
board. The first tool call opens a session by snapshotting the board;
nothing you do is visible to anyone until you commit.

## Session model

1. Call any read or write tool; the session opens automatically.
2. Mutate freely: failed calls (missing id, wrong object kind) return
   ` + "`" + `{ok: false, code, error}` + "`" + ` and never lose the session.
3. Call ` + "`" + `apply_to_doc` + "`" + ` to commit everything as one atomic diff, or
   ` + "`" + `discard_session` + "`" + ` to walk away with zero effect.

A long session may race with concurrent human edits to the same
objects; conflicts resolve field-wise in favor of the later writer.

## Objects

Kinds: ` + "`" + `sticky` + "`" + `, ` + "`" + `shape` + "`" + `, ` + "`" + `text` + "`" + `, ` + "`" + `connector` + "`" + `, ` + "`" + `frame` + "`" + `, ` + "`" + `table` + "`" + `.

- Color tokens: yellow, orange, red, pink, purple, blue, cyan, green,
  gray, black, white.
- Text sizes: s, m, l, xl. Shape types: rectangle, ellipse, diamond,
  triangle. Connector styles: straight, elbow, curved.
- Connector endpoints are either bound (` + "`" + `from_id` + "`" + ` + ` + "`" + `from_port` + "`" + `, one of
  n/ne/e/se/s/sw/w/nw) or free points (` + "`" + `from_x` + "`" + `/` + "`" + `from_y` + "`" + `), never both.
  Bound ids must name a live non-connector object; a ghost id fails the
  call with ` + "`" + `NOT_FOUND` + "`" + `.
- Frames contain whatever lies fully inside them; containment is
  recomputed automatically after every move or resize.

## Rules

1. Out-of-range numbers are clamped, unknown enum tokens fall back to
   defaults, and over-long strings are truncated. Invalid arguments
   never fail a call.
2. Sizes have a minimum floor; you cannot create invisible objects.
3. Resizing, rotating or recoloring a connector fails with
   ` + "`" + `UNSUPPORTED` + "`" + `; rebind its endpoints or restyle it instead.
4. Use ` + "`" + `get_board_state` + "`" + ` to orient yourself before editing; it returns
   every object in paint order with geometry and content summaries.
5. Prefer ` + "`" + `batch_create` + "`" + `/` + "`" + `batch_update` + "`" + `/` + "`" + `batch_delete` + "`" + ` for bulk work;
   items fail individually.
6. ` + "`" + `create_template` + "`" + ` lays down a ready-made frame set (swot, retro,
   kanban) at an anchor point.

## Layout help

When you create frames with template titles (for example the four SWOT
quadrants) and their rectangles overlap, the commit step relays them
into a clean grid automatically. An outer frame titled like the
template ("SWOT Analysis") is resized to wrap the others. Do not spend
calls pixel-tuning template layouts.
`
