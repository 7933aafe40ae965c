// Package agent implements the batch tool runner: an offline mirror of
// the board mutated by an out-of-process automated agent through a
// validated tool surface, committed back to the live document as one
// minimal, atomic diff.
//
// Construction snapshots the live document; every tool call runs against
// that private mirror through the same object store logic the
// interactive path uses, so both mutators enforce identical invariants.
// Discarding a Runner without calling ApplyToDoc leaves the live
// document untouched.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/store"
	"github.com/mwhite-io/easel/internal/template"
)

// Structured failure codes carried in Result.Code. These are call-level
// failures the agent can recover from; only an unknown tool name aborts
// the call with a Go error.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeUnsupported = "UNSUPPORTED"
)

// Result is the outcome of one tool call. A false OK carries a failure
// code and message; Data holds tool-specific payload.
type Result struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// CallRecord is one entry of the session's call log: the tool name, the
// arguments as they looked after validation, and the result.
type CallRecord struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Result Result         `json:"result"`
}

// UnknownToolError aborts a call against a tool name the registry does
// not know. Unlike every other failure it is a hard error, not a
// Result, so the caller cannot mistake a typo for a recoverable miss.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ApplyResult is what ApplyToDoc hands back: the three disjoint id sets
// of the committed diff plus the full call log.
type ApplyResult struct {
	CreatedIDs []string     `json:"createdIds"`
	UpdatedIDs []string     `json:"updatedIds"`
	DeletedIDs []string     `json:"deletedIds"`
	Calls      []CallRecord `json:"calls"`
}

// Runner drives one agent session against a private mirror of the live
// document. It is exclusively owned by the session and never shared.
type Runner struct {
	live    doc.Document
	mirror  *mirror
	store   *store.Store
	catalog *template.Catalog
	log     *slog.Logger

	baseline map[string]bool // ids present at snapshot time
	created  map[string]bool
	updated  map[string]bool
	deleted  map[string]bool

	calls   []CallRecord
	applied bool
}

// Option configures a Runner.
type Option func(*Runner, *[]store.Option)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner, _ *[]store.Option) { r.log = l }
}

// WithCatalog overrides the template catalog.
func WithCatalog(c *template.Catalog) Option {
	return func(r *Runner, _ *[]store.Option) { r.catalog = c }
}

// WithIDFunc overrides id generation for objects the session creates.
func WithIDFunc(fn func() string) Option {
	return func(_ *Runner, so *[]store.Option) {
		*so = append(*so, store.WithIDFunc(fn))
	}
}

// WithActor sets the participant id recorded on created objects.
func WithActor(actor string) Option {
	return func(_ *Runner, so *[]store.Option) {
		*so = append(*so, store.WithActor(actor))
	}
}

// New snapshots the live document and returns a Runner over the copy.
// The snapshot is frozen here; concurrent edits to the live document are
// invisible to the session and reconciled field-wise at apply time.
func New(live doc.Document, opts ...Option) (*Runner, error) {
	r := &Runner{
		live:    live,
		mirror:  newMirror(live),
		log:     slog.Default(),
		created: make(map[string]bool),
		updated: make(map[string]bool),
		deleted: make(map[string]bool),
	}

	var storeOpts []store.Option
	for _, opt := range opts {
		opt(r, &storeOpts)
	}

	if r.catalog == nil {
		cat, err := template.Load()
		if err != nil {
			return nil, fmt.Errorf("agent: load template catalog: %w", err)
		}
		r.catalog = cat
	}

	r.baseline = make(map[string]bool, r.mirror.Len())
	for id := range r.mirror.objects {
		r.baseline[id] = true
	}
	r.mirror.onCommit = r.track

	storeOpts = append(storeOpts, store.WithLogger(r.log))
	r.store = store.New(r.mirror, storeOpts...)
	return r, nil
}

// track folds one mirror transaction into the three diff sets, keeping
// them disjoint and minimal: a created-then-touched id stays only in
// created, a deleted id is purged from the other two, and a
// created-then-deleted id vanishes entirely.
func (r *Runner) track(sets, deletes []string) {
	for _, id := range sets {
		if r.created[id] {
			continue
		}
		if r.baseline[id] {
			r.updated[id] = true
		} else {
			r.created[id] = true
		}
	}
	for _, id := range deletes {
		if r.created[id] {
			delete(r.created, id)
			continue
		}
		delete(r.updated, id)
		r.deleted[id] = true
	}
}

// Call dispatches one validated tool call against the mirror and appends
// it to the call log. Unknown tool names return UnknownToolError; every
// other failure comes back as a Result with OK false.
func (r *Runner) Call(name string, args map[string]any) (Result, error) {
	tool, ok := registry[name]
	if !ok {
		return Result{}, &UnknownToolError{Name: name}
	}
	cleaned, res := tool.run(r, args)
	r.calls = append(r.calls, CallRecord{Tool: name, Args: cleaned, Result: res})
	r.log.Debug("agent.call", "tool", name, "ok", res.OK)
	return res, nil
}

// Calls returns the call log so far.
func (r *Runner) Calls() []CallRecord {
	out := make([]CallRecord, len(r.calls))
	copy(out, r.calls)
	return out
}

// ApplyToDoc post-processes newly created frames, then commits the
// session's diff into the live document in one transaction: created and
// updated records are written, created ids are appended to the shared
// z-order where absent, deletions are purged together with any live
// references to them. A Runner applies at most once.
func (r *Runner) ApplyToDoc() (*ApplyResult, error) {
	if r.applied {
		return nil, fmt.Errorf("agent: session already applied")
	}

	r.postProcessFrames()

	err := r.live.Transact(doc.OriginAgent, func(tx doc.Tx) error {
		inOrder := make(map[string]bool)
		for _, id := range tx.Order() {
			inOrder[id] = true
		}

		// Created ids follow the mirror's z-order so stacked creations
		// keep their relative paint order.
		for _, id := range r.mirror.order {
			if !r.created[id] {
				continue
			}
			obj, ok := r.mirror.Get(id)
			if !ok {
				continue
			}
			tx.Set(obj)
			if !inOrder[id] {
				tx.PushOrder(id)
			}
		}

		for _, id := range sortedIDs(r.updated) {
			obj, ok := r.mirror.Get(id)
			if !ok {
				continue
			}
			tx.Set(obj)
		}

		if len(r.deleted) > 0 {
			store.PurgeRefs(tx, r.deleted)
			for _, id := range sortedIDs(r.deleted) {
				tx.Delete(id)
				tx.RemoveOrder(id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.applied = true

	res := &ApplyResult{
		CreatedIDs: createdInOrder(r.created, r.mirror.order),
		UpdatedIDs: sortedIDs(r.updated),
		DeletedIDs: sortedIDs(r.deleted),
		Calls:      r.Calls(),
	}
	r.log.Info("agent.apply",
		"created", len(res.CreatedIDs),
		"updated", len(res.UpdatedIDs),
		"deleted", len(res.DeletedIDs),
		"calls", len(res.Calls))
	return res, nil
}

func sortedIDs(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func createdInOrder(created map[string]bool, order []string) []string {
	out := make([]string, 0, len(created))
	for _, id := range order {
		if created[id] {
			out = append(out, id)
		}
	}
	return out
}

// exists reports whether the id is live in the mirror.
func (r *Runner) exists(id string) bool {
	_, ok := r.mirror.Get(id)
	return ok
}

// notFound builds the structured miss result.
func notFound(id string) Result {
	return Result{Code: CodeNotFound, Error: fmt.Sprintf("no object %q", id)}
}

// failure converts a store error into a structured result. An endpoint
// bound to a missing object is a miss, not a variant mismatch.
func failure(err error) Result {
	var missing *store.MissingEndpointError
	if errors.As(err, &missing) {
		return Result{Code: CodeNotFound, Error: err.Error()}
	}
	return Result{Code: CodeUnsupported, Error: err.Error()}
}
