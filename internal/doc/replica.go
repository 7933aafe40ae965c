package doc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhite-io/easel/internal/board"
)

// Op records one object-map write inside a transaction. Before is nil for a
// create, After is nil for a delete; both are deep copies frozen at commit
// time, which is what makes the log invertible.
type Op struct {
	ID     string
	Before board.Object
	After  board.Object
}

// TxRecord is one committed transaction: its logical timestamp, origin tag,
// originating site, object ops in apply order, and the z-order before and
// after. TxRecords are what replicas exchange and what undo replays.
type TxRecord struct {
	Seq         int64
	Site        string
	Origin      Origin
	Ops         []Op
	OrderBefore []string
	OrderAfter  []string
}

// stamp orders concurrent writes: higher Seq wins, site id breaks ties.
// The ordering is total, so all replicas pick the same winner regardless of
// arrival order.
type stamp struct {
	Seq  int64
	Site string
}

func (s stamp) newerThan(o stamp) bool {
	if s.Seq != o.Seq {
		return s.Seq > o.Seq
	}
	return s.Site > o.Site
}

// Replica is the in-memory replicated document for one participant.
//
// Scheduling is single-threaded per participant: Replica performs no
// locking and must not be mutated from multiple goroutines. Cross-replica
// concurrency is handled by exchanging TxRecords and merging them through
// ApplyRemote with last-writer-wins per leaf field.
type Replica struct {
	site    string
	seq     int64 // Lamport clock, advanced on every local commit and remote merge
	objects map[string]board.Object
	order   []string
	log     []TxRecord

	// fieldStamps[id][field] is the stamp of the last write to that leaf
	// field; existStamps[id] orders create/delete against field writes.
	fieldStamps map[string]map[string]stamp
	existStamps map[string]stamp

	onCommit []func(TxRecord)
}

// NewReplica creates an empty replica with a fresh site id.
func NewReplica() *Replica {
	return NewReplicaWithSite(uuid.NewString())
}

// NewReplicaWithSite creates an empty replica with an explicit site id.
// Tests use fixed site ids to make tie-breaks deterministic.
func NewReplicaWithSite(site string) *Replica {
	return &Replica{
		site:        site,
		objects:     make(map[string]board.Object),
		fieldStamps: make(map[string]map[string]stamp),
		existStamps: make(map[string]stamp),
	}
}

// Site returns the replica's site id.
func (r *Replica) Site() string { return r.site }

// AdvanceSeq raises the replica's logical clock to at least seq. The
// snapshot layer calls this after restoring a board so resumed commits
// stamp above everything already persisted.
func (r *Replica) AdvanceSeq(seq int64) {
	if seq > r.seq {
		r.seq = seq
	}
}

// OnCommit registers fn to run after every locally committed transaction,
// including history replays. The undo manager and the transport layer both
// subscribe here.
func (r *Replica) OnCommit(fn func(TxRecord)) {
	r.onCommit = append(r.onCommit, fn)
}

// Get returns a deep copy of an object, or false if absent.
func (r *Replica) Get(id string) (board.Object, bool) {
	o, ok := r.objects[id]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Order returns a copy of the z-order id list, bottom to top.
func (r *Replica) Order() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of live objects.
func (r *Replica) Len() int { return len(r.objects) }

// Snapshot returns point-in-time deep copies of the object map and z-order.
func (r *Replica) Snapshot() (map[string]board.Object, []string) {
	objs := make(map[string]board.Object, len(r.objects))
	for id, o := range r.objects {
		objs[id] = o.Clone()
	}
	return objs, r.Order()
}

// History returns a copy of the committed transaction log.
func (r *Replica) History() []TxRecord {
	return append([]TxRecord(nil), r.log...)
}

// replicaTx stages writes until commit. pending maps id to the staged
// object (nil means staged delete); order is copied lazily on first
// structural change.
type replicaTx struct {
	r            *Replica
	pending      map[string]board.Object
	touched      []string // ids in first-write order, for deterministic Ops
	orderChanged bool
	order        []string
}

func (t *replicaTx) Get(id string) (board.Object, bool) {
	if o, staged := t.pending[id]; staged {
		if o == nil {
			return nil, false
		}
		return o.Clone(), true
	}
	return t.r.Get(id)
}

func (t *replicaTx) stage(id string, obj board.Object) {
	if _, seen := t.pending[id]; !seen {
		t.touched = append(t.touched, id)
	}
	t.pending[id] = obj
}

func (t *replicaTx) Set(obj board.Object) {
	t.stage(obj.Common().ID, obj.Clone())
}

func (t *replicaTx) Delete(id string) {
	t.stage(id, nil)
}

func (t *replicaTx) currentOrder() []string {
	if t.orderChanged {
		return t.order
	}
	return t.r.order
}

func (t *replicaTx) mutableOrder() *[]string {
	if !t.orderChanged {
		t.order = append([]string(nil), t.r.order...)
		t.orderChanged = true
	}
	return &t.order
}

func (t *replicaTx) Order() []string {
	return append([]string(nil), t.currentOrder()...)
}

func (t *replicaTx) PushOrder(id string) {
	order := t.mutableOrder()
	*order = append(*order, id)
}

func (t *replicaTx) RemoveOrder(id string) {
	order := t.mutableOrder()
	for i, cur := range *order {
		if cur == id {
			*order = append((*order)[:i], (*order)[i+1:]...)
			return
		}
	}
}

// Transact runs fn against a staged view and commits atomically. A nil
// error publishes all staged writes as one TxRecord; any error discards
// them all, leaving the document untouched.
func (r *Replica) Transact(origin Origin, fn func(tx Tx) error) error {
	tx := &replicaTx{r: r, pending: make(map[string]board.Object)}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.pending) == 0 && !tx.orderChanged {
		return nil // empty transaction leaves no record
	}

	r.seq++
	rec := TxRecord{
		Seq:         r.seq,
		Site:        r.site,
		Origin:      origin,
		OrderBefore: r.Order(),
	}

	for _, id := range tx.touched {
		after := tx.pending[id]
		var before board.Object
		if cur, ok := r.objects[id]; ok {
			before = cur.Clone()
		}
		if before == nil && after == nil {
			continue // delete of an absent id, nothing to record
		}
		rec.Ops = append(rec.Ops, Op{ID: id, Before: before, After: after})
		r.applyOp(id, after, stamp{Seq: rec.Seq, Site: rec.Site}, before)
	}
	if tx.orderChanged {
		r.order = tx.order
	}
	rec.OrderAfter = r.Order()

	r.log = append(r.log, rec)
	for _, fn := range r.onCommit {
		fn(rec)
	}
	return nil
}

// applyOp installs one object write and refreshes the write stamps of every
// leaf field the write changed.
func (r *Replica) applyOp(id string, after board.Object, st stamp, before board.Object) {
	if after == nil {
		delete(r.objects, id)
		delete(r.fieldStamps, id)
		r.existStamps[id] = st
		return
	}
	r.objects[id] = after.Clone()
	r.existStamps[id] = st

	fields := r.fieldStamps[id]
	if fields == nil {
		fields = make(map[string]stamp)
		r.fieldStamps[id] = fields
	}
	for field := range changedFields(before, after) {
		fields[field] = st
	}
}

// Revert applies the inverse of a committed transaction as a new history
// transaction: ops in reverse order restored to their Before values, and
// the z-order restored to its pre-transaction state.
func (r *Replica) Revert(rec TxRecord) error {
	return r.Transact(OriginHistory, func(tx Tx) error {
		for i := len(rec.Ops) - 1; i >= 0; i-- {
			op := rec.Ops[i]
			if op.Before == nil {
				tx.Delete(op.ID)
			} else {
				tx.Set(op.Before)
			}
		}
		setOrder(tx, rec.OrderBefore)
		return nil
	})
}

// Reapply replays a committed transaction forward as a new history
// transaction. Used by redo.
func (r *Replica) Reapply(rec TxRecord) error {
	return r.Transact(OriginHistory, func(tx Tx) error {
		for _, op := range rec.Ops {
			if op.After == nil {
				tx.Delete(op.ID)
			} else {
				tx.Set(op.After)
			}
		}
		setOrder(tx, rec.OrderAfter)
		return nil
	})
}

// setOrder rewrites the z-order to match want exactly.
func setOrder(tx Tx, want []string) {
	for _, id := range tx.Order() {
		tx.RemoveOrder(id)
	}
	for _, id := range want {
		tx.PushOrder(id)
	}
}

// ApplyRemote merges a transaction committed on another replica.
//
// Per leaf field the write with the newer stamp wins; a delete beats field
// writes stamped before it and loses to ones stamped after. Ids new to the
// local z-order are appended (insertion wins, position approximates the
// remote's). Applying the same remote transaction twice is harmless, and
// applying a set of transactions in any order converges to the same state
// on every replica.
func (r *Replica) ApplyRemote(rec TxRecord) error {
	if rec.Site == r.site {
		return fmt.Errorf("apply remote: transaction from own site %s", r.site)
	}
	if rec.Seq > r.seq {
		r.seq = rec.Seq
	}
	st := stamp{Seq: rec.Seq, Site: rec.Site}

	for _, op := range rec.Ops {
		if op.After == nil {
			// Remote delete: wins unless something local touched the
			// object with a newer stamp.
			if r.existStamps[op.ID].newerThan(st) || r.newestFieldStamp(op.ID).newerThan(st) {
				continue
			}
			delete(r.objects, op.ID)
			delete(r.fieldStamps, op.ID)
			r.existStamps[op.ID] = st
			r.removeOrderLocal(op.ID)
			continue
		}

		local, exists := r.objects[op.ID]
		if !exists {
			// Locally deleted with a newer stamp: the delete wins.
			if r.existStamps[op.ID].newerThan(st) {
				continue
			}
			r.objects[op.ID] = op.After.Clone()
			r.existStamps[op.ID] = st
			fields := make(map[string]stamp)
			for field := range changedFields(nil, op.After) {
				fields[field] = st
			}
			r.fieldStamps[op.ID] = fields
			continue
		}

		fields := r.fieldStamps[op.ID]
		if fields == nil {
			fields = make(map[string]stamp)
			r.fieldStamps[op.ID] = fields
		}
		merged, err := mergeFields(local, op.Before, op.After, fields, st)
		if err != nil {
			return fmt.Errorf("apply remote %s: %w", op.ID, err)
		}
		r.objects[op.ID] = merged
		if st.newerThan(r.existStamps[op.ID]) {
			r.existStamps[op.ID] = st
		}
	}

	// Membership: append ids the remote ordered that we have live objects
	// for but no z-order entry yet.
	present := make(map[string]bool, len(r.order))
	for _, id := range r.order {
		present[id] = true
	}
	for _, id := range rec.OrderAfter {
		if !present[id] {
			if _, live := r.objects[id]; live {
				r.order = append(r.order, id)
				present[id] = true
			}
		}
	}
	return nil
}

func (r *Replica) newestFieldStamp(id string) stamp {
	var newest stamp
	for _, st := range r.fieldStamps[id] {
		if st.newerThan(newest) {
			newest = st
		}
	}
	return newest
}

func (r *Replica) removeOrderLocal(id string) {
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
