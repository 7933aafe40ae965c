package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
)

// LoadLatest restores a board into a fresh replica: the newest snapshot is
// applied as a baseline transaction, then the logged updates stamped after
// it replay in (seq, site) order. Returns ErrNotFound for a board the
// store has never seen.
func (s *Store) LoadLatest(ctx context.Context, boardID string) (*doc.Replica, error) {
	var (
		through    int64
		objectsRaw string
		orderRaw   string
		haveBase   bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT through_seq, objects, z_order FROM snapshots
		WHERE board_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, boardID).Scan(&through, &objectsRaw, &orderRaw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No snapshot yet; the board may still exist as log entries.
	case err != nil:
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	default:
		haveBase = true
	}

	updates, err := s.readUpdates(ctx, boardID, through)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}
	if !haveBase && len(updates) == 0 {
		return nil, fmt.Errorf("load board %s: %w", boardID, ErrNotFound)
	}

	r := doc.NewReplica()
	if haveBase {
		if err := applyBase(r, objectsRaw, orderRaw); err != nil {
			return nil, fmt.Errorf("load board %s: %w", boardID, err)
		}
	}
	maxSeq := through
	for _, u := range updates {
		if err := u.replay(r); err != nil {
			return nil, fmt.Errorf("load board %s: replay seq %d: %w", boardID, u.seq, err)
		}
		if u.seq > maxSeq {
			maxSeq = u.seq
		}
	}

	// Resume the logical clock above everything persisted, so commits on
	// the restored replica never stamp below the snapshot watermark.
	r.AdvanceSeq(maxSeq)
	return r, nil
}

// update is one decoded log row.
type update struct {
	seq     int64
	origin  doc.Origin
	sets    []board.Object
	deletes []string
	order   []string
}

// readUpdates returns the board's log entries stamped after the watermark.
// Results are ordered deterministically: seq ascending, site as tie-break.
func (s *Store) readUpdates(ctx context.Context, boardID string, after int64) ([]update, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, origin, sets, deletes, z_order FROM updates
		WHERE board_id = ? AND seq > ?
		ORDER BY seq ASC, site COLLATE BINARY ASC
	`, boardID, after)
	if err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}
	defer rows.Close()

	updates := []update{}
	for rows.Next() {
		var (
			u          update
			origin     string
			setsRaw    string
			deletesRaw string
			orderRaw   string
		)
		if err := rows.Scan(&u.seq, &origin, &setsRaw, &deletesRaw, &orderRaw); err != nil {
			return nil, fmt.Errorf("read updates: scan: %w", err)
		}
		u.origin = doc.Origin(origin)
		if u.sets, err = board.UnmarshalObjects([]byte(setsRaw)); err != nil {
			return nil, fmt.Errorf("read updates: seq %d: %w", u.seq, err)
		}
		if err := json.Unmarshal([]byte(deletesRaw), &u.deletes); err != nil {
			return nil, fmt.Errorf("read updates: seq %d: %w", u.seq, err)
		}
		if err := json.Unmarshal([]byte(orderRaw), &u.order); err != nil {
			return nil, fmt.Errorf("read updates: seq %d: %w", u.seq, err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}
	return updates, nil
}

// replay applies one logged update to the replica under its original
// origin tag, so restored boards coalesce in undo the way live ones do.
func (u update) replay(r *doc.Replica) error {
	return r.Transact(u.origin, func(tx doc.Tx) error {
		for _, o := range u.sets {
			tx.Set(o)
		}
		for _, id := range u.deletes {
			tx.Delete(id)
		}
		rewriteOrder(tx, u.order)
		return nil
	})
}

// applyBase installs a snapshot's objects and z-order as one baseline
// transaction on an empty replica.
func applyBase(r *doc.Replica, objectsRaw, orderRaw string) error {
	objects, err := board.UnmarshalObjects([]byte(objectsRaw))
	if err != nil {
		return err
	}
	var order []string
	if err := json.Unmarshal([]byte(orderRaw), &order); err != nil {
		return fmt.Errorf("unmarshal z-order: %w", err)
	}
	return r.Transact(doc.OriginBaseline, func(tx doc.Tx) error {
		for _, o := range objects {
			tx.Set(o)
		}
		rewriteOrder(tx, order)
		return nil
	})
}

// rewriteOrder replaces the z-order with want exactly.
func rewriteOrder(tx doc.Tx, want []string) {
	for _, id := range tx.Order() {
		tx.RemoveOrder(id)
	}
	for _, id := range want {
		tx.PushOrder(id)
	}
}
