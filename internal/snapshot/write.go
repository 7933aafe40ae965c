package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mwhite-io/easel/internal/board"
	"github.com/mwhite-io/easel/internal/doc"
)

// AppendUpdate logs one committed transaction for a board.
// Uses ON CONFLICT DO NOTHING for idempotency - a transaction replayed to
// the log twice (reconnects, retried writes) is silently ignored because
// the (board, site, seq) stamp already identifies it.
func (s *Store) AppendUpdate(ctx context.Context, boardID string, rec doc.TxRecord) error {
	var sets []board.Object
	var deletes []string
	for _, op := range rec.Ops {
		if op.After == nil {
			deletes = append(deletes, op.ID)
			continue
		}
		sets = append(sets, op.After)
	}

	setsJSON, err := board.MarshalObjects(sets)
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	deletesJSON, err := marshalIDs(deletes)
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	orderJSON, err := marshalIDs(rec.OrderAfter)
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO updates
		(board_id, site, seq, origin, sets, deletes, z_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(board_id, site, seq) DO NOTHING
	`,
		boardID,
		rec.Site,
		rec.Seq,
		string(rec.Origin),
		string(setsJSON),
		string(deletesJSON),
		string(orderJSON),
	)
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}

	return nil
}

// WriteSnapshot stores a full snapshot of the document's current state and
// returns the new snapshot's id. The snapshot records the newest logged seq
// it folds in, so loading replays only updates stamped after it. Earlier
// snapshots and the log are left in place; Compact prunes them.
func (s *Store) WriteSnapshot(ctx context.Context, boardID string, d doc.Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := insertSnapshot(ctx, tx, boardID, d)
	if err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write snapshot: commit: %w", err)
	}
	return id, nil
}

// Compact folds the board's update log into a fresh snapshot, then deletes
// the log entries and earlier snapshots the new one supersedes. The write
// and the prune commit atomically, so a crash mid-compaction never loses
// state. Returns the id of the surviving snapshot.
func (s *Store) Compact(ctx context.Context, boardID string, d doc.Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("compact: begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertSnapshot(ctx, tx, boardID, d)
	if err != nil {
		return 0, fmt.Errorf("compact: %w", err)
	}

	var through int64
	err = tx.QueryRowContext(ctx,
		`SELECT through_seq FROM snapshots WHERE id = ?`, id).Scan(&through)
	if err != nil {
		return 0, fmt.Errorf("compact: read watermark: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM updates WHERE board_id = ? AND seq <= ?`, boardID, through)
	if err != nil {
		return 0, fmt.Errorf("compact: prune updates: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE board_id = ? AND id < ?`, boardID, id)
	if err != nil {
		return 0, fmt.Errorf("compact: prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("compact: commit: %w", err)
	}
	return id, nil
}

// insertSnapshot serializes the document and inserts one snapshot row
// inside the caller's transaction.
func insertSnapshot(ctx context.Context, tx *sql.Tx, boardID string, d doc.Document) (int64, error) {
	objects, order := d.Snapshot()

	objectsJSON, err := board.MarshalObjects(serialOrder(objects, order))
	if err != nil {
		return 0, err
	}
	orderJSON, err := marshalIDs(order)
	if err != nil {
		return 0, err
	}

	// The log recorder runs on every commit, so the newest logged seq is
	// the watermark for the state we just serialized.
	var through int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM updates WHERE board_id = ?`, boardID).Scan(&through)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(board_id, taken_at, through_seq, objects, z_order)
		VALUES (?, ?, ?, ?, ?)
	`,
		boardID,
		time.Now().UTC().Format(time.RFC3339Nano),
		through,
		string(objectsJSON),
		string(orderJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// serialOrder lists objects in z-order first, then any object without a
// z-order entry sorted by id, so the serialized form is deterministic.
func serialOrder(objects map[string]board.Object, order []string) []board.Object {
	out := make([]board.Object, 0, len(objects))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if o, ok := objects[id]; ok {
			out = append(out, o)
			seen[id] = true
		}
	}
	rest := make([]string, 0, len(objects))
	for id := range objects {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, objects[id])
	}
	return out
}

// marshalIDs serializes an id list as a JSON array, never null.
func marshalIDs(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}
