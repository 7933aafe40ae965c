package snapshot

import (
	"context"
	"log/slog"

	"github.com/mwhite-io/easel/internal/doc"
)

// Record subscribes the store to a replica's commits, appending every
// transaction to the board's update log. Persistence failures are logged
// and skipped rather than blocking the commit path; the next snapshot or
// compaction captures the full state regardless.
func (s *Store) Record(boardID string, r *doc.Replica, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	r.OnCommit(func(rec doc.TxRecord) {
		if err := s.AppendUpdate(context.Background(), boardID, rec); err != nil {
			log.Error("append update",
				"board", boardID,
				"seq", rec.Seq,
				"origin", string(rec.Origin),
				"error", err)
		}
	})
}
