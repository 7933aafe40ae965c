package doc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mwhite-io/easel/internal/board"
)

// Field-level merge works on the JSON form of an object: each top-level key
// of the marshaled object is one leaf field ("x", "width", "children",
// "from", …). That keeps the merge independent of the concrete variant and
// reuses the single serialization defined in the board package.

// fieldMap marshals an object into its flat JSON field map. A nil object
// yields an empty map.
func fieldMap(o board.Object) (map[string]json.RawMessage, error) {
	if o == nil {
		return map[string]json.RawMessage{}, nil
	}
	raw, err := board.MarshalObject(o)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// changedFields returns the set of top-level fields whose value differs
// between before and after, including fields only one side has. Marshal
// failures degrade to "everything changed", which is safe: it only widens
// the set of stamps refreshed.
func changedFields(before, after board.Object) map[string]bool {
	bm, errB := fieldMap(before)
	am, errA := fieldMap(after)
	if errB != nil || errA != nil {
		all := map[string]bool{}
		for _, m := range []map[string]json.RawMessage{bm, am} {
			for k := range m {
				all[k] = true
			}
		}
		return all
	}

	changed := map[string]bool{}
	for k, bv := range bm {
		av, ok := am[k]
		if !ok || !bytes.Equal(bv, av) {
			changed[k] = true
		}
	}
	for k := range am {
		if _, ok := bm[k]; !ok {
			changed[k] = true
		}
	}
	return changed
}

// mergeFields folds a remote write into the local object field by field.
// Only the fields the remote transaction actually changed compete; for each
// of those the newer stamp wins and localStamps is updated in place.
func mergeFields(
	local, remoteBefore, remoteAfter board.Object,
	localStamps map[string]stamp,
	remoteStamp stamp,
) (board.Object, error) {
	localMap, err := fieldMap(local)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	remoteMap, err := fieldMap(remoteAfter)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	for field := range changedFields(remoteBefore, remoteAfter) {
		if field == "type" || field == "id" {
			continue // identity fields never merge
		}
		if localStamps[field].newerThan(remoteStamp) {
			continue // local write is newer, keep ours
		}
		if v, ok := remoteMap[field]; ok {
			localMap[field] = v
		} else {
			delete(localMap, field) // remote cleared the field
		}
		localStamps[field] = remoteStamp
	}

	mergedRaw, err := json.Marshal(localMap)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	merged, err := board.UnmarshalObject(mergedRaw)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return merged, nil
}
