package agent

import (
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/mwhite-io/easel/internal/board"
)

// Argument sanitation limits. Invalid input never aborts a call: numbers
// clamp into these ranges, unknown enum tokens fall back to defaults,
// and strings are NFC-normalized then capped. The external tool-calling
// layer publishes its own schema, but the runner re-validates every
// field so it stays correct when called directly.
const (
	maxCoord = 1_000_000.0
	maxDim   = 100_000.0
	maxAngle = 100_000.0

	maxTextRunes  = 4000
	maxTitleRunes = 200
	maxIDRunes    = 64

	maxBatchItems = 200
	maxIDList     = 500
	maxTableDim   = 50

	defaultDim = 200.0
)

// floatArg coerces a decoded JSON value to float64. Non-numeric values
// and NaN/Inf report false.
func floatArg(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numArg reads args[key] clamped into [lo, hi], with def when absent or
// non-numeric.
func numArg(args map[string]any, key string, def, lo, hi float64) float64 {
	f, ok := floatArg(args[key])
	if !ok {
		return def
	}
	return clamp(f, lo, hi)
}

// optNumArg is numArg for patch-style calls: absent or non-numeric
// fields stay untouched rather than defaulting.
func optNumArg(args map[string]any, key string, lo, hi float64) (float64, bool) {
	v, present := args[key]
	if !present {
		return 0, false
	}
	f, ok := floatArg(v)
	if !ok {
		return 0, false
	}
	return clamp(f, lo, hi), true
}

func intArg(args map[string]any, key string, def, lo, hi int) int {
	f, ok := floatArg(args[key])
	if !ok {
		return def
	}
	return int(clamp(math.Trunc(f), float64(lo), float64(hi)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// strArg reads args[key] NFC-normalized and capped to maxRunes. Absent
// or non-string values report false.
func strArg(args map[string]any, key string, maxRunes int) (string, bool) {
	s, ok := args[key].(string)
	if !ok {
		return "", false
	}
	return capRunes(norm.NFC.String(s), maxRunes), true
}

func capRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// enumArg restricts args[key] to the allow-list, falling back to def.
func enumArg(args map[string]any, key string, valid func(string) bool, def string) string {
	s, ok := args[key].(string)
	if !ok || !valid(s) {
		return def
	}
	return s
}

// optEnumArg is enumArg for patches: absent or invalid tokens leave the
// field untouched.
func optEnumArg(args map[string]any, key string, valid func(string) bool) (string, bool) {
	s, ok := args[key].(string)
	if !ok || !valid(s) {
		return "", false
	}
	return s, true
}

// idArg reads a required object id. Ids are opaque but still capped so
// a malformed blob cannot ride along into the call log.
func idArg(args map[string]any, key string) (string, bool) {
	s, ok := strArg(args, key, maxIDRunes)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// idListArg reads an id array, dropping non-string and empty entries and
// capping the list length. Order is preserved.
func idListArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		ids = append(ids, capRunes(norm.NFC.String(s), maxIDRunes))
		if len(ids) == maxIDList {
			break
		}
	}
	return ids
}

// objListArg reads an array of argument objects for the batch tools.
func objListArg(args map[string]any, key string) []map[string]any {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, m)
		if len(items) == maxBatchItems {
			break
		}
	}
	return items
}

// kindArg reads the object type token. There is no sensible default
// kind, so this is the one enum that does not downgrade; callers turn
// a miss into a structured failure.
func kindArg(args map[string]any, key string) (board.Kind, bool) {
	s, ok := args[key].(string)
	if !ok {
		return "", false
	}
	k := board.Kind(s)
	switch k {
	case board.KindSticky, board.KindShape, board.KindText,
		board.KindConnector, board.KindFrame, board.KindTable:
		return k, true
	}
	return "", false
}
