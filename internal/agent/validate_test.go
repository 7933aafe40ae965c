package agent

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwhite-io/easel/internal/board"
)

func TestFloatArg(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 4.5, 4.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"string", "12", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(-1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := floatArg(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumArg_ClampsIntoRange(t *testing.T) {
	args := map[string]any{"x": 1e12, "y": -1e12}
	assert.Equal(t, maxCoord, numArg(args, "x", 0, -maxCoord, maxCoord))
	assert.Equal(t, -maxCoord, numArg(args, "y", 0, -maxCoord, maxCoord))
	assert.Equal(t, 42.0, numArg(args, "missing", 42, -maxCoord, maxCoord))
}

func TestStrArg_NormalizesAndCaps(t *testing.T) {
	// e + combining acute composes to a single rune under NFC.
	composed := "café"
	s, ok := strArg(map[string]any{"text": composed}, "text", maxTextRunes)
	assert.True(t, ok)
	assert.Equal(t, "café", s)

	long := strings.Repeat("x", maxTextRunes+100)
	s, _ = strArg(map[string]any{"text": long}, "text", maxTextRunes)
	assert.Len(t, s, maxTextRunes)

	_, ok = strArg(map[string]any{"text": 7}, "text", maxTextRunes)
	assert.False(t, ok)
}

func TestEnumArg(t *testing.T) {
	args := map[string]any{"color": "blue", "bad": "chartreuse"}
	assert.Equal(t, "blue", enumArg(args, "color", board.ValidColor, board.DefaultColor))
	assert.Equal(t, board.DefaultColor, enumArg(args, "bad", board.ValidColor, board.DefaultColor))
	assert.Equal(t, board.DefaultColor, enumArg(args, "missing", board.ValidColor, board.DefaultColor))
}

func TestIDListArg_DropsJunk(t *testing.T) {
	args := map[string]any{"ids": []any{"a", 7, "", "b", true, "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, idListArg(args, "ids"))
	assert.Nil(t, idListArg(map[string]any{"ids": "a"}, "ids"))
}

func TestKindArg(t *testing.T) {
	k, ok := kindArg(map[string]any{"type": "frame"}, "type")
	assert.True(t, ok)
	assert.Equal(t, board.KindFrame, k)

	_, ok = kindArg(map[string]any{"type": "portal"}, "type")
	assert.False(t, ok)
}
