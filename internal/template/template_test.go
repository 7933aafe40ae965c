package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"swot", "retro", "kanban"}, cat.Names())

	swot, ok := cat.Get("swot")
	require.True(t, ok)
	assert.Equal(t, "SWOT Analysis", swot.Title)
	assert.Equal(t, 2, swot.Columns)
	require.Len(t, swot.Frames, 4)
	assert.Equal(t, "Strengths", swot.Frames[0].Title)
	assert.Equal(t, 360.0, swot.Frames[0].Width)

	_, ok = cat.Get("fishbone")
	assert.False(t, ok)
}

func TestMatchCategory(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	tests := []struct {
		title   string
		tpl     string
		matches bool
	}{
		{"Strengths", "swot", true},
		{"STRENGTHS", "swot", true},
		{"  Threats ", "swot", true},
		{"Went Well", "retro", true},
		{"In Progress", "kanban", true},
		{"Untitled", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		tplName, ok := cat.MatchCategory(tt.title)
		assert.Equal(t, tt.matches, ok, "title %q", tt.title)
		assert.Equal(t, tt.tpl, tplName, "title %q", tt.title)
	}
}

func TestCompileMissingTitle(t *testing.T) {
	_, err := compile(`
		template: broken: {
			columns: 2
			frames: [{title: "A", x: 0, y: 0, width: 100, height: 100}]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileMissingFrames(t *testing.T) {
	_, err := compile(`
		template: empty: {
			title:   "Empty"
			columns: 1
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frames")
}

func TestCompileBadDimensions(t *testing.T) {
	_, err := compile(`
		template: bad: {
			title:   "Bad"
			columns: 1
			frames: [{title: "A", x: 0, y: 0, width: 0, height: 100}]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestCompileBadColumns(t *testing.T) {
	_, err := compile(`
		template: bad: {
			title:   "Bad"
			columns: 0
			frames: [{title: "A", x: 0, y: 0, width: 100, height: 100}]
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}
