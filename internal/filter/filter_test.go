package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f, err := New(nil)
	require.NoError(t, err)

	assert.True(t, f.Match("shot.png"))
	assert.True(t, f.Match("anything"))
}

func TestPatternsMatchBaseNames(t *testing.T) {
	assert := assert.New(t)

	f, err := New([]string{"*.png", "*.jpg"})
	require.NoError(t, err)

	assert.True(f.Match("shot.png"))
	assert.True(f.Match("photo.jpg"))
	assert.False(f.Match("notes.txt"))
	assert.False(f.Match("png"))
}

func TestBadPatternIsRejected(t *testing.T) {
	_, err := New([]string{"[unterminated"})
	assert.Error(t, err)
}
