package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternSourceFrameShape(t *testing.T) {
	p := NewPatternSource(64, 32, true)

	w, h := p.Dimensions()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.True(t, p.HasDepth())

	f, err := p.NextFrame()
	require.NoError(t, err)
	assert.Len(t, f.Color, 64*32*4)
	assert.Len(t, f.Depth, 64*32)

	// opaque everywhere
	for i := 3; i < len(f.Color); i += 4 {
		require.Equal(t, byte(255), f.Color[i])
	}
	// depth ramps from near (left) to far (right)
	assert.Less(t, f.Depth[0], f.Depth[63])
}

func TestPatternSourceWithoutDepth(t *testing.T) {
	p := NewPatternSource(16, 16, false)
	assert.False(t, p.HasDepth())

	f, err := p.NextFrame()
	require.NoError(t, err)
	assert.Nil(t, f.Depth)
}

func TestPatternSourceAnimates(t *testing.T) {
	p := NewPatternSource(16, 16, false)
	first, err := p.NextFrame()
	require.NoError(t, err)
	second, err := p.NextFrame()
	require.NoError(t, err)
	assert.NotEqual(t, first.Color, second.Color)
}
