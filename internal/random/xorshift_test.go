package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStream(t *testing.T) {
	r := New()
	assert.Equal(t, uint32(3690029583), r.Uint32())
	assert.Equal(t, uint32(1298391428), r.Uint32())
	assert.Equal(t, uint32(3256827147), r.Uint32())
}

func TestFloat64(t *testing.T) {
	r := New()
	assert.Equal(t, 0.08644037466555776, r.Float64())
	assert.InDelta(t, 0.4952403123801363, r.Float64Range(0.4, 0.5), 1e-15)
}

func TestShuffleIsReproducible(t *testing.T) {
	values := []int{0, 1, 2, 3, 4}
	New().Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	assert.Equal(t, []int{3, 2, 4, 0, 1}, values)
}

func TestZeroSeed(t *testing.T) {
	_, err := NewFromSeed([4]uint32{})
	require.ErrorIs(t, err, ErrZeroSeed)
	assert.Panics(t, func() { MustFromSeed([4]uint32{}) })
}

func TestFloat64RangeRejectsEmptyRange(t *testing.T) {
	assert.Panics(t, func() { New().Float64Range(1, 1) })
}

func TestCloneForksStream(t *testing.T) {
	a := FromGameSeed(42)
	a.Uint32()
	b := a.Clone()
	assert.Equal(t, a.Uint64(), b.Uint64())
}

func TestIntnStaysInRange(t *testing.T) {
	r := FromGameSeed(7)
	for range 1000 {
		v := r.Intn(3)
		assert.True(t, v >= 0 && v < 3)
	}
}
