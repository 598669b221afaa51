package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceToBytesFloat32(t *testing.T) {
	data := []float32{1.5, -2.25}

	b := SliceToBytes(data)

	require.Len(t, b, 8)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])))
	assert.Equal(t, float32(-2.25), math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])))
}

func TestSliceToBytesEmpty(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))
	assert.Nil(t, SliceToBytes([]uint16{}))
}

func TestBytesToSliceRoundTrip(t *testing.T) {
	original := []float32{0, 1, -1, 0.5, math.MaxFloat32}

	view, ok := BytesToSlice[float32](SliceToBytes(original))

	require.True(t, ok)
	assert.Equal(t, original, view)
}

func TestBytesToSliceSharesMemory(t *testing.T) {
	original := []uint32{7, 8}
	b := SliceToBytes(original)

	view, ok := BytesToSlice[uint32](b)

	require.True(t, ok)
	original[0] = 99
	assert.Equal(t, uint32(99), view[0], "the view aliases the source bytes")
}

func TestBytesToSliceOddLength(t *testing.T) {
	view, ok := BytesToSlice[float32]([]byte{1, 2, 3})

	assert.False(t, ok)
	assert.Nil(t, view)
}

func TestBytesToSliceMisalignedBase(t *testing.T) {
	// Reslicing one byte into an aligned allocation leaves a base address that
	// cannot carry float32 elements.
	backing := SliceToBytes([]float32{1, 2, 3})

	view, ok := BytesToSlice[float32](backing[1:9])

	assert.False(t, ok)
	assert.Nil(t, view)
}

func TestBytesToSliceEmpty(t *testing.T) {
	view, ok := BytesToSlice[float32](nil)

	assert.True(t, ok)
	assert.Nil(t, view)
}

func TestBytesToSliceUint16(t *testing.T) {
	view, ok := BytesToSlice[uint16]([]byte{0x01, 0x00, 0xFF, 0xFF})

	require.True(t, ok)
	assert.Equal(t, []uint16{1, 65535}, view)
}
