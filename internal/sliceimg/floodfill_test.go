package sliceimg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario D: 4x4 all-transparent image, seed at (1,1).
func TestFloodFillWholeImage(t *testing.T) {
	img := New(4, 4)
	changed := img.FloodFill(1, 1, 10, 20, 30, 255)
	require.Equal(t, 16, changed)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r, g, b, a := img.GetPixel(col, row)
			require.Equal(t, uint8(10), r)
			require.Equal(t, uint8(20), g)
			require.Equal(t, uint8(30), b)
			require.Equal(t, uint8(255), a)
		}
	}
}

func TestFloodFillNoopWhenFillEqualsTarget(t *testing.T) {
	img := New(4, 4)
	changed := img.FloodFill(0, 0, 0, 0, 0, 0)
	require.Equal(t, 0, changed)
}

func TestFloodFillOutOfBoundsSeed(t *testing.T) {
	img := New(4, 4)
	require.Equal(t, 0, img.FloodFill(-1, 0, 1, 1, 1, 1))
	require.Equal(t, 0, img.FloodFill(4, 0, 1, 1, 1, 1))
}

func TestFloodFillRespectsBarrier(t *testing.T) {
	img := New(5, 1)
	img.SetPixel(2, 0, 9, 9, 9, 9) // barrier pixel, not the fill target
	changed := img.FloodFill(0, 0, 1, 2, 3, 255)
	require.Equal(t, 2, changed) // only columns 0,1 match the original target
	r, g, b, a := img.GetPixel(0, 0)
	require.Equal(t, [4]uint8{1, 2, 3, 255}, [4]uint8{r, g, b, a})
	_, _, _, a2 := img.GetPixel(3, 0)
	require.Zero(t, a2) // unreachable past the barrier
}

// Invariant 5: idempotent re-run produces no further changes.
func TestFloodFillIdempotent(t *testing.T) {
	img := New(4, 4)
	first := img.FloodFill(0, 0, 5, 5, 5, 5)
	require.Equal(t, 16, first)
	second := img.FloodFill(0, 0, 5, 5, 5, 5)
	require.Equal(t, 0, second)
}
