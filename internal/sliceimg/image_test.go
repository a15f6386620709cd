package sliceimg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsTransparent(t *testing.T) {
	img := New(3, 2)
	require.Equal(t, 24, len(img.Pix))
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			_, _, _, a := img.GetPixel(col, row)
			require.Zero(t, a)
		}
	}
	require.Equal(t, 0, img.CountFilled())
}

func TestSetGetPixel(t *testing.T) {
	img := New(2, 2)
	img.SetPixel(1, 0, 10, 20, 30, 255)
	r, g, b, a := img.GetPixel(1, 0)
	require.Equal(t, uint8(10), r)
	require.Equal(t, uint8(20), g)
	require.Equal(t, uint8(30), b)
	require.Equal(t, uint8(255), a)
	require.Equal(t, 1, img.CountFilled())
}

func TestClear(t *testing.T) {
	img := New(2, 2)
	img.SetPixel(0, 0, 1, 2, 3, 255)
	img.Clear()
	require.Equal(t, 0, img.CountFilled())
}

func TestPixelWordIsLittleEndianRGBA(t *testing.T) {
	img := New(1, 1)
	img.SetPixel(0, 0, 0x11, 0x22, 0x33, 0x44)
	require.Equal(t, uint32(0x44332211), img.word(0, 0))
}
