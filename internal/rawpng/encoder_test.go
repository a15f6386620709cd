package rawpng

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRGBADecodesBackToOriginalPixels(t *testing.T) {
	const w, h = 3, 2
	pix := make([]byte, 4*w*h)
	for i := range pix {
		pix[i] = byte(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRGBA(&buf, pix, w, h))

	img, err := png.Decode(&buf)
	require.NoError(t, err)

	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	require.Equal(t, w, nrgba.Bounds().Dx())
	require.Equal(t, h, nrgba.Bounds().Dy())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := nrgba.NRGBAAt(x, y)
			off := 4 * (y*w + x)
			require.Equal(t, pix[off+0], c.R)
			require.Equal(t, pix[off+1], c.G)
			require.Equal(t, pix[off+2], c.B)
			require.Equal(t, pix[off+3], c.A)
		}
	}
}

func TestEncodeRGBADeterministic(t *testing.T) {
	pix := make([]byte, 4*4*4)
	for i := range pix {
		pix[i] = byte(i)
	}

	var a, b bytes.Buffer
	require.NoError(t, EncodeRGBA(&a, pix, 4, 4))
	require.NoError(t, EncodeRGBA(&b, pix, 4, 4))
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestEncodeRGBALargeImageSpansMultipleStoredBlocks(t *testing.T) {
	const w, h = 200, 200 // 4*200*200 = 160000 bytes > one 65535 stored block
	pix := make([]byte, 4*w*h)
	for i := range pix {
		pix[i] = byte(i)
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRGBA(&buf, pix, w, h))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, w, img.Bounds().Dx())
	require.Equal(t, h, img.Bounds().Dy())
}

func TestEncodeRGBARejectsMismatchedLength(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeRGBA(&buf, make([]byte, 3), 2, 2)
	require.Error(t, err)
}

func TestPNGSignature(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRGBA(&buf, make([]byte, 4), 1, 1))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature[:]))
}
