// Package sliceimg implements the mutable W×H RGBA raster used for one
// build layer, plus the flood-fill primitive used to seed an interior fill
// (spec.md §3, §4.5).
package sliceimg

import "encoding/binary"

// Image is a W×H 8-bit RGBA raster. Pixels are stored as little-endian
// words R | G<<8 | B<<16 | A<<24 (spec.md §3), which — since the word is
// little-endian — is simply R,G,B,A byte order in Pix.
type Image struct {
	Width, Height int
	Pix           []byte // len == 4*Width*Height
}

// New allocates a transparent (alpha=0) image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, 4*width*height),
	}
}

// Clear zeroes every pixel (fully transparent).
func (img *Image) Clear() {
	for i := range img.Pix {
		img.Pix[i] = 0
	}
}

func (img *Image) offset(col, row int) int {
	return 4 * (row*img.Width + col)
}

// InBounds reports whether (col,row) lies inside the image.
func (img *Image) InBounds(col, row int) bool {
	return col >= 0 && col < img.Width && row >= 0 && row < img.Height
}

// SetPixel overwrites the pixel at (col,row). col and row must satisfy
// 0<=col<Width, 0<=row<Height (precondition, spec.md §4.4).
func (img *Image) SetPixel(col, row int, r, g, b, a uint8) {
	off := img.offset(col, row)
	img.Pix[off+0] = r
	img.Pix[off+1] = g
	img.Pix[off+2] = b
	img.Pix[off+3] = a
}

// GetPixel returns the RGBA value at (col,row).
func (img *Image) GetPixel(col, row int) (r, g, b, a uint8) {
	off := img.offset(col, row)
	return img.Pix[off+0], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3]
}

// CountFilled returns the number of pixels whose alpha is nonzero.
func (img *Image) CountFilled() int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

// word reads the pixel at (col,row) as its packed little-endian uint32.
func (img *Image) word(col, row int) uint32 {
	return binary.LittleEndian.Uint32(img.Pix[img.offset(col, row):])
}

// setWord writes v as the packed little-endian pixel at (col,row).
func (img *Image) setWord(col, row int, v uint32) {
	binary.LittleEndian.PutUint32(img.Pix[img.offset(col, row):], v)
}

func packRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}
