// Package coords implements the pure coordinate model bridging physical
// build-volume parameters (inches, DPI, nanometer layer height) and the
// discrete raster grid, per spec.md §4.3.
package coords

import (
	"math"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"
)

// NanometersPerInch is the exact inch-to-nanometer conversion factor used
// to derive layer count from layer height (spec.md §3).
const NanometersPerInch = 25_400_000.0

// Physical describes the target build volume and raster resolution.
type Physical struct {
	DPI           int
	LayerHeightNM int
	XIn, YIn, ZIn float64
}

// Dims returns the raster width, height and layer count implied by p. Each
// dimension is at least 1 (spec.md §3).
func (p Physical) Dims() (w, h, d int) {
	w = maxInt(1, roundInt(p.XIn*float64(p.DPI)))
	h = maxInt(1, roundInt(p.YIn*float64(p.DPI)))
	d = maxInt(1, roundInt(p.ZIn*NanometersPerInch/float64(p.LayerHeightNM)))
	return w, h, d
}

// LayersPerInch is the Z-axis analogue of DPI: the number of layers per
// inch of build height (spec.md §3).
func (p Physical) LayersPerInch() float64 {
	return NanometersPerInch / float64(p.LayerHeightNM)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WorldOf maps a voxel's (col,row,z) indices to a model-space position,
// centering each voxel within its cell (spec.md §3):
// world = min + ((idx+0.5)/size) * span.
func WorldOf(col, row, z int, aabb pointcloud.AABB, w, h, d int) (x, y, zw float64) {
	x = worldAxis(col, w, aabb.Min[0], aabb.Max[0])
	y = worldAxis(row, h, aabb.Min[1], aabb.Max[1])
	zw = worldAxis(z, d, aabb.Min[2], aabb.Max[2])
	return x, y, zw
}

func worldAxis(idx, size int, min, max float64) float64 {
	span := max - min
	return min + ((float64(idx)+0.5)/float64(size))*span
}

// ModelUnitsPerInch converts an inch-space radius into model-space units
// by averaging the three per-axis model-units-per-inch ratios (spec.md
// §4.3), letting a single voxel-radius-in-inches parameter translate into
// the k-d tree's native coordinate space.
func ModelUnitsPerInch(aabb pointcloud.AABB, xIn, yIn, zIn float64) float64 {
	rx := axisRatio(aabb.Max[0]-aabb.Min[0], xIn)
	ry := axisRatio(aabb.Max[1]-aabb.Min[1], yIn)
	rz := axisRatio(aabb.Max[2]-aabb.Min[2], zIn)
	return (rx + ry + rz) / 3
}

func axisRatio(span, inches float64) float64 {
	if inches == 0 {
		return 0
	}
	return span / inches
}
