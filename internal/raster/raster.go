// Package raster implements the per-layer slice rasterizer: for one Z
// layer, sample every voxel center against the spatial index and paint the
// resulting pixel per the configured shell policy (spec.md §4.4).
package raster

import (
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/coords"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/kdtree"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/sliceimg"
)

// InteriorFillMode selects when (if ever) the interior flood fill runs,
// resolving spec.md §9 Open Question (a) as an explicit enum rather than a
// single ambiguous boolean.
type InteriorFillMode int

const (
	// FillOff never floods the interior.
	FillOff InteriorFillMode = iota
	// FillBeforeSampling floods the interior before the sampling loop runs,
	// so sampled pixels overwrite the flooded background where they hit.
	FillBeforeSampling
	// FillAfterSamplingIfFilledExceeds floods the interior after sampling,
	// but only when the layer's opaque pixel count exceeds FillThreshold —
	// this keeps empty layers from acquiring a spurious floor.
	FillAfterSamplingIfFilledExceeds
)

// AnisotropicRadii overrides the isotropic query radius with independent
// per-axis caps (spec.md §4.4 step 2, "anisotropic variant").
type AnisotropicRadii struct {
	RX, RY, RZ float64
}

// Options configures one Rasterize call. It is a plain struct per spec.md
// §9's explicit instruction against dynamically-typed option maps.
type Options struct {
	Index  *kdtree.Tree
	AABB   pointcloud.AABB
	W, H, D int

	// Radius is the isotropic NN query radius in model-space units, used
	// both for the query cap and for ColorBySample's own comparison.
	Radius float64

	// Anisotropic, if non-nil, replaces the isotropic radius with
	// independent per-axis caps in the NN query.
	Anisotropic *AnisotropicRadii

	Shell ShellPolicy

	Fill          InteriorFillMode
	FillThreshold int // default 500 per spec.md §6, applied by caller
}

func (o Options) queryOptions() kdtree.Options {
	qo := kdtree.NewOptions()
	if o.Anisotropic != nil {
		qo.MaxDistanceX = o.Anisotropic.RX
		qo.MaxDistanceY = o.Anisotropic.RY
		qo.MaxDistanceZ = o.Anisotropic.RZ
		return qo
	}
	qo.MaxDistance = o.Radius
	return qo
}

// Rasterize paints layer z into img, which must already be sized W×H and
// cleared (spec.md §4.4). Precondition: 0 <= z < D; img.Width == W and
// img.Height == H.
func Rasterize(img *sliceimg.Image, z int, opts Options) {
	qo := opts.queryOptions()

	if opts.Fill == FillBeforeSampling {
		floodInterior(img)
	}

	for row := 0; row < opts.H; row++ {
		for col := 0; col < opts.W; col++ {
			x, y, zw := coords.WorldOf(col, row, z, opts.AABB, opts.W, opts.H, opts.D)
			res := opts.Index.Nearest([3]float64{x, y, zw}, qo)
			if !res.Found {
				continue
			}
			r, g, b, a, paint := opts.Shell.Resolve(res.Distance, opts.Radius, res.Point.R, res.Point.G, res.Point.B)
			if paint {
				img.SetPixel(col, row, r, g, b, a)
			}
		}
	}

	if opts.Fill == FillAfterSamplingIfFilledExceeds && img.CountFilled() > opts.FillThreshold {
		floodInterior(img)
	}
}

// floodInterior seeds the flood fill at the image center with the fixed
// interior fill color (spec.md §4.4).
func floodInterior(img *sliceimg.Image) {
	img.FloodFill(img.Width/2, img.Height/2,
		interiorFillGray[0], interiorFillGray[1], interiorFillGray[2], interiorFillGray[3])
}
