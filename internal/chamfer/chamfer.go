// Package chamfer implements the second-pass edge/corner bevel operator
// over an already-rasterized slice stack (spec.md §4.6).
package chamfer

import (
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/coords"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/rawpng"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

// black is the fixed debug overlay mark color (spec.md §4.6).
var black = [4]uint8{0, 0, 0, 255}

// Options configures one chamfer run. It is a plain struct, not a
// dynamically-typed map, per spec.md §9.
type Options struct {
	InputDir, OutputDir string
	DPI                 int
	LayerHeightNM       int
	RadiusIn            float64
	Debug               bool
}

func (o Options) layersPerInch() float64 {
	return coords.NanometersPerInch / float64(o.LayerHeightNM)
}

// AABB is the material bounding box computed in pass 1, in pixel/layer
// index space (spec.md §4.6, §3).
type AABB struct {
	X0, X1, Y0, Y1 int
	Z0, Z1         int
}

// Result reports what Chamfer did. Kind is voxerr.NoMaterial when pass 1
// found no opaque pixel anywhere (every input slice was copied unchanged),
// else the zero Kind. SlicesWritten is the number of PNGs written to
// opts.OutputDir, and MaterialAABB is the pass-1 bounding box so callers
// and tests can assert against it directly (spec.md §4.6).
type Result struct {
	Kind          voxerr.Kind
	SlicesWritten int
	MaterialAABB  AABB
}

// Chamfer executes both chamfer passes: it reads every PNG in opts.InputDir
// in natural-sort order, computes the global material AABB, carves voxels
// within opts.RadiusIn inches of any of the 12 edges or 8 corners, and
// writes the result to opts.OutputDir.
func Chamfer(opts Options) (Result, error) {
	if math.IsNaN(opts.RadiusIn) || opts.RadiusIn < 0 {
		return Result{}, voxerr.New(voxerr.InvalidParameter, "chamfer radius must be non-negative")
	}

	paths, err := listPNGs(opts.InputDir)
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, voxerr.New(voxerr.InvalidInputFile, "NoPNGInputs")
	}

	layers := make([]*image.NRGBA, len(paths))
	var width, height int
	for i, p := range paths {
		img, err := decodeNRGBA(p)
		if err != nil {
			return Result{}, voxerr.Wrap(voxerr.IOError, p, err)
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		if i == 0 {
			width, height = w, h
		} else if w != width || h != height {
			return Result{}, voxerr.New(voxerr.DimensionMismatch, p)
		}
		layers[i] = img
	}

	box, hasMaterial := globalAABB(layers, width, height)
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, voxerr.Wrap(voxerr.IOError, opts.OutputDir, err)
	}
	if !hasMaterial {
		if err := copyUnchanged(paths, opts.OutputDir); err != nil {
			return Result{}, err
		}
		return Result{Kind: voxerr.NoMaterial, SlicesWritten: len(paths)}, nil
	}

	masks, err := computeMasks(layers, width, height, box, opts)
	if err != nil {
		return Result{}, err
	}

	var prevMask []bool
	for z, img := range layers {
		out := cloneNRGBA(img)
		mask := masks[z]

		if opts.Debug {
			applyDebugOverlay(out, img, mask, prevMask, width, height, box)
		}
		carve(out, mask, width, height)

		outPath := filepath.Join(opts.OutputDir, filepath.Base(paths[z]))
		if err := writePNG(outPath, out); err != nil {
			return Result{}, voxerr.Wrap(voxerr.IOError, outPath, err)
		}
		prevMask = mask
	}
	return Result{SlicesWritten: len(layers), MaterialAABB: box}, nil
}

func listPNGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, voxerr.Wrap(voxerr.InvalidInputFile, dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func decodeNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if n, ok := img.(*image.NRGBA); ok {
		return n, nil
	}
	b := img.Bounds()
	n := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n.Set(x, y, img.At(x, y))
		}
	}
	return n, nil
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// globalAABB computes the material bounding box over every layer's
// alpha>0 pixels (spec.md §4.6 Pass 1).
func globalAABB(layers []*image.NRGBA, width, height int) (AABB, bool) {
	box := AABB{X0: width, X1: -1, Y0: height, Y1: -1, Z0: len(layers), Z1: -1}
	found := false
	for z, img := range layers {
		layerHasMaterial := false
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if img.NRGBAAt(x, y).A == 0 {
					continue
				}
				layerHasMaterial = true
				found = true
				if x < box.X0 {
					box.X0 = x
				}
				if x > box.X1 {
					box.X1 = x
				}
				if y < box.Y0 {
					box.Y0 = y
				}
				if y > box.Y1 {
					box.Y1 = y
				}
			}
		}
		if layerHasMaterial {
			if z < box.Z0 {
				box.Z0 = z
			}
			if z > box.Z1 {
				box.Z1 = z
			}
		}
	}
	return box, found
}

func copyUnchanged(paths []string, outputDir string) error {
	for _, p := range paths {
		src, err := os.Open(p)
		if err != nil {
			return voxerr.Wrap(voxerr.IOError, p, err)
		}
		dstPath := filepath.Join(outputDir, filepath.Base(p))
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			return voxerr.Wrap(voxerr.IOError, dstPath, err)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return voxerr.Wrap(voxerr.IOError, dstPath, err)
		}
	}
	return nil
}

// distances holds the six per-voxel inch distances to the material AABB's
// faces (spec.md §3, "chamfer distance frame").
type distances struct {
	dxL, dxR, dyT, dyB, dzB, dzT float64
}

func voxelDistances(x, y, z int, box AABB, dpi float64, layersPerInch float64) distances {
	return distances{
		dxL: float64(x-box.X0) / dpi,
		dxR: float64(box.X1-x) / dpi,
		dyT: float64(y-box.Y0) / dpi,
		dyB: float64(box.Y1-y) / dpi,
		dzB: float64(z-box.Z0) / layersPerInch,
		dzT: float64(box.Z1-z) / layersPerInch,
	}
}

// chamfered is the geometric test of spec.md §4.6: true if any of
// the 12 edge pairs or 8 corner triples sums to less than r.
func (d distances) chamfered(r float64) bool {
	edges := [12]float64{
		d.dxL + d.dyT, d.dxR + d.dyT, d.dxL + d.dyB, d.dxR + d.dyB,
		d.dzT + d.dxL, d.dzT + d.dxR, d.dzT + d.dyT, d.dzT + d.dyB,
		d.dzB + d.dxL, d.dzB + d.dxR, d.dzB + d.dyT, d.dzB + d.dyB,
	}
	for _, s := range edges {
		if s < r {
			return true
		}
	}
	corners := [8]float64{
		d.dzT + d.dxL + d.dyT, d.dzT + d.dxR + d.dyT, d.dzT + d.dxL + d.dyB, d.dzT + d.dxR + d.dyB,
		d.dzB + d.dxL + d.dyT, d.dzB + d.dxR + d.dyT, d.dzB + d.dxL + d.dyB, d.dzB + d.dxR + d.dyB,
	}
	for _, s := range corners {
		if s < r {
			return true
		}
	}
	return false
}

// computeMasks evaluates the chamfer predicate for every pixel of every
// layer. Each layer's mask is a pure function of (x,y,z,box,r), so all
// layers are computed concurrently (spec.md §9, "Parallelism strategy").
func computeMasks(layers []*image.NRGBA, width, height int, box AABB, opts Options) ([][]bool, error) {
	masks := make([][]bool, len(layers))
	dpi := float64(opts.DPI)
	lpi := opts.layersPerInch()

	g := new(errgroup.Group)
	for z := range layers {
		z := z
		g.Go(func() error {
			mask := make([]bool, width*height)
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					d := voxelDistances(x, y, z, box, dpi, lpi)
					mask[y*width+x] = d.chamfered(opts.RadiusIn)
				}
			}
			masks[z] = mask
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return masks, nil
}

func carve(out *image.NRGBA, mask []bool, width, height int) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y*width+x] {
				continue
			}
			off := out.PixOffset(x, y)
			if out.Pix[off+3] == 0 {
				continue
			}
			out.Pix[off+0] = 0
			out.Pix[off+1] = 0
			out.Pix[off+2] = 0
			out.Pix[off+3] = 0
		}
	}
}

// applyDebugOverlay paints one material-side neighbor of each
// newly-chamfered boundary voxel opaque black, before carving (spec.md
// §4.6, "Debug overlay").
func applyDebugOverlay(out, original *image.NRGBA, mask, prevMask []bool, width, height int, box AABB) {
	centerCol := (box.X0 + box.X1) / 2
	centerRow := (box.Y0 + box.Y1) / 2

	opaque := func(img *image.NRGBA, x, y int) bool {
		return img.NRGBAAt(x, y).A != 0
	}
	chamferedAt := func(x, y int) bool { return mask[y*width+x] }

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !opaque(original, x, y) || !chamferedAt(x, y) {
				continue
			}

			// Horizontal-edge transition: a within-slice (x,y) 4-neighbor
			// has a different chamfer state.
			horizTransition := false
			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if inBounds(n[0], n[1], width, height) && !chamferedAt(n[0], n[1]) {
					horizTransition = true
					break
				}
			}
			// Vertical-edge transition: chamfered here but not at the same
			// (x,y) on the previous layer, or this is the first layer.
			vertTransition := prevMask == nil || !prevMask[y*width+x]

			if !horizTransition && !vertTransition {
				continue
			}

			nc, nr, ok := materialSideNeighbor(x, y, centerCol, centerRow, width, height, original, mask)
			if ok {
				off := out.PixOffset(nc, nr)
				out.Pix[off+0] = black[0]
				out.Pix[off+1] = black[1]
				out.Pix[off+2] = black[2]
				out.Pix[off+3] = black[3]
			}
		}
	}
}

// materialSideNeighbor finds the first in-image, unchamfered, originally
// opaque neighbor of (x,y), preferring the cardinal directions toward
// (centerCol,centerRow), horizontal before vertical (spec.md §4.6).
func materialSideNeighbor(x, y, centerCol, centerRow, width, height int, original *image.NRGBA, mask []bool) (int, int, bool) {
	horizDir := 1
	if x > centerCol {
		horizDir = -1
	}
	vertDir := 1
	if y > centerRow {
		vertDir = -1
	}

	candidates := [4][2]int{
		{x + horizDir, y},
		{x, y + vertDir},
		{x - horizDir, y},
		{x, y - vertDir},
	}
	for _, c := range candidates {
		nc, nr := c[0], c[1]
		if !inBounds(nc, nr, width, height) {
			continue
		}
		if mask[nr*width+nc] {
			continue
		}
		if original.NRGBAAt(nc, nr).A == 0 {
			continue
		}
		return nc, nr, true
	}
	return 0, 0, false
}

func inBounds(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}

func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return rawpng.EncodeRGBA(f, img.Pix, img.Bounds().Dx(), img.Bounds().Dy())
}
