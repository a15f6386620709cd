// Package stack implements the top-level driver that iterates every Z
// layer of a build, rasterizing (and optionally chamfering) each one and
// writing the resulting PNG stack to disk (spec.md §4's "stack driver",
// §5 concurrency model).
package stack

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/chamfer"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/kdtree"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/raster"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/rawpng"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/sliceimg"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

// Options configures one stack driver run. It is a plain struct, not a
// dynamically-typed map, per spec.md §9.
type Options struct {
	Index   *kdtree.Tree
	AABB    pointcloud.AABB
	W, H, D int

	Raster raster.Options

	OutputDir string

	// Chamfer, if non-nil, runs the chamfer operator with these options
	// (reading Chamfer.InputDir, writing Chamfer.OutputDir) after every
	// layer has been written.
	Chamfer *chamfer.Options
}

// Run writes one out_{z}.png per layer 0..D-1 to opts.OutputDir, fanning
// layers out across a fixed pool of runtime.GOMAXPROCS(0) workers (spec.md
// §5), each owning one sliceimg.Image buffer it clears and reuses across
// every layer it's assigned, then runs the chamfer operator if configured.
func Run(opts Options) error {
	runID := uuid.New()
	log.Printf("run %s: rasterizing %d layers (%dx%d) to %s", runID, opts.D, opts.W, opts.H, opts.OutputDir)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return voxerr.Wrap(voxerr.IOError, opts.OutputDir, err)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > opts.D {
		workers = opts.D
	}
	if workers < 1 {
		workers = 1
	}

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			img := sliceimg.New(opts.W, opts.H)
			ro := opts.Raster
			ro.Index = opts.Index
			ro.AABB = opts.AABB
			ro.W, ro.H, ro.D = opts.W, opts.H, opts.D

			for z := w; z < opts.D; z += workers {
				img.Clear()
				raster.Rasterize(img, z, ro)

				path := filepath.Join(opts.OutputDir, fmt.Sprintf("out_%d.png", z))
				f, err := os.Create(path)
				if err != nil {
					return voxerr.Wrap(voxerr.IOError, path, err)
				}
				err = rawpng.EncodeRGBA(f, img.Pix, opts.W, opts.H)
				closeErr := f.Close()
				if err != nil {
					return voxerr.Wrap(voxerr.IOError, path, err)
				}
				if closeErr != nil {
					return voxerr.Wrap(voxerr.IOError, path, closeErr)
				}
				log.Printf("run %s: wrote layer %d", runID, z)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Printf("run %s: rasterization complete", runID)

	if opts.Chamfer == nil {
		return nil
	}

	log.Printf("run %s: chamfer pass 1 (global AABB)", runID)
	result, err := chamfer.Chamfer(*opts.Chamfer)
	if err != nil {
		return err
	}
	log.Printf("run %s: chamfer pass 2 complete, kind=%s slices=%d", runID, result.Kind, result.SlicesWritten)
	return nil
}
