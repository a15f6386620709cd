// Command voxelprint rasterizes a colored point cloud into a stack of PNG
// slices and, optionally, chamfers an existing slice stack's edges and
// corners.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/chamfer"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/coords"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/kdtree"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/raster"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/stack"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	plyPath := flag.String("ply", "", "input PLY point cloud path")
	outDir := flag.String("out", "out", "output directory for rasterized PNG slices")

	dpi := flag.Int("dpi", 300, "X/Y raster resolution in dots per inch")
	layerHeightNM := flag.Int("layer-height-nm", 27000, "Z layer thickness in nanometers")
	xIn := flag.Float64("x-in", 0, "build volume X extent in inches")
	yIn := flag.Float64("y-in", 0, "build volume Y extent in inches")
	zIn := flag.Float64("z-in", 0, "build volume Z extent in inches")
	padding := flag.Float64("padding", 0, "AABB padding ratio applied before dims/mapping")

	voxelRadiusIn := flag.Float64("voxel-radius-in", 0.01, "nearest-neighbor query radius in inches")
	shellKind := flag.String("shell", "color-by-sample", "shell policy: color-by-sample|two-band")
	rInnerIn := flag.Float64("r-inner-in", 0.005, "two-band shell inner radius in inches")
	rOuterIn := flag.Float64("r-outer-in", 0.01, "two-band shell outer radius in inches")

	fillMode := flag.String("fill", "off", "interior fill mode: off|before|after")
	fillThreshold := flag.Int("fill-threshold", 500, "opaque-pixel threshold for -fill=after")

	anisoRX := flag.Float64("aniso-rx", 0, "anisotropic X query radius in inches (0 = isotropic)")
	anisoRY := flag.Float64("aniso-ry", 0, "anisotropic Y query radius in inches (0 = isotropic)")
	anisoRZ := flag.Float64("aniso-rz", 0, "anisotropic Z query radius in inches (0 = isotropic)")

	chamferRadiusIn := flag.Float64("chamfer-radius-in", 0, "chamfer bevel radius in inches; 0 disables chamfering")
	chamferDebug := flag.Bool("chamfer-debug", false, "paint debug overlay marks on chamfer boundaries")
	chamferDir := flag.String("chamfer-dir", "", "input directory of PNG slices to chamfer (defaults to -out)")
	chamferOut := flag.String("chamfer-out", "", "output directory for chamfered slices (defaults to -chamfer-dir)")

	flag.Parse()

	if *plyPath == "" {
		fatalf("error: %s: -ply is required: %s", voxerr.InvalidParameter, "missing input path")
	}
	if *xIn <= 0 || *yIn <= 0 || *zIn <= 0 {
		fatalf("error: %s: build volume: x-in, y-in and z-in must all be positive", voxerr.InvalidParameter)
	}

	f, err := os.Open(*plyPath)
	if err != nil {
		exitWithError(voxerr.Wrap(voxerr.InvalidInputFile, *plyPath, err))
	}
	cloud, err := pointcloud.ParsePLY(f)
	f.Close()
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("loaded %d points from %s\n", len(cloud.Points), *plyPath)

	aabb := cloud.Bounds.Padded(*padding)
	phys := coords.Physical{DPI: *dpi, LayerHeightNM: *layerHeightNM, XIn: *xIn, YIn: *yIn, ZIn: *zIn}
	w, h, d := phys.Dims()
	fmt.Printf("raster dims: %dx%dx%d\n", w, h, d)

	tree := kdtree.Build(cloud.Points)

	unitsPerInch := coords.ModelUnitsPerInch(cloud.Bounds, *xIn, *yIn, *zIn)
	radius := *voxelRadiusIn * unitsPerInch

	shell := raster.ShellPolicy{Kind: raster.ColorBySample}
	switch *shellKind {
	case "color-by-sample":
		shell = raster.ShellPolicy{Kind: raster.ColorBySample}
	case "two-band":
		shell = raster.ShellPolicy{Kind: raster.TwoBand, RInner: *rInnerIn * unitsPerInch, ROuter: *rOuterIn * unitsPerInch}
	default:
		fatalf("error: %s: -shell: unknown shell policy %q", voxerr.InvalidParameter, *shellKind)
	}

	fill := raster.FillOff
	switch *fillMode {
	case "off":
		fill = raster.FillOff
	case "before":
		fill = raster.FillBeforeSampling
	case "after":
		fill = raster.FillAfterSamplingIfFilledExceeds
	default:
		fatalf("error: %s: -fill: unknown interior fill mode %q", voxerr.InvalidParameter, *fillMode)
	}

	rasterOpts := raster.Options{
		Radius:        radius,
		Shell:         shell,
		Fill:          fill,
		FillThreshold: *fillThreshold,
	}
	if *anisoRX > 0 || *anisoRY > 0 || *anisoRZ > 0 {
		rasterOpts.Anisotropic = &raster.AnisotropicRadii{
			RX: *anisoRX * unitsPerInch,
			RY: *anisoRY * unitsPerInch,
			RZ: *anisoRZ * unitsPerInch,
		}
	}

	stackOpts := stack.Options{
		Index:     tree,
		AABB:      aabb,
		W:         w,
		H:         h,
		D:         d,
		Raster:    rasterOpts,
		OutputDir: *outDir,
	}

	if *chamferRadiusIn > 0 || *chamferDir != "" {
		inputDir := *chamferDir
		if inputDir == "" {
			inputDir = *outDir
		}
		outputDir := *chamferOut
		if outputDir == "" {
			outputDir = inputDir
		}
		stackOpts.Chamfer = &chamfer.Options{
			InputDir:      inputDir,
			OutputDir:     outputDir,
			DPI:           *dpi,
			LayerHeightNM: *layerHeightNM,
			RadiusIn:      *chamferRadiusIn,
			Debug:         *chamferDebug,
		}
	}

	if err := stack.Run(stackOpts); err != nil {
		exitWithError(err)
	}
	fmt.Println("done")
}

func exitWithError(err error) {
	var ve *voxerr.Error
	if errors.As(err, &ve) {
		fmt.Fprintf(os.Stderr, "error: %s\n", ve.Error())
		switch ve.Kind {
		case voxerr.InvalidInputFile, voxerr.InvalidPLYHeader, voxerr.InvalidParameter, voxerr.DimensionMismatch:
			os.Exit(1)
		default:
			os.Exit(2)
		}
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(2)
}
