package chamfer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/coords"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/rawpng"
	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

func writeOpaqueSlice(t *testing.T, dir string, z, width, height int) string {
	t.Helper()
	pix := make([]byte, 4*width*height)
	for i := 0; i < width*height; i++ {
		pix[4*i+0] = 255
		pix[4*i+1] = 255
		pix[4*i+2] = 255
		pix[4*i+3] = 255
	}
	path := filepath.Join(dir, "out_"+itoa(z)+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, rawpng.EncodeRGBA(f, pix, width, height))
	return path
}

func writeTransparentSlice(t *testing.T, dir string, z, width, height int) string {
	t.Helper()
	pix := make([]byte, 4*width*height)
	path := filepath.Join(dir, "out_"+itoa(z)+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, rawpng.EncodeRGBA(f, pix, width, height))
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

func readAlpha(t *testing.T, path string, x, y int) uint8 {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	_, _, _, a := img.At(x, y).RGBA()
	return uint8(a >> 8)
}

// Scenario E: 10-slice stack of 300x300 fully-opaque white over a 1x1x1
// inch cuboid, chamfer radius 0.1 in.
func TestChamferEdgeScenarioE(t *testing.T) {
	const width, height, layers = 300, 300, 10
	dpi := 300
	layersPerInch := 10.0
	layerHeightNM := int(coords.NanometersPerInch / layersPerInch)

	inDir := t.TempDir()
	outDir := t.TempDir()
	for z := 0; z < layers; z++ {
		writeOpaqueSlice(t, inDir, z, width, height)
	}

	result, err := Chamfer(Options{
		InputDir:      inDir,
		OutputDir:     outDir,
		DPI:           dpi,
		LayerHeightNM: layerHeightNM,
		RadiusIn:      0.1,
	})
	require.NoError(t, err)
	require.Equal(t, voxerr.Kind(0), result.Kind)
	require.Equal(t, layers, result.SlicesWritten)
	require.Equal(t, AABB{X0: 0, X1: width - 1, Y0: 0, Y1: height - 1, Z0: 0, Z1: layers - 1}, result.MaterialAABB)

	cornerPath := filepath.Join(outDir, "out_0.png")
	require.Zero(t, readAlpha(t, cornerPath, 0, 0), "corner voxel must always be carved")

	centerPath := filepath.Join(outDir, "out_5.png")
	require.NotZero(t, readAlpha(t, centerPath, width/2, height/2), "center voxel must never be carved")
}

func TestChamferRadiusZeroIsNoop(t *testing.T) {
	const width, height, layers = 10, 10, 3
	inDir := t.TempDir()
	outDir := t.TempDir()
	for z := 0; z < layers; z++ {
		writeOpaqueSlice(t, inDir, z, width, height)
	}

	result, err := Chamfer(Options{
		InputDir:      inDir,
		OutputDir:     outDir,
		DPI:           300,
		LayerHeightNM: 2540000,
		RadiusIn:      0,
	})
	require.NoError(t, err)
	require.Equal(t, layers, result.SlicesWritten)

	for z := 0; z < layers; z++ {
		require.NotZero(t, readAlpha(t, filepath.Join(outDir, "out_"+itoa(z)+".png"), 0, 0))
	}
}

// When pass 1 finds no opaque pixel anywhere, Chamfer copies every input
// slice unchanged and reports Kind == voxerr.NoMaterial (spec.md §7, §4.6).
func TestChamferNoMaterialCopiesUnchanged(t *testing.T) {
	const width, height, layers = 10, 10, 3
	inDir := t.TempDir()
	outDir := t.TempDir()
	for z := 0; z < layers; z++ {
		writeTransparentSlice(t, inDir, z, width, height)
	}

	result, err := Chamfer(Options{
		InputDir:      inDir,
		OutputDir:     outDir,
		DPI:           300,
		LayerHeightNM: 2540000,
		RadiusIn:      0.1,
	})
	require.NoError(t, err)
	require.Equal(t, voxerr.NoMaterial, result.Kind)
	require.Equal(t, layers, result.SlicesWritten)
	require.Equal(t, AABB{}, result.MaterialAABB)

	for z := 0; z < layers; z++ {
		require.Zero(t, readAlpha(t, filepath.Join(outDir, "out_"+itoa(z)+".png"), 0, 0))
	}
}

func TestChamferNegativeRadiusRejected(t *testing.T) {
	_, err := Chamfer(Options{InputDir: t.TempDir(), OutputDir: t.TempDir(), RadiusIn: -1})
	require.Error(t, err)
}

func TestChamferDimensionMismatch(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeOpaqueSlice(t, inDir, 0, 10, 10)
	writeOpaqueSlice(t, inDir, 1, 12, 10)

	_, err := Chamfer(Options{InputDir: inDir, OutputDir: outDir, DPI: 300, LayerHeightNM: 27000, RadiusIn: 0.1})
	require.Error(t, err)
}

func TestNaturalSortOrdering(t *testing.T) {
	names := []string{"out_10.png", "out_2.png", "out_1.png"}
	require.True(t, naturalLess(names[2], names[1]))
	require.True(t, naturalLess(names[1], names[0]))
}

func TestChamferDebugOverlayMarksBoundary(t *testing.T) {
	const width, height, layers = 100, 100, 6
	dpi := 300
	layersPerInch := 6.0
	layerHeightNM := int(coords.NanometersPerInch / layersPerInch)

	inDir := t.TempDir()
	outDir := t.TempDir()
	for z := 0; z < layers; z++ {
		writeOpaqueSlice(t, inDir, z, width, height)
	}

	_, err := Chamfer(Options{
		InputDir:      inDir,
		OutputDir:     outDir,
		DPI:           dpi,
		LayerHeightNM: layerHeightNM,
		RadiusIn:      0.03,
		Debug:         true,
	})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(outDir, "out_0.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	foundBlack := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !foundBlack; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r == 0 && g == 0 && bl == 0 && a>>8 == 255 {
				foundBlack = true
				break
			}
		}
	}
	require.True(t, foundBlack, "expected at least one debug overlay mark on the first layer")
}
