package pointcloud

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

func TestParsePLYASCII(t *testing.T) {
	src := strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"comment generated for a test",
		"element vertex 2",
		"property float x",
		"property float y",
		"property float z",
		"property uchar red",
		"property uchar green",
		"property uchar blue",
		"element face 1",
		"property list uchar int vertex_indices",
		"end_header",
		"0 0 0 255 0 0",
		"1 2 3 0 255 0",
		"3 0 1 2",
		"",
	}, "\n")

	cloud, err := ParsePLY(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cloud.Points, 2)

	want := []Point{
		{X: 0, Y: 0, Z: 0, HasColor: true, R: 255, G: 0, B: 0, A: 255},
		{X: 1, Y: 2, Z: 3, HasColor: true, R: 0, G: 255, B: 0, A: 255},
	}
	if diff := cmp.Diff(want, cloud.Points); diff != "" {
		t.Errorf("parsed points mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, [3]float64{0, 0, 0}, cloud.Bounds.Min)
	require.Equal(t, [3]float64{1, 2, 3}, cloud.Bounds.Max)
}

func TestParsePLYBinaryLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\nelement vertex 1\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	buf.WriteString("property uchar r\nproperty uchar g\nproperty uchar b\nproperty uchar a\n")
	buf.WriteString("end_header\n")

	writeF32 := func(v float32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
	writeF32(1.5)
	writeF32(-2.5)
	writeF32(0)
	buf.WriteByte(10)
	buf.WriteByte(20)
	buf.WriteByte(30)
	buf.WriteByte(128)

	cloud, err := ParsePLY(&buf)
	require.NoError(t, err)
	require.Len(t, cloud.Points, 1)

	want := Point{X: 1.5, Y: -2.5, Z: 0, HasColor: true, R: 10, G: 20, B: 30, A: 128}
	if diff := cmp.Diff(want, cloud.Points[0]); diff != "" {
		t.Errorf("parsed point mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePLYMissingEndHeader(t *testing.T) {
	src := "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\n"
	_, err := ParsePLY(strings.NewReader(src))
	require.Error(t, err)
	var ve *voxerr.Error
	require.True(t, errors.As(err, &ve))
	require.Equal(t, voxerr.InvalidPLYHeader, ve.Kind)
}

func TestParsePLYMissingCoordinate(t *testing.T) {
	src := strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"element vertex 1",
		"property float x",
		"property float y",
		"end_header",
		"0 0",
		"",
	}, "\n")
	_, err := ParsePLY(strings.NewReader(src))
	require.Error(t, err)
	var ve *voxerr.Error
	require.True(t, errors.As(err, &ve))
	require.Equal(t, voxerr.InvalidPLYHeader, ve.Kind)
}

func TestParsePLYMissingVertexElement(t *testing.T) {
	src := strings.Join([]string{
		"ply",
		"format ascii 1.0",
		"element face 0",
		"property list uchar int vertex_indices",
		"end_header",
		"",
	}, "\n")
	_, err := ParsePLY(strings.NewReader(src))
	require.Error(t, err)
	var ve *voxerr.Error
	require.True(t, errors.As(err, &ve))
	require.Equal(t, voxerr.InvalidPLYHeader, ve.Kind)
}

func TestNormalizeChannel(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{128, 128},
		{300, 255},
		{-10, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, normalizeChannel(c.in), "input %v", c.in)
	}
}
