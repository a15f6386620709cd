package pointcloud

// Point is a single colored 3D sample. Points are value types; once a Cloud
// is built, its Points are never mutated.
type Point struct {
	X, Y, Z float64

	// HasColor is false when the source PLY declared no RGB properties.
	HasColor   bool
	R, G, B, A uint8
}

// Vec returns the point's position as a plain 3-tuple.
func (p Point) Vec() (x, y, z float64) { return p.X, p.Y, p.Z }
