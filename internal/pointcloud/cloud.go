package pointcloud

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max [3]float64
}

// Cloud is an immutable, ordered sequence of Points plus a precomputed AABB.
type Cloud struct {
	Points []Point
	Bounds AABB
}

// NewCloud computes the AABB for points and returns the resulting Cloud.
// Both Min and Max are (0,0,0) for an empty set, per spec.md §3.
func NewCloud(points []Point) Cloud {
	c := Cloud{Points: points}
	if len(points) == 0 {
		return c
	}
	min := [3]float64{points[0].X, points[0].Y, points[0].Z}
	max := min
	for _, p := range points[1:] {
		if p.X < min[0] {
			min[0] = p.X
		}
		if p.Y < min[1] {
			min[1] = p.Y
		}
		if p.Z < min[2] {
			min[2] = p.Z
		}
		if p.X > max[0] {
			max[0] = p.X
		}
		if p.Y > max[1] {
			max[1] = p.Y
		}
		if p.Z > max[2] {
			max[2] = p.Z
		}
	}
	c.Bounds = AABB{Min: min, Max: max}
	return c
}

// Padded returns b inflated by ratio*(max-min) on each side, independently
// per axis. ratio may be 0, in which case b is returned unchanged. A
// zero-span axis (e.g. a single-point cloud) substitutes ratio itself as
// an absolute pad, since span*ratio would otherwise stay zero and collapse
// every voxel along that axis onto the same world coordinate (spec.md §8
// Scenario A, "substituted minimum extents").
func (b AABB) Padded(ratio float64) AABB {
	out := b
	for axis := 0; axis < 3; axis++ {
		span := b.Max[axis] - b.Min[axis]
		pad := span * ratio
		if span == 0 {
			pad = ratio
		}
		out.Min[axis] -= pad
		out.Max[axis] += pad
	}
	return out
}
