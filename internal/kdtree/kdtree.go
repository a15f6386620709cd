// Package kdtree implements a balanced 3D k-d tree over a point cloud,
// supporting masked-axis, anisotropically-capped nearest-neighbor queries
// (spec.md §4.2). The tree borrows its points from the caller's slice — it
// never copies coordinates — so the point store must outlive the tree.
package kdtree

import "github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"

type node struct {
	idx         int // index into the borrowed points slice
	axis        int // 0=x, 1=y, 2=z
	left, right *node
}

// Tree is a read-only, concurrency-safe (after Build returns) 3D k-d tree.
type Tree struct {
	points []pointcloud.Point
	root   *node
	height int
}

// Build constructs a balanced k-d tree over points by recursive
// median-of-all selection, cycling the split axis x→y→z with depth
// (spec.md §4.2). Build is O(N log N) expected.
func Build(points []pointcloud.Point) *Tree {
	t := &Tree{points: points}
	if len(points) == 0 {
		return t
	}
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	t.root, t.height = t.build(order, 0)
	return t
}

// Height returns the tree's depth (0 for an empty tree, 1 for a
// single-node tree), used to size traversal stacks.
func (t *Tree) Height() int { return t.height }

func (t *Tree) coord(idx, axis int) float64 {
	p := t.points[idx]
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// build recursively partitions order[lo:hi] around its median (by
// coordinate on axis = depth%3) using in-place quickselect, then recurses
// on each half. Returns the subtree root and its height.
func (t *Tree) build(order []int, depth int) (*node, int) {
	if len(order) == 0 {
		return nil, 0
	}
	axis := depth % 3
	mid := len(order) / 2
	quickselect(order, mid, func(idx int) float64 { return t.coord(idx, axis) })

	n := &node{idx: order[mid], axis: axis}
	left, lh := t.build(order[:mid], depth+1)
	right, rh := t.build(order[mid+1:], depth+1)
	n.left, n.right = left, right

	h := lh
	if rh > h {
		h = rh
	}
	return n, h + 1
}

// quickselect partitions order so that order[k] holds the element whose
// key is the k-th smallest, with everything before it no greater and
// everything after no smaller (Hoare-style in-place selection, operating
// directly on the index permutation rather than copying points).
func quickselect(order []int, k int, key func(int) float64) {
	lo, hi := 0, len(order)-1
	for lo < hi {
		pivotVal := key(order[(lo+hi)/2])
		i, j := lo, hi
		for i <= j {
			for key(order[i]) < pivotVal {
				i++
			}
			for key(order[j]) > pivotVal {
				j--
			}
			if i <= j {
				order[i], order[j] = order[j], order[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			break
		}
	}
}
