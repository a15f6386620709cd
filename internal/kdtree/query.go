package kdtree

import (
	"math"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/pointcloud"
)

// Axes is a bitmask selecting which coordinate axes contribute to the
// squared distance used by a query (spec.md §4.2).
type Axes int

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ

	AxisXYZ = AxisX | AxisY | AxisZ
)

func (a Axes) has(axis int) bool {
	switch axis {
	case 0:
		return a&AxisX != 0
	case 1:
		return a&AxisY != 0
	default:
		return a&AxisZ != 0
	}
}

// Options configures a Nearest query. It is a plain struct, not a
// dynamically-typed map, per spec.md §9. Use NewOptions for sane defaults;
// zero-value Options has no active axes and is not useful directly.
type Options struct {
	Axes Axes

	// MaxDistance is the isotropic cap (inclusive: d <= MaxDistance).
	// Defaults to +Inf (no cap) via NewOptions.
	MaxDistance float64

	// MaxDistanceX/Y/Z are optional per-axis anisotropic pre-filter caps
	// (inclusive). NaN means "unset" for that axis.
	MaxDistanceX, MaxDistanceY, MaxDistanceZ float64
}

// NewOptions returns Options with axes=xyz, MaxDistance=+Inf and no
// per-axis caps set — spec.md §4.2's defaults.
func NewOptions() Options {
	return Options{
		Axes:         AxisXYZ,
		MaxDistance:  math.Inf(1),
		MaxDistanceX: math.NaN(),
		MaxDistanceY: math.NaN(),
		MaxDistanceZ: math.NaN(),
	}
}

func (o Options) axisCap(axis int) float64 {
	switch axis {
	case 0:
		return o.MaxDistanceX
	case 1:
		return o.MaxDistanceY
	default:
		return o.MaxDistanceZ
	}
}

// Result is the outcome of a Nearest query.
type Result struct {
	Point    pointcloud.Point
	Distance float64
	Found    bool
}

type taskKind int

const (
	taskVisit taskKind = iota
	taskMaybeFar
)

type task struct {
	kind        taskKind
	n           *node
	splitDistSq float64 // only used for taskMaybeFar
}

// Nearest returns the point closest to target under opts, or a zero Result
// with Found=false if no point satisfies the configured caps. Traversal is
// depth-first, near-child first, with the far child pruned whenever the
// node's split axis is active and the squared split-plane distance is not
// less than the current best squared distance (spec.md §4.2). An inactive
// split axis forces both children to be visited unconditionally.
func (t *Tree) Nearest(target [3]float64, opts Options) Result {
	if t.root == nil {
		return Result{}
	}

	bestDistSq := math.Inf(1)
	if !math.IsInf(opts.MaxDistance, 1) {
		bestDistSq = opts.MaxDistance * opts.MaxDistance
	}
	var bestIdx int
	found := false

	stack := make([]task, 0, 2*t.height+8)
	stack = append(stack, task{kind: taskVisit, n: t.root})

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.kind == taskMaybeFar {
			if cur.splitDistSq < bestDistSq {
				stack = append(stack, task{kind: taskVisit, n: cur.n})
			}
			continue
		}

		n := cur.n
		if n == nil {
			continue
		}

		if eligible, distSq := t.evaluate(n.idx, target, opts); eligible && distSq <= bestDistSq {
			bestDistSq = distSq
			bestIdx = n.idx
			found = true
		}

		axis := n.axis
		if opts.Axes.has(axis) {
			splitVal := t.coord(n.idx, axis)
			delta := target[axis] - splitVal
			splitDistSq := delta * delta

			var near, far *node
			if target[axis] < splitVal {
				near, far = n.left, n.right
			} else {
				near, far = n.right, n.left
			}
			stack = append(stack, task{kind: taskMaybeFar, n: far, splitDistSq: splitDistSq})
			stack = append(stack, task{kind: taskVisit, n: near})
		} else {
			stack = append(stack, task{kind: taskVisit, n: n.right})
			stack = append(stack, task{kind: taskVisit, n: n.left})
		}
	}

	if !found {
		return Result{}
	}
	return Result{Point: t.points[bestIdx], Distance: math.Sqrt(bestDistSq), Found: true}
}

// evaluate reports whether the point at idx passes the per-axis
// anisotropic caps, and its squared distance to target over the active
// axes only.
func (t *Tree) evaluate(idx int, target [3]float64, opts Options) (eligible bool, distSq float64) {
	for axis := 0; axis < 3; axis++ {
		if !opts.Axes.has(axis) {
			continue
		}
		cap := opts.axisCap(axis)
		delta := target[axis] - t.coord(idx, axis)
		if !math.IsNaN(cap) && math.Abs(delta) > cap {
			return false, 0
		}
		distSq += delta * delta
	}
	return true, distSq
}
