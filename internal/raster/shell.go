package raster

// ShellKind selects how a nearest-neighbor distance is turned into a pixel
// color (spec.md §4.4, glossary "Shell policy").
type ShellKind int

const (
	// ColorBySample paints the sample color whenever d <= R (dot rendering).
	ColorBySample ShellKind = iota
	// TwoBand paints the sample color within RInner, a semi-transparent
	// light gray band between RInner and ROuter, and nothing beyond ROuter
	// (surface rendering).
	TwoBand
)

// ShellPolicy configures how §4.4 step 4 maps a hit distance to a color. It
// is a plain struct, not a dynamically-typed option map (spec.md §9).
type ShellPolicy struct {
	Kind           ShellKind
	RInner, ROuter float64 // model-space radii, only meaningful when Kind == TwoBand
}

// interiorFillGray is the fixed light-gray semi-transparent color used by
// both the two-band shell's outer ring and the interior fill seed (spec.md
// §4.4).
var interiorFillGray = [4]uint8{247, 247, 247, 128}

// Resolve returns the pixel color for a hit at distance d with sample color
// (r,g,b), and whether the voxel should be painted at all. R is the
// isotropic query radius used for ColorBySample.
func (s ShellPolicy) Resolve(d, r float64, sr, sg, sb uint8) (pr, pg, pb, pa uint8, paint bool) {
	switch s.Kind {
	case TwoBand:
		switch {
		case d > s.ROuter:
			return 0, 0, 0, 0, false
		case d > s.RInner:
			return interiorFillGray[0], interiorFillGray[1], interiorFillGray[2], interiorFillGray[3], true
		default:
			return sr, sg, sb, 255, true
		}
	default:
		if d > r {
			return 0, 0, 0, 0, false
		}
		return sr, sg, sb, 255, true
	}
}
