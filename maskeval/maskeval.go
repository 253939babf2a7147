// Package maskeval contains the CPU reference implementations of the
// GPU mask algebra in package glmask: the per-pixel portal compositor
// and the persistent wipe accumulation buffer. The CPU and shader paths
// implement the same math against the same serialized region arrays, so
// the compositing behavior shipped to the GPU is testable here without
// a GL context.
package maskeval

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// SDF2 is the vectorized 2D signed distance evaluator contract.
// Distances are negative inside the shape. pos and dist must be of the
// same length; results are stored in dist. userData passes auxiliary
// evaluation state through and may be nil.
type SDF2 interface {
	Evaluate(pos []ms2.Vec, dist []float32, userData any) error
	Bounds() ms2.Box
}

func minf(a, b float32) float32 { return math32.Min(a, b) }

func maxf(a, b float32) float32 { return math32.Max(a, b) }

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

// smoothstepf is the GLSL smoothstep: hermite interpolation clamped to
// [0,1] between edges e0 and e1. Edges may be descending.
func smoothstepf(e0, e1, x float32) float32 {
	if e0 == e1 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := clampf((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// RoundedBoxSDF is the standard rounded-box signed distance: p is the
// sample point relative to the box center, b the half extents, r the
// corner radius. r is expected pre-clamped to min(b.X, b.Y).
func RoundedBoxSDF(p, b ms2.Vec, r float32) float32 {
	d := ms2.AddScalar(r, ms2.Sub(ms2.AbsElem(p), b))
	return minf(maxf(d.X, d.Y), 0) + ms2.Norm(ms2.MaxElem(d, ms2.Vec{})) - r
}

// MirrorUV reflects uv into [0,1]² with mirror-repeat addressing, the
// remap the compositor applies to zoomed video coordinates instead of
// clamping.
func MirrorUV(uv ms2.Vec) ms2.Vec {
	return ms2.Vec{X: mirror1(uv.X), Y: mirror1(uv.Y)}
}

func mirror1(v float32) float32 {
	v = math32.Abs(v)
	return 1 - math32.Abs(math32.Mod(v, 2)-1)
}
