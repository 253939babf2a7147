// Package portalmask implements hand-driven interaction overlays for a
// video passthrough surface: a set of pinch-carved rectangular portal
// regions composited as see-through windows, and a wipeable reveal mask
// accumulated from physical contact.
//
// The package owns the CPU-side data model and per-frame state machine.
// GPU serialization and shader generation live in package glmask, the
// CPU reference evaluators in package maskeval.
package portalmask

import (
	"errors"

	"github.com/chewxy/math32"
)

const (
	// DefaultMaxRegions is the portal slot capacity mirrored by the
	// shader's fixed uniform arrays. Both sides must agree on it.
	DefaultMaxRegions = 8
	// DefaultMinRegionSize discards finalized regions smaller than 5%
	// of the surface on either axis.
	DefaultMinRegionSize = 0.05
	// DefaultSurfaceTolerance is the near-surface perpendicular
	// distance threshold in world units.
	DefaultSurfaceTolerance = 0.06
	// DefaultCornerRadius is assigned to newly created regions in
	// normalized surface units.
	DefaultCornerRadius = 0.04

	// epstol is used to check for badly conditioned denominators such
	// as lengths used for normalization.
	epstol = 6e-7
)

var (
	// ErrAtCapacity reports a region creation attempt while the set is
	// full. The tracker treats it as a retriable no-op, never fatal.
	ErrAtCapacity = errors.New("portalmask: region set at capacity")
	errNoSurface  = errors.New("portalmask: nil or invalid surface")
)

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

// smoothstepf is the GLSL smoothstep: hermite interpolation clamped to
// [0,1] between edges e0 and e1.
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
