package portalmask

import (
	"github.com/soypat/geometry/ms2"
)

// Region is an axis-aligned rectangle in normalized [0,1]×[0,1] surface
// coordinates that the compositor treats as a see-through window.
// UVMin ≤ UVMax holds componentwise after every write; constructors and
// setters normalize corner order so which physical hand contributed
// which corner never matters.
type Region struct {
	UVMin        ms2.Vec
	UVMax        ms2.Vec
	CornerRadius float32
	Active       bool
}

// NewRegion builds a region spanning the two corner points in either
// order. The corner radius is stored as given; it is clamped to the
// region's half-extent at consumption time by the compositor, not here.
func NewRegion(p1, p2 ms2.Vec, cornerRadius float32) Region {
	r := Region{CornerRadius: maxf(cornerRadius, 0), Active: true}
	r.SetCorners(p1, p2)
	return r
}

// SetCorners replaces both corners from two arbitrary points,
// re-establishing the UVMin ≤ UVMax invariant.
func (r *Region) SetCorners(p1, p2 ms2.Vec) {
	r.UVMin = ms2.MinElem(p1, p2)
	r.UVMax = ms2.MaxElem(p1, p2)
}

// Center returns the region midpoint.
func (r Region) Center() ms2.Vec {
	return ms2.Scale(0.5, ms2.Add(r.UVMin, r.UVMax))
}

// Size returns the region's extent per axis. Never negative.
func (r Region) Size() ms2.Vec {
	return ms2.Sub(r.UVMax, r.UVMin)
}

// MeetsMinSize reports whether both axes are at least minSize.
// The comparison is inclusive: size == minSize passes.
func (r Region) MeetsMinSize(minSize float32) bool {
	sz := r.Size()
	return sz.X >= minSize && sz.Y >= minSize
}

// ClampedRadius returns the corner radius clamped to half the smaller
// box dimension, the value the compositor actually consumes.
func (r Region) ClampedRadius() float32 {
	sz := r.Size()
	return clampf(r.CornerRadius, 0, 0.5*minf(sz.X, sz.Y))
}
