package portalmask

import (
	"errors"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Surface describes the planar video surface portals are carved into.
// It is owned by the external rendering collaborator and read-only
// here. Right, Up and Normal form a right-handed orthonormal basis in
// world space; Extents are the surface's world-unit width and height;
// Pivot is the normalized coordinate of the surface origin, typically
// {0.5, 0.5} for a centered quad.
type Surface struct {
	Position ms3.Vec
	Right    ms3.Vec
	Up       ms3.Vec
	Normal   ms3.Vec
	Extents  ms2.Vec
	Pivot    ms2.Vec
}

// Validate reports a configuration error for degenerate extents or a
// non-orthonormal basis. Called once at wiring time; per-frame code
// assumes a valid surface.
func (s *Surface) Validate() error {
	if s == nil {
		return errNoSurface
	}
	if s.Extents.X <= 0 || s.Extents.Y <= 0 {
		return errors.New("portalmask: surface extents must be positive")
	}
	for _, ax := range [3]ms3.Vec{s.Right, s.Up, s.Normal} {
		if absf(ms3.Norm(ax)-1) > 1e-3 {
			return errors.New("portalmask: surface basis vectors must be unit length")
		}
	}
	const maxSkew = 1e-3
	if absf(ms3.Dot(s.Right, s.Up)) > maxSkew ||
		absf(ms3.Dot(s.Right, s.Normal)) > maxSkew ||
		absf(ms3.Dot(s.Up, s.Normal)) > maxSkew {
		return errors.New("portalmask: surface basis vectors must be orthogonal")
	}
	return nil
}

// Project converts a world point to normalized surface coordinates:
// local offset against the surface basis, divided by the extents, plus
// the pivot, each axis clamped to [0,1] independently.
func (s *Surface) Project(world ms3.Vec) ms2.Vec {
	off := ms3.Sub(world, s.Position)
	u := ms3.Dot(off, s.Right)/s.Extents.X + s.Pivot.X
	v := ms3.Dot(off, s.Up)/s.Extents.Y + s.Pivot.Y
	return ms2.Vec{X: clampf(u, 0, 1), Y: clampf(v, 0, 1)}
}

// Near reports whether the world point lies within tol of the surface
// plane, measured perpendicular to it.
func (s *Surface) Near(world ms3.Vec, tol float32) bool {
	d := ms3.Dot(ms3.Sub(world, s.Position), s.Normal)
	return absf(d) <= tol
}

// XYSurface returns a unit surface in the world XY plane facing +Z with
// the given world extents and a centered pivot. Useful for tests and
// fixed-layout scenes.
func XYSurface(width, height float32) Surface {
	return Surface{
		Right:   ms3.Vec{X: 1},
		Up:      ms3.Vec{Y: 1},
		Normal:  ms3.Vec{Z: 1},
		Extents: ms2.Vec{X: width, Y: height},
		Pivot:   ms2.Vec{X: 0.5, Y: 0.5},
	}
}
