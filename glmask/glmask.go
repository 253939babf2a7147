// Package glmask owns the GPU boundary of the portal and wipe-mask
// overlays: serialization of the tracked region set into the fixed-size
// uniform arrays the compositor shader iterates, generation of the
// shader sources themselves, and the OpenGL upload path (cgo builds
// only; see the nocgo stubs).
package glmask

import (
	"github.com/portalvr/portalmask"
)

// Capacity is the portal slot count compiled into the shader's uniform
// arrays. It matches [portalmask.DefaultMaxRegions]; trackers
// configured with a larger MaxRegions overflow silently at the pack
// step, so keep them equal.
const Capacity = portalmask.DefaultMaxRegions

// RegionArrays is the verbatim GPU uniform contract: parallel arrays of
// rect bounds (uvMin.x, uvMin.y, uvMax.x, uvMax.y) and corner radii,
// plus the live count. The shader iterates exactly [0,Count), so every
// slot at index ≥ Count is zeroed, never merely ignored.
type RegionArrays struct {
	Rects [Capacity][4]float32
	Radii [Capacity]float32
	Count int32
}

// Pack regenerates dst in full from the region set. Active regions land
// in consecutive slots in creation order; all remaining slots are
// exactly zero so a previously occupied, now-cleared slot can never
// leak stale bounds to the shader. Deterministic and idempotent; call
// it every frame without further bookkeeping.
func Pack(regions []portalmask.Region, dst *RegionArrays) {
	*dst = RegionArrays{}
	for i := range regions {
		if dst.Count >= Capacity {
			break
		}
		r := &regions[i]
		if !r.Active {
			continue
		}
		dst.Rects[dst.Count] = [4]float32{r.UVMin.X, r.UVMin.Y, r.UVMax.X, r.UVMax.Y}
		dst.Radii[dst.Count] = r.CornerRadius
		dst.Count++
	}
}
