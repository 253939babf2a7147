package maskeval

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/portalvr/portalmask/glmask"
	"github.com/soypat/geometry/ms2"
)

// RGBA is a float color sample. Texture samples carry straight alpha;
// compositor output is premultiplied for blending.
type RGBA struct {
	R, G, B, A float32
}

// Texture samples a 2D image at a normalized coordinate. Implemented by
// [ImageTexture] for video frames and by [WipeMask] lookups at the
// mask's own resolution.
type Texture interface {
	Sample(uv ms2.Vec) RGBA
}

// RegionSDF evaluates the union signed distance of a packed region set:
// per point, the minimum rounded-box distance across all live slots.
// Points with no live region evaluate to a large positive distance.
// Implements [SDF2] over the unit UV square.
type RegionSDF struct {
	Arrays *glmask.RegionArrays
}

// largenum stands in for the "no region" distance, well outside any
// glow band on a unit surface.
const largenum = 1e20

// Evaluate implements [SDF2].
func (s *RegionSDF) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errors.New("position and distance buffer length mismatch")
	}
	if s.Arrays == nil {
		return errors.New("nil region arrays")
	}
	for i, p := range pos {
		dist[i] = s.distance(p)
	}
	return nil
}

// Bounds implements [SDF2]. The region set lives on the unit surface.
func (s *RegionSDF) Bounds() ms2.Box {
	return ms2.NewBox(0, 0, 1, 1)
}

func (s *RegionSDF) distance(p ms2.Vec) float32 {
	arr := s.Arrays
	d := float32(largenum)
	for i := int32(0); i < arr.Count; i++ {
		rect := &arr.Rects[i]
		uvMin := ms2.Vec{X: rect[0], Y: rect[1]}
		uvMax := ms2.Vec{X: rect[2], Y: rect[3]}
		c := ms2.Scale(0.5, ms2.Add(uvMin, uvMax))
		hb := ms2.Scale(0.5, ms2.Sub(uvMax, uvMin))
		r := clampf(arr.Radii[i], 0, minf(hb.X, hb.Y))
		d = minf(d, RoundedBoxSDF(ms2.Sub(p, c), hb, r))
	}
	return d
}

// Compositor is the CPU mirror of the portal compositor fragment
// shader. Given packed region arrays and a video texture it computes,
// per UV sample, the premultiplied output color: anti-aliased union of
// region insides revealing parallax-shifted, center-zoomed video, plus
// a glow band along the nearest region boundary.
type Compositor struct {
	Regions RegionSDF
	Video   Texture
	// Parallax is the per-frame view-dependent UV offset applied to
	// the video sample.
	Parallax ms2.Vec
	// GlowWidth is the boundary glow band width in UV units. Zero
	// selects glmask.DefaultGlowWidth.
	GlowWidth float32
	// AAWidth is the anti-aliasing half band in UV units, the CPU
	// stand-in for the shader's screen-space derivative width. Zero
	// selects 1/512.
	AAWidth float32
}

// NewCompositor wires a compositor over packed arrays and a video
// texture.
func NewCompositor(arr *glmask.RegionArrays, video Texture) (*Compositor, error) {
	if arr == nil {
		return nil, errors.New("nil region arrays")
	} else if video == nil {
		return nil, errors.New("nil video texture")
	}
	return &Compositor{Regions: RegionSDF{Arrays: arr}, Video: video}, nil
}

func (c *Compositor) glowWidth() float32 {
	if c.GlowWidth > 0 {
		return c.GlowWidth
	}
	return glmask.DefaultGlowWidth
}

func (c *Compositor) aaWidth() float32 {
	if c.AAWidth > 0 {
		return c.AAWidth
	}
	return 1.0 / 512
}

// Mask returns the union inside-mask in [0,1] and the signed distance
// to the nearest region boundary at p.
func (c *Compositor) Mask(p ms2.Vec) (inside, minDist float32) {
	arr := c.Regions.Arrays
	w := c.aaWidth()
	minDist = largenum
	for i := int32(0); i < arr.Count; i++ {
		rect := &arr.Rects[i]
		uvMin := ms2.Vec{X: rect[0], Y: rect[1]}
		uvMax := ms2.Vec{X: rect[2], Y: rect[3]}
		cc := ms2.Scale(0.5, ms2.Add(uvMin, uvMax))
		hb := ms2.Scale(0.5, ms2.Sub(uvMax, uvMin))
		r := clampf(arr.Radii[i], 0, minf(hb.X, hb.Y))
		d := RoundedBoxSDF(ms2.Sub(p, cc), hb, r)
		minDist = minf(minDist, d)
		inside = maxf(inside, 1-smoothstepf(-w, w, d))
	}
	return inside, minDist
}

// Shade computes the premultiplied output color at UV p, mirroring the
// fragment shader stage for stage.
func (c *Compositor) Shade(p ms2.Vec) RGBA {
	inside, minDist := c.Mask(p)
	glowW := c.glowWidth()
	// Early out, transparent and beyond the glow band. An optimization
	// only: the general path below yields the same zero color.
	if inside < 1e-3 && minDist > glowW {
		return RGBA{}
	}
	uv := ms2.Add(ms2.AddScalar(0.5, ms2.Scale(glmask.ZoomFactor, ms2.AddScalar(-0.5, p))), c.Parallax)
	video := c.Video.Sample(MirrorUV(uv))
	a := video.A * inside
	glow := smoothstepf(glowW, 0, math32.Abs(minDist)) * (1 - inside*0.5)
	return RGBA{
		R: video.R*a + glow,
		G: video.G*a + glow,
		B: video.B*a + glow,
		A: clampf(a+glow, 0, 1),
	}
}
