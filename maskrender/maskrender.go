// Package maskrender rasterizes the CPU compositor to images for
// diagnostics and golden testing: the composited portal overlay, raw
// signed-distance visualizations, and optional region index labels.
package maskrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/portalvr/portalmask/maskeval"
	"github.com/soypat/geometry/ms2"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// OverlayRenderer rasterizes a [maskeval.Compositor] over the unit UV
// square onto an image. Output colors are premultiplied, matching
// [color.RGBA] semantics, so the result composites directly over a
// passthrough frame.
type OverlayRenderer struct {
	conv func(maskeval.RGBA) color.Color
}

// NewOverlayRenderer instances a renderer. A nil conversion maps the
// compositor's premultiplied floats to 8-bit [color.RGBA].
func NewOverlayRenderer(conversion func(maskeval.RGBA) color.Color) *OverlayRenderer {
	if conversion == nil {
		conversion = func(c maskeval.RGBA) color.Color {
			return color.RGBA{
				R: quantize(c.R),
				G: quantize(c.G),
				B: quantize(c.B),
				A: quantize(c.A),
			}
		}
	}
	return &OverlayRenderer{conv: conversion}
}

func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	} else if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Render shades every pixel of img, mapping pixel centers to UV so the
// image spans the full surface. The compositor's AAWidth is set from
// the image resolution when unset.
func (r *OverlayRenderer) Render(comp *maskeval.Compositor, img setImage) error {
	if comp == nil {
		return errors.New("nil compositor")
	}
	bb := img.Bounds()
	dx, dy := bb.Dx(), bb.Dy()
	if dx <= 0 || dy <= 0 {
		return errors.New("empty target image")
	}
	if comp.AAWidth == 0 {
		comp.AAWidth = 1 / float32(min(dx, dy))
	}
	for j := 0; j < dy; j++ {
		v := (float32(j) + 0.5) / float32(dy)
		for i := 0; i < dx; i++ {
			u := (float32(i) + 0.5) / float32(dx)
			c := comp.Shade(ms2.Vec{X: u, Y: v})
			img.Set(bb.Min.X+i, bb.Min.Y+j, r.conv(c))
		}
	}
	return nil
}

// SDFRenderer converts 2D SDF evaluations to images row by row through
// a reusable evaluation buffer, for visualizing the portal union field.
type SDFRenderer struct {
	conv func(f float32) color.Color
	pos  []ms2.Vec
	dist []float32
}

// NewSDFRenderer instances a renderer with the given evaluation buffer
// size. A nil conversion yields black inside (negative distance), white
// outside, red for non-finite values.
func NewSDFRenderer(evalBufferSize int, conversion func(float32) color.Color) (*SDFRenderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return color.RGBA{R: 255, A: 255}
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	return &SDFRenderer{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}, nil
}

// Render maps the SDF's bounds to the image and renders it, passing
// userData through to every Evaluate call.
func (sr *SDFRenderer) Render(sdf maskeval.SDF2, img setImage, userData any) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if len(sr.dist) < dyi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(sr.dist), dyi)
	}
	bb := sdf.Bounds()
	sz := bb.Size()
	dx := sz.X / float32(dxi)
	dy := sz.Y / float32(dyi)
	bb.Min = ms2.Add(bb.Min, ms2.Vec{X: dx / 2, Y: dy / 2}) // Offset to center image.
	for i := 0; i < dxi; i++ {
		x := float32(i)*dx + bb.Min.X
		err := sr.renderCol(sdf, i, x, bb.Min.Y, dy, imgBB, img, userData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (sr *SDFRenderer) renderCol(sdf maskeval.SDF2, col int, x, ymin, dy float32, imgBB image.Rectangle, img setImage, userData any) error {
	dyi := imgBB.Dy()
	for j := 0; j < dyi; j++ {
		y := float32(j)*dy + ymin
		sr.pos[j] = ms2.Vec{X: x, Y: y}
	}
	err := sdf.Evaluate(sr.pos[:dyi], sr.dist[:dyi], userData)
	if err != nil {
		return err
	}
	conv := sr.conv
	for j := 0; j < dyi; j++ {
		img.Set(col+imgBB.Min.X, j+imgBB.Min.Y, conv(sr.dist[j]))
	}
	return nil
}
