package maskeval

import (
	"errors"
	"image"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"golang.org/x/image/draw"
)

// ImageTexture is a bilinear-filtered, edge-clamped sampler over a
// decoded video frame. Implements [Texture].
type ImageTexture struct {
	pix  []RGBA
	w, h int
}

// NewImageTexture converts an image to a float texture. Color values
// are normalized to [0,1] with straight alpha.
func NewImageTexture(img image.Image) (*ImageTexture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("empty image")
	}
	t := &ImageTexture{
		pix: make([]RGBA, b.Dx()*b.Dy()),
		w:   b.Dx(),
		h:   b.Dy(),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			// RGBA() returns alpha-premultiplied 16-bit channels;
			// un-premultiply to straight alpha for filtering.
			fa := float32(a) / 0xffff
			inv := float32(0)
			if a > 0 {
				inv = 1 / float32(a)
			}
			t.pix[i] = RGBA{
				R: float32(r) * inv,
				G: float32(g) * inv,
				B: float32(bl) * inv,
				A: fa,
			}
			i++
		}
	}
	return t, nil
}

// NewImageTextureFit scales the frame to size×size texels before
// conversion so differently sized video sources share one compositing
// resolution. Uses a bilinear scaler.
func NewImageTextureFit(img image.Image, size int) (*ImageTexture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if size <= 0 {
		return nil, errors.New("non-positive texture size")
	}
	if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}
	return NewImageTexture(img)
}

// Sample implements [Texture] with bilinear filtering and edge clamp.
// uv {0,0} is the image's top-left texel center neighborhood.
func (t *ImageTexture) Sample(uv ms2.Vec) RGBA {
	fx := clampf(uv.X, 0, 1)*float32(t.w) - 0.5
	fy := clampf(uv.Y, 0, 1)*float32(t.h) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)
	return RGBA{
		R: bilerp(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: bilerp(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: bilerp(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: bilerp(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

func (t *ImageTexture) texel(x, y int) RGBA {
	if x < 0 {
		x = 0
	} else if x >= t.w {
		x = t.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.h {
		y = t.h - 1
	}
	return t.pix[y*t.w+x]
}

func bilerp(c00, c10, c01, c11, tx, ty float32) float32 {
	top := c00 + (c10-c00)*tx
	bot := c01 + (c11-c01)*tx
	return top + (bot-top)*ty
}

// SolidTexture is a constant-color Texture, handy for tests and for
// hosts that modulate a flat video tint.
type SolidTexture RGBA

// Sample implements [Texture].
func (s SolidTexture) Sample(ms2.Vec) RGBA { return RGBA(s) }
