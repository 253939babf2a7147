package maskeval

import (
	"errors"
	"image"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// WipeMask is the CPU wipe accumulation buffer: a persistent square
// float field in [0,1], initially zero, revealed by circular stamps and
// faded by uniform decay. Both passes keep the same discipline as the
// GPU implementation: values are computed into a scratch buffer and
// committed afterwards, so the committed buffer is never mutated while
// it is the pass input. Implements portalmask.WipeTarget.
type WipeMask struct {
	buf     []float32
	scratch []float32
	res     int
}

// DefaultWipeResolution is the mask edge length in texels.
const DefaultWipeResolution = 512

// NewWipeMask allocates a zeroed resolution² mask. resolution ≤ 0
// selects DefaultWipeResolution.
func NewWipeMask(resolution int) (*WipeMask, error) {
	if resolution == 0 {
		resolution = DefaultWipeResolution
	}
	if resolution < 2 {
		return nil, errors.New("wipe mask resolution too small")
	}
	return &WipeMask{
		buf:     make([]float32, resolution*resolution),
		scratch: make([]float32, resolution*resolution),
		res:     resolution,
	}, nil
}

// Resolution returns the mask edge length in texels.
func (m *WipeMask) Resolution() int { return m.res }

// Decay implements portalmask.WipeTarget pass 1: subtract amount
// everywhere, clamping at zero. Negative amounts are treated as zero;
// decay never adds intensity.
func (m *WipeMask) Decay(amount float32) {
	if amount < 0 {
		amount = 0
	}
	for i, v := range m.buf {
		m.scratch[i] = maxf(v-amount, 0)
	}
	m.commit()
}

// Stamp implements portalmask.WipeTarget pass 2: add a circular falloff
// centered at uv, inner radius 0.3×brushSize at full intensity, fading
// to zero at brushSize, saturating the buffer at one.
func (m *WipeMask) Stamp(uv ms2.Vec, brushSize float32) {
	if brushSize <= 0 {
		copy(m.scratch, m.buf)
		m.commit()
		return
	}
	inner := 0.3 * brushSize
	res := float32(m.res)
	for y := 0; y < m.res; y++ {
		ty := (float32(y) + 0.5) / res
		dy := ty - uv.Y
		row := y * m.res
		for x := 0; x < m.res; x++ {
			tx := (float32(x) + 0.5) / res
			dist := math32.Hypot(tx-uv.X, dy)
			add := 1 - smoothstepf(inner, brushSize, dist)
			m.scratch[row+x] = minf(m.buf[row+x]+add, 1)
		}
	}
	m.commit()
}

func (m *WipeMask) commit() {
	copy(m.buf, m.scratch)
}

// Sample returns the bilinear-filtered, edge-clamped intensity at uv.
func (m *WipeMask) Sample(uv ms2.Vec) float32 {
	res := float32(m.res)
	fx := clampf(uv.X, 0, 1)*res - 0.5
	fy := clampf(uv.Y, 0, 1)*res - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	v00 := m.texel(x0, y0)
	v10 := m.texel(x0+1, y0)
	v01 := m.texel(x0, y0+1)
	v11 := m.texel(x0+1, y0+1)
	return bilerp(v00, v10, v01, v11, tx, ty)
}

func (m *WipeMask) texel(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= m.res {
		x = m.res - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.res {
		y = m.res - 1
	}
	return m.buf[y*m.res+x]
}

// ToImage renders the mask to an 8-bit grayscale image for diagnostics
// and golden tests.
func (m *WipeMask) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.res, m.res))
	for y := 0; y < m.res; y++ {
		row := y * m.res
		for x := 0; x < m.res; x++ {
			img.Pix[y*img.Stride+x] = uint8(clampf(m.buf[row+x], 0, 1)*255 + 0.5)
		}
	}
	return img
}
