package maskrender

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/portalvr/portalmask"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Labeler annotates rendered frames with per-region index labels at
// each region center. A diagnostic aid, off the hot path.
type Labeler struct {
	fnt  *truetype.Font
	size float64
	col  color.Color
}

// NewLabeler parses the given TTF font. nil ttf selects the Go regular
// font; size ≤ 0 selects 14 points.
func NewLabeler(ttf []byte, size float64, col color.Color) (*Labeler, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	if size <= 0 {
		size = 14
	}
	if col == nil {
		col = color.White
	}
	fnt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing label font: %w", err)
	}
	return &Labeler{fnt: fnt, size: size, col: col}, nil
}

// AnnotateRegions draws each region's 1-based creation index at its
// center. Inactive regions are skipped.
func (l *Labeler) AnnotateRegions(img draw.Image, regions []portalmask.Region) error {
	bb := img.Bounds()
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(l.fnt)
	ctx.SetFontSize(l.size)
	ctx.SetClip(bb)
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(l.col))
	ctx.SetHinting(font.HintingFull)
	for i := range regions {
		if !regions[i].Active {
			continue
		}
		c := regions[i].Center()
		x := bb.Min.X + int(c.X*float32(bb.Dx()))
		y := bb.Min.Y + int(c.Y*float32(bb.Dy()))
		_, err := ctx.DrawString(fmt.Sprintf("%d", i+1), freetype.Pt(x, y))
		if err != nil {
			return fmt.Errorf("drawing region label %d: %w", i+1, err)
		}
	}
	return nil
}
