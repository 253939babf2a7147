package maskrender_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/portalvr/portalmask"
	"github.com/portalvr/portalmask/glmask"
	"github.com/portalvr/portalmask/maskeval"
	"github.com/portalvr/portalmask/maskrender"
	"github.com/soypat/geometry/ms2"
)

func packedRegion() *glmask.RegionArrays {
	var arr glmask.RegionArrays
	glmask.Pack([]portalmask.Region{
		portalmask.NewRegion(ms2.Vec{X: 0.25, Y: 0.25}, ms2.Vec{X: 0.75, Y: 0.75}, 0.02),
	}, &arr)
	return &arr
}

func TestOverlayRender(t *testing.T) {
	comp, err := maskeval.NewCompositor(packedRegion(), maskeval.SolidTexture{R: 1, G: 1, B: 1, A: 1})
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	r := maskrender.NewOverlayRenderer(nil)
	if err := r.Render(comp, img); err != nil {
		t.Fatal(err)
	}
	center := img.RGBAAt(32, 32)
	if center.A != 255 {
		t.Errorf("portal interior must be opaque, got %+v", center)
	}
	corner := img.RGBAAt(1, 1)
	if corner.A != 0 {
		t.Errorf("far corner must be transparent, got %+v", corner)
	}
}

func TestOverlayRenderCustomConversion(t *testing.T) {
	comp, _ := maskeval.NewCompositor(packedRegion(), maskeval.SolidTexture{A: 1})
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	calls := 0
	r := maskrender.NewOverlayRenderer(func(c maskeval.RGBA) color.Color {
		calls++
		return color.Alpha{A: uint8(c.A * 255)}
	})
	if err := r.Render(comp, img); err != nil {
		t.Fatal(err)
	}
	if calls != 16*16 {
		t.Errorf("conversion must run per pixel, got %d calls", calls)
	}
}

func TestOverlayRenderErrors(t *testing.T) {
	r := maskrender.NewOverlayRenderer(nil)
	if err := r.Render(nil, image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("nil compositor must fail")
	}
	comp, _ := maskeval.NewCompositor(packedRegion(), maskeval.SolidTexture{})
	if err := r.Render(comp, image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("empty image must fail")
	}
}

func TestSDFRender(t *testing.T) {
	sdf := &maskeval.RegionSDF{Arrays: packedRegion()}
	r, err := maskrender.NewSDFRenderer(128, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if err := r.Render(sdf, img, nil); err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(32, 32) != (color.RGBA{A: 255}) {
		t.Errorf("interior must render black, got %+v", img.RGBAAt(32, 32))
	}
	if img.RGBAAt(1, 1) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("exterior must render white, got %+v", img.RGBAAt(1, 1))
	}
}

func TestSDFRendererBufferTooSmall(t *testing.T) {
	if _, err := maskrender.NewSDFRenderer(10, nil); err == nil {
		t.Error("tiny evaluation buffer must fail")
	}
	r, _ := maskrender.NewSDFRenderer(65, nil)
	img := image.NewRGBA(image.Rect(0, 0, 4, 128))
	sdf := &maskeval.RegionSDF{Arrays: packedRegion()}
	if err := r.Render(sdf, img, nil); err == nil {
		t.Error("image taller than the evaluation buffer must fail")
	}
}

func TestLabeler(t *testing.T) {
	l, err := maskrender.NewLabeler(nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	regions := []portalmask.Region{
		portalmask.NewRegion(ms2.Vec{X: 0.1, Y: 0.1}, ms2.Vec{X: 0.5, Y: 0.5}, 0),
		portalmask.NewRegion(ms2.Vec{X: 0.6, Y: 0.6}, ms2.Vec{X: 0.9, Y: 0.9}, 0),
	}
	if err := l.AnnotateRegions(img, regions); err != nil {
		t.Fatal(err)
	}
	touched := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			touched = true
			break
		}
	}
	if !touched {
		t.Error("labels must rasterize into the image")
	}
	// Inactive regions draw nothing.
	img2 := image.NewRGBA(image.Rect(0, 0, 128, 128))
	regions[0].Active = false
	regions[1].Active = false
	if err := l.AnnotateRegions(img2, regions); err != nil {
		t.Fatal(err)
	}
	for i := 3; i < len(img2.Pix); i += 4 {
		if img2.Pix[i] != 0 {
			t.Fatal("inactive regions must not be labeled")
		}
	}
}

func TestLabelerBadFont(t *testing.T) {
	if _, err := maskrender.NewLabeler([]byte("not a font"), 12, nil); err == nil {
		t.Error("garbage TTF must fail to parse")
	}
}
