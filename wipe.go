package portalmask

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

const (
	// DefaultBrushSize is the wipe stamp's outer falloff radius in
	// normalized surface units.
	DefaultBrushSize = 0.05
	// DefaultFadeSpeed is the wipe mask's decay rate in intensity per
	// second.
	DefaultFadeSpeed = 0.35
)

// WipeTarget is the persistent reveal buffer the brush draws into.
// Implemented on the CPU by maskeval.WipeMask and on the GPU by the
// glmask wipe passes. Decay and Stamp within one frame are strictly
// ordered: Decay always runs first.
type WipeTarget interface {
	// Decay uniformly subtracts amount from the whole buffer,
	// clamping at zero.
	Decay(amount float32)
	// Stamp adds a circular falloff centered at uv with outer radius
	// brushSize, saturating at one.
	Stamp(uv ms2.Vec, brushSize float32)
}

// WipeBrushConfig wires a WipeBrush. Surface and Target are required.
type WipeBrushConfig struct {
	Surface *Surface
	Target  WipeTarget
	// BrushSize is the stamp's outer radius in normalized units. Zero
	// selects DefaultBrushSize.
	BrushSize float32
	// FadeSpeed is decay in intensity per second. Zero selects
	// DefaultFadeSpeed.
	FadeSpeed float32
	// SurfaceTolerance bounds the contact distance to the surface
	// plane. Zero selects DefaultSurfaceTolerance.
	SurfaceTolerance float32
	// Logger receives diagnostics. Nil selects slog.Default.
	Logger *slog.Logger
}

// WipeBrush turns per-frame physical contact points into wipe-mask
// updates: one uniform decay every frame, then an additive stamp at the
// projected contact UV when a contact is present and near the surface.
// The simpler sibling of [PortalTracker], same frame-synchronous model.
type WipeBrush struct {
	surf      *Surface
	target    WipeTarget
	log       *slog.Logger
	brushSize float32
	fadeSpeed float32
	tol       float32
}

// NewWipeBrush validates cfg and returns a ready brush.
func NewWipeBrush(cfg WipeBrushConfig) (*WipeBrush, error) {
	if err := cfg.Surface.Validate(); err != nil {
		return nil, fmt.Errorf("wipe brush config: %w", err)
	}
	if cfg.Target == nil {
		return nil, errors.New("wipe brush config: nil wipe target")
	}
	if cfg.BrushSize < 0 || cfg.FadeSpeed < 0 || cfg.SurfaceTolerance < 0 {
		return nil, errors.New("wipe brush config: negative policy value")
	}
	b := &WipeBrush{
		surf:      cfg.Surface,
		target:    cfg.Target,
		log:       cfg.Logger,
		brushSize: cfg.BrushSize,
		fadeSpeed: cfg.FadeSpeed,
		tol:       cfg.SurfaceTolerance,
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.brushSize == 0 {
		b.brushSize = DefaultBrushSize
	}
	if b.fadeSpeed == 0 {
		b.fadeSpeed = DefaultFadeSpeed
	}
	if b.tol == 0 {
		b.tol = DefaultSurfaceTolerance
	}
	return b, nil
}

// Tick runs one frame: decay by fadeSpeed*dt, then stamp at the
// projected contact point if contact reports a point within surface
// tolerance. contact is typically the closest point between the
// tagged wipe collider and the surface bounds; hasContact is false on
// frames without touch.
func (b *WipeBrush) Tick(contact ms3.Vec, hasContact bool, dt float32) {
	if dt < 0 {
		b.log.Warn("wipe brush tick with negative dt", "dt", dt)
		dt = 0
	}
	b.target.Decay(b.fadeSpeed * dt)
	if !hasContact || !b.surf.Near(contact, b.tol) {
		return
	}
	b.target.Stamp(b.surf.Project(contact), b.brushSize)
}
