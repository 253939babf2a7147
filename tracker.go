package portalmask

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/portalvr/portalmask/handtrack"
	"github.com/soypat/geometry/ms2"
)

// TrackerConfig wires a PortalTracker's external references and policy.
// Required references are validated once by [NewPortalTracker]; there
// is no runtime auto-discovery.
type TrackerConfig struct {
	// Surface is the target video surface. Required.
	Surface *Surface
	// MaxRegions caps the region set. Zero selects DefaultMaxRegions.
	// It must agree with the capacity compiled into the compositor
	// shader (see package glmask).
	MaxRegions int
	// MinRegionSize is the inclusive per-axis size a region must reach
	// at finalize time to be kept. Zero selects DefaultMinRegionSize.
	MinRegionSize float32
	// SurfaceTolerance is the perpendicular distance within which a
	// fingertip counts as touching the surface. Zero selects
	// DefaultSurfaceTolerance.
	SurfaceTolerance float32
	// CornerRadius is assigned to created regions. Zero selects
	// DefaultCornerRadius.
	CornerRadius float32
	// Logger receives capacity and precondition diagnostics. Nil
	// selects slog.Default.
	Logger *slog.Logger
}

// PortalTracker owns the bounded region set and runs the two-handed
// pinch protocol over it: a simultaneous near-surface pinch of both
// hands opens a region, sustained pinching resizes it from the two
// fingertips, releasing finalizes or discards it by the minimum-size
// rule.
//
// The tracker is frame-synchronous and single-threaded: all mutation
// happens inside Tick on the caller's simulation thread. Readers of
// Regions must run on the same thread or between ticks.
type PortalTracker struct {
	surf    *Surface
	log     *slog.Logger
	regions []Region
	// active is the index of the in-progress region, -1 when idle.
	// At most one region is in progress at a time; it is always the
	// most recently appended element.
	active    int
	maxR      int
	minSize   float32
	tol       float32
	cornerRad float32
}

// NewPortalTracker validates cfg and returns a tracker in the idle
// state with an empty region set. A missing or invalid surface is a
// configuration error surfaced here, not a per-frame condition.
func NewPortalTracker(cfg TrackerConfig) (*PortalTracker, error) {
	if err := cfg.Surface.Validate(); err != nil {
		return nil, fmt.Errorf("portal tracker config: %w", err)
	}
	if cfg.MaxRegions < 0 || cfg.MinRegionSize < 0 || cfg.SurfaceTolerance < 0 || cfg.CornerRadius < 0 {
		return nil, fmt.Errorf("portal tracker config: negative policy value")
	}
	t := &PortalTracker{
		surf:      cfg.Surface,
		log:       cfg.Logger,
		active:    -1,
		maxR:      cfg.MaxRegions,
		minSize:   cfg.MinRegionSize,
		tol:       cfg.SurfaceTolerance,
		cornerRad: cfg.CornerRadius,
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.maxR == 0 {
		t.maxR = DefaultMaxRegions
	}
	if t.minSize == 0 {
		t.minSize = DefaultMinRegionSize
	}
	if t.tol == 0 {
		t.tol = DefaultSurfaceTolerance
	}
	if t.cornerRad == 0 {
		t.cornerRad = DefaultCornerRadius
	}
	t.regions = make([]Region, 0, t.maxR)
	return t, nil
}

// Tick advances the state machine from one frame's hand snapshot.
// It never panics and never blocks; every failed precondition degrades
// to a no-op for this frame. Preconditions are re-evaluated from
// scratch each tick, so no error state persists.
func (t *PortalTracker) Tick(frame handtrack.Frame) {
	uvL, okL := t.touchUV(frame.Left)
	uvR, okR := t.touchUV(frame.Right)
	engaged := okL && okR

	if t.active < 0 {
		if !engaged {
			return
		}
		if len(t.regions) >= t.maxR {
			// Retried every frame until a slot frees or hands separate.
			t.log.Debug("portal region rejected: at capacity", "max", t.maxR)
			return
		}
		t.regions = append(t.regions, NewRegion(uvL, uvR, t.cornerRad))
		t.active = len(t.regions) - 1
		return
	}
	if engaged {
		t.regions[t.active].SetCorners(uvL, uvR)
		return
	}
	t.finalize()
}

// touchUV projects a hand sample to surface UV when it is pinching with
// a valid fingertip within surface tolerance.
func (t *PortalTracker) touchUV(s handtrack.Sample) (ms2.Vec, bool) {
	if !s.Pinching || !s.FingertipOK || !t.surf.Near(s.Fingertip, t.tol) {
		return ms2.Vec{}, false
	}
	return t.surf.Project(s.Fingertip), true
}

// finalize ends the in-progress region: kept when both axes meet the
// minimum size (inclusive), removed otherwise. Degenerate geometry is
// an expected outcome, not an error.
func (t *PortalTracker) finalize() {
	i := t.active
	t.active = -1
	if t.regions[i].MeetsMinSize(t.minSize) {
		return
	}
	sz := t.regions[i].Size()
	t.log.Debug("portal region discarded: below minimum size",
		"size_x", sz.X, "size_y", sz.Y, "min", t.minSize)
	t.regions = slices.Delete(t.regions, i, i+1)
}

// ClearAll synchronously drops every region, including one in
// progress. Idempotent.
func (t *PortalTracker) ClearAll() {
	t.regions = t.regions[:0]
	t.active = -1
}

// Count returns the number of tracked regions, the in-progress one
// included.
func (t *PortalTracker) Count() int { return len(t.regions) }

// Tracking reports whether a region is currently being resized.
func (t *PortalTracker) Tracking() bool { return t.active >= 0 }

// Regions returns a copy of the region set in creation order. The copy
// is the caller's to keep; tracker state cannot be mutated through it.
func (t *PortalTracker) Regions() []Region {
	return slices.Clone(t.regions)
}

// RegionsNoCopy is the read-by-reference accessor used by per-frame
// serialization. The returned slice is owned by the tracker and valid
// only until the next Tick or ClearAll; callers must not mutate it.
func (t *PortalTracker) RegionsNoCopy() []Region { return t.regions }
