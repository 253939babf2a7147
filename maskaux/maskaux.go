// Package maskaux wires the portal and wipe overlays into a runnable
// system: declarative TOML configuration with loud validation at
// startup, structured logging setup, and explicit init/tick/shutdown
// entry points for whatever owns the render loop. Applications with
// their own wiring can ignore this package and assemble the pieces
// directly.
package maskaux

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/portalvr/portalmask"
	"github.com/portalvr/portalmask/glmask"
	"github.com/portalvr/portalmask/handtrack"
	"github.com/portalvr/portalmask/maskeval"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// SurfaceConfig is the declarative form of [portalmask.Surface].
// All fields are required; there is no runtime discovery of surfaces
// by name or tag.
type SurfaceConfig struct {
	Position [3]float32 `toml:"position"`
	Right    [3]float32 `toml:"right"`
	Up       [3]float32 `toml:"up"`
	Normal   [3]float32 `toml:"normal"`
	Extents  [2]float32 `toml:"extents"`
	Pivot    [2]float32 `toml:"pivot"`
}

// Descriptor converts to the runtime surface type.
func (sc SurfaceConfig) Descriptor() portalmask.Surface {
	return portalmask.Surface{
		Position: ms3.Vec{X: sc.Position[0], Y: sc.Position[1], Z: sc.Position[2]},
		Right:    ms3.Vec{X: sc.Right[0], Y: sc.Right[1], Z: sc.Right[2]},
		Up:       ms3.Vec{X: sc.Up[0], Y: sc.Up[1], Z: sc.Up[2]},
		Normal:   ms3.Vec{X: sc.Normal[0], Y: sc.Normal[1], Z: sc.Normal[2]},
		Extents:  ms2.Vec{X: sc.Extents[0], Y: sc.Extents[1]},
		Pivot:    ms2.Vec{X: sc.Pivot[0], Y: sc.Pivot[1]},
	}
}

// Config is the startup configuration for a full overlay system.
// Zero-valued policy fields select the portalmask defaults.
type Config struct {
	Surface          SurfaceConfig `toml:"surface"`
	MaxRegions       int           `toml:"max_regions"`
	MinRegionSize    float32       `toml:"min_region_size"`
	SurfaceTolerance float32       `toml:"surface_tolerance"`
	CornerRadius     float32       `toml:"corner_radius"`
	BrushSize        float32       `toml:"brush_size"`
	FadeSpeed        float32       `toml:"fade_speed"`
	WipeResolution   int           `toml:"wipe_resolution"`
	GlowWidth        float32       `toml:"glow_width"`
	// JointPolicy is "lenient" or "strict"; empty selects lenient.
	JointPolicy string `toml:"joint_policy"`
	// LogLevel is "debug", "info", "warn" or "error"; empty selects
	// info.
	LogLevel string `toml:"log_level"`
}

// LoadConfig decodes and validates a TOML configuration.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding overlay config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig over a file path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening overlay config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate fails loudly on a missing or degenerate surface and
// malformed policy values, per the fail-at-startup contract. It does
// not try to repair anything.
func (cfg *Config) Validate() error {
	surf := cfg.Surface.Descriptor()
	if err := surf.Validate(); err != nil {
		return err
	}
	if cfg.MaxRegions < 0 || cfg.MaxRegions > glmask.Capacity {
		return fmt.Errorf("max_regions must be in [0,%d], got %d", glmask.Capacity, cfg.MaxRegions)
	}
	if cfg.MinRegionSize < 0 || cfg.MinRegionSize > 1 {
		return errors.New("min_region_size must be a normalized size")
	}
	if cfg.SurfaceTolerance < 0 || cfg.CornerRadius < 0 || cfg.BrushSize < 0 ||
		cfg.FadeSpeed < 0 || cfg.GlowWidth < 0 || cfg.WipeResolution < 0 {
		return errors.New("policy values must not be negative")
	}
	if _, err := cfg.jointPolicy(); err != nil {
		return err
	}
	if _, err := cfg.logLevel(); err != nil {
		return err
	}
	return nil
}

func (cfg *Config) jointPolicy() (handtrack.JointPolicy, error) {
	switch cfg.JointPolicy {
	case "", "lenient":
		return handtrack.JointLenient, nil
	case "strict":
		return handtrack.JointStrict, nil
	}
	return 0, fmt.Errorf("unknown joint_policy %q", cfg.JointPolicy)
}

func (cfg *Config) logLevel() (slog.Level, error) {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", cfg.LogLevel)
}

// NewLogger builds the text logger the system components share. A nil
// writer selects stderr.
func (cfg *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := cfg.logLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// System owns one configured overlay stack: both hands, the portal
// tracker, the wipe brush with its CPU mask, and the per-frame packed
// region arrays. Construction is init, [System.Tick] is the per-frame
// entry point, [System.Close] is shutdown; there is no implicit
// lifecycle beyond these.
type System struct {
	Left    *handtrack.SkeletonHand
	Right   *handtrack.SkeletonHand
	Tracker *portalmask.PortalTracker
	Brush   *portalmask.WipeBrush
	Wipe    *maskeval.WipeMask

	surf   portalmask.Surface
	arrays glmask.RegionArrays
	log    *slog.Logger
}

// NewSystem validates cfg and assembles the full stack. logger nil
// selects cfg.NewLogger over stderr.
func NewSystem(cfg Config, logger *slog.Logger) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = cfg.NewLogger(nil)
	}
	policy, err := cfg.jointPolicy()
	if err != nil {
		return nil, err
	}
	s := &System{surf: cfg.Surface.Descriptor(), log: logger}
	s.Left, err = handtrack.NewSkeletonHand(policy)
	if err != nil {
		return nil, err
	}
	s.Right, err = handtrack.NewSkeletonHand(policy)
	if err != nil {
		return nil, err
	}
	s.Tracker, err = portalmask.NewPortalTracker(portalmask.TrackerConfig{
		Surface:          &s.surf,
		MaxRegions:       cfg.MaxRegions,
		MinRegionSize:    cfg.MinRegionSize,
		SurfaceTolerance: cfg.SurfaceTolerance,
		CornerRadius:     cfg.CornerRadius,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	s.Wipe, err = maskeval.NewWipeMask(cfg.WipeResolution)
	if err != nil {
		return nil, err
	}
	s.Brush, err = portalmask.NewWipeBrush(portalmask.WipeBrushConfig{
		Surface:          &s.surf,
		Target:           s.Wipe,
		BrushSize:        cfg.BrushSize,
		FadeSpeed:        cfg.FadeSpeed,
		SurfaceTolerance: cfg.SurfaceTolerance,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FrameInput is everything one tick consumes.
type FrameInput struct {
	Hands handtrack.Frame
	// Contact is the closest wipe-collider point this frame; ignored
	// when HasContact is false.
	Contact    ms3.Vec
	HasContact bool
	// DT is the frame delta time in seconds.
	DT float32
}

// Tick advances the whole system one frame and repacks the GPU region
// arrays from the authoritative region set. Frame-synchronous and
// single-threaded like its parts.
func (s *System) Tick(in FrameInput) {
	s.Tracker.Tick(in.Hands)
	s.Brush.Tick(in.Contact, in.HasContact, in.DT)
	glmask.Pack(s.Tracker.RegionsNoCopy(), &s.arrays)
}

// Arrays exposes the regions packed by the last Tick for upload or CPU
// compositing. The pointer stays valid across ticks; contents are
// regenerated in full each frame.
func (s *System) Arrays() *glmask.RegionArrays { return &s.arrays }

// Close drops all tracked state. The system must not be ticked after.
func (s *System) Close() {
	s.Tracker.ClearAll()
	glmask.Pack(nil, &s.arrays)
}
