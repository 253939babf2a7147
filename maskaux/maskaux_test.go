package maskaux_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/portalvr/portalmask/handtrack"
	"github.com/portalvr/portalmask/maskaux"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/stretchr/testify/require"
)

const validTOML = `
max_regions = 4
min_region_size = 0.1
brush_size = 0.08
fade_speed = 0.5
wipe_resolution = 64
joint_policy = "strict"
log_level = "debug"

[surface]
position = [0.0, 1.5, -2.0]
right = [1.0, 0.0, 0.0]
up = [0.0, 1.0, 0.0]
normal = [0.0, 0.0, 1.0]
extents = [1.6, 0.9]
pivot = [0.5, 0.5]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := maskaux.LoadConfig(strings.NewReader(validTOML))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.MaxRegions)
	require.Equal(t, "strict", cfg.JointPolicy)
	surf := cfg.Surface.Descriptor()
	require.NoError(t, surf.Validate())
	require.Equal(t, float32(1.6), surf.Extents.X)
}

func TestLoadConfigUnknownField(t *testing.T) {
	_, err := maskaux.LoadConfig(strings.NewReader(validTOML + "\nmispeled_knob = 3\n"))
	require.Error(t, err, "unknown keys must fail loudly, not be ignored")
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := maskaux.LoadConfig(strings.NewReader("max_regions = [not toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := maskaux.LoadConfig(strings.NewReader(validTOML))
	require.NoError(t, err)
	for _, tc := range []struct {
		name   string
		mutate func(*maskaux.Config)
	}{
		{"missing surface", func(c *maskaux.Config) { c.Surface = maskaux.SurfaceConfig{} }},
		{"non-unit basis", func(c *maskaux.Config) { c.Surface.Right = [3]float32{2, 0, 0} }},
		{"too many regions", func(c *maskaux.Config) { c.MaxRegions = 99 }},
		{"negative max regions", func(c *maskaux.Config) { c.MaxRegions = -1 }},
		{"min size above 1", func(c *maskaux.Config) { c.MinRegionSize = 1.5 }},
		{"negative fade", func(c *maskaux.Config) { c.FadeSpeed = -0.1 }},
		{"bad joint policy", func(c *maskaux.Config) { c.JointPolicy = "sloppy" }},
		{"bad log level", func(c *maskaux.Config) { c.LogLevel = "loud" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, base.Validate(), "base config must stay valid")
}

func TestNewLoggerLevel(t *testing.T) {
	cfg, err := maskaux.LoadConfig(strings.NewReader(validTOML))
	require.NoError(t, err)
	var sb strings.Builder
	log := cfg.NewLogger(&sb)
	require.True(t, log.Enabled(nil, slog.LevelDebug))
}

func TestSystemLifecycle(t *testing.T) {
	cfg, err := maskaux.LoadConfig(strings.NewReader(validTOML))
	require.NoError(t, err)
	cfg.JointPolicy = "lenient"
	var sb strings.Builder
	sys, err := maskaux.NewSystem(cfg, cfg.NewLogger(&sb))
	require.NoError(t, err)
	defer sys.Close()

	surf := cfg.Surface.Descriptor()
	// Carve a region: pinch both hands near opposite surface corners,
	// hold a frame, then release.
	corner := func(u, v float32) ms3.Vec {
		x := (u - surf.Pivot.X) * surf.Extents.X
		y := (v - surf.Pivot.Y) * surf.Extents.Y
		return ms3.Vec{
			X: surf.Position.X + x*surf.Right.X + y*surf.Up.X,
			Y: surf.Position.Y + x*surf.Right.Y + y*surf.Up.Y,
			Z: surf.Position.Z + x*surf.Right.Z + y*surf.Up.Z,
		}
	}
	pinch := func(l, r ms3.Vec, pinching bool) handtrack.Frame {
		sys.Left.Update(true, pinching, []handtrack.Joint{{ID: handtrack.JointIndexTip, Pose: handtrack.Pose{Position: l}}})
		sys.Right.Update(true, pinching, []handtrack.Joint{{ID: handtrack.JointIndexTip, Pose: handtrack.Pose{Position: r}}})
		return handtrack.SampleFrame(sys.Left, sys.Right)
	}

	sys.Tick(maskaux.FrameInput{Hands: pinch(corner(0.2, 0.2), corner(0.8, 0.8), true), DT: 1.0 / 72})
	require.Equal(t, 1, sys.Tracker.Count())
	require.True(t, sys.Tracker.Tracking())
	require.EqualValues(t, 1, sys.Arrays().Count, "in-progress region must pack for rendering")

	sys.Tick(maskaux.FrameInput{Hands: pinch(corner(0.2, 0.2), corner(0.8, 0.8), false), DT: 1.0 / 72})
	require.False(t, sys.Tracker.Tracking())
	require.Equal(t, 1, sys.Tracker.Count(), "region above min size survives release")
	require.EqualValues(t, 1, sys.Arrays().Count)

	// Wipe at surface center; the mask must take the stamp.
	sys.Tick(maskaux.FrameInput{
		Hands:      pinch(corner(0.2, 0.2), corner(0.8, 0.8), false),
		Contact:    corner(0.5, 0.5),
		HasContact: true,
		DT:         1.0 / 72,
	})
	require.InDelta(t, 1.0, sys.Wipe.Sample(ms2.Vec{X: 0.5, Y: 0.5}), 1e-3)

	sys.Close()
	require.Equal(t, 0, sys.Tracker.Count())
	require.EqualValues(t, 0, sys.Arrays().Count)
}

func TestNewSystemRejectsInvalid(t *testing.T) {
	_, err := maskaux.NewSystem(maskaux.Config{}, nil)
	require.Error(t, err, "zero config has no surface and must fail")
}
