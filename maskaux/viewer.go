package maskaux

import "context"

// ViewerConfig configures the interactive overlay viewer.
type ViewerConfig struct {
	Width  int
	Height int
	// Context cancels the render loop when done.
	Context context.Context
	// VideoTexture is an existing GL texture handle standing in for the
	// passthrough video feed. Zero generates a builtin checker texture.
	VideoTexture uint32
}

// Viewer opens a window rendering the system's overlays live, with the
// mouse standing in for hand input: left drag pinch-carves a portal
// between the press point and the cursor, right drag wipes, C clears
// all portals. Requires cgo and a display; intended for desktop
// iteration on overlay tuning, not for headset use.
func Viewer(sys *System, cfg ViewerConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	return ui(sys, cfg)
}
