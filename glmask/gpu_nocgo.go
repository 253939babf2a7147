//go:build tinygo || !cgo

package glmask

import (
	"errors"
	"log/slog"

	"github.com/soypat/geometry/ms2"
)

var errNoCGO = errors.New("GPU mask resources require CGo and are not supported on TinyGo")

// Init1x1GLFW starts a hidden 1x1 GLFW window so GPU mask resources can
// be created without a host render loop, for tools and tests.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// Uploader owns the compiled portal compositor program and pushes one
// RegionArrays snapshot per frame into its uniforms.
type Uploader struct{}

// NewUploader compiles the portal compositor program against the
// current GL context.
func NewUploader(glowWidth float32) (*Uploader, error) {
	return nil, errNoCGO
}

func (u *Uploader) Upload(arr *RegionArrays, parallax ms2.Vec) error {
	return errNoCGO
}

func (u *Uploader) Release() {}

// GPUWipeMask is the GPU-resident wipe accumulation buffer.
type GPUWipeMask struct{}

// NewGPUWipeMask allocates the texture pair at resolution² texels and
// compiles both wipe passes.
func NewGPUWipeMask(resolution int, logger *slog.Logger) (*GPUWipeMask, error) {
	return nil, errNoCGO
}

func (m *GPUWipeMask) Handle() uint32 { return 0 }

func (m *GPUWipeMask) Decay(amount float32) {}

func (m *GPUWipeMask) Stamp(uv ms2.Vec, brushSize float32) {}

func (m *GPUWipeMask) Release() {}
