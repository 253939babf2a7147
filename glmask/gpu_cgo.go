//go:build !tinygo && cgo

package glmask

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/v4.1-core/glgl"
)

// wipeLocalSize is the compute work group edge for the wipe passes.
const wipeLocalSize = 16

// Init1x1GLFW starts a hidden 1x1 GLFW window so GPU mask resources can
// be created without a host render loop, for tools and tests. Returns a
// termination function to call when done.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "portalmask",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// Uploader owns the compiled portal compositor program and pushes one
// RegionArrays snapshot per frame into its uniforms. The arrays are
// uploaded verbatim and in full every call; no incremental slot updates
// exist, so the shader can never observe stale bounds.
type Uploader struct {
	prog      glgl.Program
	locRects  int32
	locRadii  int32
	locCount  int32
	locPax    int32
	locGlow   int32
	glowWidth float32
}

// NewUploader compiles the portal compositor program against the
// current GL context. glowWidth ≤ 0 selects DefaultGlowWidth.
func NewUploader(glowWidth float32) (*Uploader, error) {
	if glowWidth <= 0 {
		glowWidth = DefaultGlowWidth
	}
	var vtx, frag bytes.Buffer
	if _, err := WriteVertexShader(&vtx); err != nil {
		return nil, err
	}
	if _, err := WritePortalFragmentShader(&frag); err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vtx.String() + "\x00",
		Fragment: frag.String() + "\x00",
	})
	if err != nil {
		return nil, fmt.Errorf("compiling portal compositor: %w", err)
	}
	u := &Uploader{prog: prog, glowWidth: glowWidth}
	prog.Bind()
	defer prog.Unbind()
	for _, loc := range []struct {
		name string
		dst  *int32
	}{
		{UniformRects, &u.locRects},
		{UniformRadii, &u.locRadii},
		{UniformCount, &u.locCount},
		{UniformParallax, &u.locPax},
		{UniformGlowWidth, &u.locGlow},
	} {
		*loc.dst, err = prog.UniformLocation(loc.name + "\x00")
		if err != nil {
			prog.Delete()
			return nil, fmt.Errorf("locating uniform %s: %w", loc.name, err)
		}
	}
	return u, nil
}

// Upload binds the compositor program and pushes the full region
// arrays plus the per-frame parallax offset.
func (u *Uploader) Upload(arr *RegionArrays, parallax ms2.Vec) error {
	if u.prog.ID() == 0 {
		return errors.New("uploader program not initialized")
	}
	u.prog.Bind()
	defer u.prog.Unbind()
	gl.Uniform4fv(u.locRects, Capacity, &arr.Rects[0][0])
	gl.Uniform1fv(u.locRadii, Capacity, &arr.Radii[0])
	gl.Uniform1i(u.locCount, arr.Count)
	gl.Uniform2f(u.locPax, parallax.X, parallax.Y)
	gl.Uniform1f(u.locGlow, u.glowWidth)
	return glgl.Err()
}

// Program exposes the compiled compositor program so host render code
// can do its own vertex setup and sampler binding.
func (u *Uploader) Program() *glgl.Program { return &u.prog }

// Release deletes the GL program.
func (u *Uploader) Release() {
	if u.prog.ID() != 0 {
		u.prog.Delete()
	}
}

// GPUWipeMask is the GPU-resident wipe accumulation buffer: a pair of
// r32f textures (committed + scratch) updated by the decay and stamp
// compute passes. Each pass reads the committed texture, writes the
// scratch, then commits by texture copy, so the source is never
// mutated while read. Implements portalmask.WipeTarget.
//
// Any GL failure disables the mask (updates become no-ops) with a
// single diagnostic, rather than failing the caller's frame.
type GPUWipeMask struct {
	committed uint32
	scratch   uint32
	res       int32
	decay     glgl.Program
	stamp     glgl.Program
	log       *slog.Logger
	disabled  bool
}

// NewGPUWipeMask allocates the texture pair at resolution² texels and
// compiles both wipe passes. resolution ≤ 0 selects 512.
func NewGPUWipeMask(resolution int, logger *slog.Logger) (*GPUWipeMask, error) {
	if resolution <= 0 {
		resolution = 512
	}
	if logger == nil {
		logger = slog.Default()
	}
	var decaySrc, stampSrc bytes.Buffer
	err := WriteWipeComputeShaders(&decaySrc, &stampSrc, wipeLocalSize)
	if err != nil {
		return nil, err
	}
	m := &GPUWipeMask{res: int32(resolution), log: logger}
	m.decay, err = glgl.CompileProgram(glgl.ShaderSource{Compute: decaySrc.String() + "\x00"})
	if err != nil {
		return nil, fmt.Errorf("compiling wipe decay pass: %w", err)
	}
	m.stamp, err = glgl.CompileProgram(glgl.ShaderSource{Compute: stampSrc.String() + "\x00"})
	if err != nil {
		m.decay.Delete()
		return nil, fmt.Errorf("compiling wipe stamp pass: %w", err)
	}
	m.committed = newMaskTexture(m.res)
	m.scratch = newMaskTexture(m.res)
	if err = glgl.Err(); err != nil {
		m.Release()
		return nil, fmt.Errorf("allocating wipe textures: %w", err)
	}
	return m, nil
}

func newMaskTexture(res int32) (tex uint32) {
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, gl.R32F, res, res)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return tex
}

// Handle returns the committed mask texture for sampler binding as
// _WipeMask by the compositor.
func (m *GPUWipeMask) Handle() uint32 { return m.committed }

// Decay implements portalmask.WipeTarget pass 1.
func (m *GPUWipeMask) Decay(amount float32) {
	if m.disabled {
		return
	}
	m.decay.Bind()
	m.decay.SetUniform1f(UniformDecay+"\x00", amount)
	m.runPass(m.decay)
}

// Stamp implements portalmask.WipeTarget pass 2.
func (m *GPUWipeMask) Stamp(uv ms2.Vec, brushSize float32) {
	if m.disabled {
		return
	}
	m.stamp.Bind()
	m.stamp.SetUniform1f(UniformBrushSize+"\x00", brushSize)
	if loc, err := m.stamp.UniformLocation(UniformStampUV + "\x00"); err == nil {
		gl.Uniform2f(loc, uv.X, uv.Y)
	}
	m.runPass(m.stamp)
}

// runPass dispatches the bound compute program over committed→scratch
// and commits the result back. Scratch is acquired, written and copied
// within the same frame, never retained as the authoritative buffer.
func (m *GPUWipeMask) runPass(prog glgl.Program) {
	defer prog.Unbind()
	gl.BindImageTexture(0, m.committed, 0, false, 0, gl.READ_ONLY, gl.R32F)
	gl.BindImageTexture(1, m.scratch, 0, false, 0, gl.WRITE_ONLY, gl.R32F)
	groups := uint32((m.res + wipeLocalSize - 1) / wipeLocalSize)
	gl.DispatchCompute(groups, groups, 1)
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT)
	gl.CopyImageSubData(m.scratch, gl.TEXTURE_2D, 0, 0, 0, 0,
		m.committed, gl.TEXTURE_2D, 0, 0, 0, 0, m.res, m.res, 1)
	if err := glgl.Err(); err != nil {
		// Feature degrades to a frozen mask; the frame goes on.
		m.log.Error("wipe mask GPU pass failed, disabling updates", "err", err)
		m.disabled = true
	}
}

// Release frees all GL resources. The mask must not be used after.
func (m *GPUWipeMask) Release() {
	if m.committed != 0 {
		gl.DeleteTextures(1, &m.committed)
		gl.DeleteTextures(1, &m.scratch)
		m.committed, m.scratch = 0, 0
	}
	if m.decay.ID() != 0 {
		m.decay.Delete()
	}
	if m.stamp.ID() != 0 {
		m.stamp.Delete()
	}
	m.disabled = true
}
