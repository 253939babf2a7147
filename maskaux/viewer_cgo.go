//go:build !tinygo && cgo

package maskaux

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/portalvr/portalmask"
	"github.com/portalvr/portalmask/glmask"
	"github.com/portalvr/portalmask/handtrack"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.1-core/glgl"
)

func ui(sys *System, cfg ViewerConfig) error {
	window, term, err := startGLFW(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer term()

	uploader, err := glmask.NewUploader(0)
	if err != nil {
		return err
	}
	defer uploader.Release()
	gpuWipe, err := glmask.NewGPUWipeMask(sys.Wipe.Resolution(), sys.log)
	if err != nil {
		return err
	}
	defer gpuWipe.Release()
	brush, err := portalmask.NewWipeBrush(portalmask.WipeBrushConfig{
		Surface: &sys.surf,
		Target:  gpuWipe,
		Logger:  sys.log,
	})
	if err != nil {
		return err
	}
	wipeProg, err := compileWipeProgram()
	if err != nil {
		return err
	}
	defer wipeProg.Delete()

	video := cfg.VideoTexture
	if video == 0 {
		video = checkerTexture()
		defer gl.DeleteTextures(1, &video)
	}

	// Fullscreen quad shared by both passes.
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	quad := []float32{
		-1, -1, 1, -1, -1, 1,
		-1, 1, 1, -1, 1, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(quad), gl.Ptr(quad), gl.STATIC_DRAW)
	for _, prog := range []*glgl.Program{uploader.Program(), &wipeProg} {
		prog.Bind()
		pos, err := prog.AttribLocation("aPos\x00")
		if err != nil {
			return err
		}
		gl.EnableVertexAttribArray(pos)
		gl.VertexAttribPointer(pos, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
		if loc, err := prog.UniformLocation(glmask.UniformVideoTex + "\x00"); err == nil {
			gl.Uniform1i(loc, 0)
		}
	}
	wipeProg.Bind()
	wipeLoc, err := wipeProg.UniformLocation(glmask.UniformWipeTex + "\x00")
	if err != nil {
		return err
	}
	gl.Uniform1i(wipeLoc, 1)
	wipeProg.Unbind()
	if err := glgl.Err(); err != nil {
		return fmt.Errorf("viewer GL setup: %w", err)
	}

	// Mouse state. Left drag carves between the anchor and the cursor,
	// right drag wipes at the cursor.
	var (
		cursor   ms2.Vec
		anchor   ms2.Vec
		carving  = false
		wiping   = false
		parallax ms2.Vec
	)
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		width, height := w.GetSize()
		cursor = ms2.Vec{X: float32(x) / float32(width), Y: 1 - float32(y)/float32(height)}
		parallax = ms2.Scale(0.02, ms2.AddScalar(-0.5, cursor))
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, b glfw.MouseButton, a glfw.Action, mods glfw.ModifierKey) {
		switch b {
		case glfw.MouseButtonLeft:
			if a == glfw.Press {
				anchor = cursor
				carving = true
			} else if a == glfw.Release {
				carving = false
			}
		case glfw.MouseButtonRight:
			wiping = a != glfw.Release
		}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, sc int, a glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyC && a == glfw.Press {
			sys.Tracker.ClearAll()
		}
	})

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	previous := glfw.GetTime()
	for !window.ShouldClose() {
		if cfg.Context != nil {
			select {
			case <-cfg.Context.Done():
				return cfg.Context.Err()
			default:
			}
		}
		now := glfw.GetTime()
		dt := float32(now - previous)
		previous = now

		frame := syntheticHands(sys, anchor, cursor, carving)
		sys.Tick(FrameInput{Hands: frame, DT: dt})
		brush.Tick(sys.surfacePoint(cursor), wiping, dt)

		width, height := window.GetSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, video)
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, gpuWipe.Handle())
		gl.BindVertexArray(vao)

		wipeProg.Bind()
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		wipeProg.Unbind()
		if err := uploader.Upload(sys.Arrays(), parallax); err != nil {
			return err
		}
		uploader.Program().Bind()
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		uploader.Program().Unbind()

		window.SwapBuffers()
		glfw.PollEvents()
		time.Sleep(time.Second / 90)
	}
	return nil
}

// surfacePoint maps a UV coordinate onto the configured surface in
// world space.
func (s *System) surfacePoint(uv ms2.Vec) ms3.Vec {
	x := (uv.X - s.surf.Pivot.X) * s.surf.Extents.X
	y := (uv.Y - s.surf.Pivot.Y) * s.surf.Extents.Y
	return ms3.Add(s.surf.Position, ms3.Add(ms3.Scale(x, s.surf.Right), ms3.Scale(y, s.surf.Up)))
}

// syntheticHands drives both skeleton hands from the mouse: the left
// hand holds the press anchor, the right follows the cursor.
func syntheticHands(sys *System, anchor, cursor ms2.Vec, pinching bool) handtrack.Frame {
	joint := func(p ms3.Vec) []handtrack.Joint {
		return []handtrack.Joint{{ID: handtrack.JointIndexTip, Pose: handtrack.Pose{Position: p}}}
	}
	sys.Left.Update(true, pinching, joint(sys.surfacePoint(anchor)))
	sys.Right.Update(true, pinching, joint(sys.surfacePoint(cursor)))
	return handtrack.SampleFrame(sys.Left, sys.Right)
}

func compileWipeProgram() (glgl.Program, error) {
	var vtx, frag bytes.Buffer
	if _, err := glmask.WriteVertexShader(&vtx); err != nil {
		return glgl.Program{}, err
	}
	if _, err := glmask.WriteWipeFragmentShader(&frag); err != nil {
		return glgl.Program{}, err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vtx.String() + "\x00",
		Fragment: frag.String() + "\x00",
	})
	if err != nil {
		return glgl.Program{}, fmt.Errorf("compiling wipe compositor: %w", err)
	}
	return prog, nil
}

// checkerTexture builds a stand-in video texture.
func checkerTexture() (tex uint32) {
	const n = 8
	var pix [n * n * 4]uint8
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := 4 * (y*n + x)
			if (x+y)%2 == 0 {
				pix[i], pix[i+1], pix[i+2] = 230, 230, 230
			} else {
				pix[i], pix[i+1], pix[i+2] = 50, 75, 128
			}
			pix[i+3] = 255
		}
	}
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, n, n, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.MIRRORED_REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.MIRRORED_REPEAT)
	return tex
}

func startGLFW(width, height int) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err = glfw.CreateWindow(width, height, "portalmask viewer", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}
