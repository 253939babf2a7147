package glmask_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/portalvr/portalmask"
	"github.com/portalvr/portalmask/glmask"
	"github.com/soypat/geometry/ms2"
	"github.com/stretchr/testify/require"
)

func mkRegion(x0, y0, x1, y1, radius float32) portalmask.Region {
	return portalmask.NewRegion(ms2.Vec{X: x0, Y: y0}, ms2.Vec{X: x1, Y: y1}, radius)
}

func TestPackOrderAndZeroing(t *testing.T) {
	regions := []portalmask.Region{
		mkRegion(0.1, 0.2, 0.3, 0.4, 0.01),
		mkRegion(0.5, 0.5, 0.9, 0.8, 0.02),
	}
	var arr glmask.RegionArrays
	glmask.Pack(regions, &arr)
	require.EqualValues(t, 2, arr.Count)
	require.Equal(t, [4]float32{0.1, 0.2, 0.3, 0.4}, arr.Rects[0])
	require.Equal(t, [4]float32{0.5, 0.5, 0.9, 0.8}, arr.Rects[1])
	require.Equal(t, float32(0.01), arr.Radii[0])
	require.Equal(t, float32(0.02), arr.Radii[1])
	for i := int(arr.Count); i < glmask.Capacity; i++ {
		require.Equal(t, [4]float32{}, arr.Rects[i], "slot %d must be the zero rect", i)
		require.Zero(t, arr.Radii[i], "slot %d must have zero radius", i)
	}
}

func TestPackClearsStaleSlots(t *testing.T) {
	var arr glmask.RegionArrays
	full := make([]portalmask.Region, glmask.Capacity)
	for i := range full {
		lo := float32(i) * 0.1
		full[i] = mkRegion(lo, lo, lo+0.05, lo+0.05, 0.01)
	}
	glmask.Pack(full, &arr)
	require.EqualValues(t, glmask.Capacity, arr.Count)

	// The set shrinks; previously occupied slots must not leak.
	glmask.Pack(full[:1], &arr)
	require.EqualValues(t, 1, arr.Count)
	for i := 1; i < glmask.Capacity; i++ {
		require.Equal(t, [4]float32{}, arr.Rects[i], "stale slot %d", i)
		require.Zero(t, arr.Radii[i], "stale slot %d", i)
	}

	glmask.Pack(nil, &arr)
	require.EqualValues(t, 0, arr.Count)
	require.Equal(t, glmask.RegionArrays{}, arr)
}

func TestPackSkipsInactiveAndOverflow(t *testing.T) {
	regions := []portalmask.Region{
		mkRegion(0.1, 0.1, 0.2, 0.2, 0),
		mkRegion(0.3, 0.3, 0.4, 0.4, 0),
		mkRegion(0.5, 0.5, 0.6, 0.6, 0),
	}
	regions[1].Active = false
	var arr glmask.RegionArrays
	glmask.Pack(regions, &arr)
	require.EqualValues(t, 2, arr.Count)
	require.Equal(t, [4]float32{0.5, 0.5, 0.6, 0.6}, arr.Rects[1], "active regions compact in creation order")

	over := make([]portalmask.Region, glmask.Capacity+3)
	for i := range over {
		over[i] = mkRegion(0, 0, 0.5, 0.5, 0)
	}
	glmask.Pack(over, &arr)
	require.EqualValues(t, glmask.Capacity, arr.Count, "count caps at capacity")
}

func TestPackIdempotent(t *testing.T) {
	regions := []portalmask.Region{mkRegion(0.1, 0.1, 0.6, 0.7, 0.03)}
	var a, b glmask.RegionArrays
	glmask.Pack(regions, &a)
	glmask.Pack(regions, &b)
	glmask.Pack(regions, &b)
	require.Equal(t, a, b)
}

func TestPortalFragmentShaderSource(t *testing.T) {
	var buf bytes.Buffer
	_, err := glmask.WritePortalFragmentShader(&buf)
	require.NoError(t, err)
	src := buf.String()
	for _, want := range []string{
		fmt.Sprintf("#define MAX_PORTALS %d", glmask.Capacity),
		glmask.UniformRects, glmask.UniformRadii, glmask.UniformCount,
		glmask.UniformParallax, glmask.UniformGlowWidth, glmask.UniformVideoTex,
		"sdRoundedBox", "fwidth",
	} {
		require.Contains(t, src, want)
	}
	require.NotContains(t, src, "%d", "all template verbs must be expanded")
}

func TestWipeComputeShaderSources(t *testing.T) {
	var decay, stamp bytes.Buffer
	require.NoError(t, glmask.WriteWipeComputeShaders(&decay, &stamp, 16))
	require.Contains(t, decay.String(), glmask.UniformDecay)
	require.Contains(t, decay.String(), "local_size_x = 16")
	require.Contains(t, stamp.String(), glmask.UniformStampUV)
	require.Contains(t, stamp.String(), glmask.UniformBrushSize)
	// Both passes read srcMask and write dstMask, never in place.
	for _, src := range []string{decay.String(), stamp.String()} {
		require.Contains(t, src, "readonly uniform image2D srcMask")
		require.Contains(t, src, "writeonly uniform image2D dstMask")
	}
	require.Error(t, glmask.WriteWipeComputeShaders(&decay, &stamp, 0))
}

func TestVertexAndWipeFragmentSources(t *testing.T) {
	var buf bytes.Buffer
	_, err := glmask.WriteVertexShader(&buf)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(buf.String(), "#version"))

	buf.Reset()
	_, err = glmask.WriteWipeFragmentShader(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), glmask.UniformWipeTex)
	require.Contains(t, buf.String(), glmask.UniformVideoTex)
}
