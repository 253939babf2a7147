package glmask

import (
	"fmt"
	"io"
)

// Uniform and sampler names shared between the generated shader sources
// and the upload path. Exported so host render code binding its own
// pipeline can address the same contract.
const (
	UniformRects     = "_PortalRects"
	UniformRadii     = "_PortalRadii"
	UniformCount     = "_PortalCount"
	UniformParallax  = "_Parallax"
	UniformGlowWidth = "_GlowWidth"
	UniformVideoTex  = "_VideoTex"
	UniformWipeTex   = "_WipeMask"
	UniformDecay     = "_DecayAmount"
	UniformStampUV   = "_StampUV"
	UniformBrushSize = "_BrushSize"
)

// DefaultGlowWidth is the boundary glow band width in UV units.
const DefaultGlowWidth = 0.012

// ZoomFactor rescales the sampled video about the UV center inside
// portals; mirror addressing handles the resulting out-of-range
// coordinates at the texture edge.
const ZoomFactor = 0.7

const portalVertexSrc = `#version 430
layout(location = 0) in vec2 aPos;
out vec2 vUV;
void main() {
	vUV = 0.5*aPos + 0.5;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

// portalFragTemplate is the portal compositor. Per fragment: rounded
// box SDF per live region, union inside-mask via smoothed max,
// parallax-shifted and center-zoomed video inside, glow band on the
// nearest boundary, premultiplied alpha out. Template arguments:
// capacity, zoom factor.
const portalFragTemplate = `#version 430
#define MAX_PORTALS %d
uniform vec4 _PortalRects[MAX_PORTALS];
uniform float _PortalRadii[MAX_PORTALS];
uniform int _PortalCount;
uniform vec2 _Parallax;
uniform float _GlowWidth;
uniform sampler2D _VideoTex;
in vec2 vUV;
out vec4 fragColor;

float sdRoundedBox(vec2 p, vec2 b, float r) {
	vec2 d = abs(p) - b + r;
	return min(max(d.x, d.y), 0.0) + length(max(d, vec2(0.0))) - r;
}

vec2 mirrorRepeat(vec2 uv) {
	uv = abs(uv);
	return 1.0 - abs(mod(uv, 2.0) - 1.0);
}

void main() {
	vec2 p = vUV;
	float w = fwidth(p.x) + fwidth(p.y);
	float inside = 0.0;
	float minDist = 1e20;
	for (int i = 0; i < _PortalCount; ++i) {
		vec4 rect = _PortalRects[i];
		vec2 c = 0.5*(rect.xy + rect.zw);
		vec2 hb = 0.5*(rect.zw - rect.xy);
		float r = min(_PortalRadii[i], min(hb.x, hb.y));
		float d = sdRoundedBox(p - c, hb, r);
		minDist = min(minDist, d);
		inside = max(inside, 1.0 - smoothstep(-w, w, d));
	}
	// Early out: fully transparent and beyond the glow band.
	if (inside < 1e-3 && minDist > _GlowWidth) {
		fragColor = vec4(0.0);
		return;
	}
	vec2 uv = (p - 0.5)*%s + 0.5 + _Parallax;
	uv = mirrorRepeat(uv);
	vec4 video = texture(_VideoTex, uv);
	float a = video.a * inside;
	float glow = smoothstep(_GlowWidth, 0.0, abs(minDist)) * (1.0 - inside*0.5);
	vec3 rgb = video.rgb*a + vec3(glow);
	fragColor = vec4(rgb, clamp(a + glow, 0.0, 1.0));
}
`

// wipeFragSrc composites the video through the accumulated wipe mask:
// alpha is the revealed intensity, premultiplied.
const wipeFragSrc = `#version 430
uniform sampler2D _VideoTex;
uniform sampler2D _WipeMask;
in vec2 vUV;
out vec4 fragColor;
void main() {
	float reveal = texture(_WipeMask, vUV).r;
	vec4 video = texture(_VideoTex, vUV);
	float a = video.a * reveal;
	fragColor = vec4(video.rgb*a, a);
}
`

// wipeDecayTemplate is pass 1 of the per-frame wipe update. It reads
// the committed mask and writes the decayed value to a scratch image;
// the caller copies scratch back after dispatch. Source is never
// written while read. Template arguments: local size x, y.
const wipeDecayTemplate = `#version 430
layout(local_size_x = %d, local_size_y = %d) in;
layout(r32f, binding = 0) readonly uniform image2D srcMask;
layout(r32f, binding = 1) writeonly uniform image2D dstMask;
uniform float _DecayAmount;
void main() {
	ivec2 xy = ivec2(gl_GlobalInvocationID.xy);
	if (xy.x >= imageSize(srcMask).x || xy.y >= imageSize(srcMask).y) {
		return;
	}
	float v = imageLoad(srcMask, xy).r;
	imageStore(dstMask, xy, vec4(max(v - _DecayAmount, 0.0)));
}
`

// wipeStampTemplate is pass 2: additive circular falloff at the contact
// UV, saturating at one. Inner falloff radius is 0.3x the brush size.
// Same scratch-image discipline as the decay pass. Template arguments:
// local size x, y.
const wipeStampTemplate = `#version 430
layout(local_size_x = %d, local_size_y = %d) in;
layout(r32f, binding = 0) readonly uniform image2D srcMask;
layout(r32f, binding = 1) writeonly uniform image2D dstMask;
uniform vec2 _StampUV;
uniform float _BrushSize;
void main() {
	ivec2 xy = ivec2(gl_GlobalInvocationID.xy);
	ivec2 sz = imageSize(srcMask);
	if (xy.x >= sz.x || xy.y >= sz.y) {
		return;
	}
	vec2 uv = (vec2(xy) + 0.5) / vec2(sz);
	float dist = length(uv - _StampUV);
	float add = 1.0 - smoothstep(0.3*_BrushSize, _BrushSize, dist);
	float v = imageLoad(srcMask, xy).r;
	imageStore(dstMask, xy, vec4(min(v + add, 1.0)));
}
`

// WriteVertexShader writes the fullscreen-quad vertex stage shared by
// both compositor programs.
func WriteVertexShader(w io.Writer) (int, error) {
	return io.WriteString(w, portalVertexSrc)
}

// WritePortalFragmentShader writes the portal compositor fragment
// shader with the package capacity and zoom constants baked in.
func WritePortalFragmentShader(w io.Writer) (int, error) {
	return fmt.Fprintf(w, portalFragTemplate, Capacity, appendZoom(nil))
}

// WriteWipeFragmentShader writes the wipe-mask compositor fragment
// shader.
func WriteWipeFragmentShader(w io.Writer) (int, error) {
	return io.WriteString(w, wipeFragSrc)
}

// WriteWipeComputeShaders writes the decay then the stamp compute pass
// with the given work group edge size.
func WriteWipeComputeShaders(decay, stamp io.Writer, localSize int) error {
	if localSize < 1 {
		return fmt.Errorf("glmask: local size must be positive, got %d", localSize)
	}
	if _, err := fmt.Fprintf(decay, wipeDecayTemplate, localSize, localSize); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stamp, wipeStampTemplate, localSize, localSize)
	return err
}

// appendZoom formats the zoom factor as a GLSL float literal.
func appendZoom(b []byte) []byte {
	return fmt.Appendf(b, "%.4f", ZoomFactor)
}
