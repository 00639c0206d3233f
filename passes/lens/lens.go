// Package lens implements the compositing pass that simulates presbyopia and
// myopia/hyperopia by blurring the incoming frame outside the focus range of
// the simulated eye.
package lens

import (
	"bytes"
	"embed"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/mjettp/visual-system-simulator/graphics"
	"github.com/mjettp/visual-system-simulator/pipeline"
)

//go:embed shader.vert shader.frag normal.png
var assets embed.FS

// Lens is the lens pass. It accepts RGB and RGB+depth sources; a frame
// without depth uses the placeholder depth texture, which puts the whole
// frame at the far plane.
type Lens struct {
	program uint32
	quad    *graphics.Quad
	locs    uniformLocations

	// static resources owned by the pass
	sampler          *pipeline.Sampler
	normal           *pipeline.Texture
	cornea           *pipeline.Texture
	placeholderDepth *pipeline.Texture

	// per-frame bindings, refreshed by UpdateIO
	target     *pipeline.RenderTarget
	color      *pipeline.Texture
	depth      *pipeline.Texture
	srcSampler *pipeline.Sampler
	stereo     bool

	uniforms    OpticalUniforms
	samplecount int32
}

type uniformLocations struct {
	stereo           int32
	active           int32
	samplecount      int32
	depthMin         int32
	depthMax         int32
	nearPoint        int32
	farPoint         int32
	nearVisionFactor int32
	farVisionFactor  int32
	color            int32
	depth            int32
	normal           int32
	cornea           int32
}

// New creates the lens pass: compiles the shader program and loads the
// bundled normal map through the high-precision path. Any failure here is a
// broken bundle and unrecoverable.
func New() (*Lens, error) {
	vert, err := assets.ReadFile("shader.vert")
	if err != nil {
		return nil, fmt.Errorf("lens: read vertex shader: %w", err)
	}
	frag, err := assets.ReadFile("shader.frag")
	if err != nil {
		return nil, fmt.Errorf("lens: read fragment shader: %w", err)
	}

	program, err := graphics.NewProgram(string(vert), string(frag))
	if err != nil {
		return nil, fmt.Errorf("lens: %w", err)
	}

	normalPNG, err := assets.ReadFile("normal.png")
	if err != nil {
		return nil, fmt.Errorf("lens: read normal map: %w", err)
	}
	normal, err := pipeline.LoadHighresNormalmap(bytes.NewReader(normalPNG))
	if err != nil {
		return nil, fmt.Errorf("lens: load normal map: %w", err)
	}

	l := &Lens{
		program:     program,
		quad:        graphics.NewQuad(),
		sampler:     pipeline.NewLinearSampler(),
		normal:      normal,
		cornea:      pipeline.NewTexture(pipeline.RGBA8, 1, 1, []byte{127, 127, 127, 127}),
		uniforms:    DefaultUniforms(),
		samplecount: 4,
	}
	// A neutral 1x1 depth plane so s_depth is always sampleable even for
	// color-only sources.
	l.placeholderDepth = pipeline.NewTexture(pipeline.R8, 1, 1, []byte{255})
	l.depth = l.placeholderDepth
	l.srcSampler = l.sampler

	gl.UseProgram(program)
	l.locs = uniformLocations{
		stereo:           graphics.UniformLocation(program, "u_stereo"),
		active:           graphics.UniformLocation(program, "u_active"),
		samplecount:      graphics.UniformLocation(program, "u_samplecount"),
		depthMin:         graphics.UniformLocation(program, "u_depth_min"),
		depthMax:         graphics.UniformLocation(program, "u_depth_max"),
		nearPoint:        graphics.UniformLocation(program, "u_near_point"),
		farPoint:         graphics.UniformLocation(program, "u_far_point"),
		nearVisionFactor: graphics.UniformLocation(program, "u_near_vision_factor"),
		farVisionFactor:  graphics.UniformLocation(program, "u_far_vision_factor"),
		color:            graphics.UniformLocation(program, "s_color"),
		depth:            graphics.UniformLocation(program, "s_depth"),
		normal:           graphics.UniformLocation(program, "s_normal"),
		cornea:           graphics.UniformLocation(program, "s_cornea"),
	}
	gl.UseProgram(0)

	return l, nil
}

// UpdateIO rebinds the pass inputs and output for this frame. YUV sources are
// not supported by the lens pass.
func (l *Lens) UpdateIO(target *pipeline.RenderTarget, _ [2]int, source pipeline.Source, sourceSampler *pipeline.Sampler, _ [2]int, stereo bool) error {
	l.target = target
	l.srcSampler = sourceSampler
	l.stereo = stereo

	switch s := source.(type) {
	case pipeline.RGBSource:
		l.color = s.Color
		l.depth = l.placeholderDepth
	case pipeline.RGBDepthSource:
		l.color = s.Color
		l.depth = s.Depth
	case pipeline.YUVSource:
		return fmt.Errorf("lens: %w: yuv", pipeline.ErrUnsupportedSource)
	default:
		return fmt.Errorf("lens: %w: %T", pipeline.ErrUnsupportedSource, source)
	}
	return nil
}

// UpdateParams recomputes the optical uniforms for the upcoming draw.
func (l *Lens) UpdateParams(params pipeline.ValueMap) {
	l.uniforms = ComputeUniforms(params)
	l.uniforms.Stereo = l.stereo
}

// Render draws the full-screen lens composite into the bound target. Gaze is
// accepted for interface symmetry; the lens model is gaze-independent.
func (l *Lens) Render(_ pipeline.Gaze) {
	l.target.Bind()

	gl.UseProgram(l.program)
	gl.Uniform1i(l.locs.stereo, boolUniform(l.uniforms.Stereo))
	gl.Uniform1i(l.locs.active, boolUniform(l.uniforms.Active))
	gl.Uniform1i(l.locs.samplecount, l.samplecount)
	gl.Uniform1f(l.locs.depthMin, l.uniforms.DepthMin)
	gl.Uniform1f(l.locs.depthMax, l.uniforms.DepthMax)
	gl.Uniform1f(l.locs.nearPoint, l.uniforms.NearPoint)
	gl.Uniform1f(l.locs.farPoint, l.uniforms.FarPoint)
	gl.Uniform1f(l.locs.nearVisionFactor, l.uniforms.NearVisionFactor)
	gl.Uniform1f(l.locs.farVisionFactor, l.uniforms.FarVisionFactor)

	l.bindTexture(0, l.locs.color, l.color, l.srcSampler)
	l.bindTexture(1, l.locs.depth, l.depth, l.srcSampler)
	l.bindTexture(2, l.locs.normal, l.normal, l.sampler)
	l.bindTexture(3, l.locs.cornea, l.cornea, l.sampler)

	l.quad.Draw()

	for unit := uint32(0); unit < 4; unit++ {
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.BindSampler(unit, 0)
	}
	gl.UseProgram(0)
}

func (l *Lens) bindTexture(unit uint32, loc int32, tex *pipeline.Texture, sampler *pipeline.Sampler) {
	if loc == -1 {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex.ID())
	sampler.Bind(unit)
	gl.Uniform1i(loc, int32(unit))
}

// Destroy releases the GPU resources owned by the pass. Borrowed source
// textures and the target belong to the device/pipeline and are left alone.
func (l *Lens) Destroy() {
	gl.DeleteProgram(l.program)
	l.quad.Destroy()
	l.sampler.Destroy()
	l.normal.Destroy()
	l.cornea.Destroy()
	l.placeholderDepth.Destroy()
}

func boolUniform(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
