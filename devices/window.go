package devices

import (
	"io"
	"log"
	"sync"

	"github.com/mjettp/visual-system-simulator/graphics"
	"github.com/mjettp/visual-system-simulator/pipeline"
)

// WindowDevice drives the simulator on a desktop window: it streams frames
// from a FrameSource into GPU textures and presents the composited result
// through the window's GL context. It implements pipeline.Device.
type WindowDevice struct {
	ctx    graphics.Context
	frames FrameSource

	width  int
	height int
	color  *pipeline.Texture
	depth  *pipeline.Texture

	sampler *pipeline.Sampler
	target  *pipeline.RenderTarget
	stereo  bool

	// params is replaced wholesale by the watcher goroutine; the frame loop
	// only reads it.
	mu     sync.Mutex
	params pipeline.ValueMap

	sourceEnded bool
}

// NewWindowDevice wires a frame source to a GL context. The streaming
// textures are allocated once, sized to the source dimensions, and mutated in
// place every frame.
func NewWindowDevice(ctx graphics.Context, frames FrameSource, stereo bool) *WindowDevice {
	width, height := frames.Dimensions()
	d := &WindowDevice{
		ctx:     ctx,
		frames:  frames,
		width:   width,
		height:  height,
		stereo:  stereo,
		params:  pipeline.ValueMap{},
		sampler: pipeline.NewLinearSampler(),
	}
	d.color = pipeline.NewTexture(pipeline.RGBA8, width, height, make([]byte, width*height*4))
	if frames.HasDepth() {
		d.depth = pipeline.NewTexture(pipeline.R8, width, height, make([]byte, width*height))
	}
	fbW, fbH := ctx.GetFramebufferSize()
	d.target = pipeline.ScreenTarget(fbW, fbH)
	return d
}

// SetParams replaces the simulation parameters used from the next frame on.
// Safe to call from the parameter watcher goroutine.
func (d *WindowDevice) SetParams(params pipeline.ValueMap) {
	d.mu.Lock()
	d.params = params
	d.mu.Unlock()
}

// Params returns the current simulation parameters.
func (d *WindowDevice) Params() pipeline.ValueMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// BeginFrame blocks on the frame source and streams the new frame into the
// pre-allocated textures. This is the only blocking point of the frame loop.
// When the source ends, the last frame stays on screen and the device
// requests termination at the next EndFrame.
func (d *WindowDevice) BeginFrame() {
	if d.sourceEnded {
		return
	}
	frame, err := d.frames.NextFrame()
	if err == io.EOF {
		log.Printf("Frame source ended")
		d.sourceEnded = true
		return
	}
	if err != nil {
		log.Printf("Frame source failed: %v", err)
		d.sourceEnded = true
		return
	}
	d.color.UpdateRegion(0, 0, d.width, d.height, frame.Color)
	if d.depth != nil && frame.Depth != nil {
		d.depth.UpdateRegion(0, 0, d.width, d.height, frame.Depth)
	}
}

// EndFrame presents the frame and reports whether the loop should terminate.
func (d *WindowDevice) EndFrame(done *bool) {
	d.ctx.EndFrame()
	*done = d.ctx.ShouldClose() || d.sourceEnded
}

// Source exposes the streaming textures as this frame's device source.
func (d *WindowDevice) Source() pipeline.Source {
	if d.depth != nil {
		return pipeline.RGBDepthSource{Color: d.color, Depth: d.depth}
	}
	return pipeline.RGBSource{Color: d.color}
}

func (d *WindowDevice) SourceSize() (int, int) { return d.width, d.height }

// Target returns the window surface, resized to the current framebuffer.
func (d *WindowDevice) Target() *pipeline.RenderTarget {
	fbW, fbH := d.ctx.GetFramebufferSize()
	d.target.Resize(fbW, fbH)
	return d.target
}

func (d *WindowDevice) TargetSize() (int, int) {
	return d.ctx.GetFramebufferSize()
}

func (d *WindowDevice) Sampler() *pipeline.Sampler { return d.sampler }

func (d *WindowDevice) Gaze() pipeline.Gaze {
	x, y := d.ctx.GazePosition()
	return pipeline.Gaze{X: x, Y: y}
}

func (d *WindowDevice) Stereo() bool { return d.stereo }

// Destroy releases the device's GPU resources and closes the frame source.
func (d *WindowDevice) Destroy() {
	d.color.Destroy()
	if d.depth != nil {
		d.depth.Destroy()
	}
	d.sampler.Destroy()
	if err := d.frames.Close(); err != nil {
		log.Printf("Closing frame source: %v", err)
	}
}
