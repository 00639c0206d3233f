package pipeline

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is a GPU-writable surface a pass renders into. The device
// owns the final on-screen target; the pipeline owns the intermediate
// targets used for pass chaining. Passes only borrow a target for the
// duration of one draw.
type RenderTarget struct {
	fbo    uint32
	tex    *Texture
	width  int
	height int
}

// NewRenderTarget creates an offscreen target backed by an RGBA8 texture,
// readable by the next pass in a chained configuration.
func NewRenderTarget(width, height int) (*RenderTarget, error) {
	t := &RenderTarget{width: width, height: height}
	t.tex = NewTexture(RGBA8, width, height, make([]byte, width*height*4))

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex.ID(), 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.tex.Destroy()
		gl.DeleteFramebuffers(1, &t.fbo)
		return nil, fmt.Errorf("render target framebuffer incomplete (status 0x%x)", status)
	}
	return t, nil
}

// ScreenTarget wraps the default framebuffer as a render target. The device
// owns it; Destroy is a no-op.
func ScreenTarget(width, height int) *RenderTarget {
	return &RenderTarget{fbo: 0, width: width, height: height}
}

// Bind makes the target the active draw framebuffer and sets the viewport.
func (t *RenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
}

// Texture returns the backing texture for offscreen targets, nil for the
// screen target.
func (t *RenderTarget) Texture() *Texture { return t.tex }

// Width returns the target width in pixels.
func (t *RenderTarget) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *RenderTarget) Height() int { return t.height }

// Resize updates the recorded size of a screen target. Offscreen targets are
// fixed-size for the process lifetime.
func (t *RenderTarget) Resize(width, height int) {
	if t.tex != nil {
		return
	}
	t.width = width
	t.height = height
}

// Destroy releases the framebuffer and backing texture of an offscreen
// target.
func (t *RenderTarget) Destroy() {
	if t.tex == nil {
		return
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	t.tex.Destroy()
}
