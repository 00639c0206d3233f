package pipeline

import "errors"

// ErrUnsupportedSource is returned by a pass that receives a DeviceSource
// variant it cannot handle. This signals a pipeline misconfiguration and must
// be treated as fatal, never skipped.
var ErrUnsupportedSource = errors.New("unsupported device source")

// Source describes which channels a captured frame provides. It is a closed
// set of variants; every consumer must match exhaustively and reject the
// variants it does not support via ErrUnsupportedSource.
type Source interface {
	isSource()
}

// RGBSource is a frame that provides color only.
type RGBSource struct {
	Color *Texture
}

// RGBDepthSource is a frame that provides color plus a single-channel depth
// map.
type RGBDepthSource struct {
	Color *Texture
	Depth *Texture
}

// YUVSource is a frame delivered as separate Y, U and V planes.
type YUVSource struct {
	Y *Texture
	U *Texture
	V *Texture
}

func (RGBSource) isSource()      {}
func (RGBDepthSource) isSource() {}
func (YUVSource) isSource()      {}

// Gaze is the current gaze point in normalized [0,1] target coordinates.
type Gaze struct {
	X float32
	Y float32
}

// Pass is one stage of the compositing pipeline implementing a single optical
// effect. The driver invokes the three methods in this exact order every
// frame:
//
//	UpdateIO -> UpdateParams -> Render
//
// Render may assume UpdateIO and UpdateParams ran this frame with current
// data. A pass must not cache per-frame state across frames; only the GPU
// resources it owns (textures, samplers, programs) persist.
type Pass interface {
	// UpdateIO rebinds the pass's input textures and sampler to the given
	// source and its output to the given target. It returns
	// ErrUnsupportedSource (wrapped) for source variants the pass does not
	// accept.
	UpdateIO(target *RenderTarget, targetSize [2]int, source Source, sourceSampler *Sampler, sourceSize [2]int, stereo bool) error

	// UpdateParams recomputes the pass's uniform state from the supplied
	// simulation parameters. Unrecognized names are ignored, missing names
	// fall back to defaults.
	UpdateParams(params ValueMap)

	// Render issues the full-screen draw into the target bound by UpdateIO.
	Render(gaze Gaze)

	// Destroy releases the GPU resources owned by the pass.
	Destroy()
}
