package pipeline

import (
	"fmt"
)

// Device is the boundary to the capture/display collaborator. BeginFrame may
// block (vsync, capture availability); it is the only blocking point in the
// core. EndFrame presents the frame and sets done to request loop
// termination; no other exit path exists.
type Device interface {
	BeginFrame()
	EndFrame(done *bool)

	Source() Source
	SourceSize() (int, int)
	Target() *RenderTarget
	TargetSize() (int, int)
	Sampler() *Sampler
	Gaze() Gaze
	Stereo() bool
	Params() ValueMap
}

// Pipeline is an ordered sequence of passes. The order defines composition
// order and is fixed once constructed. With more than one pass, each pass
// after the first reads the previous pass's output through an intermediate
// offscreen target.
type Pipeline struct {
	passes []Pass
	chain  []*RenderTarget
}

// NewPipeline builds a pipeline over the given passes. width and height size
// the intermediate targets used for chaining; they are unused for a single
// terminal pass.
func NewPipeline(passes []Pass, width, height int) (*Pipeline, error) {
	if len(passes) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one pass")
	}
	p := &Pipeline{passes: passes}
	for i := 0; i < len(passes)-1; i++ {
		target, err := NewRenderTarget(width, height)
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("intermediate target %d: %w", i, err)
		}
		p.chain = append(p.chain, target)
	}
	return p, nil
}

// Render dispatches one frame through every pass in order. Each pass runs its
// full lifecycle: UpdateIO, UpdateParams, Render. An UpdateIO error is a
// pipeline misconfiguration and aborts the frame.
func (p *Pipeline) Render(d Device) error {
	source := d.Source()
	srcW, srcH := d.SourceSize()
	params := d.Params()
	gaze := d.Gaze()
	stereo := d.Stereo()

	for i, pass := range p.passes {
		target := d.Target()
		tgtW, tgtH := d.TargetSize()
		if i < len(p.chain) {
			target = p.chain[i]
			tgtW, tgtH = target.Width(), target.Height()
		}

		err := pass.UpdateIO(target, [2]int{tgtW, tgtH}, source, d.Sampler(), [2]int{srcW, srcH}, stereo)
		if err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
		pass.UpdateParams(params)
		pass.Render(gaze)

		if i < len(p.chain) {
			source = RGBSource{Color: target.Texture()}
			srcW, srcH = tgtW, tgtH
		}
	}
	return nil
}

// Run drives the per-frame state machine until the device reports
// termination: AwaitFrame (BeginFrame), Dispatch (Render), Present
// (EndFrame).
func (p *Pipeline) Run(d Device) error {
	done := false
	for !done {
		d.BeginFrame()
		if err := p.Render(d); err != nil {
			return err
		}
		d.EndFrame(&done)
	}
	return nil
}

// Destroy releases the passes and intermediate targets.
func (p *Pipeline) Destroy() {
	for _, pass := range p.passes {
		pass.Destroy()
	}
	for _, target := range p.chain {
		target.Destroy()
	}
}
