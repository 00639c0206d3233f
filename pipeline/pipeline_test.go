package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPass records its lifecycle invocations so the tests can assert the
// driver's per-frame ordering contract.
type recordingPass struct {
	calls     []string
	lastScene Source
	failIO    error
}

func (p *recordingPass) UpdateIO(_ *RenderTarget, _ [2]int, source Source, _ *Sampler, _ [2]int, _ bool) error {
	p.calls = append(p.calls, "io")
	p.lastScene = source
	return p.failIO
}

func (p *recordingPass) UpdateParams(ValueMap) {
	p.calls = append(p.calls, "params")
}

func (p *recordingPass) Render(Gaze) {
	p.calls = append(p.calls, "render")
}

func (p *recordingPass) Destroy() {
	p.calls = append(p.calls, "destroy")
}

// stubDevice terminates after a fixed number of frames and records the
// begin/end pairing.
type stubDevice struct {
	frames    int
	begun     int
	ended     int
	lastColor *Texture
}

func (d *stubDevice) BeginFrame() { d.begun++ }

func (d *stubDevice) EndFrame(done *bool) {
	d.ended++
	*done = d.ended >= d.frames
}

func (d *stubDevice) Source() Source         { return RGBSource{Color: d.lastColor} }
func (d *stubDevice) SourceSize() (int, int) { return 320, 240 }
func (d *stubDevice) Target() *RenderTarget  { return nil }
func (d *stubDevice) TargetSize() (int, int) { return 640, 480 }
func (d *stubDevice) Sampler() *Sampler      { return nil }
func (d *stubDevice) Gaze() Gaze             { return Gaze{X: 0.5, Y: 0.5} }
func (d *stubDevice) Stereo() bool           { return false }
func (d *stubDevice) Params() ValueMap       { return ValueMap{} }

func TestPipelineLifecycleOrder(t *testing.T) {
	pass := &recordingPass{}
	p := &Pipeline{passes: []Pass{pass}}

	require.NoError(t, p.Render(&stubDevice{frames: 1}))
	assert.Equal(t, []string{"io", "params", "render"}, pass.calls)
	assert.IsType(t, RGBSource{}, pass.lastScene)
}

func TestPipelineRunTerminatesOnDeviceSignal(t *testing.T) {
	pass := &recordingPass{}
	p := &Pipeline{passes: []Pass{pass}}
	device := &stubDevice{frames: 3}

	require.NoError(t, p.Run(device))

	assert.Equal(t, 3, device.begun)
	assert.Equal(t, 3, device.ended)
	// full lifecycle once per frame
	want := []string{"io", "params", "render", "io", "params", "render", "io", "params", "render"}
	assert.Equal(t, want, pass.calls)
}

func TestPipelineFatalOnUnsupportedSource(t *testing.T) {
	pass := &recordingPass{failIO: fmt.Errorf("pass: %w", ErrUnsupportedSource)}
	p := &Pipeline{passes: []Pass{pass}}

	err := p.Render(&stubDevice{frames: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	// the frame is aborted before params/render
	assert.Equal(t, []string{"io"}, pass.calls)
}

func TestPipelineRunStopsOnDispatchError(t *testing.T) {
	pass := &recordingPass{failIO: ErrUnsupportedSource}
	p := &Pipeline{passes: []Pass{pass}}
	device := &stubDevice{frames: 5}

	err := p.Run(device)
	require.Error(t, err)
	assert.Equal(t, 1, device.begun)
	assert.Equal(t, 0, device.ended)
}

func TestNewPipelineRejectsEmptyPassList(t *testing.T) {
	_, err := NewPipeline(nil, 640, 480)
	assert.Error(t, err)
}

func TestPipelineOrderAcrossPasses(t *testing.T) {
	// Without intermediates wired (screen-target chain of one), multiple
	// passes still run strictly in order against the device target.
	first := &recordingPass{}
	second := &recordingPass{}
	p := &Pipeline{passes: []Pass{first, second}}

	require.NoError(t, p.Render(&stubDevice{frames: 1}))
	assert.Equal(t, []string{"io", "params", "render"}, first.calls)
	assert.Equal(t, []string{"io", "params", "render"}, second.calls)
}
