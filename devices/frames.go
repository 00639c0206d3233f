// Package devices provides the capture/display boundary of the simulator:
// frame sources that deliver raw pixel data and the window device that feeds
// them into the rendering pipeline.
package devices

// Frame is one captured frame's raw channel data. Color is tightly packed
// RGBA; Depth, when present, is a single-channel 8-bit depth map of the same
// dimensions.
type Frame struct {
	Color []byte
	Depth []byte
}

// FrameSource produces frames for the window device. NextFrame may block
// until a new frame is available and returns io.EOF when the stream ends.
type FrameSource interface {
	Dimensions() (int, int)
	HasDepth() bool
	NextFrame() (*Frame, error)
	Close() error
}
