package devices

import (
	"fmt"
	"io"
	"log"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoSource decodes a video file (or camera URL, anything ffmpeg accepts)
// to raw RGBA frames over a pipe. An optional second input supplies a gray8
// depth stream of the same dimensions, recorded alongside the color stream by
// a depth camera.
type VideoSource struct {
	width  int
	height int

	color *rawStream
	depth *rawStream
}

// rawStream is one ffmpeg decode pipeline delivering fixed-size raw frames.
type rawStream struct {
	reader    *io.PipeReader
	frameSize int
	errc      chan error
}

// newRawStream starts ffmpeg decoding input into tightly packed pixFmt frames
// scaled to width x height.
func newRawStream(input, pixFmt string, width, height, bytesPerPixel int) *rawStream {
	pipeReader, pipeWriter := io.Pipe()

	cmd := ffmpeg.Input(input).
		Output("pipe:", ffmpeg.KwArgs{
			"f":       "rawvideo",
			"pix_fmt": pixFmt,
			"s":       fmt.Sprintf("%dx%d", width, height),
		}).
		WithOutput(pipeWriter).
		Silent(true)

	s := &rawStream{
		reader:    pipeReader,
		frameSize: width * height * bytesPerPixel,
		errc:      make(chan error, 1),
	}

	go func() {
		err := cmd.Run()
		if err != nil {
			log.Printf("ffmpeg decode of %s finished with error: %v", input, err)
		}
		s.errc <- err
		// Unblock the reader; subsequent reads return io.EOF.
		pipeWriter.Close()
	}()

	return s
}

// next blocks until a whole frame is available. io.EOF means the stream
// ended.
func (s *rawStream) next(buf []byte) error {
	if len(buf) != s.frameSize {
		panic(fmt.Sprintf("devices: frame buffer is %d bytes, stream frame is %d", len(buf), s.frameSize))
	}
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return io.EOF
		}
		return err
	}
	return nil
}

func (s *rawStream) close() error {
	return s.reader.Close()
}

// NewVideoSource opens the color input and, when depthInput is non-empty, the
// matching depth input.
func NewVideoSource(input, depthInput string, width, height int) (*VideoSource, error) {
	if input == "" {
		return nil, fmt.Errorf("video source needs an input")
	}
	v := &VideoSource{
		width:  width,
		height: height,
		color:  newRawStream(input, "rgba", width, height, 4),
	}
	if depthInput != "" {
		v.depth = newRawStream(depthInput, "gray", width, height, 1)
	}
	log.Printf("Video source: %s (%dx%d, depth: %v)", input, width, height, depthInput != "")
	return v, nil
}

func (v *VideoSource) Dimensions() (int, int) { return v.width, v.height }

func (v *VideoSource) HasDepth() bool { return v.depth != nil }

// NextFrame blocks until both streams delivered a whole frame. When either
// stream ends the source reports io.EOF.
func (v *VideoSource) NextFrame() (*Frame, error) {
	f := &Frame{Color: make([]byte, v.width*v.height*4)}
	if err := v.color.next(f.Color); err != nil {
		return nil, err
	}
	if v.depth != nil {
		f.Depth = make([]byte, v.width*v.height)
		if err := v.depth.next(f.Depth); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (v *VideoSource) Close() error {
	err := v.color.close()
	if v.depth != nil {
		if derr := v.depth.close(); err == nil {
			err = derr
		}
	}
	return err
}
