package devices

// PatternSource generates a synthetic animated test pattern so the simulator
// can run without any capture input: a color gradient sweeping over time and
// a depth ramp that places the left edge near and the right edge far.
type PatternSource struct {
	width  int
	height int
	depth  bool
	tick   int
}

// NewPatternSource creates a test-pattern source of the given size.
func NewPatternSource(width, height int, withDepth bool) *PatternSource {
	return &PatternSource{width: width, height: height, depth: withDepth}
}

func (p *PatternSource) Dimensions() (int, int) { return p.width, p.height }

func (p *PatternSource) HasDepth() bool { return p.depth }

// NextFrame renders the next pattern frame. It never blocks and never ends.
func (p *PatternSource) NextFrame() (*Frame, error) {
	f := &Frame{Color: make([]byte, p.width*p.height*4)}
	phase := p.tick % 256
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			i := (y*p.width + x) * 4
			f.Color[i] = byte((x*256/p.width + phase) % 256)
			f.Color[i+1] = byte(y * 256 / p.height)
			f.Color[i+2] = byte(255 - phase)
			f.Color[i+3] = 255
		}
	}
	if p.depth {
		f.Depth = make([]byte, p.width*p.height)
		for y := 0; y < p.height; y++ {
			for x := 0; x < p.width; x++ {
				f.Depth[y*p.width+x] = byte(x * 256 / p.width)
			}
		}
	}
	p.tick++
	return f, nil
}

func (p *PatternSource) Close() error { return nil }
