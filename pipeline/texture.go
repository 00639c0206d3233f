package pipeline

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	// Bundled assets are PNG; BMP and TIFF decoders are registered as well so
	// image.Decode can handle the formats the asset tooling emits.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// PixelFormat selects one of the texture format classes used by the pipeline.
type PixelFormat int

const (
	// RGBA8 is a 4-channel 8-bit normalized color texture.
	RGBA8 PixelFormat = iota
	// R8 is a 1-channel 8-bit normalized mask/depth texture.
	R8
	// RGB32F is the high-precision float texture used for precomputed
	// normal maps.
	RGB32F
)

// BytesPerPixel returns the size of one pixel in bytes for this format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case RGBA8:
		return 4
	case R8:
		return 1
	case RGB32F:
		return 12
	}
	panic(fmt.Sprintf("pipeline: unknown pixel format %d", int(f)))
}

func (f PixelFormat) String() string {
	switch f {
	case RGBA8:
		return "rgba8"
	case R8:
		return "r8"
	case RGB32F:
		return "rgb32f"
	}
	return fmt.Sprintf("pixelformat(%d)", int(f))
}

func (f PixelFormat) glInternalFormat() int32 {
	switch f {
	case RGBA8:
		return gl.RGBA8
	case R8:
		return gl.R8
	case RGB32F:
		return gl.RGB32F
	}
	panic(fmt.Sprintf("pipeline: unknown pixel format %d", int(f)))
}

func (f PixelFormat) glFormat() uint32 {
	switch f {
	case RGBA8:
		return gl.RGBA
	case R8:
		return gl.RED
	case RGB32F:
		return gl.RGB
	}
	panic(fmt.Sprintf("pipeline: unknown pixel format %d", int(f)))
}

func (f PixelFormat) glType() uint32 {
	if f == RGB32F {
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

// Texture owns one GPU texture of a single format class and mip level. The
// pass (or device) that created it is responsible for destroying it.
type Texture struct {
	id     uint32
	width  int
	height int
	format PixelFormat
}

// NewTexture allocates a GPU texture and uploads pix as its initial contents.
// len(pix) must be exactly width*height*BytesPerPixel(format); a mismatch is a
// caller bug and panics.
func NewTexture(format PixelFormat, width, height int, pix []byte) *Texture {
	if want := width * height * format.BytesPerPixel(); len(pix) != want {
		panic(fmt.Sprintf("pipeline: texture data is %d bytes, %dx%d %s needs %d",
			len(pix), width, height, format, want))
	}

	t := &Texture{width: width, height: height, format: format}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	// R8 and RGB32F rows are not 4-byte aligned for arbitrary widths.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format.glInternalFormat(),
		int32(width), int32(height), 0, format.glFormat(), format.glType(), gl.Ptr(pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// ID returns the GL texture name for binding.
func (t *Texture) ID() uint32 { return t.id }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the texture's pixel format class.
func (t *Texture) Format() PixelFormat { return t.format }

// UpdateRegion overwrites a rectangle of the texture with raw bytes, without
// reallocating. This is the per-frame streaming path for color and depth
// data. The rectangle must lie within the texture bounds and len(pix) must
// match the rectangle size; violations are caller bugs and panic.
func (t *Texture) UpdateRegion(offsetX, offsetY, width, height int, pix []byte) {
	if err := checkRegion(t.width, t.height, offsetX, offsetY, width, height, len(pix), t.format.BytesPerPixel()); err != nil {
		panic("pipeline: " + err.Error())
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(offsetX), int32(offsetY),
		int32(width), int32(height), t.format.glFormat(), t.format.glType(), gl.Ptr(pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Destroy releases the GPU texture.
func (t *Texture) Destroy() {
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// checkRegion validates an UpdateRegion request against the texture bounds
// and the supplied byte count.
func checkRegion(texW, texH, x, y, w, h, nbytes, bpp int) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 {
		return fmt.Errorf("invalid region %dx%d at (%d,%d)", w, h, x, y)
	}
	if x+w > texW || y+h > texH {
		return fmt.Errorf("region %dx%d at (%d,%d) exceeds %dx%d texture", w, h, x, y, texW, texH)
	}
	if want := w * h * bpp; nbytes != want {
		return fmt.Errorf("region data is %d bytes, %dx%d region needs %d", nbytes, w, h, want)
	}
	return nil
}

// LoadTexture decodes a compressed still image into an RGBA8 texture. The
// image is flipped vertically to match GL texture orientation. This path is
// used for bundled static assets only; a decode failure is fatal upstream.
func LoadTexture(r io.Reader) (*Texture, error) {
	rgba, err := decodeRGBA(r)
	if err != nil {
		return nil, err
	}
	w := rgba.Rect.Dx()
	h := rgba.Rect.Dy()
	return NewTexture(RGBA8, w, h, rgba.Pix), nil
}

// LoadHighresNormalmap decodes a compressed image that packs one 32-bit
// big-endian fixed-point value per pixel as [alpha<<24|red<<16|green<<8|blue]
// and produces an RGB32F texture. The bundled asset stores three logical
// columns per physical pixel column, so the output texture is a third as wide
// as the decoded image. That divisor is a property of this one asset, not a
// general rule.
func LoadHighresNormalmap(r io.Reader) (*Texture, error) {
	rgba, err := decodeRGBA(r)
	if err != nil {
		return nil, err
	}
	w, h, pix, err := normalmapPixels(rgba)
	if err != nil {
		return nil, err
	}
	return NewTexture(RGB32F, w, h, pix), nil
}

// decodeRGBA decodes any registered image format and converts it to a
// vertically flipped RGBA image.
func decodeRGBA(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return vflip(rgba), nil
}

// vflip flips an RGBA image vertically, row by row.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()
	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// normalmapPixels converts a decoded normal-map image into RGB32F texel data.
// Each source pixel packs one fixed-point value; three consecutive values
// form one output texel, which is why the source width must be divisible by
// three.
func normalmapPixels(rgba *image.RGBA) (width, height int, pix []byte, err error) {
	srcW := rgba.Rect.Dx()
	srcH := rgba.Rect.Dy()
	if srcW%3 != 0 {
		return 0, 0, nil, fmt.Errorf("normal map width %d is not divisible by 3", srcW)
	}

	values := make([]float32, 0, srcW*srcH)
	for y := 0; y < srcH; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+srcW*4]
		for x := 0; x < srcW; x++ {
			r := uint32(row[x*4])
			g := uint32(row[x*4+1])
			b := uint32(row[x*4+2])
			a := uint32(row[x*4+3])
			n := a<<24 | r<<16 | g<<8 | b
			values = append(values, float32(float64(n)/float64(math.MaxUint32)))
		}
	}

	return srcW / 3, srcH, floatBytes(values), nil
}

// floatBytes serializes float32 values to the little-endian byte layout the
// GL upload expects. Explicit serialization instead of reinterpreting the
// float slice in place.
func floatBytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Sampler is a stateless linear-filtering configuration shared by reference
// across the textures a pass reads.
type Sampler struct {
	id uint32
}

// NewLinearSampler creates a sampler with linear min/mag filtering and
// clamped addressing.
func NewLinearSampler() *Sampler {
	s := &Sampler{}
	gl.GenSamplers(1, &s.id)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return s
}

// Bind attaches the sampler to a texture unit.
func (s *Sampler) Bind(unit uint32) {
	gl.BindSampler(unit, s.id)
}

// Destroy releases the sampler object.
func (s *Sampler) Destroy() {
	gl.DeleteSamplers(1, &s.id)
	s.id = 0
}
