package pipeline

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesPerPixel(t *testing.T) {
	assert.Equal(t, 4, RGBA8.BytesPerPixel())
	assert.Equal(t, 1, R8.BytesPerPixel())
	assert.Equal(t, 12, RGB32F.BytesPerPixel())
}

func TestNewTexturePanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		NewTexture(RGBA8, 2, 2, make([]byte, 15))
	})
	assert.Panics(t, func() {
		NewTexture(R8, 4, 4, make([]byte, 17))
	})
}

func TestUpdateRegionPanicsOutOfBounds(t *testing.T) {
	// Validation runs before any GPU work, so a texture that never touched
	// the GPU is enough to exercise the precondition checks.
	tex := &Texture{width: 8, height: 8, format: RGBA8}

	assert.Panics(t, func() {
		tex.UpdateRegion(4, 4, 8, 8, make([]byte, 8*8*4))
	})
	assert.Panics(t, func() {
		tex.UpdateRegion(-1, 0, 2, 2, make([]byte, 2*2*4))
	})
	assert.Panics(t, func() {
		tex.UpdateRegion(0, 0, 2, 2, make([]byte, 3))
	})
}

func TestCheckRegion(t *testing.T) {
	// in-bounds rectangle with matching byte count
	assert.NoError(t, checkRegion(64, 64, 0, 0, 64, 64, 64*64*4, 4))
	assert.NoError(t, checkRegion(64, 64, 32, 16, 32, 48, 32*48, 1))

	// off-by-one past the edge
	assert.Error(t, checkRegion(64, 64, 1, 0, 64, 64, 64*64*4, 4))
	// empty rectangle
	assert.Error(t, checkRegion(64, 64, 0, 0, 0, 1, 0, 4))
	// byte count mismatch
	assert.Error(t, checkRegion(64, 64, 0, 0, 8, 8, 8*8*4-1, 4))
}

func TestFloatBytesRoundTrip(t *testing.T) {
	values := []float32{0, 1, 0.5, -2.25, float32(math.Inf(1))}
	raw := floatBytes(values)
	require.Len(t, raw, len(values)*4)
	for i, want := range values {
		got := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		if math.IsInf(float64(want), 1) {
			assert.True(t, math.IsInf(float64(got), 1))
		} else {
			assert.Equal(t, want, got)
		}
	}
}

func TestVFlip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 1, A: 255})
	img.SetRGBA(1, 1, color.RGBA{G: 1, A: 255})

	flipped := vflip(img)
	assert.Equal(t, color.RGBA{R: 1, A: 255}, flipped.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 1, A: 255}, flipped.RGBAAt(1, 0))
}

func TestDecodeRGBAFlipsOrientation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	img.SetRGBA(1, 1, color.RGBA{B: 150, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	decoded, err := decodeRGBA(&buf)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 200, A: 255}, decoded.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{B: 150, A: 255}, decoded.RGBAAt(1, 0))
}

func TestDecodeRGBARejectsGarbage(t *testing.T) {
	_, err := decodeRGBA(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestNormalmapPixels(t *testing.T) {
	// 6x2 source: three packed columns per output texel gives a 2x2 RGB32F
	// result, one float channel per source pixel.
	img := image.NewRGBA(image.Rect(0, 0, 6, 2))
	packed := make([]uint32, 0, 12)
	for y := 0; y < 2; y++ {
		for x := 0; x < 6; x++ {
			n := uint32(y)*0x81000000 + uint32(x)*0x01020304
			packed = append(packed, n)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(n >> 16),
				G: uint8(n >> 8),
				B: uint8(n),
				A: uint8(n >> 24),
			})
		}
	}

	w, h, pix, err := normalmapPixels(img)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	require.Len(t, pix, 2*2*RGB32F.BytesPerPixel())

	for i, n := range packed {
		want := float64(n) / float64(math.MaxUint32)
		got := math.Float32frombits(binary.LittleEndian.Uint32(pix[i*4:]))
		assert.InDelta(t, want, float64(got), 1e-7, "value %d", i)
	}
}

func TestNormalmapPixelsRejectsBadWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	_, _, _, err := normalmapPixels(img)
	assert.Error(t, err)
}
