package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// BytesPerPixel is the stride of one RGB24 pixel
const BytesPerPixel = 3

// Framebuffer is a row-major RGB24 image with row 0 at the top. It implements
// image.Image so it can be handed straight to an encoder.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// ChannelToByte converts a color channel to a byte by clamping to [0,1] and
// taking floor(c·255). No rounding and no gamma correction.
func ChannelToByte(c float64) uint8 {
	if math.IsNaN(c) {
		return 0
	}
	return uint8(math.Floor(max(0, min(1, c)) * 255))
}

// offset returns the index of the first byte of pixel (x, y)
func (fb *Framebuffer) offset(x, y int) int {
	return (y*fb.Width + x) * BytesPerPixel
}

// Set writes color c at (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	i := fb.offset(x, y)
	fb.Pix[i] = ChannelToByte(c.X)
	fb.Pix[i+1] = ChannelToByte(c.Y)
	fb.Pix[i+2] = ChannelToByte(c.Z)
}

// RGB returns the stored bytes at (x, y)
func (fb *Framebuffer) RGB(x, y int) (r, g, b uint8) {
	i := fb.offset(x, y)
	return fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2]
}

// Row returns the bytes of row y. Rows never overlap, so distinct rows may be
// written concurrently.
func (fb *Framebuffer) Row(y int) []byte {
	start := y * fb.Width * BytesPerPixel
	return fb.Pix[start : start+fb.Width*BytesPerPixel]
}

// Equal reports whether both framebuffers hold the same pixels
func (fb *Framebuffer) Equal(other *Framebuffer) bool {
	if other == nil {
		return false
	}
	return fb.Width == other.Width && fb.Height == other.Height && bytes.Equal(fb.Pix, other.Pix)
}

// Clone returns a deep copy
func (fb *Framebuffer) Clone() *Framebuffer {
	pix := make([]byte, len(fb.Pix))
	copy(pix, fb.Pix)
	return &Framebuffer{Width: fb.Width, Height: fb.Height, Pix: pix}
}

// ColorModel implements image.Image
func (fb *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image
func (fb *Framebuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(fb.Bounds()) {
		return color.RGBA{}
	}
	r, g, b := fb.RGB(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ToRGBA expands the framebuffer to an opaque RGBA image
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	fb.CopyRGBA(img.Pix)
	return img
}

// CopyRGBA writes the framebuffer as RGBA bytes into dst. It panics if dst
// does not hold exactly Width*Height*4 bytes.
func (fb *Framebuffer) CopyRGBA(dst []byte) {
	if want := fb.Width * fb.Height * 4; len(dst) != want {
		panic(fmt.Sprintf("renderer: CopyRGBA into %d bytes, need %d for %dx%d", len(dst), want, fb.Width, fb.Height))
	}
	for i, j := 0, 0; i < len(fb.Pix); i, j = i+BytesPerPixel, j+4 {
		dst[j] = fb.Pix[i]
		dst[j+1] = fb.Pix[i+1]
		dst[j+2] = fb.Pix[i+2]
		dst[j+3] = 0xFF
	}
}

// FromImage copies any image into a new framebuffer, dropping alpha
func FromImage(img image.Image) *Framebuffer {
	bounds := img.Bounds()
	fb := NewFramebuffer(bounds.Dx(), bounds.Dy())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := color.RGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.RGBA)
			i := fb.offset(x, y)
			fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2] = c.R, c.G, c.B
		}
	}
	return fb
}

// AverageLuminance returns the mean Rec. 709 luminance in [0,1]
func (fb *Framebuffer) AverageLuminance() float64 {
	pixels := fb.Width * fb.Height
	if pixels == 0 {
		return 0
	}
	var total float64
	for i := 0; i+2 < len(fb.Pix); i += BytesPerPixel {
		total += 0.2126*float64(fb.Pix[i]) + 0.7152*float64(fb.Pix[i+1]) + 0.0722*float64(fb.Pix[i+2])
	}
	return total / 255 / float64(pixels)
}
