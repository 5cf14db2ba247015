package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestChannelToByte(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want uint8
	}{
		{"zero", 0, 0},
		{"one", 1, 255},
		{"half floors", 0.5, 127},
		{"just below one", 0.999, 254},
		{"negative clamps", -3, 0},
		{"overbright clamps", 7.5, 255},
		{"nan", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChannelToByte(tt.in); got != tt.want {
				t.Errorf("ChannelToByte(%v): expected %d, got %d", tt.in, tt.want, got)
			}
		})
	}
}

func TestFramebuffer_Layout(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	if len(fb.Pix) != 3*2*3 {
		t.Fatalf("Expected %d bytes, got %d", 18, len(fb.Pix))
	}

	fb.Set(2, 1, core.NewVec3(1, 0.5, 0))

	// Row-major, three bytes per pixel
	i := (1*3 + 2) * 3
	if fb.Pix[i] != 255 || fb.Pix[i+1] != 127 || fb.Pix[i+2] != 0 {
		t.Errorf("Unexpected bytes at pixel (2,1): %v", fb.Pix[i:i+3])
	}

	r, g, b := fb.RGB(2, 1)
	if r != 255 || g != 127 || b != 0 {
		t.Errorf("RGB(2,1): got %d %d %d", r, g, b)
	}

	row := fb.Row(1)
	if len(row) != 9 || row[6] != 255 {
		t.Errorf("Row(1) does not alias pixel data: %v", row)
	}
}

func TestFramebuffer_Image(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(1, 0, core.NewVec3(0, 0, 1))

	if b := fb.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("Unexpected bounds %v", b)
	}
	if got := fb.At(1, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("At(1,0): got %v", got)
	}
	if got := fb.At(5, 5); got != (color.RGBA{}) {
		t.Errorf("At out of bounds should be transparent, got %v", got)
	}

	rgba := fb.ToRGBA()
	if got := rgba.RGBAAt(1, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("ToRGBA(1,0): got %v", got)
	}
	if got := rgba.RGBAAt(0, 1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("ToRGBA should be opaque, got %v", got)
	}

	if !FromImage(rgba).Equal(fb) {
		t.Error("FromImage(ToRGBA()) should reproduce the framebuffer")
	}
}

func TestFramebuffer_CloneIsIndependent(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	clone := fb.Clone()
	if !clone.Equal(fb) {
		t.Fatal("Clone should equal the original")
	}

	clone.Set(0, 0, core.NewVec3(1, 1, 1))
	if clone.Equal(fb) {
		t.Error("Writing to the clone changed the original")
	}
	if fb.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
}

func TestFramebuffer_CopyRGBA(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Set(0, 0, core.NewVec3(1, 0, 0))
	fb.Set(1, 0, core.NewVec3(0, 0, 1))

	dst := make([]byte, 2*1*4)
	fb.CopyRGBA(dst)
	want := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Byte %d: expected %d, got %d", i, want[i], dst[i])
		}
	}
}

func TestFramebuffer_CopyRGBA_SizeMismatch(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	for _, size := range []int{0, 4*4*4 - 1, 4*4*4 + 4} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for a %d-byte destination", size)
				}
			}()
			fb.CopyRGBA(make([]byte, size))
		}()
	}
}
