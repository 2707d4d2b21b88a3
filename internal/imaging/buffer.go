package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
)

// Buffer is an owned width×height grid of non-premultiplied 8-bit RGBA
// pixels anchored at (0,0).
//
// A Buffer is created per operation and is never shared between concurrent
// operations. Rows may be read and written concurrently as long as no two
// goroutines touch the same pixel.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer allocates a fully transparent buffer of the given size.
// Negative dimensions are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies img into a new Buffer. The source image is never retained
// or modified; its bounds are translated so the buffer starts at (0,0).
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Buffer{img: dst}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Pixels returns width*height.
func (b *Buffer) Pixels() int { return b.Width() * b.Height() }

// At returns the pixel at (x, y). Out-of-range coordinates yield the zero
// color.
func (b *Buffer) At(x, y int) RGBAColor {
	if !b.in(x, y) {
		return RGBAColor{}
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	return RGBAColor{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// RGB returns the colour channels of the pixel at (x, y), ignoring alpha.
func (b *Buffer) RGB(x, y int) RGBColor {
	return b.At(x, y).RGB()
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (b *Buffer) Set(x, y int, c RGBAColor) {
	if !b.in(x, y) {
		return
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Row returns the raw RGBA bytes of row y (4 bytes per pixel). The slice
// aliases the buffer.
func (b *Buffer) Row(y int) []uint8 {
	if y < 0 || y >= b.Height() {
		return nil
	}
	start := y * b.img.Stride
	return b.img.Pix[start : start+b.Width()*4]
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	dst := image.NewNRGBA(b.img.Rect)
	copy(dst.Pix, b.img.Pix)
	return &Buffer{img: dst}
}

// Equal reports whether both buffers have the same size and identical bytes.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.Width() != o.Width() || b.Height() != o.Height() {
		return false
	}
	for y := 0; y < b.Height(); y++ {
		if !bytes.Equal(b.Row(y), o.Row(y)) {
			return false
		}
	}
	return true
}

// Image exposes the buffer as an *image.NRGBA for encoders. The returned
// image aliases the buffer.
func (b *Buffer) Image() *image.NRGBA {
	return b.img
}

func (b *Buffer) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// nrgbaAt reads a pixel from any image as non-premultiplied 8-bit RGBA.
func nrgbaAt(img image.Image, x, y int) RGBAColor {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A}
}
