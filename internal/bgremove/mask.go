package bgremove

import (
	"bytes"
	"context"
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/background-remover/internal/imaging"
)

// Coverage values used by binary masks.
const (
	Foreground uint8 = 0
	Background uint8 = 255
)

// Mask holds one background-coverage byte per pixel, row-major, with the
// same dimensions as the image it was built from. 255 is fully background,
// 0 fully foreground; soft masks use the values in between.
type Mask struct {
	Width    int
	Height   int
	Coverage []uint8
}

// NewMask allocates an all-foreground mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:    width,
		Height:   height,
		Coverage: make([]uint8, width*height),
	}
}

// At returns the coverage at (x, y), or Foreground outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return Foreground
	}
	return m.Coverage[y*m.Width+x]
}

// IsBackground reports whether (x, y) is at least half background.
func (m *Mask) IsBackground(x, y int) bool {
	return m.At(x, y) >= 128
}

// BackgroundCount returns the number of pixels that are at least half
// background.
func (m *Mask) BackgroundCount() int {
	n := 0
	for _, c := range m.Coverage {
		if c >= 128 {
			n++
		}
	}
	return n
}

// Binary reports whether every coverage value is 0 or 255.
func (m *Mask) Binary() bool {
	for _, c := range m.Coverage {
		if c != Foreground && c != Background {
			return false
		}
	}
	return true
}

// Equal reports whether two masks have the same size and coverage.
func (m *Mask) Equal(o *Mask) bool {
	return m.Width == o.Width && m.Height == o.Height && bytes.Equal(m.Coverage, o.Coverage)
}

// Gray returns a grayscale view of the mask (white = background). The image
// aliases the coverage slice.
func (m *Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    m.Coverage,
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// BuildMask classifies every pixel of buf against reference at threshold and
// returns a binary mask. It is deterministic and never modifies buf.
func BuildMask(buf *imaging.Buffer, reference imaging.RGBColor, threshold float64) *Mask {
	m, _ := BuildMaskContext(context.Background(), buf, reference, threshold, true)
	return m
}

// BuildMaskContext is BuildMask with cancellation and a choice between
// parallel and sequential row processing; both produce identical masks.
// If ctx is done before every row is classified, the partial mask is
// discarded and ctx.Err() is returned.
func BuildMaskContext(ctx context.Context, buf *imaging.Buffer, reference imaging.RGBColor, threshold float64, parallelRows bool) (*Mask, error) {
	w, h := buf.Width(), buf.Height()
	m := NewMask(w, h)
	cls := NewClassifier(reference, threshold)

	err := forEachRow(ctx, h, parallelRows, func(y int) {
		row := buf.Row(y)
		out := m.Coverage[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3 : x*4+3]
			if cls.IsBackground(imaging.RGBColor{R: p[0], G: p[1], B: p[2]}) {
				out[x] = Background
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Soften feathers a mask with a Gaussian blur of the given radius, producing
// fractional coverage along the foreground/background boundary. A radius of
// zero or less returns an identical copy. The input mask is not modified.
func Soften(m *Mask, radius float64) *Mask {
	out, _ := SoftenContext(context.Background(), m, radius, false)
	return out
}

// SoftenContext is Soften with cancellation. The context is checked before
// the blur and per row afterwards; on cancellation no mask is returned.
func SoftenContext(ctx context.Context, m *Mask, radius float64, parallelRows bool) (*Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := NewMask(m.Width, m.Height)
	if radius <= 0 || len(m.Coverage) == 0 {
		copy(out.Coverage, m.Coverage)
		return out, nil
	}

	blurred := blur.Gaussian(m.Gray(), radius)
	err := forEachRow(ctx, m.Height, parallelRows, func(y int) {
		for x := 0; x < m.Width; x++ {
			c := blurred.Pix[blurred.PixOffset(x, y)]
			// The convolution truncates, so fully covered areas can come
			// back as 254.
			switch {
			case c >= Background-1:
				c = Background
			case c <= Foreground+1:
				c = Foreground
			}
			out.Coverage[y*m.Width+x] = c
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
