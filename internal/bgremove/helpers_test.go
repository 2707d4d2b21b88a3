package bgremove

import (
	"image"
	"image/color"

	"github.com/ironsheep/background-remover/internal/imaging"
)

var (
	white = imaging.RGBColor{R: 255, G: 255, B: 255}
	black = imaging.RGBColor{R: 0, G: 0, B: 0}
	red   = imaging.RGBColor{R: 255, G: 0, B: 0}
)

// bufferOf builds a buffer from rows of opaque colours.
func bufferOf(rows ...[]imaging.RGBColor) *imaging.Buffer {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	buf := imaging.NewBuffer(w, h)
	for y, row := range rows {
		for x, c := range row {
			buf.Set(x, y, c.Opaque())
		}
	}
	return buf
}

// subjectImage is a w×h image with background bg and a filled rectangle of
// fg covering the middle third in both directions.
func subjectImage(w, h int, bg, fg color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bg
			if x >= w/3 && x < 2*w/3 && y >= h/3 && y < 2*h/3 {
				c = fg
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientImage is a w×h image whose pixels are all different shades.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}
