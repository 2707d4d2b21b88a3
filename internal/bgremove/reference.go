package bgremove

import (
	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// SampleReference derives the reference colour from buf.
//
// ReferenceTopLeft takes the pixel at (0,0). ReferenceCorners takes the
// rounded per-channel mean of the four corner pixels, which tolerates one
// corner being covered by the subject. Alpha is ignored.
func SampleReference(buf *imaging.Buffer, strategy ReferenceStrategy) (imaging.RGBColor, error) {
	if buf.Width() == 0 || buf.Height() == 0 {
		return imaging.RGBColor{}, bgerrors.New(bgerrors.ErrCodeInvalidInput, "image has no pixels")
	}

	switch strategy {
	case "", ReferenceTopLeft:
		return buf.RGB(0, 0), nil
	case ReferenceCorners:
		w, h := buf.Width()-1, buf.Height()-1
		corners := [4]imaging.RGBColor{
			buf.RGB(0, 0), buf.RGB(w, 0), buf.RGB(0, h), buf.RGB(w, h),
		}
		var r, g, b int
		for _, c := range corners {
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
		}
		return imaging.RGBColor{
			R: uint8((r + 2) / 4),
			G: uint8((g + 2) / 4),
			B: uint8((b + 2) / 4),
		}, nil
	default:
		return imaging.RGBColor{}, bgerrors.New(bgerrors.ErrCodeInvalidInput,
			"unknown reference strategy %q", string(strategy))
	}
}
