package bgremove

import (
	"context"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// Replacement describes what background pixels become.
type Replacement struct {
	Mode  ReplaceMode
	Color imaging.RGBColor // used when Mode is ReplaceColor
}

// Transparent replaces background with fully transparent pixels.
func Transparent() Replacement {
	return Replacement{Mode: ReplaceTransparent}
}

// SolidColor replaces background with an opaque colour.
func SolidColor(c imaging.RGBColor) Replacement {
	return Replacement{Mode: ReplaceColor, Color: c}
}

// NewReplacement builds a Replacement from the user-facing mode and colour
// string. The colour is only parsed for ReplaceColor.
func NewReplacement(mode ReplaceMode, color string) (Replacement, error) {
	switch mode {
	case "", ReplaceTransparent:
		return Transparent(), nil
	case ReplaceColor:
		c, err := imaging.ParseColor(color)
		if err != nil {
			return Replacement{}, bgerrors.Wrap(bgerrors.ErrCodeInvalidReplacementColor, err,
				"invalid replacement color %q", color)
		}
		return SolidColor(c), nil
	case ReplaceGradient:
		return Replacement{}, bgerrors.New(bgerrors.ErrCodeUnsupportedReplacement,
			"gradient replacement is coming soon; use transparent or color")
	default:
		return Replacement{}, bgerrors.New(bgerrors.ErrCodeInvalidInput, "unknown replacement %q", string(mode))
	}
}

// Composite returns a new buffer in which the background pixels of buf,
// as given by mask, are replaced. Foreground pixels are copied unchanged and
// buf is never modified.
//
// Fractional coverage from a softened mask blends linearly: transparent
// replacement scales alpha by (255-coverage)/255, solid replacement mixes the
// pixel toward the colour and alpha toward 255.
func Composite(buf *imaging.Buffer, mask *Mask, rep Replacement) (*imaging.Buffer, error) {
	return CompositeContext(context.Background(), buf, mask, rep, true)
}

// CompositeContext is Composite with cancellation and a choice between
// parallel and sequential row processing.
func CompositeContext(ctx context.Context, buf *imaging.Buffer, mask *Mask, rep Replacement, parallelRows bool) (*imaging.Buffer, error) {
	if mask == nil || buf.Width() != mask.Width || buf.Height() != mask.Height {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "mask does not match image dimensions")
	}
	switch rep.Mode {
	case ReplaceTransparent, ReplaceColor:
	case ReplaceGradient:
		return nil, bgerrors.New(bgerrors.ErrCodeUnsupportedReplacement,
			"gradient replacement is coming soon; use transparent or color")
	default:
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "unknown replacement %q", string(rep.Mode))
	}

	out := buf.Clone()
	w := out.Width()

	err := forEachRow(ctx, out.Height(), parallelRows, func(y int) {
		row := out.Row(y)
		cov := mask.Coverage[y*w : (y+1)*w]
		for x, c := range cov {
			if c == Foreground {
				continue
			}
			replacePixel(row[x*4:x*4+4:x*4+4], c, rep)
		}
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// replacePixel rewrites one RGBA pixel in place for coverage c > 0.
func replacePixel(p []uint8, c uint8, rep Replacement) {
	if rep.Mode == ReplaceTransparent {
		if c == Background {
			p[0], p[1], p[2], p[3] = 0, 0, 0, 0
			return
		}
		p[3] = scale(p[3], Background-c)
		return
	}

	if c == Background {
		p[0], p[1], p[2], p[3] = rep.Color.R, rep.Color.G, rep.Color.B, 255
		return
	}
	p[0] = lerp(p[0], rep.Color.R, c)
	p[1] = lerp(p[1], rep.Color.G, c)
	p[2] = lerp(p[2], rep.Color.B, c)
	p[3] = lerp(p[3], 255, c)
}

// scale returns v*f/255 rounded.
func scale(v, f uint8) uint8 {
	return uint8((int(v)*int(f) + 127) / 255)
}

// lerp moves a toward b by t/255, rounded.
func lerp(a, b, t uint8) uint8 {
	return uint8((int(a)*(255-int(t)) + int(b)*int(t) + 127) / 255)
}
