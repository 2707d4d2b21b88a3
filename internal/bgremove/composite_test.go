package bgremove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

func TestNewReplacement(t *testing.T) {
	tests := []struct {
		name     string
		mode     ReplaceMode
		color    string
		want     Replacement
		wantCode bgerrors.Code
	}{
		{"transparent", ReplaceTransparent, "", Transparent(), ""},
		{"empty mode", "", "#123456", Transparent(), ""},
		{"transparent ignores bad color", ReplaceTransparent, "not a color", Transparent(), ""},
		{"hex color", ReplaceColor, "#ff0000", SolidColor(red), ""},
		{"short hex", ReplaceColor, "#fff", SolidColor(white), ""},
		{"named color", ReplaceColor, "black", SolidColor(black), ""},
		{"bad color", ReplaceColor, "#gggggg", Replacement{}, bgerrors.ErrCodeInvalidReplacementColor},
		{"missing color", ReplaceColor, "", Replacement{}, bgerrors.ErrCodeInvalidReplacementColor},
		{"gradient", ReplaceGradient, "", Replacement{}, bgerrors.ErrCodeUnsupportedReplacement},
		{"unknown", "pattern", "", Replacement{}, bgerrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReplacement(tt.mode, tt.color)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, bgerrors.Is(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompositeTransparent(t *testing.T) {
	buf := bufferOf(
		[]imaging.RGBColor{white, black},
		[]imaging.RGBColor{black, white},
	)
	mask := BuildMask(buf, white, DefaultThreshold)

	out, err := Composite(buf, mask, Transparent())
	require.NoError(t, err)

	assert.Equal(t, imaging.RGBAColor{}, out.At(0, 0))
	assert.Equal(t, imaging.RGBAColor{A: 255}, out.At(1, 0))
	assert.Equal(t, imaging.RGBAColor{A: 255}, out.At(0, 1))
	assert.Equal(t, imaging.RGBAColor{}, out.At(1, 1))
}

func TestCompositeSolidColor(t *testing.T) {
	buf := bufferOf(
		[]imaging.RGBColor{white, black},
		[]imaging.RGBColor{black, white},
	)
	mask := BuildMask(buf, white, DefaultThreshold)

	out, err := Composite(buf, mask, SolidColor(red))
	require.NoError(t, err)

	assert.Equal(t, red.Opaque(), out.At(0, 0))
	assert.Equal(t, black.Opaque(), out.At(1, 0))
	assert.Equal(t, black.Opaque(), out.At(0, 1))
	assert.Equal(t, red.Opaque(), out.At(1, 1))
}

func TestCompositeSolidColorOverTransparentPixel(t *testing.T) {
	buf := imaging.NewBuffer(1, 1)
	buf.Set(0, 0, imaging.RGBAColor{R: 1, G: 2, B: 3, A: 0})
	mask := NewMask(1, 1)
	mask.Coverage[0] = Background

	out, err := Composite(buf, mask, SolidColor(white))
	require.NoError(t, err)

	assert.Equal(t, white.Opaque(), out.At(0, 0))
}

func TestCompositeForegroundUntouched(t *testing.T) {
	buf := imaging.FromImage(gradientImage(12, 9))
	buf.Set(3, 3, imaging.RGBAColor{R: 10, G: 20, B: 30, A: 77})

	out, err := Composite(buf, NewMask(12, 9), SolidColor(red))
	require.NoError(t, err)

	assert.True(t, out.Equal(buf))
}

func TestCompositeFractionalCoverage(t *testing.T) {
	buf := imaging.NewBuffer(3, 1)
	for x := 0; x < 3; x++ {
		buf.Set(x, 0, imaging.RGBAColor{R: 0, G: 0, B: 0, A: 255})
	}
	mask := NewMask(3, 1)
	mask.Coverage = []uint8{0, 128, 255}

	faded, err := Composite(buf, mask, Transparent())
	require.NoError(t, err)
	assert.Equal(t, uint8(255), faded.At(0, 0).A)
	assert.Equal(t, uint8(127), faded.At(1, 0).A)
	assert.Equal(t, uint8(0), faded.At(2, 0).A)

	solid, err := Composite(buf, mask, SolidColor(white))
	require.NoError(t, err)
	assert.Equal(t, imaging.RGBAColor{R: 0, G: 0, B: 0, A: 255}, solid.At(0, 0))
	assert.Equal(t, imaging.RGBAColor{R: 128, G: 128, B: 128, A: 255}, solid.At(1, 0))
	assert.Equal(t, imaging.RGBAColor{R: 255, G: 255, B: 255, A: 255}, solid.At(2, 0))
}

func TestCompositeDoesNotModifyInput(t *testing.T) {
	buf := imaging.FromImage(gradientImage(10, 10))
	before := buf.Clone()
	mask := BuildMask(buf, buf.RGB(0, 0), 60)

	_, err := Composite(buf, mask, Transparent())
	require.NoError(t, err)
	_, err = Composite(buf, mask, SolidColor(red))
	require.NoError(t, err)

	assert.True(t, buf.Equal(before))
}

func TestCompositeErrors(t *testing.T) {
	buf := imaging.NewBuffer(4, 4)

	_, err := Composite(buf, NewMask(3, 4), Transparent())
	assert.True(t, bgerrors.Is(err, bgerrors.ErrCodeInvalidInput))

	_, err = Composite(buf, nil, Transparent())
	assert.True(t, bgerrors.Is(err, bgerrors.ErrCodeInvalidInput))

	_, err = Composite(buf, NewMask(4, 4), Replacement{Mode: ReplaceGradient})
	assert.True(t, bgerrors.Is(err, bgerrors.ErrCodeUnsupportedReplacement))
}
