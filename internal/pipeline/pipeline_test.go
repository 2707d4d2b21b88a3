package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/background-remover/internal/bgremove"
	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// productShot is a white image with a dark square in the middle.
func productShot(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if x >= w/4 && x < 3*w/4 && y >= h/4 && y < 3*h/4 {
				c = color.NRGBA{30, 30, 90, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func defaultOptions() Options {
	return Options{Removal: bgremove.DefaultOptions()}
}

func TestRunPNG(t *testing.T) {
	input := encodePNG(t, productShot(20, 16))
	original := append([]byte(nil), input...)

	out, err := Run(context.Background(), input, "product.png", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, input, original, "input bytes must not change")
	assert.Equal(t, "product-no-bg.png", out.Filename)
	assert.Equal(t, len(out.Data), out.Size)
	assert.Equal(t, 20, out.Width)
	assert.Equal(t, 16, out.Height)
	assert.Equal(t, "#FFFFFF", out.Reference.Hex())
	assert.Equal(t, 20*16-10*8, out.BackgroundPixels)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 16), decoded.Bounds())

	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a, "corner should be transparent")
	_, _, _, a = decoded.At(10, 8).RGBA()
	assert.Equal(t, uint32(0xffff), a, "subject should stay opaque")
}

func TestRunJPEGInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, productShot(32, 32), &jpeg.Options{Quality: 95}))

	out, err := Run(context.Background(), buf.Bytes(), "holiday.photo.jpg", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "holiday-no-bg.png", out.Filename)
	assert.Equal(t, 32, out.Width)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("\x89PNG")))
}

func TestRunSolidColor(t *testing.T) {
	opts := defaultOptions()
	opts.Removal.ReplaceWith = bgremove.ReplaceColor
	opts.Removal.ReplacementColor = "#ff0000"

	out, err := Run(context.Background(), encodePNG(t, productShot(8, 8)), "a.png", opts)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	r, g, b, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})
}

func TestRunErrors(t *testing.T) {
	valid := encodePNG(t, productShot(4, 4))

	tests := []struct {
		name   string
		data   []byte
		modify func(*Options)
		want   bgerrors.Code
	}{
		{"empty input", nil, nil, bgerrors.ErrCodeDecode},
		{"garbage input", []byte("definitely not an image"), nil, bgerrors.ErrCodeDecode},
		{"too large", valid, func(o *Options) { o.MaxFileSize = 10 }, bgerrors.ErrCodeDecode},
		{"ai method before decode", []byte("garbage"), func(o *Options) { o.Removal.Method = bgremove.MethodAI }, bgerrors.ErrCodeUnsupportedMethod},
		{"gradient", valid, func(o *Options) { o.Removal.ReplaceWith = bgremove.ReplaceGradient }, bgerrors.ErrCodeUnsupportedReplacement},
		{"threshold", valid, func(o *Options) { o.Removal.ColorThreshold = 101 }, bgerrors.ErrCodeInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.modify != nil {
				tt.modify(&opts)
			}

			out, err := Run(context.Background(), tt.data, "x.png", opts)
			assert.Nil(t, out)
			assert.True(t, bgerrors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRunUnlimitedSize(t *testing.T) {
	opts := defaultOptions()
	opts.MaxFileSize = -1

	_, err := Run(context.Background(), encodePNG(t, productShot(4, 4)), "x.png", opts)
	assert.NoError(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Run(ctx, encodePNG(t, productShot(4, 4)), "x.png", defaultOptions())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}
