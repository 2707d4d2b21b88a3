package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/background-remover/internal/config"
	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// productPNG encodes a white 30x30 image with a red square in the middle.
func productPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if x >= 10 && x < 20 && y >= 10 && y < 20 {
				c = color.NRGBA{255, 0, 0, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeProduct(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, productPNG(t), 0o644))
	return path
}

func run(t *testing.T, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(bytes.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return stdout.Bytes(), err
}

func decodeNRGBA(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestRemoveDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "shoe.photo.png")

	_, err := run(t, nil, "remove", "-i", in)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "shoe-no-bg.png"))
	require.NoError(t, err)

	img := decodeNRGBA(t, data)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, color.NRGBA{0, 0, 0, 0}, color.NRGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, color.NRGBAModel.Convert(img.At(15, 15)))
}

func TestRemoveSolidColorToFile(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "in.png")
	out := filepath.Join(dir, "result.png")

	_, err := run(t, nil, "remove", "-i", in, "-o", out,
		"--replace", "color", "--color", "#00ff00", "--threshold", "10")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img := decodeNRGBA(t, data)
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, color.NRGBAModel.Convert(img.At(29, 29)))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, color.NRGBAModel.Convert(img.At(12, 12)))
}

func TestRemoveOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "logo.png")
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	_, err := run(t, nil, "remove", "-i", in, "-o", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "logo-no-bg.png"))
}

func TestRemoveStdinStdout(t *testing.T) {
	stdout, err := run(t, productPNG(t), "remove", "-i", "-", "-o", "-")
	require.NoError(t, err)

	img := decodeNRGBA(t, stdout)
	assert.Equal(t, color.NRGBA{0, 0, 0, 0}, color.NRGBAModel.Convert(img.At(0, 0)))
}

func TestRemoveUnsupportedMethod(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "in.png")

	_, err := run(t, nil, "remove", "-i", in, "--method", "ai")
	require.Error(t, err)
	assert.Equal(t, bgerrors.ErrCodeUnsupportedMethod, bgerrors.GetCode(err))
	assert.NoFileExists(t, filepath.Join(dir, "in-no-bg.png"))
}

func TestRemoveInvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "in.png")

	_, err := run(t, nil, "remove", "-i", in, "--threshold", "150")
	require.Error(t, err)
	assert.Equal(t, bgerrors.ErrCodeInvalidThreshold, bgerrors.GetCode(err))
}

func TestRemoveRequiresInput(t *testing.T) {
	_, err := run(t, nil, "remove")
	require.Error(t, err)
}

func TestRemoveUsesConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	in := writeProduct(t, dir, "in.png")
	cfgPath := filepath.Join(dir, "bgremover.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[removal]
replace_with = "color"
replacement_color = "#0000ff"
`), 0o644))

	_, err := run(t, nil, "--config", cfgPath, "remove", "-i", in)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "in-no-bg.png"))
	require.NoError(t, err)
	img := decodeNRGBA(t, data)
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, color.NRGBAModel.Convert(img.At(0, 0)))
}

func TestBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("nonsense = 1\n"), 0o644))

	_, err := run(t, nil, "--config", cfgPath, "remove", "-i", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonsense")
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		input    string
		output   string
		filename string
		want     string
	}{
		{"default next to input", "/photos/shoe.jpg", "", "shoe-no-bg.png", "/photos/shoe-no-bg.png"},
		{"explicit file", "/photos/shoe.jpg", "/tmp/x.png", "shoe-no-bg.png", "/tmp/x.png"},
		{"directory", "/photos/shoe.jpg", dir, "shoe-no-bg.png", filepath.Join(dir, "shoe-no-bg.png")},
		{"stdin", "-", "", "image-no-bg.png", "image-no-bg.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.input, tt.output, tt.filename))
		})
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, log.Default(), loggerFromContext(ctx))
	assert.Equal(t, config.Default(), configFromContext(ctx))

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	cfg := config.Default()
	cfg.LogLevel = "debug"

	ctx = withConfig(withLogger(ctx, l), cfg)
	assert.Same(t, l, loggerFromContext(ctx))
	assert.Same(t, cfg, configFromContext(ctx))
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Wrote out.png")
	assert.Contains(t, buf.String(), "Wrote out.png (")
}
