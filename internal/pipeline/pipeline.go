// Package pipeline runs one background removal end to end: decode the
// uploaded file, remove the background, encode the result as PNG.
package pipeline

import (
	"bytes"
	"context"

	"github.com/ironsheep/background-remover/internal/bgremove"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// OutputSuffix is appended to the input's base name to name the result.
const OutputSuffix = "-no-bg"

// Options controls a pipeline run.
type Options struct {
	Removal bgremove.Options

	// MaxFileSize limits the input size in bytes. Zero selects
	// imaging.DefaultMaxFileSize; negative means unlimited.
	MaxFileSize int64

	// Remover runs the removal. Nil selects a default Remover.
	Remover *bgremove.Remover
}

// Output holds the result of a pipeline run.
type Output struct {
	Data             []byte // encoded PNG
	Size             int
	Filename         string // <name>-no-bg.png
	Width            int
	Height           int
	Reference        imaging.RGBColor
	BackgroundPixels int
}

// Run executes decode → remove background → encode PNG.
//
// Options are validated before decoding, so an unsupported method is reported
// even for unreadable input. data is never modified.
func Run(ctx context.Context, data []byte, filename string, opts Options) (*Output, error) {
	if _, err := opts.Removal.Validate(); err != nil {
		return nil, err
	}

	maxBytes := opts.MaxFileSize
	if maxBytes == 0 {
		maxBytes = imaging.DefaultMaxFileSize
	}

	// 1. Decode
	img, _, err := imaging.Decode(bytes.NewReader(data), maxBytes)
	if err != nil {
		return nil, err
	}

	// 2. Remove background
	remover := opts.Remover
	if remover == nil {
		remover = bgremove.NewRemover()
	}
	res, err := remover.Remove(ctx, img, opts.Removal)
	if err != nil {
		return nil, err
	}

	// 3. Encode PNG
	encoded, err := imaging.EncodePNG(res.Buffer.Image())
	if err != nil {
		return nil, err
	}

	return &Output{
		Data:             encoded,
		Size:             len(encoded),
		Filename:         imaging.OutputFilename(filename, OutputSuffix, "png"),
		Width:            res.Width,
		Height:           res.Height,
		Reference:        res.Reference,
		BackgroundPixels: res.BackgroundPixels,
	}, nil
}
