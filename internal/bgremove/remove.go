package bgremove

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// DefaultWarnPixels is the image size above which a removal is logged as
// large. Large images are still processed in full.
const DefaultWarnPixels = 16_000_000

// Result is the outcome of one removal.
type Result struct {
	// Buffer holds the processed pixels. It is owned by the caller.
	Buffer *imaging.Buffer

	// Reference is the colour the image was keyed against.
	Reference imaging.RGBColor

	// BackgroundPixels counts pixels that were at least half replaced.
	BackgroundPixels int

	Width  int
	Height int
}

// Remover runs background removals. It holds configuration only and is safe
// for concurrent use.
type Remover struct {
	logger     *log.Logger
	parallel   bool
	warnPixels int
}

// Option configures a Remover.
type Option func(*Remover)

// WithLogger sets the logger. A nil logger selects log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Remover) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithParallel enables or disables row-parallel processing.
func WithParallel(enabled bool) Option {
	return func(r *Remover) { r.parallel = enabled }
}

// WithWarnPixels sets the pixel count above which a warning is logged.
// Zero or negative disables the warning.
func WithWarnPixels(n int) Option {
	return func(r *Remover) { r.warnPixels = n }
}

// NewRemover returns a Remover with parallel processing and the default
// large-image warning.
func NewRemover(opts ...Option) *Remover {
	r := &Remover{
		logger:     log.Default(),
		parallel:   true,
		warnPixels: DefaultWarnPixels,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Remove replaces the background of img according to opts.
//
// Options are validated before the image is looked at, so an unimplemented
// method or replacement is reported even for a nil image. img is copied into
// a private buffer and is never modified.
func (r *Remover) Remove(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	opts = opts.Normalize()
	rep, err := opts.Validate()
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "no image given")
	}
	return r.run(ctx, imaging.FromImage(img), opts, rep)
}

// RemoveBuffer is Remove for an image that is already in a Buffer. buf is
// not modified.
func (r *Remover) RemoveBuffer(ctx context.Context, buf *imaging.Buffer, opts Options) (*Result, error) {
	opts = opts.Normalize()
	rep, err := opts.Validate()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "no image given")
	}
	return r.run(ctx, buf, opts, rep)
}

func (r *Remover) run(ctx context.Context, buf *imaging.Buffer, opts Options, rep Replacement) (*Result, error) {
	start := time.Now()
	w, h := buf.Width(), buf.Height()
	if w == 0 || h == 0 {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "image has no pixels")
	}
	if r.warnPixels > 0 && buf.Pixels() > r.warnPixels {
		r.logger.Warn("processing large image", "width", w, "height", h,
			"megapixels", float64(buf.Pixels())/1e6)
	}

	var ref imaging.RGBColor
	if opts.ReferenceColor != nil {
		ref = *opts.ReferenceColor
	} else {
		sampled, err := SampleReference(buf, opts.Reference)
		if err != nil {
			return nil, err
		}
		ref = sampled
	}

	mask, err := BuildMaskContext(ctx, buf, ref, opts.ColorThreshold, r.parallel)
	if err != nil {
		return nil, err
	}
	if opts.SoftEdge > 0 {
		mask, err = SoftenContext(ctx, mask, opts.SoftEdge, r.parallel)
		if err != nil {
			return nil, err
		}
	}

	out, err := CompositeContext(ctx, buf, mask, rep, r.parallel)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Buffer:           out,
		Reference:        ref,
		BackgroundPixels: mask.BackgroundCount(),
		Width:            w,
		Height:           h,
	}

	r.logger.Debug("background removed",
		"width", w, "height", h,
		"reference", ref.Hex(),
		"threshold", opts.ColorThreshold,
		"replace", string(rep.Mode),
		"background_pixels", res.BackgroundPixels,
		"elapsed", time.Since(start))

	return res, nil
}

// RemoveBackground runs a single removal with a default Remover.
func RemoveBackground(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	return NewRemover().Remove(ctx, img, opts)
}
