package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// TransformResult contains an encoded output image.
type TransformResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int    `json:"size_bytes"`
}

func encodeResult(img image.Image, format string, quality float64) (*TransformResult, error) {
	data, err := Encode(img, format, quality)
	if err != nil {
		return nil, err
	}
	return &TransformResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    MimeType(format),
		SizeBytes:   len(data),
	}, nil
}

// Crop extracts the width×height region whose top-left corner is (x, y).
// The region must lie entirely within the image. Output is PNG.
func Crop(img image.Image, x, y, width, height int) (*TransformResult, error) {
	bounds := img.Bounds()
	if width <= 0 || height <= 0 {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput,
			"invalid crop size %dx%d: width and height must be positive", width, height)
	}
	if x < 0 || y < 0 || x+width > bounds.Dx() || y+height > bounds.Dy() {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput,
			"crop region (%d,%d) %dx%d outside image bounds %dx%d",
			x, y, width, height, bounds.Dx(), bounds.Dy())
	}

	r := image.Rect(x, y, x+width, y+height).Add(bounds.Min)
	return encodeResult(imaging.Crop(img, r), "png", 0)
}

// ResizeTarget computes output dimensions the way the web resize tool does.
//
// With keepAspect, a single given side derives the other from the source
// aspect ratio and two given sides fit the image inside that box. Without
// keepAspect, a missing side keeps its source value. Zero means "not given".
func ResizeTarget(srcW, srcH, width, height int, keepAspect bool) (int, int) {
	tw, th := width, height
	if tw <= 0 {
		tw = srcW
	}
	if th <= 0 {
		th = srcH
	}

	if keepAspect {
		aspect := float64(srcW) / float64(srcH)
		switch {
		case width > 0 && height <= 0:
			th = int(math.Round(float64(width) / aspect))
		case height > 0 && width <= 0:
			tw = int(math.Round(float64(height) * aspect))
		case width > 0 && height > 0:
			if aspect > float64(width)/float64(height) {
				th = int(math.Round(float64(width) / aspect))
			} else {
				tw = int(math.Round(float64(height) * aspect))
			}
		}
	}

	return max(tw, 1), max(th, 1)
}

// Resize scales img to the dimensions computed by ResizeTarget using a
// Lanczos filter. Output is PNG.
func Resize(img image.Image, width, height int, keepAspect bool) (*TransformResult, error) {
	if width < 0 || height < 0 {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "width and height must not be negative")
	}
	b := img.Bounds()
	tw, th := ResizeTarget(b.Dx(), b.Dy(), width, height, keepAspect)
	return encodeResult(imaging.Resize(img, tw, th, imaging.Lanczos), "png", 0)
}

// Rotate turns img clockwise by angle degrees after applying the requested
// flips. The canvas grows to the rotated bounding box and uncovered areas are
// transparent. Output is PNG.
func Rotate(img image.Image, angle float64, flipH, flipV bool) (*TransformResult, error) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "angle must be a finite number")
	}

	var out image.Image = img
	if flipH {
		out = imaging.FlipH(out)
	}
	if flipV {
		out = imaging.FlipV(out)
	}
	// imaging rotates counter-clockwise.
	out = imaging.Rotate(out, -angle, color.Transparent)

	return encodeResult(out, "png", 0)
}

// Convert re-encodes img in another format. quality (0-1] applies to JPEG.
func Convert(img image.Image, format string, quality float64) (*TransformResult, error) {
	return encodeResult(img, format, quality)
}

// Compress optionally downsizes img to fit maxWidth/maxHeight (zero = no
// limit) and re-encodes it. PNG sources stay PNG; everything else becomes
// JPEG at quality.
func Compress(img image.Image, sourceFormat string, quality float64, maxWidth, maxHeight int) (*TransformResult, error) {
	if quality < 0 || quality > 1 {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "quality must be between 0 and 1, got %g", quality)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
		w = maxWidth
	}
	if maxHeight > 0 && h > maxHeight {
		w = int(math.Round(float64(w) * float64(maxHeight) / float64(h)))
		h = maxHeight
	}

	var out image.Image = img
	if w != b.Dx() || h != b.Dy() {
		out = imaging.Resize(img, max(w, 1), max(h, 1), imaging.Lanczos)
	}

	format := "jpeg"
	if sourceFormat == "png" {
		format = "png"
	}
	return encodeResult(out, format, quality)
}

// FaviconSizes are the square edge lengths produced by Favicons.
var FaviconSizes = []int{16, 32, 48, 64, 128, 180, 192, 512}

// FaviconResult is one generated favicon.
type FaviconResult struct {
	Size int `json:"size"`
	TransformResult
}

// Favicons renders img at every size in FaviconSizes. Each output is an exact
// square PNG; non-square sources are stretched.
func Favicons(img image.Image) ([]FaviconResult, error) {
	results := make([]FaviconResult, 0, len(FaviconSizes))
	for _, size := range FaviconSizes {
		icon := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
		r, err := encodeResult(icon, "png", 0)
		if err != nil {
			return nil, err
		}
		results = append(results, FaviconResult{Size: size, TransformResult: *r})
	}
	return results, nil
}
