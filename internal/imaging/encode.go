package imaging

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// DefaultQuality is the lossy quality used when the caller gives none,
// on the same 0-1 scale as the web tools.
const DefaultQuality = 0.92

// formats maps user-facing format names to encoder formats.
var formats = map[string]imaging.Format{
	"png":  imaging.PNG,
	"jpeg": imaging.JPEG,
	"jpg":  imaging.JPEG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
	"tif":  imaging.TIFF,
}

// MimeType returns the MIME type for a format name.
func MimeType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "":
		return "application/octet-stream"
	default:
		return "image/" + strings.ToLower(format)
	}
}

// EncodePNG serializes img as PNG, preserving transparency.
func EncodePNG(img image.Image) ([]byte, error) {
	return Encode(img, "png", 0)
}

// Encode serializes img in the named format. quality (0-1] applies to JPEG
// only; zero selects DefaultQuality.
//
// WebP is accepted for decoding but cannot be produced; asking for it (or any
// unknown format) fails with ENCODE_FAILURE.
func Encode(img image.Image, format string, quality float64) ([]byte, error) {
	f, ok := formats[strings.ToLower(format)]
	if !ok {
		return nil, bgerrors.New(bgerrors.ErrCodeEncode, "unsupported output format %q", format)
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	if quality > 1 {
		quality = 1
	}

	var opts []imaging.EncodeOption
	if f == imaging.JPEG {
		q := int(quality*100 + 0.5)
		if q < 1 {
			q = 1
		}
		opts = append(opts, imaging.JPEGQuality(q))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, opts...); err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrCodeEncode, err, "failed to encode %s image", format)
	}
	return buf.Bytes(), nil
}

// OutputFilename derives a download name from the uploaded file name:
// everything up to the first "." of the base name, then suffix, then "."+ext.
//
//	OutputFilename("holiday.photo.jpg", "-no-bg", "png") == "holiday-no-bg.png"
func OutputFilename(original, suffix, ext string) string {
	base := filepath.Base(original)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "/" {
		base = "image"
	}
	return base + suffix + "." + ext
}
