package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

// decodeResult decodes the base64 payload of a TransformResult.
func decodeResult(t *testing.T, r *TransformResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	if len(data) != r.SizeBytes {
		t.Errorf("SizeBytes: got %d, payload is %d bytes", r.SizeBytes, len(data))
	}
	img, _, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("failed to decode image: %v", err)
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, 50, 0, 50, 50)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	out := decodeResult(t, result)
	r, g, b, _ := out.At(10, 10).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("cropped quadrant should be green, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCrop_SubImageOrigin(t *testing.T) {
	src := createPatternImage(100, 100)
	sub := src.SubImage(image.Rect(50, 50, 100, 100)) // white quadrant

	result, err := Crop(sub, 0, 0, 10, 10)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	out := decodeResult(t, result)
	if r, _, _, _ := out.At(0, 0).RGBA(); r>>8 != 255 {
		t.Errorf("crop of sub-image should be relative to its origin")
	}
}

func TestCrop_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name       string
		x, y, w, h int
	}{
		{"x negative", -1, 0, 50, 50},
		{"y negative", 0, -1, 50, 50},
		{"too wide", 60, 0, 50, 50},
		{"too tall", 0, 60, 50, 50},
		{"zero width", 0, 0, 0, 50},
		{"negative height", 0, 0, 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.x, tt.y, tt.w, tt.h); err == nil {
				t.Error("Crop should fail")
			}
		})
	}
}

func TestResizeTarget(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		w, h         int
		keep         bool
		wantW, wantH int
	}{
		{"width only", 200, 100, 100, 0, true, 100, 50},
		{"height only", 200, 100, 0, 25, true, 50, 25},
		{"fit wide box", 200, 100, 100, 100, true, 100, 50},
		{"fit tall box", 100, 200, 100, 100, true, 50, 100},
		{"nothing given", 30, 20, 0, 0, true, 30, 20},
		{"stretch", 200, 100, 50, 50, false, 50, 50},
		{"stretch width only", 200, 100, 50, 0, false, 50, 100},
		{"never zero", 1000, 1, 10, 0, true, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ResizeTarget(tt.srcW, tt.srcH, tt.w, tt.h, tt.keep)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResize(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)

	result, err := Resize(img, 100, 0, true)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if result.Width != 100 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", result.Width, result.Height)
	}

	if _, err := Resize(img, -1, 0, true); err == nil {
		t.Error("negative width should fail")
	}
}

func TestRotate(t *testing.T) {
	img := createInMemoryImage(40, 20, color.White)

	tests := []struct {
		angle        float64
		wantW, wantH int
	}{
		{0, 40, 20},
		{90, 20, 40},
		{180, 40, 20},
		{-90, 20, 40},
	}

	for _, tt := range tests {
		result, err := Rotate(img, tt.angle, false, false)
		if err != nil {
			t.Fatalf("Rotate(%v) failed: %v", tt.angle, err)
		}
		if result.Width != tt.wantW || result.Height != tt.wantH {
			t.Errorf("Rotate(%v): got %dx%d, want %dx%d", tt.angle, result.Width, result.Height, tt.wantW, tt.wantH)
		}
	}
}

func TestRotate_ClockwiseQuarterTurn(t *testing.T) {
	// Red left half, blue right half; a clockwise quarter turn puts red on top.
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	result, err := Rotate(img, 90, false, false)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	out := decodeResult(t, result)
	if r, _, _, _ := out.At(0, 0).RGBA(); r>>8 != 255 {
		t.Error("top of a clockwise rotation should be the former left side (red)")
	}
}

func TestRotate_Flip(t *testing.T) {
	img := createPatternImage(10, 10)

	result, err := Rotate(img, 0, true, false)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	out := decodeResult(t, result)
	// Horizontal flip moves green (top-right) to the top-left.
	if _, g, _, _ := out.At(0, 0).RGBA(); g>>8 != 255 {
		t.Error("flipH should mirror the image horizontally")
	}
}

func TestConvert(t *testing.T) {
	img := createPatternImage(16, 16)

	result, err := Convert(img, "jpeg", 0.5)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("MimeType: got %s", result.MimeType)
	}

	if _, err := Convert(img, "webp", 0.9); err == nil {
		t.Error("webp output should be unsupported")
	}
}

func TestCompress(t *testing.T) {
	img := createPatternImage(200, 100)

	result, err := Compress(img, "jpeg", 0.6, 100, 0)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if result.Width != 100 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", result.Width, result.Height)
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("MimeType: got %s, want image/jpeg", result.MimeType)
	}

	pngResult, err := Compress(img, "png", 0.6, 0, 40)
	if err != nil {
		t.Fatalf("Compress png failed: %v", err)
	}
	if pngResult.MimeType != "image/png" || pngResult.Height != 40 || pngResult.Width != 80 {
		t.Errorf("png compress: got %s %dx%d", pngResult.MimeType, pngResult.Width, pngResult.Height)
	}

	if _, err := Compress(img, "jpeg", 1.5, 0, 0); err == nil {
		t.Error("quality above 1 should fail")
	}
}

func TestFavicons(t *testing.T) {
	img := createPatternImage(300, 200)

	icons, err := Favicons(img)
	if err != nil {
		t.Fatalf("Favicons failed: %v", err)
	}
	if len(icons) != len(FaviconSizes) {
		t.Fatalf("got %d icons, want %d", len(icons), len(FaviconSizes))
	}
	for i, icon := range icons {
		if icon.Size != FaviconSizes[i] || icon.Width != icon.Size || icon.Height != icon.Size {
			t.Errorf("icon %d: size %d, got %dx%d", i, icon.Size, icon.Width, icon.Height)
		}
		if !bytes.HasPrefix(mustDecodeBase64(t, icon.ImageBase64), []byte("\x89PNG")) {
			t.Errorf("icon %d is not a PNG", icon.Size)
		}
	}
}

func mustDecodeBase64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	return b
}
