package imaging

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Opaque returns the color with full alpha.
func (c RGBColor) Opaque() RGBAColor {
	return RGBAColor{R: c.R, G: c.G, B: c.B, A: 255}
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
//
// Components are not premultiplied.
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// RGB drops the alpha component.
func (c RGBAColor) RGB() RGBColor {
	return RGBColor{R: c.R, G: c.G, B: c.B}
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based relative to the image's top-left corner, so they
// are valid for sub-images whose bounds do not start at (0,0). Values are
// converted to non-premultiplied 8-bit components; use RGBA.A to get
// transparency information.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput,
			"coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	c := nrgbaAt(img, bounds.Min.X+x, bounds.Min.Y+y)
	rgb := c.RGB()

	return &ColorResult{
		Hex:  rgb.Hex(),
		RGB:  rgb,
		RGBA: c,
		HSL:  rgbToHSL(rgb),
	}, nil
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequently occurring colors in an image.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the N most common colors from an image.
//
// Components are quantized to multiples of 16 before counting so that
// near-identical shades are grouped. The most dominant colour of a product
// shot is usually a good explicit reference colour for background removal.
// Ties are broken by hex value so the output is deterministic.
func DominantColors(img image.Image, count int) (*DominantColorsResult, error) {
	if count <= 0 {
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "count must be positive, got %d", count)
	}

	bounds := img.Bounds()
	counts := make(map[RGBColor]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := nrgbaAt(img, x, y)
			q := RGBColor{R: c.R / 16 * 16, G: c.G / 16 * 16, B: c.B / 16 * 16}
			counts[q]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        rgb.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        rgb,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}

// namedColors covers the CSS keywords a user is likely to type into the
// replacement colour field.
var namedColors = map[string]RGBColor{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"lime":    {0, 255, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"aqua":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"fuchsia": {255, 0, 255},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"maroon":  {128, 0, 0},
	"olive":   {128, 128, 0},
	"navy":    {0, 0, 128},
	"purple":  {128, 0, 128},
	"teal":    {0, 128, 128},
	"orange":  {255, 165, 0},
}

// ParseColor parses a CSS colour string into an opaque RGB colour.
//
// Accepted forms:
//   - "#RGB" and "#RRGGBB" (case-insensitive)
//   - "rgb(r, g, b)" with integer components 0-255
//   - basic CSS colour keywords ("white", "red", ...)
//
// Alpha-bearing forms ("#RRGGBBAA", "rgba(...)", "transparent") are rejected
// because replacement colours are always written fully opaque.
func ParseColor(s string) (RGBColor, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RGBColor{}, fmt.Errorf("empty color string")
	}

	if strings.HasPrefix(v, "#") {
		if len(v) != 4 && len(v) != 7 {
			return RGBColor{}, fmt.Errorf("invalid hex color %q", s)
		}
		c, err := colorful.Hex(v)
		if err != nil {
			return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return RGBColor{R: r, G: g, B: b}, nil
	}

	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(v[len("rgb("):len(v)-1], ",")
		if len(parts) != 3 {
			return RGBColor{}, fmt.Errorf("invalid rgb() color %q", s)
		}
		var comps [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return RGBColor{}, fmt.Errorf("invalid rgb() component %q in %q", strings.TrimSpace(p), s)
			}
			comps[i] = uint8(n)
		}
		return RGBColor{R: comps[0], G: comps[1], B: comps[2]}, nil
	}

	if c, ok := namedColors[v]; ok {
		return c, nil
	}

	return RGBColor{}, fmt.Errorf("unrecognized color %q", s)
}

// rgbToHSL converts 8-bit RGB values to HSL color space with integer
// components (hue in degrees, saturation and lightness in percent).
func rgbToHSL(c RGBColor) HSLColor {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsl()

	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}
