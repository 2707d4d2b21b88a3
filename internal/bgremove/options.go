package bgremove

import (
	"math"
	"strings"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
)

// Method selects how the background is detected.
type Method string

// Removal methods. Only MethodColor is implemented.
const (
	MethodColor  Method = "color"
	MethodAI     Method = "ai"
	MethodManual Method = "manual"
)

// ParseMethod maps a user-supplied name to a Method. The empty string selects
// MethodColor. Unknown names fail with INVALID_INPUT; recognised but
// unimplemented names parse successfully and are rejected later.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodColor, nil
	case MethodColor, MethodAI, MethodManual:
		return m, nil
	default:
		return "", bgerrors.New(bgerrors.ErrCodeInvalidInput, "unknown removal method %q", s)
	}
}

// Implemented reports whether the engine can run this method.
func (m Method) Implemented() bool {
	return m == MethodColor
}

// ReplaceMode is the kind of content that replaces background pixels.
type ReplaceMode string

// Replacement kinds. ReplaceGradient is recognised but not implemented.
const (
	ReplaceTransparent ReplaceMode = "transparent"
	ReplaceColor       ReplaceMode = "color"
	ReplaceGradient    ReplaceMode = "gradient"
)

// ParseReplaceMode maps a user-supplied name to a ReplaceMode. The empty
// string selects ReplaceTransparent.
func ParseReplaceMode(s string) (ReplaceMode, error) {
	switch m := ReplaceMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ReplaceTransparent, nil
	case ReplaceTransparent, ReplaceColor, ReplaceGradient:
		return m, nil
	default:
		return "", bgerrors.New(bgerrors.ErrCodeInvalidInput, "unknown replacement %q", s)
	}
}

// ReferenceStrategy selects how the reference colour is derived from the
// image when the caller does not supply one.
type ReferenceStrategy string

// Reference strategies.
const (
	ReferenceTopLeft ReferenceStrategy = "top-left"
	ReferenceCorners ReferenceStrategy = "corners"
)

// ParseReferenceStrategy maps a user-supplied name to a strategy. The empty
// string selects ReferenceTopLeft.
func ParseReferenceStrategy(s string) (ReferenceStrategy, error) {
	switch r := ReferenceStrategy(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return ReferenceTopLeft, nil
	case ReferenceTopLeft, ReferenceCorners:
		return r, nil
	default:
		return "", bgerrors.New(bgerrors.ErrCodeInvalidInput, "unknown reference strategy %q", s)
	}
}

// Defaults used by the web tool.
const (
	DefaultThreshold        = 30.0
	DefaultReplacementColor = "#ffffff"
)

// Options configures one background removal.
type Options struct {
	// Method must be MethodColor; other methods fail with UNSUPPORTED_METHOD.
	Method Method `json:"method" toml:"method"`

	// ColorThreshold is the 0-100 sensitivity. 0 removes only exact matches
	// of the reference colour, 100 removes everything.
	ColorThreshold float64 `json:"colorThreshold" toml:"color_threshold"`

	// ReplaceWith selects what background pixels become.
	ReplaceWith ReplaceMode `json:"replaceWith" toml:"replace_with"`

	// ReplacementColor is a CSS colour string, required when ReplaceWith is
	// ReplaceColor and ignored otherwise.
	ReplacementColor string `json:"replacementColor,omitempty" toml:"replacement_color"`

	// Reference selects the sampling heuristic for the reference colour.
	Reference ReferenceStrategy `json:"reference,omitempty" toml:"reference"`

	// ReferenceColor, when set, is used instead of sampling the image.
	ReferenceColor *imaging.RGBColor `json:"referenceColor,omitempty" toml:"-"`

	// SoftEdge is the Gaussian radius used to feather the mask. Zero keeps
	// a hard-edged binary mask.
	SoftEdge float64 `json:"softEdge,omitempty" toml:"soft_edge"`
}

// DefaultOptions returns the options the web tool starts with.
func DefaultOptions() Options {
	return Options{
		Method:           MethodColor,
		ColorThreshold:   DefaultThreshold,
		ReplaceWith:      ReplaceTransparent,
		ReplacementColor: DefaultReplacementColor,
		Reference:        ReferenceTopLeft,
	}
}

// Normalize returns a copy of o with the method, replacement and reference
// names lowercased and trimmed, as the Parse functions accept them. Values
// set directly on the struct or decoded from a config file may differ in
// case.
func (o Options) Normalize() Options {
	o.Method = Method(normalizeName(string(o.Method)))
	o.ReplaceWith = ReplaceMode(normalizeName(string(o.ReplaceWith)))
	o.Reference = ReferenceStrategy(normalizeName(string(o.Reference)))
	return o
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the options in the order the engine applies them and
// returns the first problem. The method is checked first so that
// unimplemented methods are reported even when other fields are invalid.
// On success the parsed replacement is returned.
func (o Options) Validate() (Replacement, error) {
	o = o.Normalize()
	method := o.Method
	if method == "" {
		method = MethodColor
	}
	if !method.Implemented() {
		return Replacement{}, bgerrors.New(bgerrors.ErrCodeUnsupportedMethod,
			"the %q removal method is coming soon; use the color method", string(method))
	}

	if math.IsNaN(o.ColorThreshold) || o.ColorThreshold < 0 || o.ColorThreshold > MaxThreshold {
		return Replacement{}, bgerrors.New(bgerrors.ErrCodeInvalidThreshold,
			"color threshold must be between 0 and %g, got %g", MaxThreshold, o.ColorThreshold)
	}

	if math.IsNaN(o.SoftEdge) || o.SoftEdge < 0 {
		return Replacement{}, bgerrors.New(bgerrors.ErrCodeInvalidInput,
			"soft edge radius must not be negative, got %g", o.SoftEdge)
	}

	if _, err := ParseReferenceStrategy(string(o.Reference)); err != nil {
		return Replacement{}, err
	}

	return NewReplacement(o.ReplaceWith, o.ReplacementColor)
}

// Overrides carries the options a single request may set. Empty strings and
// nil pointers leave the corresponding default in place.
type Overrides struct {
	Method           string   `json:"method,omitempty"`
	ColorThreshold   *float64 `json:"color_threshold,omitempty"`
	ReplaceWith      string   `json:"replace_with,omitempty"`
	ReplacementColor string   `json:"replacement_color,omitempty"`
	Reference        string   `json:"reference,omitempty"`
	ReferenceColor   string   `json:"reference_color,omitempty"`
	SoftEdge         *float64 `json:"soft_edge,omitempty"`
}

// Apply returns a copy of o with the overrides applied. Names are parsed but
// not validated against the engine's capabilities; call Validate for that.
func (o Options) Apply(ov Overrides) (Options, error) {
	out := o

	if ov.Method != "" {
		m, err := ParseMethod(ov.Method)
		if err != nil {
			return Options{}, err
		}
		out.Method = m
	}
	if ov.ColorThreshold != nil {
		out.ColorThreshold = *ov.ColorThreshold
	}
	if ov.ReplaceWith != "" {
		r, err := ParseReplaceMode(ov.ReplaceWith)
		if err != nil {
			return Options{}, err
		}
		out.ReplaceWith = r
	}
	if ov.ReplacementColor != "" {
		out.ReplacementColor = ov.ReplacementColor
	}
	if ov.Reference != "" {
		r, err := ParseReferenceStrategy(ov.Reference)
		if err != nil {
			return Options{}, err
		}
		out.Reference = r
	}
	if ov.ReferenceColor != "" {
		c, err := imaging.ParseColor(ov.ReferenceColor)
		if err != nil {
			return Options{}, bgerrors.Wrap(bgerrors.ErrCodeInvalidInput, err,
				"invalid reference color %q", ov.ReferenceColor)
		}
		out.ReferenceColor = &c
	}
	if ov.SoftEdge != nil {
		out.SoftEdge = *ov.SoftEdge
	}

	return out, nil
}
