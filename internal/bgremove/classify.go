package bgremove

import (
	"math"

	"github.com/ironsheep/background-remover/internal/imaging"
)

// MaxThreshold is the top of the user-facing threshold scale.
const MaxThreshold = 100.0

// MaxDistance is the largest possible Euclidean distance between two 8-bit
// RGB colours (black to white), sqrt(3·255²) ≈ 441.67.
var MaxDistance = math.Sqrt(3 * 255 * 255)

// Distance returns the Euclidean distance between two colours over R, G and
// B in 8-bit units. Alpha does not participate.
func Distance(a, b imaging.RGBColor) float64 {
	return math.Sqrt(float64(distanceSq(a, b)))
}

func distanceSq(a, b imaging.RGBColor) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// ThresholdDistance maps the 0-100 threshold scale linearly onto
// [0, MaxDistance]. Values outside the scale are clamped; NaN maps to 0.
func ThresholdDistance(threshold float64) float64 {
	switch {
	case math.IsNaN(threshold), threshold <= 0:
		return 0
	case threshold >= MaxThreshold:
		return MaxDistance
	}
	return threshold / MaxThreshold * MaxDistance
}

// Classifier answers "is this pixel background?" for a fixed reference colour
// and threshold. The zero value classifies only exact black as background.
type Classifier struct {
	ref     imaging.RGBColor
	limitSq float64
	all     bool
}

// NewClassifier precomputes the squared distance limit for threshold.
// A threshold at or above MaxThreshold classifies every pixel as background.
func NewClassifier(reference imaging.RGBColor, threshold float64) Classifier {
	d := ThresholdDistance(threshold)
	return Classifier{
		ref:     reference,
		limitSq: d * d,
		all:     threshold >= MaxThreshold,
	}
}

// Reference returns the reference colour.
func (c Classifier) Reference() imaging.RGBColor { return c.ref }

// IsBackground reports whether Distance(pixel, reference) is within the
// threshold distance.
func (c Classifier) IsBackground(pixel imaging.RGBColor) bool {
	if c.all {
		return true
	}
	return float64(distanceSq(pixel, c.ref)) <= c.limitSq
}

// Classify reports whether pixel belongs to the background of an image whose
// background colour is reference, at the given 0-100 threshold.
//
// It is monotonic: if a pixel is background at threshold t it is background
// at every threshold above t, and any pixel at least as close to the
// reference is background too.
func Classify(pixel, reference imaging.RGBColor, threshold float64) bool {
	return NewClassifier(reference, threshold).IsBackground(pixel)
}
