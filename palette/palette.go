// Package palette assigns colors to markup annotations.
//
// Two independent schemes are provided: [Distinct] spreads key-value pair
// colors around the hue wheel so that every pair is visually
// distinguishable, and [ForConfidence] maps a confidence score onto a
// red-yellow-green gradient. Tables and paragraphs use fixed colors so
// they never collide with the key-value palette.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Hue wheel constants for Distinct. Mid-range saturation and lightness
// keep every hue step readable on a white page.
const (
	distinctSaturation = 0.7
	distinctLightness  = 0.5
)

// Gradient control points for ForConfidence.
var (
	gradientRed    = colorful.Color{R: 1, G: 0, B: 0}
	gradientYellow = colorful.Color{R: 1, G: 1, B: 0}
	gradientGreen  = colorful.Color{R: 0, G: 1, B: 0}
)

// Fixed entity styles. Header and data cells deliberately stay outside
// the hue wheel used for key-value pairs.
var (
	// HeaderCell is the border and fill color for table header cells.
	HeaderCell = colorful.Color{R: 0, G: 0, B: 0.8}

	// DataCell is the border color for table data cells.
	DataCell = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	// ParagraphFill is the background fill color for paragraphs.
	ParagraphFill = colorful.Color{R: 0.9, G: 0.9, B: 0.9}

	// ParagraphBorder is the hairline border color for paragraphs.
	ParagraphBorder = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	// Neutral is the sentinel color for an unknown confidence. It is
	// never part of the gradient, so a reader cannot mistake "not
	// reported" for "zero confidence". Confidence bars are omitted
	// entirely for unknown scores; Neutral exists for callers that need
	// to show the unknown state in some other surface (legends, reports).
	Neutral = colorful.Color{R: 0.62, G: 0.62, B: 0.62}
)

// Distinct returns n colors spread evenly around the hue wheel at
// mid-range saturation and lightness. The assignment is deterministic:
// the same n always yields the same sequence. Adjacent hues move closer
// together as n grows, but there is no failure mode.
func Distinct(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]colorful.Color, n)
	for i := range colors {
		hue := float64(i) * 360.0 / float64(n)
		colors[i] = colorful.Hsl(hue, distinctSaturation, distinctLightness)
	}
	return colors
}

// ForConfidence maps a confidence score in [0, 1] onto a piecewise
// linear gradient: red at 0, yellow at 0.5, green at 1. Each RGB channel
// is interpolated linearly within the enclosing segment. Out-of-range
// scores clamp to the nearest endpoint.
func ForConfidence(score float64) colorful.Color {
	score = clamp01(score)
	if score <= 0.5 {
		return gradientRed.BlendRgb(gradientYellow, score*2)
	}
	return gradientYellow.BlendRgb(gradientGreen, (score-0.5)*2)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
