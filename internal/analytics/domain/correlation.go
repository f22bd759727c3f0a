package analytics

import "math"

// Sample2D is one paired observation fed to the correlation calculation.
type Sample2D struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Valve  string  `json:"valvula,omitempty"`
	Period string  `json:"periodo,omitempty"`
}

// Strength classifies the magnitude of a correlation coefficient.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// Direction is the sign of a correlation coefficient.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// Band lower bounds, inclusive.
const (
	ModerateThreshold = 0.4
	StrongThreshold   = 0.7
)

// Pearson returns the sample correlation coefficient of the paired samples.
// A zero denominator (fewer than two samples or a constant series) yields 0,
// as does a result that is not finite because the sums overflowed.
func Pearson(samples []Sample2D) float64 {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for _, s := range samples {
		sumX += s.X
		sumY += s.Y
		sumXY += s.X * s.Y
		sumX2 += s.X * s.X
		sumY2 += s.Y * s.Y
	}
	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}
	r := numerator / denominator
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// ClassifyStrength buckets |r| into weak/moderate/strong.
func ClassifyStrength(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs >= StrongThreshold:
		return StrengthStrong
	case abs >= ModerateThreshold:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// DirectionOf reports the sign of r. Only r > 0 is positive; zero, including
// the degenerate-series fallback, is negative.
func DirectionOf(r float64) Direction {
	if r > 0 {
		return DirectionPositive
	}
	return DirectionNegative
}

// Label returns the Spanish display label for the strength.
func (s Strength) Label() string {
	switch s {
	case StrengthStrong:
		return "Fuerte"
	case StrengthModerate:
		return "Moderada"
	case StrengthWeak:
		return "Débil"
	default:
		return string(s)
	}
}

// Label returns the Spanish display label for the direction.
func (d Direction) Label() string {
	switch d {
	case DirectionPositive:
		return "Positiva"
	case DirectionNegative:
		return "Negativa"
	default:
		return string(d)
	}
}

// Correlation is the rendering-facing result of a correlation calculation.
type Correlation struct {
	Coefficient    float64   `json:"coefficient"`
	Strength       Strength  `json:"strength"`
	StrengthLabel  string    `json:"strength_label"`
	Direction      Direction `json:"direction"`
	DirectionLabel string    `json:"direction_label"`
	SampleCount    int       `json:"sample_count"`
}

// Correlate computes Pearson's r over samples and classifies it.
func Correlate(samples []Sample2D) Correlation {
	return Describe(Pearson(samples), len(samples))
}

// Describe classifies an already known coefficient, e.g. one precomputed by the backend.
func Describe(r float64, sampleCount int) Correlation {
	strength := ClassifyStrength(r)
	direction := DirectionOf(r)
	return Correlation{
		Coefficient:    r,
		Strength:       strength,
		StrengthLabel:  strength.Label(),
		Direction:      direction,
		DirectionLabel: direction.Label(),
		SampleCount:    sampleCount,
	}
}
