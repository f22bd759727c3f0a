package analytics

import (
	"errors"
	"math"
)

// ValveStatus is the bucket a valve falls into by loss index.
type ValveStatus string

const (
	StatusNormal   ValveStatus = "normal"
	StatusWarning  ValveStatus = "warning"
	StatusCritical ValveStatus = "critical"
)

// ValveStatusRecord is the per-valve summary served by the balance backend.
type ValveStatusRecord struct {
	Valve         string   `json:"valvula"`
	LossIndex     float64  `json:"indice_perdidas"`
	AverageInput  *float64 `json:"entrada_promedio,omitempty"`
	AverageOutput *float64 `json:"salida_promedio,omitempty"`
	AverageLosses *float64 `json:"perdidas_promedio,omitempty"`
	PeriodCount   int      `json:"num_periodos,omitempty"`
}

// Thresholds are the loss index limits, in percent, above which a valve is
// warning or critical. Both limits are exclusive.
type Thresholds struct {
	WarningAbove  float64 `yaml:"warning_above" json:"warning_above"`
	CriticalAbove float64 `yaml:"critical_above" json:"critical_above"`
}

// Weights are the per-bucket scores averaged into the health score.
type Weights struct {
	Normal   int `yaml:"normal" json:"normal"`
	Warning  int `yaml:"warning" json:"warning"`
	Critical int `yaml:"critical" json:"critical"`
}

// DefaultThresholds returns the product tuning of 12% and 20%.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningAbove: 12, CriticalAbove: 20}
}

// DefaultWeights returns the product tuning of 100/70/30.
func DefaultWeights() Weights {
	return Weights{Normal: 100, Warning: 70, Critical: 30}
}

// DefaultHealthScore is shown when there is no valve population to score.
const DefaultHealthScore = 85

var (
	// ErrInvalidThresholds is returned when the critical limit is below the warning limit.
	ErrInvalidThresholds = errors.New("analytics: invalid thresholds")
	// ErrInvalidWeights is returned when a weight falls outside 0..100.
	ErrInvalidWeights = errors.New("analytics: invalid weights")
)

// Validate checks threshold ordering.
func (t Thresholds) Validate() error {
	if t.WarningAbove < 0 || t.CriticalAbove < t.WarningAbove {
		return ErrInvalidThresholds
	}
	return nil
}

// Validate checks every weight lies within the score domain.
func (w Weights) Validate() error {
	for _, v := range []int{w.Normal, w.Warning, w.Critical} {
		if v < 0 || v > 100 {
			return ErrInvalidWeights
		}
	}
	return nil
}

// Bucket classifies a loss index: <=12 normal, (12,20] warning, >20 critical.
func (t Thresholds) Bucket(lossIndex float64) ValveStatus {
	switch {
	case lossIndex > t.CriticalAbove:
		return StatusCritical
	case lossIndex > t.WarningAbove:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// BucketValve classifies using the default thresholds.
func BucketValve(lossIndex float64) ValveStatus {
	return DefaultThresholds().Bucket(lossIndex)
}

// BucketCounts is the population per status bucket.
type BucketCounts struct {
	Normal   int `json:"normal"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Total returns the population size.
func (c BucketCounts) Total() int {
	return c.Normal + c.Warning + c.Critical
}

// CountBuckets tallies valve records by status.
func CountBuckets(records []ValveStatusRecord, t Thresholds) BucketCounts {
	var counts BucketCounts
	for _, rec := range records {
		switch t.Bucket(rec.LossIndex) {
		case StatusCritical:
			counts.Critical++
		case StatusWarning:
			counts.Warning++
		default:
			counts.Normal++
		}
	}
	return counts
}

// HealthScore is round((normal*Wn + warning*Ww + critical*Wc) / total).
// An empty population returns fallback.
func HealthScore(counts BucketCounts, weights Weights, fallback int) int {
	total := counts.Total()
	if total <= 0 {
		return fallback
	}
	weighted := counts.Normal*weights.Normal + counts.Warning*weights.Warning + counts.Critical*weights.Critical
	return int(math.Floor(float64(weighted)/float64(total) + 0.5))
}

// HealthBand is the display band for a health score.
type HealthBand string

const (
	BandExcellent HealthBand = "Excelente"
	BandGood      HealthBand = "Bueno"
	BandCritical  HealthBand = "Crítico"
)

// BandFor maps a score to its band: >=80 excellent, >=60 good, otherwise critical.
func BandFor(score int) HealthBand {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	default:
		return BandCritical
	}
}

// NetworkHealth is the summary rendered by the system health widget.
type NetworkHealth struct {
	Score        int          `json:"score"`
	Band         HealthBand   `json:"band"`
	Counts       BucketCounts `json:"counts"`
	Total        int          `json:"total"`
	AboveWarning int          `json:"above_warning"`
	UsedFallback bool         `json:"used_fallback"`
}

// HealthCalculator carries the configured tuning for health scoring.
type HealthCalculator struct {
	Thresholds   Thresholds
	Weights      Weights
	DefaultScore int
}

// NewHealthCalculator validates the tuning.
func NewHealthCalculator(t Thresholds, w Weights, defaultScore int) (HealthCalculator, error) {
	if err := t.Validate(); err != nil {
		return HealthCalculator{}, err
	}
	if err := w.Validate(); err != nil {
		return HealthCalculator{}, err
	}
	if defaultScore < 0 || defaultScore > 100 {
		return HealthCalculator{}, ErrInvalidWeights
	}
	return HealthCalculator{Thresholds: t, Weights: w, DefaultScore: defaultScore}, nil
}

// Evaluate buckets the records and scores the network.
func (c HealthCalculator) Evaluate(records []ValveStatusRecord) NetworkHealth {
	counts := CountBuckets(records, c.Thresholds)
	score := HealthScore(counts, c.Weights, c.DefaultScore)
	return NetworkHealth{
		Score:        score,
		Band:         BandFor(score),
		Counts:       counts,
		Total:        counts.Total(),
		AboveWarning: counts.Warning + counts.Critical,
		UsedFallback: counts.Total() == 0,
	}
}
