// Package saturation decides whether additional research cycles have
// stopped producing new value. All functions are pure and total.
package saturation

import "github.com/memouritsen-ui/solid-robot-sub000/internal/model"

// Counts are the raw per-cycle counters the metrics derive from
type Counts struct {
	EntitiesBefore   int
	EntitiesAfter    int
	FactsBefore      int
	FactsAfter       int
	CircularCited    int
	TotalCitations   int
	SourcesQueried   int
	SourcesAvailable int
}

// Thresholds are the stop-decision cutoffs. All comparisons are strict:
// a value exactly at a threshold continues research.
type Thresholds struct {
	MinNewEntitiesRatio float64
	MinNewFactsRatio    float64
	MaxSourceCoverage   float64
	MaxCircularity      float64
}

// DefaultThresholds returns the standard cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinNewEntitiesRatio: 0.05,
		MinNewFactsRatio:    0.05,
		MaxSourceCoverage:   0.95,
		MaxCircularity:      0.80,
	}
}

// ThresholdsFromConfig builds Thresholds from configuration, falling
// back to defaults for unset values
func ThresholdsFromConfig(cfg model.SaturationConfig) Thresholds {
	t := DefaultThresholds()
	if cfg.MinNewEntitiesRatio > 0 {
		t.MinNewEntitiesRatio = cfg.MinNewEntitiesRatio
	}
	if cfg.MinNewFactsRatio > 0 {
		t.MinNewFactsRatio = cfg.MinNewFactsRatio
	}
	if cfg.MaxSourceCoverage > 0 {
		t.MaxSourceCoverage = cfg.MaxSourceCoverage
	}
	if cfg.MaxCircularity > 0 {
		t.MaxCircularity = cfg.MaxCircularity
	}
	return t
}

// Decision is the outcome of one saturation check
type Decision struct {
	Stop   bool
	Reason string
}

// Stop reasons, one per rule plus the continue case
const (
	ReasonEntitySaturation = "entity saturation"
	ReasonFactSaturation   = "fact saturation"
	ReasonSourceCoverage   = "source coverage exhausted"
	ReasonCircularity      = "citation circularity"
	ReasonNotSaturated     = "saturation not yet reached"
)

// ComputeMetrics derives the four progress ratios from raw counters.
// Every denominator is floored at 1 so the computation is total.
func ComputeMetrics(c Counts) model.SaturationMetrics {
	return model.SaturationMetrics{
		NewEntitiesRatio:    ratio(c.EntitiesAfter-c.EntitiesBefore, c.EntitiesAfter),
		NewFactsRatio:       ratio(c.FactsAfter-c.FactsBefore, c.FactsAfter),
		CitationCircularity: ratio(c.CircularCited, c.TotalCitations),
		SourceCoverage:      ratio(c.SourcesQueried, c.SourcesAvailable),
	}
}

// Decide applies the stop rules in fixed priority order; the first rule
// that fires wins even when several hold simultaneously.
func Decide(m model.SaturationMetrics, t Thresholds) Decision {
	switch {
	case m.NewEntitiesRatio < t.MinNewEntitiesRatio:
		return Decision{Stop: true, Reason: ReasonEntitySaturation}
	case m.NewFactsRatio < t.MinNewFactsRatio:
		return Decision{Stop: true, Reason: ReasonFactSaturation}
	case m.SourceCoverage > t.MaxSourceCoverage:
		return Decision{Stop: true, Reason: ReasonSourceCoverage}
	case m.CitationCircularity > t.MaxCircularity:
		return Decision{Stop: true, Reason: ReasonCircularity}
	default:
		return Decision{Stop: false, Reason: ReasonNotSaturated}
	}
}

// ratio divides numerator by denominator with the denominator floored
// at 1
func ratio(numerator, denominator int) float64 {
	if denominator < 1 {
		denominator = 1
	}
	return float64(numerator) / float64(denominator)
}
