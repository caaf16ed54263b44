package saturation

import (
	"testing"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

func TestComputeMetrics_GuardedDenominators(t *testing.T) {
	// All-zero counters must not divide by zero
	metrics := ComputeMetrics(Counts{})

	if metrics.NewEntitiesRatio != 0 || metrics.NewFactsRatio != 0 ||
		metrics.CitationCircularity != 0 || metrics.SourceCoverage != 0 {
		t.Errorf("Expected all-zero metrics for zero counts, got %+v", metrics)
	}
}

func TestComputeMetrics_Ratios(t *testing.T) {
	metrics := ComputeMetrics(Counts{
		EntitiesBefore:   8,
		EntitiesAfter:    10,
		FactsBefore:      15,
		FactsAfter:       20,
		CircularCited:    3,
		TotalCitations:   10,
		SourcesQueried:   4,
		SourcesAvailable: 5,
	})

	if metrics.NewEntitiesRatio != 0.2 {
		t.Errorf("NewEntitiesRatio = %f, want 0.2", metrics.NewEntitiesRatio)
	}
	if metrics.NewFactsRatio != 0.25 {
		t.Errorf("NewFactsRatio = %f, want 0.25", metrics.NewFactsRatio)
	}
	if metrics.CitationCircularity != 0.3 {
		t.Errorf("CitationCircularity = %f, want 0.3", metrics.CitationCircularity)
	}
	if metrics.SourceCoverage != 0.8 {
		t.Errorf("SourceCoverage = %f, want 0.8", metrics.SourceCoverage)
	}
}

func TestDecide_PriorityOrder(t *testing.T) {
	// Three later rules also qualify, but the first-priority rule wins
	metrics := model.SaturationMetrics{
		NewEntitiesRatio:    0.01,
		NewFactsRatio:       0.01,
		CitationCircularity: 0.90,
		SourceCoverage:      0.99,
	}

	decision := Decide(metrics, DefaultThresholds())
	if !decision.Stop {
		t.Fatal("Expected stop")
	}
	if decision.Reason != ReasonEntitySaturation {
		t.Errorf("Expected %q (first-priority rule), got %q", ReasonEntitySaturation, decision.Reason)
	}
}

func TestDecide_EachRule(t *testing.T) {
	healthy := model.SaturationMetrics{
		NewEntitiesRatio:    0.5,
		NewFactsRatio:       0.5,
		CitationCircularity: 0.1,
		SourceCoverage:      0.5,
	}

	tests := []struct {
		name   string
		mutate func(*model.SaturationMetrics)
		reason string
	}{
		{"entity saturation", func(m *model.SaturationMetrics) { m.NewEntitiesRatio = 0.01 }, ReasonEntitySaturation},
		{"fact saturation", func(m *model.SaturationMetrics) { m.NewFactsRatio = 0.01 }, ReasonFactSaturation},
		{"coverage exhausted", func(m *model.SaturationMetrics) { m.SourceCoverage = 0.99 }, ReasonSourceCoverage},
		{"circularity", func(m *model.SaturationMetrics) { m.CitationCircularity = 0.9 }, ReasonCircularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := healthy
			tt.mutate(&metrics)

			decision := Decide(metrics, DefaultThresholds())
			if !decision.Stop {
				t.Fatal("Expected stop")
			}
			if decision.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, decision.Reason)
			}
		})
	}
}

func TestDecide_BoundaryValuesContinue(t *testing.T) {
	// Values exactly at a threshold are boundary-inclusive on the
	// "keep going" side
	metrics := model.SaturationMetrics{
		NewEntitiesRatio:    0.05,
		NewFactsRatio:       0.05,
		CitationCircularity: 0.80,
		SourceCoverage:      0.95,
	}

	decision := Decide(metrics, DefaultThresholds())
	if decision.Stop {
		t.Errorf("Expected continue at exact thresholds, got stop with reason %q", decision.Reason)
	}
	if decision.Reason != ReasonNotSaturated {
		t.Errorf("Expected %q, got %q", ReasonNotSaturated, decision.Reason)
	}
}

func TestDecide_Continue(t *testing.T) {
	metrics := model.SaturationMetrics{
		NewEntitiesRatio:    0.4,
		NewFactsRatio:       0.3,
		CitationCircularity: 0.2,
		SourceCoverage:      0.6,
	}

	decision := Decide(metrics, DefaultThresholds())
	if decision.Stop {
		t.Error("Expected continue for healthy metrics")
	}
}

func TestThresholdsFromConfig(t *testing.T) {
	cfg := model.SaturationConfig{MinNewEntitiesRatio: 0.1}

	thresholds := ThresholdsFromConfig(cfg)
	if thresholds.MinNewEntitiesRatio != 0.1 {
		t.Errorf("Expected configured 0.1, got %f", thresholds.MinNewEntitiesRatio)
	}
	// Unset values fall back to defaults
	if thresholds.MaxCircularity != 0.80 {
		t.Errorf("Expected default 0.80, got %f", thresholds.MaxCircularity)
	}
}
