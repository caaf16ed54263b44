package verify

import "github.com/memouritsen-ui/solid-robot-sub000/internal/model"

// Engine bundles contradiction detection and confidence scoring into the
// single analysis pass the research controller runs per cycle
type Engine struct {
	detector *Detector
	scorer   *Scorer
}

// NewEngine creates an engine with the given detection thresholds
func NewEngine(cfg model.VerifyConfig) *Engine {
	return &Engine{
		detector: NewDetector(cfg.JaccardThreshold, cfg.AmountRelativeDelta),
		scorer:   NewScorer(),
	}
}

// Analysis is the result of one verification pass over accumulated claims
type Analysis struct {
	Claims         []model.Claim // Input claims annotated with contradiction refs
	Contradictions []model.Contradiction
	Scores         []model.CompositeConfidence // Parallel to Claims
}

// Analyze detects contradictions across all claims, annotates them, and
// scores composite confidence for each. Input claims are not mutated;
// re-scoring produces new records.
func (e *Engine) Analyze(claims []model.Claim) Analysis {
	contradictions := e.detector.Detect(claims)
	annotated := e.detector.Annotate(claims, contradictions)

	return Analysis{
		Claims:         annotated,
		Contradictions: contradictions,
		Scores:         e.scorer.ScoreAll(annotated),
	}
}

// SourceAverages returns the mean composite confidence of the claims
// each source supported. Sources supporting no claims are absent.
// Feeds the post-session effectiveness update.
func (a Analysis) SourceAverages() map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for i, claim := range a.Claims {
		for _, source := range claim.Sources {
			sums[source] += a.Scores[i].Composite
			counts[source]++
		}
	}

	averages := make(map[string]float64, len(sums))
	for source, sum := range sums {
		averages[source] = sum / float64(counts[source])
	}
	return averages
}
