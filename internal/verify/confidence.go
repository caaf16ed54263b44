package verify

import (
	"fmt"
	"math"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

// Composite weighting: verification history counts for slightly more
// than raw source pedigree
const (
	sourceWeight       = 0.4
	verificationWeight = 0.6
)

// Scorer computes composite confidence for claims. All methods are pure
// and total: every input yields a result, never an error.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// SourceConfidence scores a claim's support from source quality alone:
// mean credibility plus a peer-review bonus and a logarithmic
// source-count bonus, capped at 1.0. An empty source list yields 0.0.
func (s *Scorer) SourceConfidence(sources []string) float64 {
	if len(sources) == 0 {
		return 0.0
	}

	var credibilitySum float64
	peerReviewed := 0
	for _, name := range sources {
		q := SourceQuality(name)
		credibilitySum += q.Credibility
		if q.PeerReviewed {
			peerReviewed++
		}
	}

	mean := credibilitySum / float64(len(sources))
	peerBonus := math.Min(0.2, 0.05*float64(peerReviewed))
	countBonus := math.Min(0.3, 0.1*math.Log2(float64(len(sources))+1))

	return math.Min(1.0, mean+peerBonus+countBonus)
}

// VerificationConfidence scores a claim from its own verification
// history: its existing confidence, a verified bonus, and a penalty per
// recorded contradiction. Result is floored at 0.1.
func (s *Scorer) VerificationConfidence(claim model.Claim) float64 {
	confidence := claim.Confidence

	if claim.Verified {
		confidence = math.Min(1.0, confidence+0.15)
	}

	penalty := math.Min(0.5, 0.15*float64(len(claim.Contradictions)))
	confidence -= penalty

	return math.Max(0.1, confidence)
}

// AgreementScore measures corroboration across a claim's sources:
// 0.3 for a single source, growing logarithmically with more, +0.1 if
// verified, -0.3 if contradicted, bounded to [0.1, 1.0].
func (s *Scorer) AgreementScore(claim model.Claim) float64 {
	n := len(claim.Sources)

	var score float64
	switch {
	case n <= 1:
		score = 0.3
	default:
		score = math.Min(1.0, 0.3+0.35*math.Log2(float64(n)))
	}

	if claim.Verified {
		score = math.Min(1.0, score+0.1)
	}

	if len(claim.Contradictions) > 0 {
		score = math.Max(0.1, score-0.3)
	}

	return score
}

// Score computes the composite confidence for a claim along with a
// human-readable explanation of the inputs
func (s *Scorer) Score(claim model.Claim) model.CompositeConfidence {
	sourceConf := s.SourceConfidence(claim.Sources)
	verifConf := s.VerificationConfidence(claim)
	composite := sourceWeight*sourceConf + verificationWeight*verifConf

	peerReviewed := 0
	for _, name := range claim.Sources {
		if SourceQuality(name).PeerReviewed {
			peerReviewed++
		}
	}

	verifiedLabel := "unverified"
	if claim.Verified {
		verifiedLabel = "verified"
	}

	explanation := fmt.Sprintf(
		"%d source(s), %d peer-reviewed; %s; %d contradiction(s); source confidence %.2f, verification confidence %.2f",
		len(claim.Sources), peerReviewed, verifiedLabel, len(claim.Contradictions), sourceConf, verifConf,
	)

	return model.CompositeConfidence{
		SourceConfidence:       sourceConf,
		VerificationConfidence: verifConf,
		Composite:              composite,
		Explanation:            explanation,
	}
}

// ScoreAll scores every claim, preserving order
func (s *Scorer) ScoreAll(claims []model.Claim) []model.CompositeConfidence {
	scores := make([]model.CompositeConfidence, len(claims))
	for i, claim := range claims {
		scores[i] = s.Score(claim)
	}
	return scores
}
