package model

// Claim represents one factual assertion extracted from collected material
type Claim struct {
	Statement      string   `json:"statement"`                // The assertion text itself
	Sources        []string `json:"sources"`                  // Supporting source names (deduplicated)
	Confidence     float64  `json:"confidence"`               // Always clamped to [0,1]
	Verified       bool     `json:"verified"`                 // Whether the claim survived cross-checking
	Contradictions []string `json:"contradictions,omitempty"` // Statements this claim conflicts with
	Entities       []string `json:"entities,omitempty"`       // Named entities mentioned in the statement
}

// NewClaim creates a claim with deduplicated sources and clamped confidence
func NewClaim(statement string, sources []string, confidence float64) Claim {
	return Claim{
		Statement:  statement,
		Sources:    dedupeSources(sources),
		Confidence: clamp01(confidence),
	}
}

// AddSource appends a supporting source if not already present
func (c *Claim) AddSource(source string) {
	for _, s := range c.Sources {
		if s == source {
			return
		}
	}
	c.Sources = append(c.Sources, source)
}

// SourceQuality is the static or derived quality profile of a source
type SourceQuality struct {
	Name         string  `json:"name"`
	Credibility  float64 `json:"credibility"` // [0,1]
	PeerReviewed bool    `json:"peer_reviewed"`
	Primary      bool    `json:"primary"` // Primary (first-hand) source
}

// CompositeConfidence is the output of scoring a claim
type CompositeConfidence struct {
	SourceConfidence       float64 `json:"source_confidence"`
	VerificationConfidence float64 `json:"verification_confidence"`
	Composite              float64 `json:"composite"`
	Explanation            string  `json:"explanation"`
}

// ConflictType classifies what kind of value two claims disagree on
type ConflictType string

const (
	ConflictYear   ConflictType = "year"
	ConflictAmount ConflictType = "amount"
)

// Contradiction records a detected conflict between two claims about the
// same subject, sourced differently
type Contradiction struct {
	StatementA string       `json:"statement_a"`
	StatementB string       `json:"statement_b"`
	SourcesA   []string     `json:"sources_a"`
	SourcesB   []string     `json:"sources_b"`
	Type       ConflictType `json:"type"`
	ValueA     string       `json:"value_a"`
	ValueB     string       `json:"value_b"`
}

func dedupeSources(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	var unique []string
	for _, s := range sources {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	return unique
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
