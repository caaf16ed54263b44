package verify

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

var (
	yearPattern   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	amountPattern = regexp.MustCompile(`[$€£¥]?\s?(\d+(?:[.,]\d+)?)\s*(%|percent\b|thousand\b|million\b|billion\b|bn\b|[kmb]\b)?`)
)

// Words too common to indicate subject overlap
var stopWords = map[string]bool{
	"the": true, "and": true, "was": true, "were": true, "are": true,
	"for": true, "that": true, "this": true, "with": true, "from": true,
	"has": true, "had": true, "have": true, "its": true, "but": true,
	"not": true, "can": true, "will": true, "would": true, "been": true,
	"which": true, "their": true, "they": true, "also": true, "into": true,
	"about": true, "than": true, "then": true, "when": true, "where": true,
	"who": true, "what": true, "more": true, "most": true, "some": true,
	"such": true, "other": true, "these": true, "those": true, "there": true,
}

// Detector finds factual conflicts between claims from different sources
type Detector struct {
	// JaccardThreshold is the minimum word-overlap ratio for two claims
	// to be judged "same subject". Heuristic, tunable.
	JaccardThreshold float64

	// AmountRelativeDelta is the minimum relative difference between two
	// extracted amounts to count as a conflict. Heuristic, tunable.
	AmountRelativeDelta float64
}

// NewDetector creates a detector with the given thresholds; zero values
// fall back to the defaults from DefaultConfig
func NewDetector(jaccardThreshold, amountRelativeDelta float64) *Detector {
	if jaccardThreshold <= 0 {
		jaccardThreshold = 0.3
	}
	if amountRelativeDelta <= 0 {
		amountRelativeDelta = 0.2
	}
	return &Detector{
		JaccardThreshold:    jaccardThreshold,
		AmountRelativeDelta: amountRelativeDelta,
	}
}

// Detect examines every unordered pair of claims from different sources
// and records year and amount conflicts between claims about the same
// subject. It never fails: malformed numeric text skips that pair only.
func (d *Detector) Detect(claims []model.Claim) []model.Contradiction {
	var found []model.Contradiction

	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			a, b := claims[i], claims[j]

			// Only cross-source pairs can contradict
			if !differentSources(a.Sources, b.Sources) {
				continue
			}

			if !d.sameSubject(a.Statement, b.Statement) {
				continue
			}

			if c, ok := detectYearConflict(a, b); ok {
				found = append(found, c)
			}
			if c, ok := d.detectAmountConflict(a, b); ok {
				found = append(found, c)
			}
		}
	}

	return found
}

// Annotate marks each claim with the statements it conflicts with,
// returning a new slice; input claims are not mutated.
func (d *Detector) Annotate(claims []model.Claim, contradictions []model.Contradiction) []model.Claim {
	conflictsFor := make(map[string][]string)
	for _, c := range contradictions {
		conflictsFor[c.StatementA] = append(conflictsFor[c.StatementA], c.StatementB)
		conflictsFor[c.StatementB] = append(conflictsFor[c.StatementB], c.StatementA)
	}

	annotated := make([]model.Claim, len(claims))
	for i, claim := range claims {
		annotated[i] = claim
		if refs, ok := conflictsFor[claim.Statement]; ok {
			annotated[i].Contradictions = refs
		}
	}
	return annotated
}

// sameSubject judges whether two statements discuss the same subject via
// Jaccard similarity of their significant words
func (d *Detector) sameSubject(a, b string) bool {
	wordsA := significantWords(a)
	wordsB := significantWords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection)/float64(union) > d.JaccardThreshold
}

// significantWords lowercases, strips punctuation, and drops stop-words
// and words of two characters or fewer
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		w := strings.Trim(raw, ".,;:!?()[]{}\"'")
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		words[w] = true
	}
	return words
}

// detectYearConflict reports a conflict when both claims mention years
// and the year sets differ
func detectYearConflict(a, b model.Claim) (model.Contradiction, bool) {
	yearsA := yearPattern.FindAllString(a.Statement, -1)
	yearsB := yearPattern.FindAllString(b.Statement, -1)
	if len(yearsA) == 0 || len(yearsB) == 0 {
		return model.Contradiction{}, false
	}

	if sameStringSet(yearsA, yearsB) {
		return model.Contradiction{}, false
	}

	return model.Contradiction{
		StatementA: a.Statement,
		StatementB: b.Statement,
		SourcesA:   a.Sources,
		SourcesB:   b.Sources,
		Type:       model.ConflictYear,
		ValueA:     strings.Join(yearsA, ","),
		ValueB:     strings.Join(yearsB, ","),
	}, true
}

// detectAmountConflict reports a conflict when the first extracted
// amounts differ by more than the relative-delta threshold
func (d *Detector) detectAmountConflict(a, b model.Claim) (model.Contradiction, bool) {
	amountA, textA, okA := firstAmount(a.Statement)
	amountB, textB, okB := firstAmount(b.Statement)
	if !okA || !okB {
		return model.Contradiction{}, false
	}

	larger := math.Max(amountA, amountB)
	if larger == 0 {
		return model.Contradiction{}, false
	}

	if math.Abs(amountA-amountB)/larger <= d.AmountRelativeDelta {
		return model.Contradiction{}, false
	}

	return model.Contradiction{
		StatementA: a.Statement,
		StatementB: b.Statement,
		SourcesA:   a.Sources,
		SourcesB:   b.Sources,
		Type:       model.ConflictAmount,
		ValueA:     textA,
		ValueB:     textB,
	}, true
}

// firstAmount extracts the first numeric amount from a statement,
// normalizing magnitude suffixes. Years are ignored so "founded in 1976"
// does not read as an amount of 1976.
func firstAmount(statement string) (float64, string, bool) {
	for _, match := range amountPattern.FindAllStringSubmatch(statement, -1) {
		if yearPattern.MatchString(match[1]) {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			// Malformed numeric text: skip silently, not fatal
			continue
		}

		switch strings.ToLower(match[2]) {
		case "thousand", "k":
			value *= 1e3
		case "million", "m":
			value *= 1e6
		case "billion", "bn", "b":
			value *= 1e9
		}

		return value, strings.TrimSpace(match[0]), true
	}
	return 0, "", false
}

// differentSources reports whether the two source lists differ in at
// least one member
func differentSources(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return !sameStringSet(a, b)
}

func sameStringSet(a, b []string) bool {
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for s := range setA {
		if !setB[s] {
			return false
		}
	}
	return true
}
