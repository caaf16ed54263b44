// Package selector ranks information sources per topic domain, weighting
// static domain policy by learned per-domain effectiveness.
package selector

import "sort"

// Selector produces ranked source lists for a domain
type Selector struct {
	ledger *Ledger
}

// NewSelector creates a selector over the given effectiveness ledger
func NewSelector(ledger *Ledger) *Selector {
	return &Selector{ledger: ledger}
}

// RankedSource is one candidate with its selection score
type RankedSource struct {
	Name          string
	Score         float64 // priorityWeight * effectiveness
	Priority      float64
	Effectiveness float64
}

// Select ranks the candidate sources for a domain. Sources in the
// domain's excluded list or in knownFailures are removed before scoring.
// Result is sorted descending by score, ties broken by the domain's
// original priority order. Never fails.
func (s *Selector) Select(domain string, candidates []string, knownFailures map[string]bool) []RankedSource {
	cfg := ConfigForDomain(domain)

	var ranked []RankedSource
	for _, name := range candidates {
		if excluded(cfg, name) || knownFailures[name] {
			continue
		}

		priority := priorityWeight(cfg, name)
		effectiveness := s.ledger.Score(name, cfg.Name)
		ranked = append(ranked, RankedSource{
			Name:          name,
			Score:         priority * effectiveness,
			Priority:      priority,
			Effectiveness: effectiveness,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return priorityRank(cfg, ranked[i].Name) < priorityRank(cfg, ranked[j].Name)
	})

	return ranked
}

// SelectNames is Select reduced to the ordered source names, capped at
// max when max > 0
func (s *Selector) SelectNames(domain string, candidates []string, knownFailures map[string]bool, max int) []string {
	ranked := s.Select(domain, candidates, knownFailures)
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		if max > 0 && len(names) >= max {
			break
		}
		names = append(names, r.Name)
	}
	return names
}

// ShouldUseSource reports whether a source is worth querying in a
// domain, delegating to the ledger's threshold rule
func (s *Selector) ShouldUseSource(source, domain string, threshold float64) bool {
	return s.ledger.ShouldUse(source, domain, threshold)
}

// Ledger exposes the underlying effectiveness ledger for post-session
// learning updates
func (s *Selector) Ledger() *Ledger {
	return s.ledger
}
