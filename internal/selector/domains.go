package selector

import (
	"sort"
	"strings"
)

// DomainConfig is the per-topic-domain source policy
type DomainConfig struct {
	Name                  string   `json:"name" yaml:"name"`
	PrimarySources        []string `json:"primary_sources" yaml:"primary_sources"`
	SecondarySources      []string `json:"secondary_sources" yaml:"secondary_sources"`
	ExcludedSources       []string `json:"excluded_sources" yaml:"excluded_sources"`
	RequireAcademic       bool     `json:"require_academic" yaml:"require_academic"`
	VerificationThreshold float64  `json:"verification_threshold" yaml:"verification_threshold"`
}

// Priority weights by list membership
const (
	primaryWeight   = 1.0
	secondaryWeight = 0.6
	defaultWeight   = 0.3
)

// Built-in domain policies. Unknown domains fall back to "general".
var domainConfigs = map[string]DomainConfig{
	"medical": {
		Name:                  "medical",
		PrimarySources:        []string{"pubmed", "semantic-scholar", "unpaywall"},
		SecondarySources:      []string{"arxiv", "exa"},
		ExcludedSources:       []string{"crawler"},
		RequireAcademic:       true,
		VerificationThreshold: 0.7,
	},
	"academic": {
		Name:                  "academic",
		PrimarySources:        []string{"semantic-scholar", "arxiv", "unpaywall"},
		SecondarySources:      []string{"pubmed", "exa"},
		RequireAcademic:       true,
		VerificationThreshold: 0.6,
	},
	"technical": {
		Name:                  "technical",
		PrimarySources:        []string{"exa", "tavily"},
		SecondarySources:      []string{"arxiv", "brave", "crawler"},
		VerificationThreshold: 0.5,
	},
	"competitive_intelligence": {
		Name:                  "competitive_intelligence",
		PrimarySources:        []string{"tavily", "exa", "brave"},
		SecondarySources:      []string{"crawler"},
		VerificationThreshold: 0.5,
	},
	"news": {
		Name:                  "news",
		PrimarySources:        []string{"brave", "tavily"},
		SecondarySources:      []string{"exa", "crawler"},
		VerificationThreshold: 0.5,
	},
	"general": {
		Name:                  "general",
		PrimarySources:        []string{"tavily", "exa"},
		SecondarySources:      []string{"brave", "semantic-scholar", "crawler"},
		VerificationThreshold: 0.5,
	},
}

// Keyword hints for detecting a topic domain from a query
var domainKeywords = map[string][]string{
	"medical":                  {"disease", "treatment", "clinical", "drug", "patient", "symptom", "therapy", "cancer", "vaccine", "diagnosis"},
	"academic":                 {"research", "study", "paper", "theory", "hypothesis", "peer-reviewed", "journal", "citation"},
	"technical":                {"software", "algorithm", "protocol", "framework", "api", "database", "programming", "architecture"},
	"competitive_intelligence": {"competitor", "market share", "pricing", "acquisition", "revenue", "startup", "funding", "industry"},
	"news":                     {"announced", "breaking", "today", "yesterday", "this week", "latest", "election", "report"},
}

// ConfigForDomain returns the policy for a domain, or the general policy
// for unknown domains. Never an error.
func ConfigForDomain(domain string) DomainConfig {
	if cfg, ok := domainConfigs[strings.ToLower(domain)]; ok {
		return cfg
	}
	return domainConfigs["general"]
}

// KnownDomains returns all domains with explicit policies
func KnownDomains() []string {
	names := make([]string, 0, len(domainConfigs))
	for name := range domainConfigs {
		names = append(names, name)
	}
	return names
}

// DetectDomain guesses a topic domain from query text by keyword hits;
// the domain with the most hits wins, defaulting to "general". Ties go
// to the alphabetically first domain so detection is stable.
func DetectDomain(query string) string {
	lower := strings.ToLower(query)

	domains := make([]string, 0, len(domainKeywords))
	for domain := range domainKeywords {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	best := "general"
	bestHits := 0
	for _, domain := range domains {
		hits := 0
		for _, kw := range domainKeywords[domain] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = domain
			bestHits = hits
		}
	}
	return best
}

// priorityWeight returns the selection weight for a source under a
// domain policy based on list membership
func priorityWeight(cfg DomainConfig, source string) float64 {
	for _, s := range cfg.PrimarySources {
		if s == source {
			return primaryWeight
		}
	}
	for _, s := range cfg.SecondarySources {
		if s == source {
			return secondaryWeight
		}
	}
	return defaultWeight
}

// priorityRank returns the position of a source in the domain's ordered
// primary-then-secondary listing; unlisted sources rank last. Used for
// tie-breaking.
func priorityRank(cfg DomainConfig, source string) int {
	rank := 0
	for _, s := range cfg.PrimarySources {
		if s == source {
			return rank
		}
		rank++
	}
	for _, s := range cfg.SecondarySources {
		if s == source {
			return rank
		}
		rank++
	}
	return rank + 1
}

// excluded reports whether the domain policy bans the source
func excluded(cfg DomainConfig, source string) bool {
	for _, s := range cfg.ExcludedSources {
		if s == source {
			return true
		}
	}
	return false
}
