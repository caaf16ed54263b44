package model

import "time"

// Phase identifies one stage of the research cycle state machine
type Phase string

const (
	PhaseClarify    Phase = "clarify"
	PhasePlan       Phase = "plan"
	PhaseCollect    Phase = "collect"
	PhaseProcess    Phase = "process"
	PhaseAnalyze    Phase = "analyze"
	PhaseEvaluate   Phase = "evaluate"
	PhaseSynthesize Phase = "synthesize"
	PhaseExport     Phase = "export"
	PhaseDone       Phase = "done"
)

// AccessFailure records a source that errored, timed out, or was
// unavailable during a collect cycle
type AccessFailure struct {
	Source string    `json:"source"`
	Cycle  int       `json:"cycle"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// SaturationMetrics is the per-cycle progress snapshot used by the
// saturation decision; every ratio lies in [0,1]
type SaturationMetrics struct {
	NewEntitiesRatio    float64 `json:"new_entities_ratio"`
	NewFactsRatio       float64 `json:"new_facts_ratio"`
	CitationCircularity float64 `json:"citation_circularity"`
	SourceCoverage      float64 `json:"source_coverage"`
}

// CycleState is the resumable state of one research session.
// The accumulated lists are append-only within a session; phase
// transitions are one-directional except the single Evaluate->Collect
// loop-back edge.
type CycleState struct {
	SessionID    string `json:"session_id"`
	Query        string `json:"query"`
	RefinedQuery string `json:"refined_query,omitempty"`
	Domain       string `json:"domain"`
	PrivacyMode  bool   `json:"privacy_mode"`
	MaxSources   int    `json:"max_sources"`

	Cycle          int             `json:"cycle"`
	SourcesQueried []string        `json:"sources_queried"`
	Entities       []string        `json:"entities"`
	Facts          []Claim         `json:"facts"`
	AccessFailures []AccessFailure `json:"access_failures"`

	// Saturation baseline, checkpointed so a resumed session keeps
	// comparing against its own history
	TotalCitations    int `json:"total_citations"`
	CircularCitations int `json:"circular_citations"`
	PrevEntities      int `json:"prev_entities"`
	PrevFacts         int `json:"prev_facts"`

	Phase      Phase             `json:"phase"`
	Metrics    SaturationMetrics `json:"metrics"`
	StopFlag   bool              `json:"stop_flag"`
	StopReason string            `json:"stop_reason,omitempty"`

	ReportRef  string    `json:"report_ref,omitempty"`
	ExportPath string    `json:"export_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCycleState creates the initial state for a session
func NewCycleState(sessionID, query, domain string, maxSources int) *CycleState {
	now := time.Now().UTC()
	return &CycleState{
		SessionID:  sessionID,
		Query:      query,
		Domain:     domain,
		MaxSources: maxSources,
		Phase:      PhaseClarify,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// EffectiveQuery returns the refined query if clarification produced one,
// otherwise the original query
func (s *CycleState) EffectiveQuery() string {
	if s.RefinedQuery != "" {
		return s.RefinedQuery
	}
	return s.Query
}

// AddEntities appends entities not already accumulated and returns how
// many were new
func (s *CycleState) AddEntities(entities []string) int {
	seen := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		seen[e] = true
	}
	added := 0
	for _, e := range entities {
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		s.Entities = append(s.Entities, e)
		added++
	}
	return added
}

// AddFacts appends claims whose statements are not already accumulated
// and returns how many were new
func (s *CycleState) AddFacts(facts []Claim) int {
	seen := make(map[string]bool, len(s.Facts))
	for _, f := range s.Facts {
		seen[f.Statement] = true
	}
	added := 0
	for _, f := range facts {
		if f.Statement == "" || seen[f.Statement] {
			continue
		}
		seen[f.Statement] = true
		s.Facts = append(s.Facts, f)
		added++
	}
	return added
}

// Report is the synthesized output of a completed session
type Report struct {
	SessionID      string                `json:"session_id"`
	Query          string                `json:"query"`
	Domain         string                `json:"domain"`
	GeneratedAt    time.Time             `json:"generated_at"`
	Cycles         int                   `json:"cycles"`
	SourcesQueried []string              `json:"sources_queried"`
	Facts          []Claim               `json:"facts"`
	Scores         []CompositeConfidence `json:"scores,omitempty"`
	Contradictions []Contradiction       `json:"contradictions,omitempty"`
	StopReason     string                `json:"stop_reason"`
	SummaryMD      string                `json:"summary_md,omitempty"`
	Synthesizer    string                `json:"synthesizer,omitempty"` // "openai", "fallback", ...
}
