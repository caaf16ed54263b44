package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

// Synthesizer turns a finished session state into a report. With an LLM
// provider it writes a narrative summary; without one it renders a
// deterministic markdown digest, so synthesis always succeeds.
type Synthesizer struct {
	provider Provider // nil when LLM is disabled
}

// NewSynthesizer creates a synthesizer; provider may be nil
func NewSynthesizer(provider Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize builds the final report from session state, contradictions,
// and per-claim scores
func (s *Synthesizer) Synthesize(ctx context.Context, state *model.CycleState, contradictions []model.Contradiction, scores []model.CompositeConfidence) (*model.Report, error) {
	report := &model.Report{
		SessionID:      state.SessionID,
		Query:          state.EffectiveQuery(),
		Domain:         state.Domain,
		GeneratedAt:    time.Now().UTC(),
		Cycles:         state.Cycle,
		SourcesQueried: state.SourcesQueried,
		Facts:          state.Facts,
		Scores:         scores,
		Contradictions: contradictions,
		StopReason:     state.StopReason,
	}

	if s.provider != nil {
		summary, err := s.provider.Complete(ctx, CompletionRequest{
			System: "You are a research assistant. Summarize the verified findings below into a concise report. Cite only the listed sources; never introduce facts that are not in the findings.",
			Prompt: buildPrompt(report),
		})
		if err == nil {
			report.SummaryMD = summary
			report.Synthesizer = s.provider.Name()
			return report, nil
		}
		// LLM failure degrades to the deterministic digest, never fatal
	}

	report.SummaryMD = renderDigest(report)
	report.Synthesizer = "fallback"
	return report, nil
}

// buildPrompt lays out the findings for the LLM, highest confidence first
func buildPrompt(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Research query: %s\nDomain: %s\nCycles run: %d\nStop reason: %s\n\nFindings:\n",
		report.Query, report.Domain, report.Cycles, report.StopReason)

	type scored struct {
		claim model.Claim
		score float64
	}
	items := make([]scored, len(report.Facts))
	for i, fact := range report.Facts {
		items[i] = scored{claim: fact}
		if i < len(report.Scores) {
			items[i].score = report.Scores[i].Composite
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	for _, item := range items {
		fmt.Fprintf(&b, "- [confidence %.2f] %s (sources: %s)\n",
			item.score, item.claim.Statement, strings.Join(item.claim.Sources, ", "))
	}

	if len(report.Contradictions) > 0 {
		b.WriteString("\nUnresolved contradictions:\n")
		for _, c := range report.Contradictions {
			fmt.Fprintf(&b, "- %s conflict: %q vs %q\n", c.Type, c.ValueA, c.ValueB)
		}
	}

	return b.String()
}

// renderDigest produces the deterministic markdown report used when no
// LLM is configured or the call fails
func renderDigest(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Report: %s\n\n", report.Query)
	fmt.Fprintf(&b, "- Domain: %s\n- Cycles: %d\n- Sources queried: %s\n- Stopped: %s\n\n",
		report.Domain, report.Cycles, strings.Join(report.SourcesQueried, ", "), report.StopReason)

	b.WriteString("## Findings\n\n")
	for i, fact := range report.Facts {
		confidence := fact.Confidence
		explanation := ""
		if i < len(report.Scores) {
			confidence = report.Scores[i].Composite
			explanation = report.Scores[i].Explanation
		}
		fmt.Fprintf(&b, "%d. %s\n   - confidence: %.2f\n   - sources: %s\n",
			i+1, fact.Statement, confidence, strings.Join(fact.Sources, ", "))
		if explanation != "" {
			fmt.Fprintf(&b, "   - scoring: %s\n", explanation)
		}
	}

	if len(report.Contradictions) > 0 {
		b.WriteString("\n## Contradictions\n\n")
		for _, c := range report.Contradictions {
			fmt.Fprintf(&b, "- %s conflict (%q vs %q):\n  - %s\n  - %s\n",
				c.Type, c.ValueA, c.ValueB, c.StatementA, c.StatementB)
		}
	}

	return b.String()
}

// Clarifier refines a research query before planning begins
type Clarifier struct {
	provider Provider // nil disables refinement
}

// NewClarifier creates a clarifier; provider may be nil
func NewClarifier(provider Provider) *Clarifier {
	return &Clarifier{provider: provider}
}

// Refine asks the provider to sharpen an ambiguous query. With no
// provider, or on any error, the original query comes back unchanged:
// clarification is best-effort.
func (c *Clarifier) Refine(ctx context.Context, query, domain string) (string, error) {
	if c.provider == nil {
		return query, nil
	}

	refined, err := c.provider.Complete(ctx, CompletionRequest{
		System:    "You refine research queries. Respond with a single improved query and nothing else.",
		Prompt:    fmt.Sprintf("Domain: %s\nQuery: %s\n\nRewrite the query to be specific and searchable.", domain, query),
		MaxTokens: 100,
	})
	if err != nil || refined == "" {
		return query, err
	}
	return refined, nil
}
