package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

type stubLLM struct {
	name     string
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Name() string { return s.name }
func (s *stubLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.prompts = append(s.prompts, req.Prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}
func (s *stubLLM) IsAvailable(ctx context.Context) bool { return true }

func testState() *model.CycleState {
	state := model.NewCycleState("test-session", "history of quantum computing", "technical", 5)
	state.Cycle = 2
	state.SourcesQueried = []string{"arxiv", "tavily"}
	state.StopReason = "fact saturation"
	state.Facts = []model.Claim{
		model.NewClaim("Quantum computing was proposed by Richard Feynman in 1982.", []string{"arxiv", "tavily"}, 0.5),
		model.NewClaim("Shor's algorithm was published in 1994.", []string{"arxiv"}, 0.5),
	}
	return state
}

func TestSynthesize_WithProvider(t *testing.T) {
	provider := &stubLLM{name: "openai", response: "## Summary\nQuantum computing began in 1982."}
	synthesizer := NewSynthesizer(provider)

	report, err := synthesizer.Synthesize(context.Background(), testState(), nil, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if report.Synthesizer != "openai" {
		t.Errorf("Expected synthesizer openai, got %s", report.Synthesizer)
	}
	if report.SummaryMD != provider.response {
		t.Error("Expected provider response as summary")
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("Expected one completion call, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "Richard Feynman") {
		t.Error("Prompt should include the accumulated findings")
	}
}

func TestSynthesize_NilProviderRendersDigest(t *testing.T) {
	synthesizer := NewSynthesizer(nil)

	report, err := synthesizer.Synthesize(context.Background(), testState(), nil, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if report.Synthesizer != "fallback" {
		t.Errorf("Expected fallback synthesizer, got %s", report.Synthesizer)
	}
	if !strings.Contains(report.SummaryMD, "# Research Report") {
		t.Error("Digest should carry the report heading")
	}
	if !strings.Contains(report.SummaryMD, "Richard Feynman") {
		t.Error("Digest should list the findings")
	}
	if !strings.Contains(report.SummaryMD, "fact saturation") {
		t.Error("Digest should state why the session stopped")
	}
}

func TestSynthesize_ProviderFailureDegradesToDigest(t *testing.T) {
	provider := &stubLLM{name: "openai", err: errors.New("rate limited")}
	synthesizer := NewSynthesizer(provider)

	report, err := synthesizer.Synthesize(context.Background(), testState(), nil, nil)
	if err != nil {
		t.Fatalf("Synthesis must not fail when the LLM does: %v", err)
	}
	if report.Synthesizer != "fallback" {
		t.Errorf("Expected degraded fallback, got %s", report.Synthesizer)
	}
	if report.SummaryMD == "" {
		t.Error("Degraded report still needs a summary")
	}
}

func TestSynthesize_ContradictionsInDigest(t *testing.T) {
	synthesizer := NewSynthesizer(nil)
	contradictions := []model.Contradiction{
		{
			Type:       model.ConflictYear,
			StatementA: "Founded in 1976.",
			StatementB: "Founded in 1980.",
			ValueA:     "1976",
			ValueB:     "1980",
		},
	}

	report, err := synthesizer.Synthesize(context.Background(), testState(), contradictions, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if !strings.Contains(report.SummaryMD, "## Contradictions") {
		t.Error("Digest should carry a contradictions section")
	}
	if !strings.Contains(report.SummaryMD, "1976") || !strings.Contains(report.SummaryMD, "1980") {
		t.Error("Digest should show both conflicting values")
	}
}

func TestBuildPrompt_OrderedByConfidence(t *testing.T) {
	state := testState()
	scores := []model.CompositeConfidence{
		{Composite: 0.3},
		{Composite: 0.9},
	}

	synthesizer := NewSynthesizer(&stubLLM{name: "openai", response: "ok"})
	if _, err := synthesizer.Synthesize(context.Background(), state, nil, scores); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	prompt := synthesizer.provider.(*stubLLM).prompts[0]
	shor := strings.Index(prompt, "Shor's algorithm")
	feynman := strings.Index(prompt, "Richard Feynman")
	if shor < 0 || feynman < 0 {
		t.Fatal("Both findings should appear in the prompt")
	}
	if shor > feynman {
		t.Error("Higher-confidence finding should come first")
	}
}

func TestClarifier_Refine(t *testing.T) {
	provider := &stubLLM{name: "openai", response: "timeline of quantum computing milestones 1980-2025"}
	clarifier := NewClarifier(provider)

	refined, err := clarifier.Refine(context.Background(), "quantum computing", "technical")
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if refined != provider.response {
		t.Errorf("Expected refined query, got %q", refined)
	}
}

func TestClarifier_NilProviderPassesThrough(t *testing.T) {
	clarifier := NewClarifier(nil)

	refined, err := clarifier.Refine(context.Background(), "quantum computing", "technical")
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if refined != "quantum computing" {
		t.Errorf("Expected original query unchanged, got %q", refined)
	}
}

func TestClarifier_ErrorReturnsOriginal(t *testing.T) {
	clarifier := NewClarifier(&stubLLM{name: "openai", err: errors.New("timeout")})

	refined, _ := clarifier.Refine(context.Background(), "quantum computing", "technical")
	if refined != "quantum computing" {
		t.Errorf("Expected original query on provider error, got %q", refined)
	}
}
