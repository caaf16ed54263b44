package controller

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/extract"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/llm"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/saturation"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/selector"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/source"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/verify"
)

func newTestDeps(sessions SessionStore, providers ...source.Provider) Deps {
	registry := source.NewRegistry(providers...)
	return Deps{
		Selector:    selector.NewSelector(selector.NewLedger(nil, 0.3, 0.5, time.Minute)),
		Registry:    registry,
		Fanout:      source.NewFanout(registry, source.NewLimiter(1000, 100), zap.NewNop()),
		Engine:      verify.NewEngine(model.VerifyConfig{JaccardThreshold: 0.3, AmountRelativeDelta: 0.2}),
		Thresholds:  saturation.DefaultThresholds(),
		Extractor:   extract.NewExtractor(),
		Synthesizer: llm.NewSynthesizer(nil),
		Sessions:    sessions,
		Config:      model.ResearchConfig{MaxCycles: 10, MaxSources: 2, MaxResultsPerQuery: 10},
		Logger:      zap.NewNop(),
	}
}

func TestRegistry_StartAndWait(t *testing.T) {
	deps := newTestDeps(&memSessions{},
		&stubSearch{name: "tavily", snippet: testSnippet},
		&stubSearch{name: "exa", snippet: testSnippet},
		&stubSearch{name: "brave", snippet: testSnippet},
	)
	registry := NewRegistry(deps)

	id := registry.Start(context.Background(), "transformer architecture", "general", 0)
	if id == "" {
		t.Fatal("Expected a session id")
	}

	report, err := registry.Wait(id)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if report == nil {
		t.Fatal("Expected a report")
	}
	if report.SessionID != id {
		t.Errorf("Report session id %s does not match %s", report.SessionID, id)
	}

	status, ok := registry.Status(id)
	if !ok {
		t.Fatal("Expected status for a finished session")
	}
	if !status.Done {
		t.Error("Expected done status after Wait")
	}
	if status.Phase != model.PhaseDone {
		t.Errorf("Expected phase done, got %s", status.Phase)
	}
}

func TestRegistry_ReportBeforeDone(t *testing.T) {
	deps := newTestDeps(&memSessions{}, &stubSearch{name: "tavily", snippet: testSnippet})
	registry := NewRegistry(deps)

	if _, ok := registry.Report("nope"); ok {
		t.Error("Expected no report for an unknown session")
	}

	id := registry.Start(context.Background(), "transformer architecture", "general", 0)
	registry.Wait(id)

	if _, ok := registry.Report(id); !ok {
		t.Error("Expected report after completion")
	}
}

func TestRegistry_RequestStopUnknownSession(t *testing.T) {
	registry := NewRegistry(newTestDeps(&memSessions{}, &stubSearch{name: "tavily"}))

	if registry.RequestStop("nope") {
		t.Error("Expected false for unknown session")
	}
}

func TestRegistry_ResumeMissingCheckpoint(t *testing.T) {
	registry := NewRegistry(newTestDeps(&memSessions{}, &stubSearch{name: "tavily"}))

	if err := registry.Resume(context.Background(), "missing"); err == nil {
		t.Error("Expected error resuming without a checkpoint")
	}
}
