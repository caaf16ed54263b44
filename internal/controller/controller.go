// Package controller drives the multi-cycle research state machine:
// clarify, plan, collect, process, analyze, evaluate, with a conditional
// loop back to collect until saturation, then synthesize and export.
package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/saturation"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/selector"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/source"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/verify"
)

// Extractor turns raw collect results into candidate claims
type Extractor interface {
	Extract(results []source.RawResult) []model.Claim
}

// Synthesizer builds the final report once stopping is decided
type Synthesizer interface {
	Synthesize(ctx context.Context, state *model.CycleState, contradictions []model.Contradiction, scores []model.CompositeConfidence) (*model.Report, error)
}

// Clarifier refines the research query during the clarify phase
type Clarifier interface {
	Refine(ctx context.Context, query, domain string) (string, error)
}

// Exporter writes the final report to the session's export path
type Exporter interface {
	Export(report *model.Report, path string) error
}

// SessionStore checkpoints session state at phase boundaries
type SessionStore interface {
	Save(state *model.CycleState) error
	Load(sessionID string) (*model.CycleState, bool, error)
}

// Controller runs one research session at a time over injected
// collaborators; it holds no global state
type Controller struct {
	selector    *selector.Selector
	registry    *source.Registry
	fanout      *source.Fanout
	engine      *verify.Engine
	thresholds  saturation.Thresholds
	extractor   Extractor
	synthesizer Synthesizer
	clarifier   Clarifier // May be nil: clarification is optional
	exporter    Exporter
	sessions    SessionStore
	cfg         model.ResearchConfig
	logger      *zap.Logger

	stopRequested atomic.Bool

	// Cycle-scoped working set, rebuilt each collect pass
	raw      []source.RawResult
	analysis verify.Analysis

	report *model.Report // Set by synthesize, consumed by export
}

// Deps bundles the collaborators a controller needs
type Deps struct {
	Selector    *selector.Selector
	Registry    *source.Registry
	Fanout      *source.Fanout
	Engine      *verify.Engine
	Thresholds  saturation.Thresholds
	Extractor   Extractor
	Synthesizer Synthesizer
	Clarifier   Clarifier
	Exporter    Exporter
	Sessions    SessionStore
	Config      model.ResearchConfig
	Logger      *zap.Logger
}

// New creates a controller from its dependencies
func New(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		selector:    deps.Selector,
		registry:    deps.Registry,
		fanout:      deps.Fanout,
		engine:      deps.Engine,
		thresholds:  deps.Thresholds,
		extractor:   deps.Extractor,
		synthesizer: deps.Synthesizer,
		clarifier:   deps.Clarifier,
		exporter:    deps.Exporter,
		sessions:    deps.Sessions,
		cfg:         deps.Config,
		logger:      logger,
	}
}

// RequestStop asks the session to stop. Cancellation is cooperative: the
// flag is consulted once per cycle, immediately after evaluate.
func (c *Controller) RequestStop() {
	c.stopRequested.Store(true)
}

// Run executes the session state machine from the state's current phase
// until done. Used both for fresh sessions and resumed checkpoints.
func (c *Controller) Run(ctx context.Context, state *model.CycleState) (*model.Report, error) {
	var report *model.Report

	for state.Phase != model.PhaseDone {
		next, r, err := c.step(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("phase %s: %w", state.Phase, err)
		}
		if r != nil {
			report = r
		}

		state.Phase = next
		state.UpdatedAt = time.Now().UTC()
		c.checkpoint(state)
	}

	return report, nil
}

// Resume reloads a checkpointed session and continues from its last
// completed phase
func (c *Controller) Resume(ctx context.Context, sessionID string) (*model.Report, error) {
	state, ok, err := c.sessions.Load(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !ok {
		return nil, fmt.Errorf("no checkpoint for session %s", sessionID)
	}

	c.logger.Info("resuming session",
		zap.String("session", sessionID),
		zap.String("phase", string(state.Phase)))

	// A session interrupted mid-collect restarts that collect pass; the
	// append-only state makes the retry idempotent enough
	return c.Run(ctx, state)
}

// step dispatches the current phase; it returns the next phase. The
// single conditional edge is evaluate, which branches on the saturation
// decision.
func (c *Controller) step(ctx context.Context, state *model.CycleState) (model.Phase, *model.Report, error) {
	switch state.Phase {
	case model.PhaseClarify:
		c.clarify(ctx, state)
		return model.PhasePlan, nil, nil

	case model.PhasePlan:
		c.plan(state)
		return model.PhaseCollect, nil, nil

	case model.PhaseCollect:
		c.collect(ctx, state)
		return model.PhaseProcess, nil, nil

	case model.PhaseProcess:
		c.process(state)
		return model.PhaseAnalyze, nil, nil

	case model.PhaseAnalyze:
		c.analyze(state)
		return model.PhaseEvaluate, nil, nil

	case model.PhaseEvaluate:
		if c.evaluate(state) {
			return model.PhaseSynthesize, nil, nil
		}
		return model.PhaseCollect, nil, nil

	case model.PhaseSynthesize:
		report, err := c.synthesize(ctx, state)
		if err != nil {
			return "", nil, err
		}
		return model.PhaseExport, report, nil

	case model.PhaseExport:
		report, err := c.export(ctx, state)
		return model.PhaseDone, report, err

	default:
		return "", nil, fmt.Errorf("unknown phase %q", state.Phase)
	}
}

// clarify detects the topic domain and runs at most the configured
// number of refinement rounds, then proceeds unconditionally
func (c *Controller) clarify(ctx context.Context, state *model.CycleState) {
	if state.Domain == "" {
		state.Domain = selector.DetectDomain(state.Query)
	}

	rounds := c.cfg.ClarifyRounds
	if rounds > 2 {
		rounds = 2
	}
	if c.clarifier == nil {
		rounds = 0
	}

	query := state.Query
	for i := 0; i < rounds; i++ {
		refined, err := c.clarifier.Refine(ctx, query, state.Domain)
		if err != nil {
			// Clarification exhaustion: proceed with best effort
			c.logger.Debug("clarification round failed", zap.Int("round", i+1), zap.Error(err))
			break
		}
		if refined == query {
			break
		}
		query = refined
	}
	if query != state.Query {
		state.RefinedQuery = query
	}

	c.logger.Info("clarified query",
		zap.String("session", state.SessionID),
		zap.String("domain", state.Domain),
		zap.String("query", state.EffectiveQuery()))
}

// plan consults the selector for the cycle's ranked source list
func (c *Controller) plan(state *model.CycleState) {
	selected := c.selectSources(state)
	c.logger.Info("planned sources",
		zap.String("session", state.SessionID),
		zap.Strings("sources", selected))
}

// selectSources ranks the registered providers for the session's domain,
// excluding sources that already failed this session
func (c *Controller) selectSources(state *model.CycleState) []string {
	failures := make(map[string]bool)
	for _, f := range state.AccessFailures {
		failures[f.Source] = true
	}
	return c.selector.SelectNames(state.Domain, c.registry.Names(), failures, state.MaxSources)
}

// collect fans out one rate-limited call per selected source and joins
// before returning; failures are recorded, never fatal
func (c *Controller) collect(ctx context.Context, state *model.CycleState) {
	state.Cycle++
	selected := c.selectSources(state)

	filters := source.Filters{
		RequireAcademic: selector.ConfigForDomain(state.Domain).RequireAcademic,
	}
	results := c.fanout.Collect(ctx, selected, state.EffectiveQuery(), c.cfg.MaxResultsPerQuery, filters)

	c.raw = c.raw[:0]
	for _, r := range results {
		state.SourcesQueried = appendUnique(state.SourcesQueried, r.Source)
		if r.Failed() {
			state.AccessFailures = append(state.AccessFailures, model.AccessFailure{
				Source: r.Source,
				Cycle:  state.Cycle,
				Reason: r.Err.Error(),
				At:     time.Now().UTC(),
			})
			continue
		}
		c.raw = append(c.raw, r.Results...)
	}

	c.logger.Info("collect cycle completed",
		zap.String("session", state.SessionID),
		zap.Int("cycle", state.Cycle),
		zap.Int("results", len(c.raw)))
}

// process extracts candidate claims from this cycle's raw results and
// merges them into the accumulated facts, tracking citation circularity
func (c *Controller) process(state *model.CycleState) {
	candidates := c.extractor.Extract(c.raw)

	var entities []string
	for _, claim := range candidates {
		entities = append(entities, claim.Entities...)
	}

	newFacts := state.AddFacts(candidates)
	state.AddEntities(entities)

	// A candidate that re-states an accumulated fact is a circular
	// citation: the search is feeding back material already seen
	state.TotalCitations += len(candidates)
	state.CircularCitations += len(candidates) - newFacts
}

// analyze runs the verification engine over all claims accumulated so
// far, annotating contradictions and marking multi-source claims verified
func (c *Controller) analyze(state *model.CycleState) {
	for i := range state.Facts {
		state.Facts[i].Verified = len(state.Facts[i].Sources) >= 2
	}

	c.analysis = c.engine.Analyze(state.Facts)
	state.Facts = c.analysis.Claims

	c.logger.Info("analysis completed",
		zap.String("session", state.SessionID),
		zap.Int("facts", len(state.Facts)),
		zap.Int("contradictions", len(c.analysis.Contradictions)))
}

// evaluate computes saturation metrics and decides whether to stop; the
// operator stop flag is consulted here and only here
func (c *Controller) evaluate(state *model.CycleState) (stop bool) {
	counts := saturation.Counts{
		EntitiesBefore:   state.PrevEntities,
		EntitiesAfter:    len(state.Entities),
		FactsBefore:      state.PrevFacts,
		FactsAfter:       len(state.Facts),
		CircularCited:    state.CircularCitations,
		TotalCitations:   state.TotalCitations,
		SourcesQueried:   len(state.SourcesQueried),
		SourcesAvailable: c.registry.Len(),
	}

	state.Metrics = saturation.ComputeMetrics(counts)
	decision := saturation.Decide(state.Metrics, c.thresholds)

	if !decision.Stop && c.cfg.MaxCycles > 0 && state.Cycle >= c.cfg.MaxCycles {
		decision = saturation.Decision{Stop: true, Reason: fmt.Sprintf("cycle budget of %d reached", c.cfg.MaxCycles)}
	}

	// Cooperative cancellation, observed exactly once per cycle
	if !decision.Stop && c.stopRequested.Load() {
		decision = saturation.Decision{Stop: true, Reason: "stop requested by operator"}
	}

	state.PrevEntities = len(state.Entities)
	state.PrevFacts = len(state.Facts)

	c.logger.Info("saturation evaluated",
		zap.String("session", state.SessionID),
		zap.Int("cycle", state.Cycle),
		zap.Float64("new_entities_ratio", state.Metrics.NewEntitiesRatio),
		zap.Float64("new_facts_ratio", state.Metrics.NewFactsRatio),
		zap.Float64("coverage", state.Metrics.SourceCoverage),
		zap.Float64("circularity", state.Metrics.CitationCircularity),
		zap.Bool("stop", decision.Stop),
		zap.String("reason", decision.Reason))

	if decision.Stop {
		state.StopFlag = true
		state.StopReason = decision.Reason
	}
	return decision.Stop
}

// synthesize hands the accumulated state to the report synthesizer and
// applies the post-session effectiveness update
func (c *Controller) synthesize(ctx context.Context, state *model.CycleState) (*model.Report, error) {
	c.ensureAnalysis(state)

	report, err := c.synthesizer.Synthesize(ctx, state, c.analysis.Contradictions, c.analysis.Scores)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	state.ReportRef = fmt.Sprintf("report-%s", state.SessionID)
	c.report = report

	c.learn(state)
	return report, nil
}

// export writes the report to the session's export path, if configured
func (c *Controller) export(ctx context.Context, state *model.CycleState) (*model.Report, error) {
	report := c.report
	if report == nil {
		// Resuming directly into export: rebuild from checkpointed state
		c.ensureAnalysis(state)
		var err error
		report, err = c.synthesizer.Synthesize(ctx, state, c.analysis.Contradictions, c.analysis.Scores)
		if err != nil {
			return nil, fmt.Errorf("rebuild report: %w", err)
		}
	}

	if c.exporter != nil && state.ExportPath != "" {
		if err := c.exporter.Export(report, state.ExportPath); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	return report, nil
}

// ensureAnalysis rebuilds the verification analysis from checkpointed
// facts when a resumed session reaches synthesize or export without the
// in-memory analysis of its last cycle
func (c *Controller) ensureAnalysis(state *model.CycleState) {
	if len(c.analysis.Claims) > 0 || len(state.Facts) == 0 {
		return
	}
	c.analysis = c.engine.Analyze(state.Facts)
}

// learn applies the EMA update once per session for every source used:
// its mean claim confidence when it produced claims, 0.0 when it was
// queried but produced nothing or failed
func (c *Controller) learn(state *model.CycleState) {
	averages := c.analysis.SourceAverages()

	failed := make(map[string]bool)
	for _, f := range state.AccessFailures {
		failed[f.Source] = true
	}

	ledger := c.selector.Ledger()
	for _, name := range state.SourcesQueried {
		result := 0.0
		success := false
		if avg, ok := averages[name]; ok && !failed[name] {
			result = avg
			success = true
		}
		if err := ledger.Update(name, state.Domain, result, success); err != nil {
			// Persistence outage degrades to in-memory learning
			c.logger.Warn("effectiveness update not persisted",
				zap.String("source", name), zap.Error(err))
		}
	}
}

// checkpoint persists state at a phase boundary. A failed write is
// logged and retried at the next boundary, never fatal.
func (c *Controller) checkpoint(state *model.CycleState) {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.Save(state); err != nil {
		c.logger.Warn("checkpoint failed",
			zap.String("session", state.SessionID),
			zap.String("phase", string(state.Phase)),
			zap.Error(err))
	}
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
