package source

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CollectResult is one source's contribution to a collect cycle
type CollectResult struct {
	Source  string
	Results []RawResult
	Err     error // Non-nil when the source failed or was unavailable
}

// Failed reports whether the source contributed nothing due to an error
func (r CollectResult) Failed() bool {
	return r.Err != nil
}

// Fanout issues one concurrent search per selected source, each bounded
// by that source's own token bucket, and joins at a barrier: the result
// slice is complete before it returns.
type Fanout struct {
	registry *Registry
	limiter  *Limiter
	logger   *zap.Logger
}

// NewFanout creates a fan-out over the given registry and limiter
func NewFanout(registry *Registry, limiter *Limiter, logger *zap.Logger) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		registry: registry,
		limiter:  limiter,
		logger:   logger,
	}
}

// Collect queries every named source in parallel. A failing,
// unavailable, or unknown source yields a CollectResult with Err set and
// is skipped, never fatal. Results are positionally aligned with
// sources.
func (f *Fanout) Collect(ctx context.Context, sources []string, query string, maxResults int, filters Filters) []CollectResult {
	results := make([]CollectResult, len(sources))
	var wg sync.WaitGroup

	for i, name := range sources {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			results[idx] = f.collectOne(ctx, name, query, maxResults, filters)
		}(i, name)
	}

	// Barrier: analysis must only see a completed cycle
	wg.Wait()
	return results
}

// collectOne runs a single rate-limited provider search
func (f *Fanout) collectOne(ctx context.Context, name, query string, maxResults int, filters Filters) CollectResult {
	provider, ok := f.registry.Get(name)
	if !ok {
		return CollectResult{Source: name, Err: errUnknownSource(name)}
	}

	if !provider.IsAvailable(ctx) {
		f.logger.Warn("source unavailable", zap.String("source", name))
		return CollectResult{Source: name, Err: errUnavailable(name)}
	}

	if err := f.limiter.WaitProvider(ctx, provider); err != nil {
		return CollectResult{Source: name, Err: err}
	}

	results, err := provider.Search(ctx, query, maxResults, filters)
	if err != nil {
		f.logger.Warn("source search failed",
			zap.String("source", name),
			zap.Error(err))
		return CollectResult{Source: name, Err: err}
	}

	f.logger.Debug("source search completed",
		zap.String("source", name),
		zap.Int("results", len(results)))

	return CollectResult{Source: name, Results: results}
}
