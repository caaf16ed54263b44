package selector

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// EffectivenessStore is the durable contract the ledger needs; it
// outlives any single process. A nil or failing store degrades to
// in-memory defaults, never to an error.
type EffectivenessStore interface {
	// Get returns the current score for (source, domain); ok is false
	// when no record exists
	Get(source, domain string) (score float64, ok bool, err error)

	// Set upserts the score atomically, last-writer-wins on the key
	Set(source, domain string, score, lastQuality float64, success bool) error
}

// Ledger learns per-(source, domain) effectiveness via an exponential
// moving average over session outcomes
type Ledger struct {
	store        EffectivenessStore
	memory       *gocache.Cache // Read-through layer over the store
	alpha        float64
	defaultScore float64
}

// NewLedger creates a ledger over the given store. alpha is the EMA
// smoothing factor; zero values fall back to 0.3 smoothing and 0.5
// default score.
func NewLedger(store EffectivenessStore, alpha, defaultScore float64, cacheTTL time.Duration) *Ledger {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	if defaultScore <= 0 {
		defaultScore = 0.5
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Ledger{
		store:        store,
		memory:       gocache.New(cacheTTL, 10*time.Minute),
		alpha:        alpha,
		defaultScore: defaultScore,
	}
}

// Score returns the current effectiveness for (source, domain).
// Unknown pairs and store outages yield the default score.
func (l *Ledger) Score(source, domain string) float64 {
	key := ledgerKey(source, domain)

	if cached, found := l.memory.Get(key); found {
		return cached.(float64)
	}

	if l.store == nil {
		return l.defaultScore
	}

	score, ok, err := l.store.Get(source, domain)
	if err != nil || !ok {
		// Store outage or no history: benefit of the doubt
		return l.defaultScore
	}

	l.memory.Set(key, score, gocache.DefaultExpiration)
	return score
}

// Known reports whether (source, domain) has any recorded history
func (l *Ledger) Known(source, domain string) bool {
	if _, found := l.memory.Get(ledgerKey(source, domain)); found {
		return true
	}
	if l.store == nil {
		return false
	}
	_, ok, err := l.store.Get(source, domain)
	return err == nil && ok
}

// Update applies the EMA rule once for a session outcome:
// new = alpha*result + (1-alpha)*old. result is the source's mean claim
// confidence this session, or 0.0 for an empty or failed source.
func (l *Ledger) Update(source, domain string, result float64, success bool) error {
	old := l.Score(source, domain)
	updated := l.alpha*result + (1-l.alpha)*old

	key := ledgerKey(source, domain)
	l.memory.Set(key, updated, gocache.DefaultExpiration)

	if l.store == nil {
		return nil
	}
	if err := l.store.Set(source, domain, updated, result, success); err != nil {
		return fmt.Errorf("persist effectiveness %s: %w", key, err)
	}
	return nil
}

// ShouldUse reports whether a source is worth querying in a domain:
// unknown sources get the benefit of the doubt, known sources must meet
// the threshold
func (l *Ledger) ShouldUse(source, domain string, threshold float64) bool {
	if !l.Known(source, domain) {
		return true
	}
	return l.Score(source, domain) >= threshold
}

// ledgerKey builds the cache key for a (source, domain) pair
func ledgerKey(source, domain string) string {
	return domain + "::" + source
}
