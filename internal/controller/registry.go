package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

// Status is a snapshot of a running or finished session
type Status struct {
	SessionID  string
	Phase      model.Phase
	Cycle      int
	Facts      int
	Entities   int
	StopReason string
	Err        error
	Done       bool
}

// handle owns one session's task: its controller, state, and completion
// signal
type handle struct {
	controller *Controller
	state      *model.CycleState
	done       chan struct{}
	mu         sync.Mutex
	report     *model.Report
	err        error
}

// Registry owns one task per active research session. Handles replace
// shared globals: the stop flag and status are readable through them.
type Registry struct {
	deps     Deps
	logger   *zap.Logger
	sessions map[string]*handle
	mu       sync.RWMutex
}

// NewRegistry creates a session registry over shared dependencies; each
// session gets its own controller built from them
func NewRegistry(deps Deps) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		deps:     deps,
		logger:   logger,
		sessions: make(map[string]*handle),
	}
}

// Start launches a new research session and returns its id immediately;
// the session runs in its own goroutine
func (r *Registry) Start(ctx context.Context, query, domainHint string, maxSources int) string {
	if maxSources <= 0 {
		maxSources = r.deps.Config.MaxSources
	}

	sessionID := uuid.NewString()
	state := model.NewCycleState(sessionID, query, domainHint, maxSources)

	h := &handle{
		controller: New(r.deps),
		state:      state,
		done:       make(chan struct{}),
	}

	r.mu.Lock()
	r.sessions[sessionID] = h
	r.mu.Unlock()

	go r.run(ctx, h)
	return sessionID
}

// Resume relaunches a checkpointed session under a fresh task
func (r *Registry) Resume(ctx context.Context, sessionID string) error {
	state, ok, err := r.deps.Sessions.Load(sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !ok {
		return fmt.Errorf("no checkpoint for session %s", sessionID)
	}

	h := &handle{
		controller: New(r.deps),
		state:      state,
		done:       make(chan struct{}),
	}

	r.mu.Lock()
	r.sessions[sessionID] = h
	r.mu.Unlock()

	go r.run(ctx, h)
	return nil
}

func (r *Registry) run(ctx context.Context, h *handle) {
	defer close(h.done)

	report, err := h.controller.Run(ctx, h.state)

	h.mu.Lock()
	h.report = report
	h.err = err
	h.mu.Unlock()

	if err != nil {
		r.logger.Error("session failed",
			zap.String("session", h.state.SessionID),
			zap.Error(err))
	}
}

// Status returns a snapshot of a session. While the session runs, the
// snapshot comes from its last checkpoint rather than live state, so no
// lock is shared with the session goroutine.
func (r *Registry) Status(sessionID string) (Status, bool) {
	h, ok := r.get(sessionID)
	if !ok {
		return Status{}, false
	}

	h.mu.Lock()
	err := h.err
	h.mu.Unlock()

	done := false
	select {
	case <-h.done:
		done = true
	default:
	}

	state := h.state
	if !done && r.deps.Sessions != nil {
		if checkpointed, found, loadErr := r.deps.Sessions.Load(sessionID); loadErr == nil && found {
			state = checkpointed
		}
	}

	return Status{
		SessionID:  sessionID,
		Phase:      state.Phase,
		Cycle:      state.Cycle,
		Facts:      len(state.Facts),
		Entities:   len(state.Entities),
		StopReason: state.StopReason,
		Err:        err,
		Done:       done,
	}, true
}

// RequestStop sets a session's cooperative stop flag; it takes effect at
// the next evaluate boundary
func (r *Registry) RequestStop(sessionID string) bool {
	h, ok := r.get(sessionID)
	if !ok {
		return false
	}
	h.controller.RequestStop()
	return true
}

// Report returns the finished session's report; ok is false while the
// session is still running or unknown
func (r *Registry) Report(sessionID string) (*model.Report, bool) {
	h, ok := r.get(sessionID)
	if !ok {
		return nil, false
	}

	select {
	case <-h.done:
	default:
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.report, h.report != nil
}

// Wait blocks until a session finishes and returns its report
func (r *Registry) Wait(sessionID string) (*model.Report, error) {
	h, ok := r.get(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session %s", sessionID)
	}

	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.report, h.err
}

func (r *Registry) get(sessionID string) (*handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[sessionID]
	return h, ok
}
