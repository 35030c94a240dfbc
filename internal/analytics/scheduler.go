// Package analytics decides when a conversation is finished and runs the post-conversation
// pipeline for it.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easeaico/companion-house/internal/types"
)

// Defaults for the scheduler.
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultMinMessages  = 3
	DefaultPollInterval = 30 * time.Second
)

// State is where a session is in the analytics lifecycle.
type State int

const (
	StateIdle State = iota
	StateWatching
	StateProcessing
	StateProcessed
)

func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateProcessing:
		return "processing"
	case StateProcessed:
		return "processed"
	default:
		return "idle"
	}
}

// Processor runs the analytics pipeline for one finished session.
type Processor interface {
	Process(ctx context.Context, sessionID string) error
}

// SessionLister returns the sessions the polling pass inspects.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]types.ChatSession, error)
}

// SchedulerConfig tunes when a session counts as finished.
type SchedulerConfig struct {
	Timeout      time.Duration
	MinMessages  int
	PollInterval time.Duration
}

// Scheduler watches chat sessions and hands each one to the processor once it has been
// quiet for the timeout.
type Scheduler struct {
	processor Processor
	sessions  SessionLister
	processed ProcessedSet
	cfg       SchedulerConfig
	now       func() time.Time

	mu      sync.Mutex
	states  map[string]State
	timers  map[string]watch
	seq     uint64
	stopped bool
	baseCtx context.Context
	wg      sync.WaitGroup
}

// watch is an armed idle timer. gen identifies it so a stale timer never fires.
type watch struct {
	timer *time.Timer
	gen   uint64
}

// NewScheduler returns a scheduler. Zero config values use the defaults; a nil processed set
// keeps state in memory.
func NewScheduler(processor Processor, sessions SessionLister, processed ProcessedSet, cfg SchedulerConfig) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinMessages <= 0 {
		cfg.MinMessages = DefaultMinMessages
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if processed == nil {
		processed = NewMemoryProcessedSet()
	}
	return &Scheduler{
		processor: processor,
		sessions:  sessions,
		processed: processed,
		cfg:       cfg,
		now:       time.Now,
		states:    make(map[string]State),
		timers:    make(map[string]watch),
		baseCtx:   context.Background(),
	}
}

// State returns the current state of a session.
func (s *Scheduler) State(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[sessionID]
}

// Observe reacts to new activity in session. A session that is already quiet for longer than
// the timeout is processed before Observe returns; otherwise its timer is (re)armed.
func (s *Scheduler) Observe(ctx context.Context, session types.ChatSession) {
	if len(session.Messages) < s.cfg.MinMessages {
		return
	}
	last, _ := session.LastMessageAt()

	if s.State(session.ID) == StateProcessing {
		return
	}
	done, err := s.processed.Contains(ctx, session.ID)
	if err != nil {
		slog.Warn("failed to check processed set", "session_id", session.ID, "error", err.Error())
		return
	}

	s.mu.Lock()
	if s.states[session.ID] == StateProcessing {
		s.mu.Unlock()
		return
	}
	if done {
		s.states[session.ID] = StateProcessed
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked(session.ID)

	remaining := s.cfg.Timeout - s.now().Sub(last)
	if remaining <= 0 {
		s.states[session.ID] = StateProcessing
		s.mu.Unlock()
		s.process(ctx, session.ID)
		return
	}

	id := session.ID
	s.seq++
	gen := s.seq
	s.states[id] = StateWatching
	s.timers[id] = watch{
		timer: time.AfterFunc(remaining, func() { s.fire(id, gen) }),
		gen:   gen,
	}
	s.mu.Unlock()
}

// fire runs when a watching session's timer expires.
func (s *Scheduler) fire(sessionID string, gen uint64) {
	s.mu.Lock()
	if w, ok := s.timers[sessionID]; s.stopped || !ok || w.gen != gen || s.states[sessionID] != StateWatching {
		s.mu.Unlock()
		return
	}
	delete(s.timers, sessionID)
	s.states[sessionID] = StateProcessing
	ctx := s.baseCtx
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.process(ctx, sessionID)
}

func (s *Scheduler) process(ctx context.Context, sessionID string) {
	if err := s.processed.Add(ctx, sessionID); err != nil {
		slog.Warn("failed to mark session processed", "session_id", sessionID, "error", err.Error())
	}

	if err := s.processor.Process(ctx, sessionID); err != nil {
		slog.Error("conversation analytics failed", "session_id", sessionID, "error", err.Error())
		if rmErr := s.processed.Remove(ctx, sessionID); rmErr != nil {
			slog.Warn("failed to unmark session", "session_id", sessionID, "error", rmErr.Error())
		}
		s.setState(sessionID, StateIdle)
		return
	}
	s.setState(sessionID, StateProcessed)
	slog.Info("conversation analytics done", "session_id", sessionID)
}

func (s *Scheduler) setState(sessionID string, state State) {
	s.mu.Lock()
	s.states[sessionID] = state
	s.mu.Unlock()
}

// Forget drops a closed or deleted session and cancels its timer.
func (s *Scheduler) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked(sessionID)
	if s.states[sessionID] != StateProcessing {
		delete(s.states, sessionID)
	}
}

func (s *Scheduler) stopTimerLocked(sessionID string) {
	if w, ok := s.timers[sessionID]; ok {
		w.timer.Stop()
		delete(s.timers, sessionID)
	}
}

// Poll observes every listed session once.
func (s *Scheduler) Poll(ctx context.Context) error {
	if s.sessions == nil {
		return fmt.Errorf("session lister is nil")
	}
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range sessions {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.Observe(ctx, session)
	}
	return nil
}

// Run polls until ctx is cancelled, then stops all timers and waits for in-flight work.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("analytics poll failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			s.stopAll()
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	s.stopped = true
	for id := range s.timers {
		s.stopTimerLocked(id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
