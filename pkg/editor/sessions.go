package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukex/operion-canvas/pkg/config"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Session is an open canvas with its access bookkeeping.
type Session struct {
	mu         sync.Mutex
	canvas     *Canvas
	createdAt  time.Time
	lastAccess time.Time
}

// Sessions keeps the open canvases in memory. When full, opening a canvas
// evicts the least recently used one; canvases idle longer than the TTL are
// swept on a cron schedule.
type Sessions struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	schedule    string
	newCanvas   func(id string) *Canvas
	cron        *cron.Cron
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessions creates a session store. newCanvas builds the canvas of every
// new session.
func NewSessions(cfg config.SessionsConfig, newCanvas func(id string) *Canvas) *Sessions {
	return &Sessions{
		sessions:    make(map[string]*Session),
		maxSessions: cfg.MaxSessions,
		ttl:         cfg.TTL,
		schedule:    cfg.SweepSchedule,
		newCanvas:   newCanvas,
		logger:      log.WithModule("sessions"),
		now:         time.Now,
	}
}

// Create opens a canvas, loaded with state when given.
func (s *Sessions) Create(ctx context.Context, state *graph.State) (*Canvas, error) {
	canvas := s.newCanvas(uuid.New().String())

	if state != nil {
		if err := canvas.Load(ctx, *state); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldest(ctx)
	}

	now := s.now()
	s.sessions[canvas.ID()] = &Session{canvas: canvas, createdAt: now, lastAccess: now}

	s.logger.InfoContext(ctx, "canvas opened", "canvas_id", canvas.ID(), "sessions", len(s.sessions))

	return canvas, nil
}

// With runs fn on the canvas with exclusive access to it.
func (s *Sessions) With(id string, fn func(c *Canvas) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastAccess = s.now()
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrCanvasNotFound, id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return fn(sess.canvas)
}

// Delete closes a canvas. It reports whether the canvas was open.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)

	return ok
}

// Len returns the number of open canvases.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// SessionInfo describes an open canvas.
type SessionInfo struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// List returns the open canvases, most recently used first.
func (s *Sessions) List() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for id, sess := range s.sessions {
		infos = append(infos, SessionInfo{ID: id, CreatedAt: sess.createdAt, LastAccess: sess.lastAccess})
	}

	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return b.LastAccess.Compare(a.LastAccess)
	})

	return infos
}

// Cleanup closes canvases idle for longer than the TTL and returns how many
// were closed. A TTL of zero keeps every canvas.
func (s *Sessions) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0

	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("expired canvases closed", "removed", removed, "sessions", len(s.sessions))
	}

	return removed
}

// Start schedules Cleanup on the configured cron schedule.
func (s *Sessions) Start() error {
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := s.cron.AddFunc(s.schedule, func() { s.Cleanup() }); err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("session sweep started", "schedule", s.schedule, "ttl", s.ttl)

	return nil
}

// Stop halts the sweep and waits for a running one to finish.
func (s *Sessions) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
}

// evictOldest closes the least recently used canvas. Callers hold s.mu.
func (s *Sessions) evictOldest(ctx context.Context) {
	var (
		oldestID   string
		oldestTime time.Time
	)

	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastAccess.Before(oldestTime) {
			oldestID = id
			oldestTime = sess.lastAccess
		}
	}

	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.InfoContext(ctx, "canvas evicted", "canvas_id", oldestID)
	}
}
