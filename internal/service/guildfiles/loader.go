// Package guildfiles loads the per-guild enabled-file list for one consumer.
// Starting a load for a new guild aborts the consumer's previous load, and
// a result that arrives after being superseded is dropped.
package guildfiles

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

// Scope is a per-consumer cancellation slot. Only the newest Begin is live.
type Scope struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin cancels the previous context handed out by this scope and returns a
// new one with its generation.
func (s *Scope) Begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// Current reports whether gen is still the newest generation.
func (s *Scope) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// ApplyIfCurrent runs fn only if gen is still the newest generation. fn runs
// under the scope lock, so a concurrent Begin cannot slip in between the
// check and fn.
func (s *Scope) ApplyIfCurrent(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	fn()
	return true
}

// End releases gen's context if it is still the newest.
func (s *Scope) End(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stop aborts whatever is in flight.
func (s *Scope) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

type FetchFunc func(ctx context.Context, guildID string) ([]string, error)

// ApplyFunc receives a result that is still current.
type ApplyFunc func(guildID string, fileIDs []string)

type Loader struct {
	fetch  FetchFunc
	scope  Scope
	logger *slog.Logger
}

func NewLoader(fetch FetchFunc, logger *slog.Logger) *Loader {
	return &Loader{fetch: fetch, logger: logging.Component(logger, "guildfiles")}
}

// Load fetches guildID's enabled files and hands them to apply unless a
// newer Load or Stop happened meanwhile. Canceled fetches are silent. It
// returns whether apply was called.
func (l *Loader) Load(ctx context.Context, guildID string, apply ApplyFunc) (bool, error) {
	return l.Start(ctx, guildID, apply)()
}

// Start supersedes any earlier load right away and returns the fetch to run,
// typically on its own goroutine. Callers that start loads in arrival order
// get the newest one applied regardless of how the goroutines are scheduled.
func (l *Loader) Start(ctx context.Context, guildID string, apply ApplyFunc) func() (bool, error) {
	ctx, gen := l.scope.Begin(ctx)

	return func() (bool, error) {
		defer l.scope.End(gen)

		ids, err := l.fetch(ctx, guildID)
		if err != nil {
			if backend.IsCanceled(err) || !l.scope.Current(gen) {
				return false, nil
			}
			l.logger.Warn("enabled files fetch failed", "guild_id", guildID, "error", err)
			return false, err
		}

		applied := l.scope.ApplyIfCurrent(gen, func() { apply(guildID, ids) })
		if !applied {
			l.logger.Debug("dropping stale enabled files", "guild_id", guildID)
		}
		return applied, nil
	}
}

func (l *Loader) Stop() {
	l.scope.Stop()
}
