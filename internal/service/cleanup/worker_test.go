package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/soundboard-dashboard/internal/logging"
)

type fakePruner struct {
	mu    sync.Mutex
	days  []int
	err   error
	calls chan struct{}
}

func (f *fakePruner) CleanupOld(_ context.Context, days int) (int64, error) {
	f.mu.Lock()
	f.days = append(f.days, days)
	f.mu.Unlock()
	f.calls <- struct{}{}
	return 3, f.err
}

func waitCall(t *testing.T, calls <-chan struct{}) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup was not run")
	}
}

func TestWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	p := &fakePruner{calls: make(chan struct{}, 8)}
	w := NewWorker(p, 30, logging.Discard())
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := w.Start(ctx)

	waitCall(t, p.calls)
	waitCall(t, p.calls)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	require.GreaterOrEqual(t, len(p.days), 2)
	assert.Equal(t, 30, p.days[0])
}

func TestWorker_ErrorDoesNotStop(t *testing.T) {
	p := &fakePruner{calls: make(chan struct{}, 8), err: errors.New("db down")}
	w := NewWorker(p, 7, logging.Discard())
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	waitCall(t, p.calls)
	waitCall(t, p.calls)
}
