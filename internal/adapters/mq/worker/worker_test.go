package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mvidal/destino/internal/adapters/mq/queue"
	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeRefresher records which seasons were refreshed.
type fakeRefresher struct {
	mu       sync.Mutex
	seasons  []string
	failWith error
}

func (r *fakeRefresher) RefreshSeason(ctx context.Context, season string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.seasons = append(r.seasons, season)
	return nil
}

func (r *fakeRefresher) refreshed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.seasons))
	copy(out, r.seasons)
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestWorker_ProcessesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	refresher := &fakeRefresher{}
	w := NewInMemoryWorker(q, refresher, WithName("test-worker"))

	go w.Run(ctx)

	q.Enqueue(ctx, model.RefreshJob{Season: "2026"})
	q.Enqueue(ctx, model.RefreshJob{Season: "2025"})

	waitFor(t, time.Second, func() bool {
		return len(refresher.refreshed()) == 2
	})

	got := refresher.refreshed()
	if got[0] != "2026" || got[1] != "2025" {
		t.Errorf("unexpected refresh order: %v", got)
	}
}

func TestWorker_RefreshErrorDoesNotStopTheLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	refresher := &fakeRefresher{failWith: errors.New("store unavailable")}
	w := NewInMemoryWorker(q, refresher)

	go w.Run(ctx)

	q.Enqueue(ctx, model.RefreshJob{Season: "2026"})
	time.Sleep(50 * time.Millisecond)

	// Recover the backend and confirm the worker is still consuming.
	refresher.mu.Lock()
	refresher.failWith = nil
	refresher.mu.Unlock()

	q.Enqueue(ctx, model.RefreshJob{Season: "2025"})
	waitFor(t, time.Second, func() bool {
		got := refresher.refreshed()
		return len(got) == 1 && got[0] == "2025"
	})
}

func TestWorker_Shutdown(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	refresher := &fakeRefresher{}
	w := NewInMemoryWorker(q, refresher)

	go w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Errorf("expected clean shutdown, got error: %v", err)
	}
}

func TestPool_ProcessesJobsAcrossWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(100))
	refresher := &fakeRefresher{}
	pool := NewPool(4, q, refresher)
	pool.Start(ctx)

	seasons := []string{"2022", "2023", "2024", "2025", "2026"}
	for _, season := range seasons {
		if !q.Enqueue(ctx, model.RefreshJob{Season: season}) {
			t.Fatalf("enqueue failed for %s", season)
		}
	}

	waitFor(t, time.Second, func() bool {
		return len(refresher.refreshed()) == len(seasons)
	})
}

func TestPool_Shutdown(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	refresher := &fakeRefresher{}
	pool := NewPool(2, q, refresher)
	pool.Start(ctx)

	q.Enqueue(ctx, model.RefreshJob{Season: "2026"})

	if err := pool.Shutdown(ctx); err != nil {
		t.Errorf("expected clean pool shutdown, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected the queue to be closed by pool shutdown")
	}
}
