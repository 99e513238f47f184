package debuglog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockRepository is a test implementation of Repository.
type mockRepository struct {
	mu       sync.Mutex
	events   []Event
	failNext int           // fail this many AppendBatch calls
	delay    time.Duration // artificial slowness per batch
}

func (m *mockRepository) Append(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockRepository) AppendBatch(_ context.Context, events []Event) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return fmt.Errorf("simulated store failure")
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockRepository) Recent(_ context.Context, _ Filter) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *mockRepository) Prune(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

func (m *mockRepository) stored() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// mockSink records telemetry sink calls.
type mockSink struct {
	mu    sync.Mutex
	calls int
}

func (s *mockSink) WriteLogEvent(_, _, _ string) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// waitFor polls until cond returns true or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestBuffer_AppendAndFlush(t *testing.T) {
	repo := &mockRepository{}
	sink := &mockSink{}
	buf := NewBuffer(repo, Options{
		FlushInterval: 10 * time.Millisecond,
		Sink:          sink,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go buf.Run(ctx)

	for i := 0; i < 5; i++ {
		buf.Append(NewEvent(LevelInfo, "test", "flush", fmt.Sprintf("event %d", i)))
	}

	waitFor(t, 2*time.Second, func() bool { return len(repo.stored()) == 5 })

	cancel()
	buf.Close()

	if sink.count() != 5 {
		t.Errorf("sink saw %d events, want 5", sink.count())
	}
}

func TestBuffer_AppendNeverBlocksOnSlowStore(t *testing.T) {
	repo := &mockRepository{delay: 200 * time.Millisecond}
	buf := NewBuffer(repo, Options{FlushInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go buf.Run(ctx)
	defer func() {
		cancel()
		buf.Close()
	}()

	// With the store stalled, appends must still return promptly.
	start := time.Now()
	for i := 0; i < 100; i++ {
		buf.Append(NewEvent(LevelDebug, "test", "slow", "event"))
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("100 appends took %v against a stalled store", elapsed)
	}
}

func TestBuffer_PreservesAppendOrder(t *testing.T) {
	repo := &mockRepository{}
	buf := NewBuffer(repo, Options{
		FlushInterval: 5 * time.Millisecond,
		BatchSize:     7, // force multiple batches
	})

	ctx, cancel := context.WithCancel(context.Background())
	go buf.Run(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		buf.Append(NewEvent(LevelInfo, "test", "order", fmt.Sprintf("%d", i)))
	}

	waitFor(t, 2*time.Second, func() bool { return len(repo.stored()) == n })
	cancel()
	buf.Close()

	for i, e := range repo.stored() {
		if e.Message != fmt.Sprintf("%d", i) {
			t.Fatalf("event %d has message %q, order broken", i, e.Message)
		}
	}
}

func TestBuffer_RequeuesFailedBatch(t *testing.T) {
	repo := &mockRepository{failNext: 2}
	buf := NewBuffer(repo, Options{FlushInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go buf.Run(ctx)

	buf.Append(NewEvent(LevelError, "test", "retry", "must survive"))

	// The first two flush attempts fail; the event persists on retry.
	waitFor(t, 2*time.Second, func() bool { return len(repo.stored()) == 1 })
	cancel()
	buf.Close()

	if repo.stored()[0].Message != "must survive" {
		t.Errorf("wrong event persisted: %+v", repo.stored()[0])
	}
}

func TestBuffer_DrainsOnShutdown(t *testing.T) {
	repo := &mockRepository{}
	// Long interval: only the shutdown drain can persist these.
	buf := NewBuffer(repo, Options{FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		buf.Run(ctx)
		close(done)
	}()

	// Let the Run loop start before appending, so the wake signal
	// cannot race the first select.
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 3; i++ {
		buf.Append(NewEvent(LevelNotice, "test", "drain", fmt.Sprintf("event %d", i)))
	}

	// Allow the wake-driven flush or final drain to pick them up.
	cancel()
	<-done
	buf.Close()

	if got := len(repo.stored()); got != 3 {
		t.Errorf("persisted %d events, want 3", got)
	}
	if buf.Len() != 0 {
		t.Errorf("%d events still pending after drain", buf.Len())
	}
}

func TestBuffer_CloseReturnsWhileParentContextLive(t *testing.T) {
	repo := &mockRepository{}
	buf := NewBuffer(repo, Options{FlushInterval: time.Hour})

	// Run gets a context derived from a still-live parent, the wiring
	// an error-path shutdown uses. Close must not depend on the parent
	// ever being cancelled.
	parent := context.Background()
	runCtx, cancel := context.WithCancel(parent)
	go buf.Run(runCtx)

	buf.Append(NewEvent(LevelError, "main", "startup", "listener failed"))

	done := make(chan struct{})
	go func() {
		cancel()
		buf.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the Run context was cancelled")
	}

	if got := len(repo.stored()); got != 1 {
		t.Errorf("persisted %d events during shutdown drain, want 1", got)
	}
}

func TestBindAndShared(t *testing.T) {
	t.Cleanup(func() { Bind(nil) })

	if Shared() != nil {
		Bind(nil)
	}

	repo := &mockRepository{}
	buf := NewBuffer(repo, Options{})
	Bind(buf)

	if Shared() != buf {
		t.Error("Shared did not return the bound buffer")
	}

	Bind(nil)
	if Shared() != nil {
		t.Error("Shared not cleared by Bind(nil)")
	}
}
