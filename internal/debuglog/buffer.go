package debuglog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Buffer defaults, overridable via config.
const (
	defaultFlushInterval = 2 * time.Second
	defaultBatchSize     = 100
	flushTimeout         = 5 * time.Second
)

// shared is the process-wide buffer handle. It is bound once after the
// storage subsystem initialises and read thereafter; readers tolerate
// it being absent early in process lifetime.
var shared atomic.Pointer[Buffer]

// Bind installs b as the process-wide buffer. Loggers created before
// Bind silently drop events from durable storage until it is called.
func Bind(b *Buffer) {
	shared.Store(b)
}

// Shared returns the process-wide buffer, or nil if none is bound.
func Shared() *Buffer {
	return shared.Load()
}

// TelemetrySink receives per-event level counts for monitoring.
// Satisfied by the InfluxDB client; optional.
type TelemetrySink interface {
	WriteLogEvent(subsystem, category, level string)
}

// Buffer is the durable log sink: a process-wide, append-only,
// concurrency-safe accumulator. Append never blocks on persistence;
// events land in an in-memory pending list and a background goroutine
// flushes them in batches to the store.
//
// Ordering of events appended by a single goroutine is preserved in
// the durable log. Events accepted by Append are not lost: a failed
// flush re-queues them, and Close flushes whatever remains.
type Buffer struct {
	store Repository
	sink  TelemetrySink // optional, may be nil
	log   errorLogger

	mu      sync.Mutex
	pending []Event
	wake    chan struct{}

	flushInterval time.Duration
	batchSize     int

	done chan struct{}
	once sync.Once
}

// errorLogger is the minimal logging surface the buffer needs for
// reporting flush failures. The full dual-sink Logger cannot be used
// here, as it would feed events back into the buffer.
type errorLogger interface {
	Warn(msg string, args ...any)
}

// noopErrorLogger discards flush failure reports.
type noopErrorLogger struct{}

func (noopErrorLogger) Warn(string, ...any) {}

// Options configures a Buffer.
type Options struct {
	// FlushInterval is how often pending events are written out.
	FlushInterval time.Duration

	// BatchSize is the maximum events written per store call.
	BatchSize int

	// Sink optionally receives level counts per flushed event.
	Sink TelemetrySink

	// Logger optionally receives flush failure reports.
	Logger interface {
		Warn(msg string, args ...any)
	}
}

// NewBuffer creates a buffer over the given store. Call Run to start
// the background flusher and Close to drain on shutdown.
func NewBuffer(store Repository, opts Options) *Buffer {
	flushInterval := opts.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	var log errorLogger = noopErrorLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}

	return &Buffer{
		store:         store,
		sink:          opts.Sink,
		log:           log,
		wake:          make(chan struct{}, 1),
		flushInterval: flushInterval,
		batchSize:     batchSize,
		done:          make(chan struct{}),
	}
}

// Append accepts an event for durable storage. It never blocks on the
// store: the event is queued in memory and the background flusher is
// woken. Safe for concurrent use.
func (b *Buffer) Append(e Event) {
	b.mu.Lock()
	b.pending = append(b.pending, e)
	b.mu.Unlock()

	// Non-blocking wake; a pending signal already covers this event.
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of events awaiting persistence.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Run flushes pending events until ctx is cancelled, then drains what
// remains. It blocks and is intended to run on its own goroutine.
func (b *Buffer) Run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.drain()
			return
		case <-b.wake:
			b.flush()
		case <-ticker.C:
			b.flush()
		}
	}
}

// Close waits for the Run loop to finish draining. Call after
// cancelling the context passed to Run.
func (b *Buffer) Close() {
	b.once.Do(func() {
		<-b.done
	})
}

// flush writes queued events to the store in batches, preserving
// insertion order. Events that fail to persist are re-queued at the
// front so nothing accepted is dropped.
func (b *Buffer) flush() {
	for {
		batch := b.takeBatch()
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := b.store.AppendBatch(ctx, batch)
		cancel()

		if err != nil {
			b.requeue(batch)
			b.log.Warn("debug log flush failed", "error", err, "events", len(batch))
			return
		}

		if b.sink != nil {
			for _, e := range batch {
				b.sink.WriteLogEvent(e.Subsystem, e.Category, e.Level.String())
			}
		}
	}
}

// drain makes a final attempt to persist everything still queued.
func (b *Buffer) drain() {
	b.flush()

	if remaining := b.Len(); remaining > 0 {
		b.log.Warn("debug log events unpersisted at shutdown", "events", remaining)
	}
}

// takeBatch removes up to batchSize events from the front of the queue.
func (b *Buffer) takeBatch() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return nil
	}

	n := len(b.pending)
	if n > b.batchSize {
		n = b.batchSize
	}

	batch := make([]Event, n)
	copy(batch, b.pending[:n])
	b.pending = b.pending[n:]
	return batch
}

// requeue puts a failed batch back at the front of the queue.
func (b *Buffer) requeue(batch []Event) {
	b.mu.Lock()
	b.pending = append(batch, b.pending...)
	b.mu.Unlock()
}
