package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hydrovigil/internal/logger"
	"hydrovigil/pkg/models"
)

var exportLog = logger.For("export")

// Observer is notified of export progress. Any method may be called from the
// write loop or from Publish.
type Observer interface {
	EventsDropped(n int)
	EventsExported(n int)
	ExportFailed()
}

// Options configures batching.
type Options struct {
	BufferSize       int
	BatchSize        int
	FlushInterval    time.Duration
	RetryInterval    time.Duration
	// DrainTimeout bounds the final write after the run context is canceled.
	DrainTimeout     time.Duration
	IncludeTelemetry bool
	Observer         Observer
}

// ExportPipeline buffers engine events and writes them in batches. Publish never
// blocks: when the buffer is full the event is dropped and counted.
type ExportPipeline struct {
	writer EventWriter
	opts   Options
	in     chan *models.Event

	mu      sync.RWMutex
	stopped bool
	dropped atomic.Uint64
	running atomic.Bool
	done    chan struct{}
}

// NewExportPipeline creates a pipeline writing to writer.
func NewExportPipeline(writer EventWriter, opts Options) *ExportPipeline {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 2 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = time.Second
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 5 * time.Second
	}
	return &ExportPipeline{
		writer: writer,
		opts:   opts,
		in:     make(chan *models.Event, opts.BufferSize),
		done:   make(chan struct{}),
	}
}

// Publish queues ev for export.
func (p *ExportPipeline) Publish(ev models.Event) {
	if ev.Type == models.EventTelemetry && !p.opts.IncludeTelemetry {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return
	}
	select {
	case p.in <- &ev:
	default:
		p.dropped.Add(1)
		if p.opts.Observer != nil {
			p.opts.Observer.EventsDropped(1)
		}
	}
}

// Dropped returns the number of events lost to a full buffer.
func (p *ExportPipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Start runs the pipeline in a new goroutine.
func (p *ExportPipeline) Start(ctx context.Context) {
	p.running.Store(true)
	go p.Run(ctx)
}

// Run writes batches until ctx is done, then drains the buffer with one final
// write attempt bounded by DrainTimeout. Canceling ctx aborts a write in flight;
// its batch is included in the final write.
func (p *ExportPipeline) Run(ctx context.Context) error {
	p.running.Store(true)
	defer close(p.done)
	exportLog.Infof("Event export started: batch=%d flush=%s telemetry=%v", p.opts.BatchSize, p.opts.FlushInterval, p.opts.IncludeTelemetry)

	ticker := time.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()

	var batch []*models.Event

	for {
		select {
		case <-ctx.Done():
			p.stop()
			for ev := range p.in {
				batch = append(batch, ev)
			}
			if len(batch) > 0 {
				drainCtx, cancel := context.WithTimeout(context.Background(), p.opts.DrainTimeout)
				p.write(drainCtx, batch)
				cancel()
			}
			exportLog.Infof("Event export stopped")
			return ctx.Err()
		case <-ticker.C:
			batch = p.flush(ctx, batch)
		case ev := <-p.in:
			batch = append(batch, ev)
			if len(batch) >= p.opts.BatchSize {
				batch = p.flush(ctx, batch)
			}
		}
	}
}

// flush retries a failed batch every RetryInterval until it is written or ctx is
// done. The unwritten batch is returned on cancellation.
func (p *ExportPipeline) flush(ctx context.Context, batch []*models.Event) []*models.Event {
	if len(batch) == 0 {
		return batch
	}
	for {
		if p.write(ctx, batch) {
			return nil
		}
		select {
		case <-ctx.Done():
			return batch
		case <-time.After(p.opts.RetryInterval):
		}
	}
}

func (p *ExportPipeline) write(ctx context.Context, batch []*models.Event) bool {
	if err := p.writer.WriteEvents(ctx, batch); err != nil {
		exportLog.Errorf("Failed to write events: %v", err)
		if p.opts.Observer != nil {
			p.opts.Observer.ExportFailed()
		}
		return false
	}
	if p.opts.Observer != nil {
		p.opts.Observer.EventsExported(len(batch))
	}
	return true
}

func (p *ExportPipeline) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.stopped = true
		close(p.in)
	}
}

// Close waits for a running Run to return and closes the writer.
func (p *ExportPipeline) Close() error {
	if p.running.Load() {
		<-p.done
	} else {
		p.stop()
	}
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
