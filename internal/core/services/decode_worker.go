package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure DecodeWorker implements the interface.
var _ driving.DecodeChannel = (*DecodeWorker)(nil)

type decodeJob struct {
	ctx context.Context
	req domain.DecodeRequest
	out chan domain.DecodeResult
}

// DecodeWorker decodes payloads on a dedicated goroutine.
// Requests are served in submission order, one at a time.
type DecodeWorker struct {
	notify chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	queue  []decodeJob
	closed bool
}

// NewDecodeWorker starts a decode worker. Callers must Close it.
func NewDecodeWorker() *DecodeWorker {
	w := &DecodeWorker{
		notify: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// NewDecoderFactory returns a factory producing fresh decode workers.
func NewDecoderFactory() driving.DecoderFactory {
	return func() driving.DecodeChannel {
		return NewDecodeWorker()
	}
}

// Decode submits a request and returns the channel its result arrives on.
// It never blocks.
func (w *DecodeWorker) Decode(ctx context.Context, req domain.DecodeRequest) <-chan domain.DecodeResult {
	out := make(chan domain.DecodeResult, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		out <- domain.DecodeResult{Err: domain.ErrWorkerClosed}
		return out
	}
	w.queue = append(w.queue, decodeJob{ctx: ctx, req: req, out: out})
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
	return out
}

// Close stops the worker. Queued requests fail with domain.ErrWorkerClosed.
// It is safe to call more than once.
func (w *DecodeWorker) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

// Closed reports whether Close has been called.
func (w *DecodeWorker) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// run is the worker loop.
func (w *DecodeWorker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			w.drain()
			return
		case <-w.notify:
			for {
				job, ok := w.next()
				if !ok {
					break
				}
				job.out <- w.process(job)
			}
		}
	}
}

// next pops the oldest queued job. Nothing is served once closed.
func (w *DecodeWorker) next() (decodeJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || len(w.queue) == 0 {
		return decodeJob{}, false
	}
	job := w.queue[0]
	w.queue = w.queue[1:]
	return job, true
}

// drain fails every request still queued after Close.
func (w *DecodeWorker) drain() {
	w.mu.Lock()
	pending := w.queue
	w.queue = nil
	w.mu.Unlock()

	for _, job := range pending {
		job.out <- domain.DecodeResult{Err: domain.ErrWorkerClosed}
	}
}

// process decodes one request. Panics are reported as decode errors.
func (w *DecodeWorker) process(job decodeJob) (result domain.DecodeResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("decode worker panic: %v", r)
			result = domain.DecodeResult{Err: fmt.Errorf("%w: %v", domain.ErrDecodeFailed, r)}
		}
	}()

	if err := job.ctx.Err(); err != nil {
		return domain.DecodeResult{Err: err}
	}

	var (
		text string
		err  error
	)
	if job.req.Raw {
		text, err = Base64DecodeRaw(job.req.Payload)
	} else {
		text, err = Base64DecodeUnicode(job.req.Payload)
	}
	return domain.DecodeResult{Text: text, Err: err}
}
