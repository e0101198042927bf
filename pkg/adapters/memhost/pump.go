package memhost

import (
	"context"
	"sync"
)

// Pump is a cooperative, strictly single-threaded event loop. Post is
// safe from any goroutine; every posted event runs serially on the
// goroutine that called Run. This mirrors the dispatch model of the
// real CAD host: host objects are only ever touched from inside
// posted events.
type Pump struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewPump creates an idle pump. Nothing runs until Run is called.
func NewPump() *Pump {
	return &Pump{wake: make(chan struct{}, 1)}
}

// Post schedules an event. It never blocks.
func (p *Pump) Post(event func()) {
	if event == nil {
		return
	}
	p.mu.Lock()
	p.queue = append(p.queue, event)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue on the calling goroutine until ctx is canceled.
// This is the host's "main thread"; exactly one Run may be active.
func (p *Pump) Run(ctx context.Context) {
	for {
		event := p.pop()
		if event != nil {
			event()
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
	}
}

// Drain synchronously runs every queued event, including events posted
// by the events themselves, on the calling goroutine. Intended for
// tests that want deterministic stepping without a Run goroutine.
func (p *Pump) Drain() {
	for {
		event := p.pop()
		if event == nil {
			return
		}
		event()
	}
}

func (p *Pump) pop() func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	event := p.queue[0]
	p.queue = p.queue[1:]
	return event
}
