// Package loop is the firmware's single event consumer. Platform callbacks
// post typed events; Run drains them one at a time on its own goroutine, so
// the handlers never need locks.
//
// Advertisements are the only high-rate event. At most one of them sits in
// the queue at a time and later ones fold into it until it is dispatched.
// Every other event (completions, discovery, ticks) is always queued.
package loop

import (
	"context"
	"sync"
	"sync/atomic"

	"hapticlink/types"
	"hapticlink/x/logx"
)

const defaultQueueLen = 32

// Handler consumes events. Poll runs after every event.
type Handler interface {
	HandleEvent(ev types.Event)
}

type poller interface {
	Poll()
}

type Loop struct {
	handlers []Handler

	mu        sync.Mutex
	queue     []types.Event
	head      int
	advQueued bool

	wake      chan struct{}
	coalesced atomic.Uint32
}

// New builds a loop. queueLen is the initial queue capacity; the queue grows
// past it rather than lose an event.
func New(queueLen int, handlers ...Handler) *Loop {
	if queueLen <= 0 {
		queueLen = defaultQueueLen
	}
	return &Loop{
		handlers: handlers,
		queue:    make([]types.Event, 0, queueLen),
		wake:     make(chan struct{}, 1),
	}
}

// Post enqueues ev without blocking. It returns false only when ev is an
// advertisement folded into one already waiting. Safe from any goroutine.
func (l *Loop) Post(ev types.Event) bool {
	l.mu.Lock()
	if _, adv := ev.(types.AdvertisementSeen); adv {
		if l.advQueued {
			l.mu.Unlock()
			l.coalesced.Add(1)
			return false
		}
		l.advQueued = true
	}
	l.queue = append(l.queue, ev)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Coalesced returns the number of advertisements folded into a queued one.
func (l *Loop) Coalesced() uint32 { return l.coalesced.Load() }

// Pending returns the number of queued events.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) - l.head
}

func (l *Loop) next() (types.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head == len(l.queue) {
		return nil, false
	}
	ev := l.queue[l.head]
	l.queue[l.head] = nil
	l.head++
	if l.head == len(l.queue) {
		l.queue = l.queue[:0]
		l.head = 0
	}
	if _, adv := ev.(types.AdvertisementSeen); adv {
		l.advQueued = false
	}
	return ev, true
}

// Run dispatches events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			logx.Info("loop", "stopping", "coalesced", l.Coalesced())
			return
		}
		if ev, ok := l.next(); ok {
			l.dispatch(ev)
			continue
		}
		select {
		case <-ctx.Done():
		case <-l.wake:
		}
	}
}

// Drain dispatches the events queued at the time of the call and returns
// the count. Events posted while draining wait for the next call.
func (l *Loop) Drain() int {
	n := l.Pending()
	for i := 0; i < n; i++ {
		ev, ok := l.next()
		if !ok {
			return i
		}
		l.dispatch(ev)
	}
	return n
}

func (l *Loop) dispatch(ev types.Event) {
	for _, h := range l.handlers {
		h.HandleEvent(ev)
	}
	for _, h := range l.handlers {
		if p, ok := h.(poller); ok {
			p.Poll()
		}
	}
}
