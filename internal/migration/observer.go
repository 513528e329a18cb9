package migration

import (
	"context"
	"sync"

	"github.com/mmcdole/kanshi/internal/domain"
)

// EventKind tells which observer callback produced an Event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventResult
	EventFailure
)

// Event is one migration callback delivered through a channel.
type Event struct {
	Kind     EventKind
	Progress domain.MigrationProgress
	Result   domain.MigrationResult
	Err      error
}

// ChannelObserver adapts domain.MigrationObserver to a channel for Bubble Tea.
// Sends block until the event is read, so no event is dropped and order is
// kept. Once ctx is done, remaining events are discarded.
//
// A ChannelObserver serves a single run: the channel is closed after the
// terminal event and anything reported later is dropped.
type ChannelObserver struct {
	ctx context.Context
	ch  chan Event

	mu     sync.Mutex
	closed bool
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ctx context.Context, buffer int) *ChannelObserver {
	return &ChannelObserver{ctx: ctx, ch: make(chan Event, buffer)}
}

// Events returns the receive side of the channel.
func (o *ChannelObserver) Events() <-chan Event { return o.ch }

func (o *ChannelObserver) OnProgress(progress domain.MigrationProgress) {
	o.send(Event{Kind: EventProgress, Progress: progress})
}

func (o *ChannelObserver) OnResult(result domain.MigrationResult) {
	o.send(Event{Kind: EventResult, Result: result})
	o.close()
}

func (o *ChannelObserver) OnFailure(err error) {
	o.send(Event{Kind: EventFailure, Err: err})
	o.close()
}

func (o *ChannelObserver) send(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.ch <- e:
	case <-o.ctx.Done():
	}
}

func (o *ChannelObserver) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}
