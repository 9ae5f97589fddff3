// Package stream provides the per-run event channel: an unbounded,
// multi-producer, single-consumer FIFO of events terminated by a sentinel.
package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/xiaot623/agentflow/internal/domain"
)

// ErrEnded is returned by Pop once the sentinel has been reached.
var ErrEnded = errors.New("stream ended")

type item struct {
	event domain.Event
	end   bool
}

// Channel is an ordered queue of events for one run.
//
// Push and End never block and may be called from any goroutine. Pop blocks
// until an item is available and is meant for a single consumer.
type Channel struct {
	mu     sync.Mutex
	items  []item
	ended  bool // sentinel enqueued
	done   bool // sentinel consumed
	notify chan struct{}

	subscribed bool
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{
		notify: make(chan struct{}, 1),
	}
}

// Push enqueues an event. Events pushed after End are dropped.
func (c *Channel) Push(ev domain.Event) bool {
	if ev == nil {
		return false
	}
	return c.enqueue(item{event: ev})
}

// End enqueues the sentinel. It is idempotent.
func (c *Channel) End() {
	c.enqueue(item{end: true})
}

func (c *Channel) enqueue(it item) bool {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items, it)
	if it.end {
		c.ended = true
	}
	c.mu.Unlock()

	// Wake the consumer; a pending signal already covers this item.
	select {
	case c.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop returns the next event in push order, blocking until one is available
// or ctx is done. After the sentinel it returns ErrEnded on every call.
func (c *Channel) Pop(ctx context.Context) (domain.Event, error) {
	for {
		c.mu.Lock()
		if c.done {
			c.mu.Unlock()
			return nil, ErrEnded
		}
		if len(c.items) > 0 {
			it := c.items[0]
			c.items[0] = item{}
			c.items = c.items[1:]
			if it.end {
				c.done = true
				c.items = nil
			}
			c.mu.Unlock()
			if it.end {
				return nil, ErrEnded
			}
			return it.event, nil
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.notify:
		}
	}
}

// Len returns the number of queued items, including an unread sentinel.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Ended reports whether the sentinel has been enqueued.
func (c *Channel) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}
