package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/xiaot623/agentflow/internal/domain"
)

// ErrSubscriptionClosed is returned by Next after Close.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Subscription is the single consumer attached to a Channel.
type Subscription struct {
	ch     *Channel
	once   sync.Once
	closed atomic.Bool
}

// Subscribe claims the channel's consumer slot. It fails with
// domain.ErrSubscriberActive while another subscription is open.
func (c *Channel) Subscribe() (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribed {
		return nil, domain.ErrSubscriberActive
	}
	c.subscribed = true
	return &Subscription{ch: c}, nil
}

// Next returns the next event, or ErrEnded after the sentinel.
// A closed subscription no longer reads, so it cannot take events meant for
// a newer subscriber.
func (s *Subscription) Next(ctx context.Context) (domain.Event, error) {
	if s.closed.Load() {
		return nil, ErrSubscriptionClosed
	}
	return s.ch.Pop(ctx)
}

// Close releases the consumer slot. Undelivered events stay queued for the
// next subscriber. Closing does not affect the run producing the events.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.ch.mu.Lock()
		s.ch.subscribed = false
		s.ch.mu.Unlock()
	})
}
