package stream

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/agentflow/internal/domain"
)

func drain(t *testing.T, c *Channel) []domain.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var events []domain.Event
	for {
		ev, err := c.Pop(ctx)
		if err == ErrEnded {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestChannelPreservesPushOrder(t *testing.T) {
	c := NewChannel()
	c.Push(domain.AgentStarted{Agent: domain.AgentResearch})
	c.Push(domain.ToolCalled{Agent: domain.AgentResearch, Tool: domain.ToolWebSearch})
	c.Push(domain.AgentCompleted{Agent: domain.AgentResearch})
	c.End()

	events := drain(t, c)
	assert.Equal(t, []domain.Event{
		domain.AgentStarted{Agent: domain.AgentResearch},
		domain.ToolCalled{Agent: domain.AgentResearch, Tool: domain.ToolWebSearch},
		domain.AgentCompleted{Agent: domain.AgentResearch},
	}, events)
}

func TestChannelSentinelIsLast(t *testing.T) {
	c := NewChannel()
	c.Push(domain.AgentStarted{Agent: "a"})
	c.End()
	c.End()
	assert.False(t, c.Push(domain.AgentCompleted{Agent: "a"}), "push after end must be dropped")

	ctx := context.Background()
	ev, err := c.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentStarted{Agent: "a"}, ev)

	for i := 0; i < 3; i++ {
		_, err = c.Pop(ctx)
		assert.ErrorIs(t, err, ErrEnded)
	}
	assert.Equal(t, 0, c.Len())
}

func TestChannelPopBlocksUntilPush(t *testing.T) {
	c := NewChannel()
	got := make(chan domain.Event, 1)

	go func() {
		ev, err := c.Pop(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	select {
	case <-got:
		t.Fatal("pop returned before any push")
	case <-time.After(50 * time.Millisecond):
	}

	c.Push(domain.AgentStarted{Agent: "late"})
	select {
	case ev := <-got:
		assert.Equal(t, domain.AgentStarted{Agent: "late"}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("pop did not wake up after push")
	}
}

func TestChannelPopHonorsContext(t *testing.T) {
	c := NewChannel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancellation leaves the channel usable.
	c.Push(domain.AgentStarted{Agent: "a"})
	ev, err := c.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AgentStarted{Agent: "a"}, ev)
}

func TestChannelConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers = 8
	const perProducer = 200

	c := NewChannel()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				c.Push(domain.ToolCalled{Agent: fmt.Sprintf("p%d", p), Tool: fmt.Sprintf("%d", i)})
			}
		}(p)
	}

	done := make(chan []domain.Event)
	go func() {
		var events []domain.Event
		for {
			ev, err := c.Pop(context.Background())
			if err != nil {
				done <- events
				return
			}
			events = append(events, ev)
		}
	}()

	wg.Wait()
	c.End()
	events := <-done

	require.Len(t, events, producers*perProducer)
	next := make(map[string]int)
	for _, ev := range events {
		tc := ev.(domain.ToolCalled)
		assert.Equal(t, fmt.Sprintf("%d", next[tc.Agent]), tc.Tool, "out of order for %s", tc.Agent)
		next[tc.Agent]++
	}
}

func TestChannelIgnoresNilEvent(t *testing.T) {
	c := NewChannel()
	assert.False(t, c.Push(nil))
	assert.Equal(t, 0, c.Len())
}

func TestSubscriptionSingleConsumer(t *testing.T) {
	c := NewChannel()
	sub, err := c.Subscribe()
	require.NoError(t, err)

	_, err = c.Subscribe()
	assert.ErrorIs(t, err, domain.ErrSubscriberActive)

	c.Push(domain.AgentStarted{Agent: "a"})
	c.Push(domain.AgentCompleted{Agent: "a"})
	ev, err := sub.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AgentStarted{Agent: "a"}, ev)

	sub.Close()
	sub.Close()

	// A new subscriber resumes with what is left.
	sub2, err := c.Subscribe()
	require.NoError(t, err)
	defer sub2.Close()
	c.End()

	ev, err = sub2.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AgentCompleted{Agent: "a"}, ev)
	_, err = sub2.Next(context.Background())
	assert.ErrorIs(t, err, ErrEnded)
}

func TestClosedSubscriptionCannotTakeEvents(t *testing.T) {
	c := NewChannel()
	stale, err := c.Subscribe()
	require.NoError(t, err)
	stale.Close()

	current, err := c.Subscribe()
	require.NoError(t, err)
	defer current.Close()

	c.Push(domain.AgentStarted{Agent: "a"})

	_, err = stale.Next(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionClosed)
	assert.Equal(t, 1, c.Len())

	ev, err := current.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AgentStarted{Agent: "a"}, ev)
}
