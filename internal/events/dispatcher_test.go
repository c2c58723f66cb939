package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribePublishUnsubscribe(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []EventType
	cancel := d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketResolved}))
	assert.Len(t, seen, 1)

	cancel()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Len(t, seen, 1, "no callbacks after teardown")

	// disposing twice is harmless
	cancel()
}

func TestMultipleSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var a, b int
	cancelA := d.Subscribe(EventTicketClaimed, func(context.Context, Event) error { a++; return nil })
	d.Subscribe(EventTicketClaimed, func(context.Context, Event) error { b++; return nil })

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketClaimed}))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	cancelA()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketClaimed}))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
