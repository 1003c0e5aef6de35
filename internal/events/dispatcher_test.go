package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherFansOutToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []Event
	dispatcher.Subscribe(EventComplaintSubmitted, func(ctx context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	dispatcher.Subscribe(EventComplaintSubmitted, func(ctx context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventComplaintSubmitted, Reference: "CMP-X"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventComplaintVerified, func(ctx context.Context, event Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventComplaintSubmitted})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherHandlerFailureDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var secondRan bool
	dispatcher.Subscribe(EventComplaintAssigned, func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventComplaintAssigned, func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventComplaintAssigned})
	require.NoError(t, err)
	assert.True(t, secondRan)
}
