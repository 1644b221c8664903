package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(2)

	b.Publish(Event{Type: TypeEventStatus, Data: StatusChange{EventID: "e1", From: "far", To: "active"}})
	e := <-ch
	assert.Equal(t, TypeEventStatus, e.Type)
	assert.False(t, e.Time.IsZero())
	require.IsType(t, StatusChange{}, e.Data)
	assert.Equal(t, "active", e.Data.(StatusChange).To)

	unsub()
	unsub()
	_, ok := <-ch
	assert.False(t, ok)

	// publishing after unsubscribe must not panic
	b.Publish(Event{Type: TypePollDone})
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	for i := 0; i < 5; i++ {
		b.Publish(Event{Type: TypePollDone})
	}
	assert.Len(t, ch, 1)
}
