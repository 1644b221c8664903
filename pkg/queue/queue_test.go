package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadr/pkg/oadr"
)

func event(id string) *oadr.Event {
	return &oadr.Event{Descriptor: oadr.EventDescriptor{EventID: id}}
}

func messages(q *Queue) []any {
	out := []any{}
	for _, it := range q.Items() {
		if it.IsEvent() {
			out = append(out, it.Event.ID())
			continue
		}
		out = append(out, it.Message)
	}
	return out
}

func TestNextEventPreservesOrder(t *testing.T) {
	t.Parallel()
	a, b := event("A"), event("B")
	q := New(EventItem(a), MessageItem("msg1"), MessageItem("msg2"), MessageItem("msg3"), EventItem(b))

	got, ok := q.NextEvent()
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, []any{"msg1", "msg2", "msg3", "B"}, messages(q))

	got, ok = q.NextEvent()
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, []any{"msg1", "msg2", "msg3"}, messages(q))

	for i := 0; i < 3; i++ {
		got, ok = q.NextEvent()
		assert.False(t, ok)
		assert.Nil(t, got)
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []any{"msg1", "msg2", "msg3"}, messages(q))
}

func TestNextEventFromMiddle(t *testing.T) {
	t.Parallel()
	e := event("E")
	q := New(MessageItem(1), MessageItem(2), EventItem(e), MessageItem(3))

	got, ok := q.NextEvent()
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, []any{1, 2, 3}, messages(q))
	assert.Equal(t, 0, q.EventCount())
}

func TestNextEventWithoutEventsDoesNotMutate(t *testing.T) {
	t.Parallel()
	q := New(MessageItem("a"), MessageItem("b"), Item{Kind: KindEvent})
	before := q.Items()

	for i := 0; i < 10; i++ {
		got, ok := q.NextEvent()
		assert.False(t, ok)
		assert.Nil(t, got)
	}
	assert.Equal(t, before, q.Items())

	empty := New()
	_, ok := empty.NextEvent()
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func TestPopFrontAndPush(t *testing.T) {
	t.Parallel()
	q := New()
	_, ok := q.PopFront()
	assert.False(t, ok)

	e := event("E")
	q.Push(MessageItem("a"), EventItem(e))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 1, q.EventCount())

	it, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, "a", it.Message)
	assert.Equal(t, KindMessage, it.Kind)

	it, ok = q.PopFront()
	require.True(t, ok)
	assert.Same(t, e, it.Event)
	assert.Equal(t, 0, q.EventCount())
	assert.Equal(t, 0, q.Len())
}

func TestQueueLargeInterleaved(t *testing.T) {
	t.Parallel()
	q := New()
	var want []any
	var events []*oadr.Event
	for i := 0; i < 200; i++ {
		if i%3 == 0 {
			e := event("e")
			events = append(events, e)
			q.Push(EventItem(e))
			continue
		}
		q.Push(MessageItem(i))
		want = append(want, i)
	}

	for _, e := range events {
		got, ok := q.NextEvent()
		require.True(t, ok)
		assert.Same(t, e, got)
	}
	_, ok := q.NextEvent()
	assert.False(t, ok)
	assert.Equal(t, want, messages(q))

	for _, w := range want {
		it, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, w, it.Message)
	}
	assert.Equal(t, 0, q.Len())
}
