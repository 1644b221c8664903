// Package queue implements the mixed FIFO shared by protocol events and
// other inbound messages, with stable extraction of the next event.
//
// Queue is not safe for concurrent use; callers serialize access.
package queue

import "leadr/pkg/oadr"

// Kind tags the variant stored in an Item.
type Kind uint8

const (
	KindMessage Kind = iota
	KindEvent
)

func (k Kind) String() string {
	if k == KindEvent {
		return "event"
	}
	return "message"
}

// Item is one queue element: either an event or an arbitrary message.
type Item struct {
	Kind    Kind
	Event   *oadr.Event
	Message any
}

func EventItem(e *oadr.Event) Item { return Item{Kind: KindEvent, Event: e} }

func MessageItem(m any) Item { return Item{Kind: KindMessage, Message: m} }

// IsEvent reports whether the item carries an event.
func (it Item) IsEvent() bool { return it.Kind == KindEvent && it.Event != nil }

// Queue is a FIFO of Items.
//
// items[head:] holds the live elements. events counts live event items so
// that queues without events are never scanned.
type Queue struct {
	items  []Item
	head   int
	events int
}

// New returns a queue holding items in order.
func New(items ...Item) *Queue {
	q := &Queue{}
	q.Push(items...)
	return q
}

// Push appends items to the back of the queue.
func (q *Queue) Push(items ...Item) {
	for _, it := range items {
		if it.IsEvent() {
			q.events++
		}
		q.items = append(q.items, it)
	}
}

// PopFront removes and returns the front item.
func (q *Queue) PopFront() (Item, bool) {
	if q.Len() == 0 {
		return Item{}, false
	}
	it := q.items[q.head]
	q.items[q.head] = Item{}
	q.head++
	if it.IsEvent() {
		q.events--
	}
	q.compact()
	return it, true
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return len(q.items) - q.head }

// EventCount returns the number of queued event items.
func (q *Queue) EventCount() int { return q.events }

// Items returns a copy of the queued items, front first.
func (q *Queue) Items() []Item {
	out := make([]Item, q.Len())
	copy(out, q.items[q.head:])
	return out
}

// NextEvent removes the first event item, wherever it sits, and returns its
// event. All other items keep their relative order. When no event is queued
// it returns (nil, false) and leaves the queue untouched.
func (q *Queue) NextEvent() (*oadr.Event, bool) {
	if q.events == 0 {
		return nil, false
	}
	for i := q.head; i < len(q.items); i++ {
		if !q.items[i].IsEvent() {
			continue
		}
		ev := q.items[i].Event
		if i == q.head {
			q.items[i] = Item{}
			q.head++
		} else {
			copy(q.items[i:], q.items[i+1:])
			last := len(q.items) - 1
			q.items[last] = Item{}
			q.items = q.items[:last]
		}
		q.events--
		q.compact()
		return ev, true
	}
	return nil, false
}

// compact drops the consumed prefix once it dominates the backing array.
func (q *Queue) compact() {
	if q.head == 0 {
		return
	}
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head < 32 || q.head*2 < len(q.items) {
		return
	}
	n := copy(q.items, q.items[q.head:])
	for i := n; i < len(q.items); i++ {
		q.items[i] = Item{}
	}
	q.items = q.items[:n]
	q.head = 0
}
