package graph

import "sync"

// EventQueue delivers events to a single consumer in emission order.
//
// Emit never blocks: events are queued without bound and handed to the
// Events channel by a dispatcher goroutine, so nodes can emit from the
// audio thread while the consumer calls back into them.
type EventQueue struct {
	mu      sync.Mutex
	pending []Event
	closed  bool

	wake chan struct{}
	done chan struct{}
	out  chan Event
	once sync.Once
}

// NewEventQueue creates a queue and starts its dispatcher.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	go q.dispatch()
	return q
}

// Emit queues ev for delivery. Events emitted after Close are dropped.
func (q *EventQueue) Emit(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Events returns the delivery channel. It is closed after Close.
func (q *EventQueue) Events() <-chan Event {
	return q.out
}

// Close stops delivery and drops undelivered events.
func (q *EventQueue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.pending = nil
		q.mu.Unlock()
		close(q.done)
	})
}

func (q *EventQueue) dispatch() {
	defer close(q.out)

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		ev := q.pending[0]
		q.pending[0] = Event{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.done:
			return
		}
	}
}
