// Package mailbox implements the in-process typed queue every actor reads
// its commands from: unbounded, cheap to hand a send side to many
// producers, with exactly one consumer. It offers the two receive modes
// §4.1 requires - a non-blocking try that distinguishes "empty" from
// "closed", and a blocking receive for callers that have nothing better to
// do while waiting.
package mailbox

import "sync"

// Mailbox is a generic, mutex-guarded FIFO queue with a signalling channel
// used to wake a blocked Receive. It plays the role the websocket hub's
// per-client channel plays for request/response fan-out, generalized to an
// arbitrary payload type and a single consumer.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	signal chan struct{}
	closed bool
}

// New returns an empty, open mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{signal: make(chan struct{}, 1)}
}

// Send enqueues v. Send on a closed mailbox is a silent no-op: by the time
// a producer notices the consumer is gone, there is nothing useful to do
// with the value.
func (m *Mailbox[T]) Send(v T) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// TryReceive is the non-blocking poll the actor runtime loop calls every
// tick. ok is true iff a value was dequeued; closed is true iff the
// mailbox is empty and will never yield another value.
func (m *Mailbox[T]) TryReceive() (v T, ok bool, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return v, false, m.closed
	}
	v = m.items[0]
	m.items = m.items[1:]
	return v, true, false
}

// Receive blocks until a value is available or the mailbox is closed.
func (m *Mailbox[T]) Receive() (T, bool) {
	for {
		if v, ok, closed := m.TryReceive(); ok {
			return v, true
		} else if closed {
			var zero T
			return zero, false
		}
		<-m.signal
	}
}

// Close marks the mailbox closed; subsequent Send calls are dropped and a
// blocked Receive returns immediately with ok=false. Already-queued items
// already pending are still delivered to TryReceive/Receive until drained.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}
