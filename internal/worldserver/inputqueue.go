package worldserver

import (
	"sync/atomic"
	"time"

	"github.com/udisondev/la2go/internal/wire"
)

// TCPResponder is the minimal surface a queued packet's origin connection
// exposes back to the tick thread, so a handler can reply (PositionCorrection,
// ErrorResponse) without reaching back into network-layer internals.
type TCPResponder interface {
	SendFrame(opcode wire.Opcode, msg any) error
}

// QueuedPacket is one decoded, not-yet-applied inbound frame.
type QueuedPacket struct {
	AccountID  int64
	Opcode     wire.Opcode
	Payload    []byte
	Conn       TCPResponder
	ReceivedAt time.Time
}

// InputQueue is the tick loop's multi-producer/single-consumer inbox.
// Network goroutines (TCP frame readers, UDP datagram handlers) enqueue;
// only the tick goroutine drains. Implemented on top of a buffered channel,
// which the Go runtime already guarantees is safe for concurrent
// many-writer/one-reader use without an explicit lock-free ring buffer.
type InputQueue struct {
	ch      chan QueuedPacket
	dropped atomic.Int64
}

// NewInputQueue constructs a queue with the given bounded capacity (the
// tick loop defaults to 50,000).
func NewInputQueue(capacity int) *InputQueue {
	return &InputQueue{ch: make(chan QueuedPacket, capacity)}
}

// Enqueue attempts a non-blocking send. Returns false, and increments the
// drop counter, if the queue is full — the newest packet is the one
// dropped, never an already-queued one.
func (q *InputQueue) Enqueue(pkt QueuedPacket) bool {
	select {
	case q.ch <- pkt:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain empties every packet currently queued into buf (reset, not
// reallocated, by the caller) and returns the extended slice. Safe to call
// only from the tick goroutine.
func (q *InputQueue) Drain(buf []QueuedPacket) []QueuedPacket {
	for {
		select {
		case pkt := <-q.ch:
			buf = append(buf, pkt)
		default:
			return buf
		}
	}
}

// Dropped returns the cumulative count of packets dropped due to overflow.
func (q *InputQueue) Dropped() int64 { return q.dropped.Load() }
