// package buffer provides the queues that carry things onto the audio thread.
package buffer

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

// Ring is a fixed size queue for exactly one producer goroutine and one
// consumer goroutine. Neither side ever blocks or allocates: Push fails when
// the ring is full and Pop fails when it is empty.
type Ring[T any] struct {
	buf  []T
	mask uint64

	// head is the next slot to read, only written by the consumer. tail is
	// the next slot to write, only written by the producer.
	head, tail atomic.Uint64
}

// NewRing returns a ring holding at least size items. The size is rounded up
// to a power of two.
func NewRing[T any](size int) *Ring[T] {
	n := uint64(1)
	if size > 1 {
		n = 1 << bits.Len64(uint64(size-1))
	}
	return &Ring[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

func (r *Ring[T]) String() string {
	return fmt.Sprintf("Ring(%d/%d)", r.Len(), r.Cap())
}

// Cap is the most items the ring can hold.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len is the number of items waiting. It is only a snapshot when the other
// side is running.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Push adds v to the back of the ring, reporting false if it was full. Only
// call from the producer.
func (r *Ring[T]) Push(v T) bool {
	t := r.tail.Load()
	if t-r.head.Load() == uint64(len(r.buf)) {
		return false
	}
	r.buf[t&r.mask] = v
	r.tail.Store(t + 1)
	return true
}

// Pop takes the item at the front of the ring, reporting false if it was
// empty. Only call from the consumer.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	h := r.head.Load()
	if h == r.tail.Load() {
		return zero, false
	}
	v := r.buf[h&r.mask]
	r.buf[h&r.mask] = zero
	r.head.Store(h + 1)
	return v, true
}

// Drain pops everything currently waiting onto the end of dst, up to n
// items. Only call from the consumer.
func (r *Ring[T]) Drain(dst []T, n int) []T {
	for i := 0; i < n; i++ {
		v, ok := r.Pop()
		if !ok {
			break
		}
		dst = append(dst, v)
	}
	return dst
}
